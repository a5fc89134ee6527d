package bancho

import (
	"errors"
	"testing"

	"bancho/internal/packet"
)

func TestLoginErrorRetryableAndFatal(t *testing.T) {
	serverErr := &LoginError{Code: packet.ServerError}
	if !serverErr.Retryable() {
		t.Error("expected ServerError to be retryable")
	}
	if serverErr.Fatal() {
		t.Error("expected ServerError to be non-fatal")
	}

	verifyErr := &LoginError{Code: packet.VerificationNeeded}
	if verifyErr.Retryable() {
		t.Error("expected VerificationNeeded to be non-retryable")
	}
	if verifyErr.Fatal() {
		t.Error("expected VerificationNeeded to be non-fatal")
	}

	restrictedErr := &LoginError{Code: packet.Restricted}
	if restrictedErr.Retryable() {
		t.Error("expected Restricted to be non-retryable")
	}
	if !restrictedErr.Fatal() {
		t.Error("expected Restricted to be fatal")
	}
}

func TestTransportErrorWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := newTransportError(cause, "cycle")

	if !errors.Is(err, err) {
		t.Fatal("expected TransportError to equal itself via errors.Is")
	}
	unwrapped := errors.Unwrap(err)
	if unwrapped == nil {
		t.Fatal("expected TransportError to unwrap to the wrapped cause chain")
	}
}

func TestHandlerErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := newHandlerError(packet.SendMessage, cause)
	if err.Packet != packet.SendMessage {
		t.Errorf("expected packet field preserved, got %v", err.Packet)
	}
	if errors.Unwrap(err) == nil {
		t.Error("expected HandlerError to unwrap to its cause chain")
	}
}

func TestFatalErrorMessage(t *testing.T) {
	err := &FatalError{Reason: "account restricted"}
	if err.Error() != "fatal: account restricted" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
