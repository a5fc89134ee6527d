package bancho

import (
	"fmt"

	"github.com/pkg/errors"

	"bancho/internal/packet"
)

// LoginError is a server-side rejection of the login handshake (§7). All
// variants except ServerError are non-retryable.
type LoginError struct {
	Code packet.LoginCode
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("login rejected (%d): %s", e.Code, e.Code.Description())
}

// Retryable reports whether the session should reconnect after this error.
func (e *LoginError) Retryable() bool { return e.Code == packet.ServerError }

// Fatal reports whether the session should terminate (retry=false) after
// this error, per §7's taxonomy ("the rest set retry=false and terminate").
func (e *LoginError) Fatal() bool {
	return e.Code != packet.ServerError && e.Code != packet.VerificationNeeded
}

// TransportError wraps a connection-level failure: refused connection,
// non-2xx response with no packet body, broken pipe, EOF mid-read. Always
// marks the session disconnected with retry=true.
type TransportError struct {
	cause error
}

func newTransportError(cause error, msg string) *TransportError {
	return &TransportError{cause: errors.Wrap(cause, msg)}
}

func (e *TransportError) Error() string { return e.cause.Error() }
func (e *TransportError) Unwrap() error { return e.cause }

// ErrMalformedFrame is re-exported from internal/packet (itself
// re-exported from internal/streams) so session/handler code can check for
// it with errors.Is without reaching into an internal package.
var ErrMalformedFrame = packet.ErrMalformedFrame

// HandlerError wraps a panic or error raised by a built-in or user handler.
// Logged with its cause; never propagated to the loop, never aborts the
// session (§7).
type HandlerError struct {
	Packet packet.ServerPacket
	cause  error
}

func newHandlerError(p packet.ServerPacket, cause error) *HandlerError {
	return &HandlerError{Packet: p, cause: errors.WithMessagef(cause, "handler for packet %d", p)}
}

func (e *HandlerError) Error() string { return e.cause.Error() }
func (e *HandlerError) Unwrap() error { return e.cause }

// FatalError terminates the session with retry=false. Session.Login returns
// one when the server's login response carries no LoginReply.
type FatalError struct {
	Reason string
}

func (e *FatalError) Error() string { return "fatal: " + e.Reason }
