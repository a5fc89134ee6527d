package bancho

import (
	"context"
	"testing"
	"time"
)

func TestPasswordMD5(t *testing.T) {
	// md5("hunter2") is a fixed, well-known digest.
	got := passwordMD5("hunter2")
	want := "2ab96390c7dbe3439de74d0c9b0b1767"
	if got != want {
		t.Errorf("passwordMD5(%q) = %q, want %q", "hunter2", got, want)
	}
	if len(got) != 32 {
		t.Errorf("expected a 32-char lowercase hex digest, got %d chars", len(got))
	}
}

func TestPasswordMD5Deterministic(t *testing.T) {
	if passwordMD5("same") != passwordMD5("same") {
		t.Error("expected passwordMD5 to be deterministic for the same input")
	}
	if passwordMD5("a") == passwordMD5("b") {
		t.Error("expected different passwords to hash differently")
	}
}

func TestSleepOrDoneReturnsTrueOnElapsed(t *testing.T) {
	ctx := context.Background()
	if !sleepOrDone(ctx, time.Millisecond) {
		t.Error("expected sleepOrDone to return true when the duration elapses")
	}
}

func TestSleepOrDoneReturnsFalseOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if sleepOrDone(ctx, time.Hour) {
		t.Error("expected sleepOrDone to return false when the context is already done")
	}
}
