package bancho

import (
	"testing"
	"time"
)

func newTestSession() *Session {
	return &Session{
		log:      testLogger(),
		minIdle:  time.Second,
		maxIdle:  4 * time.Second,
		outbound: newOutboundQueue(),
	}
}

func TestPacingIntervalFastReadShortCircuits(t *testing.T) {
	s := newTestSession()
	s.fastRead.set(true)

	if got := s.pacingInterval(); got != 0 {
		t.Errorf("expected fast_read to force a 0 interval, got %v", got)
	}
	if s.fastRead.get() {
		t.Error("expected fastRead to be cleared after consumption")
	}
}

func TestPacingIntervalTournamentAlwaysOneSecond(t *testing.T) {
	s := newTestSession()
	s.Tournament = true
	s.lastCycle = time.Now().Add(-time.Hour)

	if got := s.pacingInterval(); got != time.Second {
		t.Errorf("expected tournament pacing to be exactly 1s, got %v", got)
	}
}

func TestPacingIntervalClampsToMinIdle(t *testing.T) {
	s := newTestSession()
	s.lastCycle = time.Now()

	got := s.pacingInterval()
	if got < s.minIdle {
		t.Errorf("expected interval clamped to at least minIdle (%v), got %v", s.minIdle, got)
	}
}

func TestPacingIntervalClampsToMaxIdle(t *testing.T) {
	s := newTestSession()
	s.lastCycle = time.Now().Add(-10 * time.Hour)
	s.pingCount = 100

	got := s.pacingInterval()
	if got != s.maxIdle {
		t.Errorf("expected interval clamped to maxIdle (%v), got %v", s.maxIdle, got)
	}
}

func TestPacingIntervalSpectatingSkipsIdleScaling(t *testing.T) {
	s := newTestSession()
	s.lastCycle = time.Now().Add(-10 * time.Hour)
	s.pingCount = 100
	s.spectatingTarget = NewPlayer(2, "target")

	got := s.pacingInterval()
	if got != s.minIdle {
		t.Errorf("expected spectating to bypass idle/pingCount scaling, got %v", got)
	}
}

func TestAtomicBoolSetGet(t *testing.T) {
	var b atomicBool
	if b.get() {
		t.Fatal("expected zero-value atomicBool to be false")
	}
	b.set(true)
	if !b.get() {
		t.Error("expected atomicBool to report true after set")
	}
}
