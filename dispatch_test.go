package bancho

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"bancho/internal/packet"
	"bancho/internal/streams"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func TestPacketRegistryDispatchOrder(t *testing.T) {
	r := NewPacketRegistry()
	session := &Session{log: testLogger()}

	var mu sync.Mutex
	var order []int
	r.Register(packet.SendMessage, func(s *Session, in *streams.In) error {
		mu.Lock()
		order = append(order, 1)
		mu.Unlock()
		return nil
	})
	r.Register(packet.SendMessage, func(s *Session, in *streams.In) error {
		mu.Lock()
		order = append(order, 2)
		mu.Unlock()
		return nil
	})

	r.Dispatch(session, packet.SendMessage, streams.NewIn(nil))

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("expected handlers called in registration order, got %v", order)
	}
}

func TestPacketRegistryDispatchUnknownKind(t *testing.T) {
	r := NewPacketRegistry()
	session := &Session{log: testLogger()}

	// Must not panic even with no handlers registered for this kind.
	r.Dispatch(session, packet.Pong, streams.NewIn(nil))
}

func TestPacketRegistryRecoversPanickingHandler(t *testing.T) {
	r := NewPacketRegistry()
	session := &Session{log: testLogger()}

	ran := false
	r.Register(packet.SendMessage, func(s *Session, in *streams.In) error {
		panic("boom")
	})
	r.Register(packet.SendMessage, func(s *Session, in *streams.In) error {
		ran = true
		return nil
	})

	r.Dispatch(session, packet.SendMessage, streams.NewIn(nil))

	if !ran {
		t.Error("expected the second handler to still run after the first panicked")
	}
}

func TestEventRegistryFireSyncAndThreaded(t *testing.T) {
	pool := newWorkerPool(2, testLogger())
	defer pool.Close()
	r := newEventRegistryWithPool(pool, testLogger())

	var mu sync.Mutex
	syncCalled := false
	r.On(packet.SendMessage, func(args ...any) {
		mu.Lock()
		syncCalled = true
		mu.Unlock()
	})

	done := make(chan struct{})
	r.OnThreaded(packet.SendMessage, func(args ...any) {
		close(done)
	})

	r.Fire(packet.SendMessage, "hello")

	mu.Lock()
	if !syncCalled {
		t.Error("expected non-threaded callback to run synchronously within Fire")
	}
	mu.Unlock()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected threaded callback to run on the worker pool")
	}
}

func TestEventRegistryRecoversPanickingCallback(t *testing.T) {
	pool := newWorkerPool(1, testLogger())
	defer pool.Close()
	r := newEventRegistryWithPool(pool, testLogger())

	ranAfter := false
	r.On(packet.SendMessage, func(args ...any) {
		panic("boom")
	})
	r.On(packet.SendMessage, func(args ...any) {
		ranAfter = true
	})

	r.Fire(packet.SendMessage)

	if !ranAfter {
		t.Error("expected the second callback to still run after the first panicked")
	}
}
