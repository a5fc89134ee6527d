package bancho

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"bancho/internal/packet"
	"bancho/internal/streams"
)

// Handler is a built-in packet handler: it reads the decoded payload and
// may read/mutate any session-owned state (§4.7, §9 "Dynamic dispatch").
type Handler func(session *Session, in *streams.In) error

// EventCallback is a user-registered callback fired after built-in handlers
// run for a given packet kind. args mirrors whatever the built-in handler
// decoded (see handlers.go for the exact argument shape).
type EventCallback func(args ...any)

// defaultWorkers is the bounded pool size for threaded event/task
// callbacks (§5: "a bounded worker pool (default 10 workers)").
const defaultWorkers = 10

// workerPool runs submitted functions on a fixed number of goroutines. No
// third-party worker-pool library appears anywhere in the retrieved pack;
// this is the stdlib (sync + channel) rendition of the spec's "bounded
// worker pool" — see DESIGN.md.
type workerPool struct {
	tasks chan func()
	wg    sync.WaitGroup
	log   *zap.SugaredLogger
}

func newWorkerPool(n int, log *zap.SugaredLogger) *workerPool {
	p := &workerPool{tasks: make(chan func(), n*4), log: log}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *workerPool) worker() {
	defer p.wg.Done()
	for fn := range p.tasks {
		p.runSafely(fn)
	}
}

func (p *workerPool) runSafely(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorw("threaded callback panicked", "panic", r)
		}
	}()
	fn()
}

// Submit enqueues fn to run on the pool. Failures (panics) are logged and
// never propagated (§4.7).
func (p *workerPool) Submit(fn func()) {
	p.tasks <- fn
}

// Close stops accepting new work and waits for in-flight tasks to finish.
func (p *workerPool) Close() {
	close(p.tasks)
	p.wg.Wait()
}

// PacketRegistry maps a packet kind to its ordered list of built-in
// handlers. Built-in handlers are registered once, at construction, in the
// order described by §4.8; there is no per-kind inheritance, just a plain
// list walked in registration order (§9 "Dynamic dispatch").
type PacketRegistry struct {
	mu       sync.Mutex
	handlers map[packet.ServerPacket][]Handler
}

// NewPacketRegistry returns an empty registry.
func NewPacketRegistry() *PacketRegistry {
	return &PacketRegistry{handlers: make(map[packet.ServerPacket][]Handler)}
}

// Register appends h to the handler list for kind.
func (r *PacketRegistry) Register(kind packet.ServerPacket, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = append(r.handlers[kind], h)
}

// Dispatch invokes every handler registered for kind, in order, catching and
// logging (not propagating) any error from an individual handler, matching
// packet_received in the historical dispatcher.
func (r *PacketRegistry) Dispatch(session *Session, kind packet.ServerPacket, in *streams.In) {
	r.mu.Lock()
	handlers := append([]Handler(nil), r.handlers[kind]...)
	r.mu.Unlock()

	if len(handlers) == 0 {
		session.log.Warnw("no handler registered for packet", "packet", kind)
		return
	}

	for _, h := range handlers {
		if err := callHandlerSafely(h, session, in); err != nil {
			session.log.Errorw("handler failed", "packet", kind, "error", newHandlerError(kind, err))
		}
	}
}

func callHandlerSafely(h Handler, session *Session, in *streams.In) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()
	return h(session, in)
}

// EventRegistry maps a packet kind to the user-registered callbacks fired
// after built-in handlers run. Each callback may optionally run "threaded"
// on the shared worker pool; failures there are logged and never
// propagated (§4.7).
type EventRegistry struct {
	mu        sync.Mutex
	callbacks map[packet.ServerPacket][]eventEntry
	pool      *workerPool
	log       *zap.SugaredLogger
}

type eventEntry struct {
	fn       EventCallback
	threaded bool
}

// NewEventRegistry returns an empty registry backed by a pool of
// defaultWorkers goroutines.
func NewEventRegistry(log *zap.SugaredLogger) *EventRegistry {
	return newEventRegistryWithPool(newWorkerPool(defaultWorkers, log), log)
}

// newEventRegistryWithPool builds a registry sharing an existing pool, so a
// Session's task manager and event registry draw from one worker budget.
func newEventRegistryWithPool(pool *workerPool, log *zap.SugaredLogger) *EventRegistry {
	return &EventRegistry{
		callbacks: make(map[packet.ServerPacket][]eventEntry),
		pool:      pool,
		log:       log,
	}
}

// On registers a non-threaded user callback for kind.
func (r *EventRegistry) On(kind packet.ServerPacket, fn EventCallback) {
	r.register(kind, fn, false)
}

// OnThreaded registers a user callback for kind that runs on the worker pool.
func (r *EventRegistry) OnThreaded(kind packet.ServerPacket, fn EventCallback) {
	r.register(kind, fn, true)
}

func (r *EventRegistry) register(kind packet.ServerPacket, fn EventCallback, threaded bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks[kind] = append(r.callbacks[kind], eventEntry{fn: fn, threaded: threaded})
}

// Fire invokes every callback registered for kind with args, synchronously
// for non-threaded callbacks (in registration order, relative to the
// driver) and via the worker pool for threaded ones (no ordering guarantee
// among those) — §5.
func (r *EventRegistry) Fire(kind packet.ServerPacket, args ...any) {
	r.mu.Lock()
	entries := append([]eventEntry(nil), r.callbacks[kind]...)
	r.mu.Unlock()

	for _, e := range entries {
		if e.threaded {
			fn := e.fn
			r.pool.Submit(func() { fn(args...) })
			continue
		}
		r.invokeSafely(e.fn, args)
	}
}

func (r *EventRegistry) invokeSafely(fn EventCallback, args []any) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Errorw("event callback panicked", "panic", rec)
		}
	}()
	fn(args...)
}

// Close shuts down the backing worker pool.
func (r *EventRegistry) Close() { r.pool.Close() }
