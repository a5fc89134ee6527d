package bancho

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// TaskFunc is a scheduled callback. It receives no packet context — tasks
// are time-driven, not packet-driven (unlike Handler/EventCallback).
type TaskFunc func()

// task is one registered recurring or one-shot callback (§4.6 "Task
// manager").
type task struct {
	fn       TaskFunc
	interval time.Duration
	loop     bool
	threaded bool
	lastRun  time.Time
}

// TaskManager runs interval-based callbacks from the session's cooperative
// driver loop. One-shot tasks are removed from the registry before they
// execute, not after, so a task that panics or blocks forever cannot be
// invoked twice and cannot wedge removal.
type TaskManager struct {
	mu    sync.Mutex
	tasks []*task
	pool  *workerPool
	log   *zap.SugaredLogger
}

// NewTaskManager returns an empty manager backed by the given pool, shared
// with EventRegistry so threaded tasks and threaded event callbacks draw
// from the same bounded worker budget (§5).
func NewTaskManager(pool *workerPool, log *zap.SugaredLogger) *TaskManager {
	return &TaskManager{pool: pool, log: log}
}

// Register schedules fn to run every interval. If loop is false, fn runs
// once, on the first Execute call at or after interval has elapsed, then is
// removed. If threaded is true, fn is submitted to the worker pool instead
// of running inline on the driver.
func (m *TaskManager) Register(fn TaskFunc, interval time.Duration, loop, threaded bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, &task{fn: fn, interval: interval, loop: loop, threaded: threaded, lastRun: time.Now()})
}

// Execute runs every task whose interval has elapsed since its last run.
// Called once per driver cycle (§4.5). Errors are never returned — a
// panicking task is caught and logged, matching the historical task
// runner's try/except around each callback.
func (m *TaskManager) Execute() {
	now := time.Now()

	m.mu.Lock()
	var due []*task
	remaining := m.tasks[:0]
	for _, t := range m.tasks {
		if now.Sub(t.lastRun) < t.interval {
			remaining = append(remaining, t)
			continue
		}
		due = append(due, t)
		if t.loop {
			t.lastRun = now
			remaining = append(remaining, t)
		}
		// One-shot tasks are dropped from the registry here, before
		// execution below.
	}
	m.tasks = remaining
	m.mu.Unlock()

	for _, t := range due {
		if t.threaded {
			fn := t.fn
			m.pool.Submit(fn)
			continue
		}
		m.runSafely(t.fn)
	}
}

func (m *TaskManager) runSafely(fn TaskFunc) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Errorw("task panicked", "panic", r)
		}
	}()
	fn()
}
