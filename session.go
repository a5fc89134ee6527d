package bancho

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bancho/internal/packet"
	"bancho/internal/streams"
)

// Session owns every piece of state the driver loop touches: the
// transport, the outbound queue, the known players/channels, and the
// adaptive pacing bookkeeping (§4.5, §5).
type Session struct {
	// id correlates this session's log lines across a reconnect sequence,
	// the way server/api.go tags each request with a fresh uuid.
	id       uuid.UUID
	log      *zap.SugaredLogger
	packets  *PacketRegistry
	events   *EventRegistry
	tasks    *TaskManager
	outbound *outboundQueue

	Players  *Players
	Channels *Channels

	transport  Transport
	isTCP      bool
	Tournament bool

	chatLoggingDisabled bool

	token string
	self  *Player

	friendsMu sync.Mutex
	friends   map[int32]struct{}

	spectatingMu     sync.Mutex
	spectatingTarget *Player

	privilegesMu sync.Mutex
	privileges   packet.Privileges

	lobbyMu sync.Mutex
	inLobby bool

	fastRead  atomicBool
	pingCount int
	lastCycle time.Time

	minIdle time.Duration
	maxIdle time.Duration

	connected atomicBool
	retry     atomicBool
}

// atomicBool is a tiny mutex-guarded bool used for the handful of flags
// that may be read from a handler (driver goroutine) and written from a
// user callback running on the worker pool, or vice versa.
type atomicBool struct {
	mu sync.Mutex
	v  bool
}

func (b *atomicBool) set(v bool) { b.mu.Lock(); b.v = v; b.mu.Unlock() }
func (b *atomicBool) get() bool  { b.mu.Lock(); defer b.mu.Unlock(); return b.v }

// NewSession builds a Session around transport. minIdle/maxIdle default to
// 1s/4s per §4.5 when zero.
func NewSession(transport Transport, isTCP bool, log *zap.SugaredLogger, minIdle, maxIdle time.Duration) *Session {
	if minIdle == 0 {
		minIdle = time.Second
	}
	if maxIdle == 0 {
		maxIdle = 4 * time.Second
	}

	id := uuid.New()
	log = log.With("session_id", id.String())

	pool := newWorkerPool(defaultWorkers, log)
	s := &Session{
		id:       id,
		log:      log,
		packets:  NewPacketRegistry(),
		tasks:    NewTaskManager(pool, log),
		outbound: newOutboundQueue(),
		Players:  NewPlayers(),
		Channels: NewChannels(),
		transport: transport,
		isTCP:    isTCP,
		friends:  make(map[int32]struct{}),
		minIdle:  minIdle,
		maxIdle:  maxIdle,
	}
	s.events = newEventRegistryWithPool(pool, log)
	registerBuiltinHandlers(s.packets)
	return s
}

// SpectatingTarget returns the currently spectated player, or nil.
func (s *Session) SpectatingTarget() *Player {
	s.spectatingMu.Lock()
	defer s.spectatingMu.Unlock()
	return s.spectatingTarget
}

func (s *Session) setInLobby(v bool) {
	s.lobbyMu.Lock()
	s.inLobby = v
	s.lobbyMu.Unlock()
}

// InLobby reports whether JoinLobby has been called without a matching
// LeaveLobby since.
func (s *Session) InLobby() bool {
	s.lobbyMu.Lock()
	defer s.lobbyMu.Unlock()
	return s.inLobby
}

// On registers a non-threaded user callback for a server packet kind.
func (s *Session) On(kind packet.ServerPacket, fn EventCallback) { s.events.On(kind, fn) }

// OnThreaded registers a threaded user callback for a server packet kind.
func (s *Session) OnThreaded(kind packet.ServerPacket, fn EventCallback) { s.events.OnThreaded(kind, fn) }

// Login performs the handshake and stores the resulting session token and
// own player, per §4.8's LoginReply handling.
func (s *Session) Login(ctx context.Context, req LoginRequest) error {
	token, body, err := s.transport.Login(ctx, req)
	if err != nil {
		return err
	}
	if token != "" {
		s.token = token
	}

	frames, err := packet.DecodeStream(body, s.isTCP)
	if err != nil {
		return err
	}

	for _, f := range frames {
		in := streams.NewIn(f.Payload)
		kind := packet.ServerPacket(f.ID)
		if kind == packet.UserID {
			if err := s.handleLoginReply(in, req); err != nil {
				return err
			}
			continue
		}
		s.packets.Dispatch(s, kind, in)
	}

	if s.self == nil {
		return &FatalError{Reason: "server accepted login but never sent LoginReply"}
	}
	s.connected.set(true)
	return nil
}

// Run drives the session loop until disconnection (§4/§5). onInterrupt, if
// non-nil, is polled once per cycle; when it returns true the driver
// enqueues LOGOUT, performs one final cycle, and returns with retry=false.
func (s *Session) Run(ctx context.Context, onInterrupt func() bool) (retry bool, err error) {
	defer s.events.Close()

	for {
		if onInterrupt != nil && onInterrupt() {
			s.Logout()
			s.cycle(ctx)
			return false, nil
		}

		if !s.isTCP {
			wait := s.pacingInterval()
			if wait > 0 {
				select {
				case <-ctx.Done():
					return false, ctx.Err()
				case <-time.After(wait):
				}
			}
		}

		if err := s.cycle(ctx); err != nil {
			s.connected.set(false)
			if fatal, ok := err.(*FatalError); ok {
				return false, fatal
			}
			if le, ok := err.(*LoginError); ok {
				return le.Retryable(), le
			}
			return true, err
		}

		s.tasks.Execute()

		if !s.connected.get() {
			return s.retry.get(), nil
		}
	}
}

// cycle performs exactly one send/receive round: flush the outbound
// queue (or nothing, on TCP, if empty — §4.4 forbids TCP batching of a
// synthetic ping), decode the response, and dispatch every frame.
func (s *Session) cycle(ctx context.Context) error {
	outbound := s.outbound.drain()

	hadRealPackets := len(outbound) > 0
	if hadRealPackets {
		s.pingCount = 0
	} else {
		s.pingCount++
	}

	body, err := s.transport.Cycle(ctx, outbound)
	if err != nil {
		return newTransportError(err, "cycle")
	}
	if len(body) > 0 {
		s.log.Debugw("received cycle response", "size", humanize.Bytes(uint64(len(body))))
	}

	frames, err := packet.DecodeStream(body, s.isTCP)
	if err != nil {
		return err
	}

	if len(frames) > 0 {
		s.fastRead.set(true)
	} else {
		s.fastRead.set(false)
	}
	if hadRealPackets {
		s.lastCycle = time.Now()
	}

	for _, f := range frames {
		in := streams.NewIn(f.Payload)
		s.packets.Dispatch(s, packet.ServerPacket(f.ID), in)
	}
	return nil
}

// pacingInterval computes the HTTP polling delay per §4.5.
func (s *Session) pacingInterval() time.Duration {
	if s.fastRead.get() {
		s.fastRead.set(false)
		return 0
	}

	base := 1.0
	if s.Tournament {
		return time.Second
	}

	if s.SpectatingTarget() == nil {
		idle := time.Since(s.lastCycle).Seconds()
		if s.lastCycle.IsZero() {
			idle = 0
		}
		base *= (1 + idle/10) * (1 + float64(s.pingCount))
	}

	seconds := math.Max(s.minIdle.Seconds(), math.Min(s.maxIdle.Seconds(), base))
	return time.Duration(seconds * float64(time.Second))
}
