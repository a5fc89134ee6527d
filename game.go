package bancho

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	"bancho/internal/packet"
)

// GameOptions configures a Game before it runs (§6).
type GameOptions struct {
	Username    string
	Password    string
	Server      string
	Stream      string
	Version     string
	Tournament  bool
	UseTCP      bool
	TCPAddr     string
	TCPPort     int
	DisableChatLogging bool
	Fingerprint Fingerprint
	MinIdle     time.Duration
	MaxIdle     time.Duration
}

// Game is the top-level facade: it builds the transport, the web-api
// probe, and a Session, then drives the retry loop described in §5's
// "Cancellation and timeout" — a non-recoverable transport failure sleeps
// 15s and reinitializes every component with the same options.
type Game struct {
	opts GameOptions
	log  *zap.SugaredLogger
	web  *webAPI
}

// NewGame constructs a facade around opts.
func NewGame(opts GameOptions, log *zap.SugaredLogger) *Game {
	return &Game{opts: opts, log: log, web: newWebAPI(opts.Server)}
}

// passwordMD5 returns the lowercase-hex MD5 of the password, the wire
// format the login payload requires (§6) — stdlib crypto/md5 is the right
// tool here since the protocol mandates this exact, non-negotiable digest,
// not a choice of hashing scheme a library would abstract over.
func passwordMD5(password string) string {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

// buildTransport constructs the HTTP or TCP transport per opts.
func (g *Game) buildTransport() Transport {
	if g.opts.UseTCP {
		return NewTCPTransport(g.opts.TCPAddr, g.opts.TCPPort)
	}
	return NewHTTPTransport(g.opts.Server)
}

// Run logs in and drives the session until a non-retryable termination,
// reinitializing every component after each recoverable failure. onInterrupt
// is polled once per driver cycle to support graceful shutdown (e.g. on
// SIGINT).
func (g *Game) Run(ctx context.Context, onInterrupt func() bool) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if _, err := g.web.FetchVersion(ctx, g.opts.Stream); err != nil {
			g.log.Warnw("pre-login version probe failed, continuing anyway", "error", err)
		}

		transport := g.buildTransport()
		session := NewSession(transport, g.opts.UseTCP, g.log, g.opts.MinIdle, g.opts.MaxIdle)
		session.Tournament = g.opts.Tournament
		session.chatLoggingDisabled = g.opts.DisableChatLogging

		req := LoginRequest{
			Username:    g.opts.Username,
			PasswordMD5: passwordMD5(g.opts.Password),
			Fingerprint: string(g.opts.Fingerprint),
		}

		if err := session.Login(ctx, req); err != nil {
			_ = transport.Close()
			if le, ok := err.(*LoginError); ok && !le.Retryable() {
				return le
			}
			if fe, ok := err.(*FatalError); ok {
				return fe
			}
			g.log.Errorw("login failed, retrying after 15s", "error", err)
			if !sleepOrDone(ctx, 15*time.Second) {
				return ctx.Err()
			}
			continue
		}

		retry, err := session.Run(ctx, onInterrupt)
		_ = transport.Close()

		if err != nil {
			g.log.Errorw("session ended with error", "error", err)
		}
		if !retry {
			return err
		}

		g.log.Infow("reinitializing after disconnect", "wait", "15s")
		if !sleepOrDone(ctx, 15*time.Second) {
			return ctx.Err()
		}
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// PresenceFilter is re-exported for facade callers that need to pick a
// friends-only or all-players presence filter (§4.9).
type PresenceFilter = packet.PresenceFilter
