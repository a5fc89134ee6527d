package bancho

import (
	"testing"
	"time"

	"bancho/internal/packet"
	"bancho/internal/streams"
)

func newHandlerTestSession() *Session {
	pool := newWorkerPool(2, testLogger())
	return &Session{
		log:      testLogger(),
		events:   newEventRegistryWithPool(pool, testLogger()),
		tasks:    NewTaskManager(pool, testLogger()),
		outbound: newOutboundQueue(),
		Players:  NewPlayers(),
		Channels: NewChannels(),
		friends:  make(map[int32]struct{}),
	}
}

func TestClampByte(t *testing.T) {
	if got := clampByte(0, 0, 3); got != 0 {
		t.Errorf("clampByte(0,0,3) = %d, want 0", got)
	}
	if got := clampByte(7, 0, 3); got != 3 {
		t.Errorf("clampByte(7,0,3) = %d, want 3", got)
	}
	if got := clampByte(2, 0, 3); got != 2 {
		t.Errorf("clampByte(2,0,3) = %d, want 2", got)
	}
}

func TestDecodeUserPresencePackedByte(t *testing.T) {
	out := streams.NewOut()
	out.S32(42)
	out.String("alice")
	out.S8(24) // timezone raw 24 -> 0 after -24
	out.U8(1)  // country code
	// packed byte: mode in top 3 bits, privileges in low 5 bits.
	// mode=2 (catch) -> 2<<5 = 0x40; privileges bits = 0x05
	out.U8(0x40 | 0x05)
	out.Float32(1.5)
	out.Float32(-2.5)
	out.S32(1000)

	id, name, tz, country, privileges, mode, lon, lat, rank, err := decodeUserPresence(streams.NewIn(out.Bytes()))
	if err != nil {
		t.Fatalf("decodeUserPresence: %v", err)
	}
	if id != 42 || name != "alice" {
		t.Errorf("unexpected id/name: %d %q", id, name)
	}
	if tz != 0 {
		t.Errorf("expected timezone 0 (24-24), got %d", tz)
	}
	if country != 1 {
		t.Errorf("expected country 1, got %d", country)
	}
	if mode != packet.ModeCatch {
		t.Errorf("expected mode Catch, got %v", mode)
	}
	if privileges != packet.Privileges(0x05) {
		t.Errorf("expected privileges 0x05, got %v", privileges)
	}
	if lon != 1.5 || lat != -2.5 {
		t.Errorf("unexpected lon/lat: %v %v", lon, lat)
	}
	if rank != 1000 {
		t.Errorf("expected rank 1000, got %d", rank)
	}
}

func TestHandleLoginReplySuccess(t *testing.T) {
	s := newHandlerTestSession()
	out := streams.NewOut()
	out.S32(7)

	if err := s.handleLoginReply(streams.NewIn(out.Bytes()), LoginRequest{Username: "alice"}); err != nil {
		t.Fatalf("handleLoginReply: %v", err)
	}
	if s.self == nil || s.self.ID != 7 || s.self.Name != "alice" {
		t.Fatalf("expected self player created, got %+v", s.self)
	}
	if !s.Players.Contains(7) {
		t.Error("expected self added to Players")
	}
	if !s.fastRead.get() {
		t.Error("expected fastRead set after successful login")
	}
}

func TestHandleLoginReplyFailure(t *testing.T) {
	s := newHandlerTestSession()
	out := streams.NewOut()
	out.S32(int32(packet.AuthenticationError))

	err := s.handleLoginReply(streams.NewIn(out.Bytes()), LoginRequest{Username: "alice"})
	if err == nil {
		t.Fatal("expected an error for a negative login code")
	}
	le, ok := err.(*LoginError)
	if !ok {
		t.Fatalf("expected *LoginError, got %T", err)
	}
	if le.Code != packet.AuthenticationError {
		t.Errorf("expected AuthenticationError code, got %v", le.Code)
	}
	if s.self != nil {
		t.Error("expected self to remain nil after a failed login")
	}
}

func TestHandleUserPresenceCreatesPlayer(t *testing.T) {
	s := newHandlerTestSession()
	out := streams.NewOut()
	out.S32(5)
	out.String("bob")
	out.S8(24)
	out.U8(2)
	out.U8(0x00)
	out.Float32(0)
	out.Float32(0)
	out.S32(500)

	if err := handleUserPresence(s, streams.NewIn(out.Bytes())); err != nil {
		t.Fatalf("handleUserPresence: %v", err)
	}
	p := s.Players.ByID(5)
	if p == nil || p.Name != "bob" {
		t.Fatalf("expected player 5 named bob, got %+v", p)
	}
}

func TestHandleFriendsListReplacesSet(t *testing.T) {
	s := newHandlerTestSession()
	s.friends[999] = struct{}{}

	out := streams.NewOut()
	out.IntList([]int32{1, 2, 3})

	if err := handleFriendsList(s, streams.NewIn(out.Bytes())); err != nil {
		t.Fatalf("handleFriendsList: %v", err)
	}
	if _, ok := s.friends[999]; ok {
		t.Error("expected stale friend removed")
	}
	for _, id := range []int32{1, 2, 3} {
		if _, ok := s.friends[id]; !ok {
			t.Errorf("expected friend %d present", id)
		}
	}
}

func TestHandleSilenceEndSchedulesUnsilence(t *testing.T) {
	s := newHandlerTestSession()
	s.self = NewPlayer(1, "me")

	out := streams.NewOut()
	out.S32(1) // 1 second remaining

	if err := handleSilenceEnd(s, streams.NewIn(out.Bytes())); err != nil {
		t.Fatalf("handleSilenceEnd: %v", err)
	}
	s.self.mu.Lock()
	silenced := s.self.Silenced
	s.self.mu.Unlock()
	if !silenced {
		t.Fatal("expected self silenced immediately")
	}

	// The fix (SPEC_FULL.md §9): the unsilence timer must actually be
	// scheduled and reachable via Execute, not merely constructed.
	time.Sleep(1100 * time.Millisecond)
	s.tasks.Execute()

	s.self.mu.Lock()
	silenced = s.self.Silenced
	s.self.mu.Unlock()
	if silenced {
		t.Error("expected unsilence task to have cleared Silenced")
	}
}

func TestHandleFellowSpectatorLeftFiresCorrectEvent(t *testing.T) {
	s := newHandlerTestSession()
	target := NewPlayer(2, "target")
	s.spectatingTarget = target

	var firedJoined, firedLeft bool
	s.events.On(packet.FellowSpectatorJoined, func(args ...any) { firedJoined = true })
	s.events.On(packet.FellowSpectatorLeft, func(args ...any) { firedLeft = true })

	out := streams.NewOut()
	out.S32(3)

	if err := handleFellowSpectatorLeft(s, streams.NewIn(out.Bytes())); err != nil {
		t.Fatalf("handleFellowSpectatorLeft: %v", err)
	}
	if firedJoined {
		t.Error("expected FellowSpectatorJoined NOT to fire on a left packet")
	}
	if !firedLeft {
		t.Error("expected FellowSpectatorLeft to fire")
	}
}

func TestHandleSendMessageRespectsChatLoggingFlag(t *testing.T) {
	s := newHandlerTestSession()
	s.self = NewPlayer(1, "me")
	s.chatLoggingDisabled = true

	out := streams.NewOut()
	out.String("bob")
	out.String("hello")
	out.String("#osu")
	out.S32(2)

	var gotText string
	s.events.On(packet.SendMessage, func(args ...any) {
		if len(args) >= 2 {
			if text, ok := args[1].(string); ok {
				gotText = text
			}
		}
	})

	if err := handleSendMessage(s, streams.NewIn(out.Bytes())); err != nil {
		t.Fatalf("handleSendMessage: %v", err)
	}
	if gotText != "hello" {
		t.Errorf("expected event still fired with text regardless of logging flag, got %q", gotText)
	}
}

func TestHandleChannelKickRemovesChannel(t *testing.T) {
	s := newHandlerTestSession()
	s.Channels.Add(NewChannel("#osu", ""))

	out := streams.NewOut()
	out.String("#osu")

	if err := handleChannelKick(s, streams.NewIn(out.Bytes())); err != nil {
		t.Fatalf("handleChannelKick: %v", err)
	}
	if s.Channels.Get("#osu") != nil {
		t.Error("expected #osu removed after kick")
	}
}

func TestHandleRestartSetsRetryAndDisconnects(t *testing.T) {
	s := newHandlerTestSession()
	out := streams.NewOut()
	out.S32(5000)

	if err := handleRestart(s, streams.NewIn(out.Bytes())); err != nil {
		t.Fatalf("handleRestart: %v", err)
	}
	if !s.retry.get() {
		t.Error("expected retry=true after Restart")
	}
	if s.connected.get() {
		t.Error("expected connected=false after Restart")
	}
}

func TestHandleAccountRestrictedSetsNoRetry(t *testing.T) {
	s := newHandlerTestSession()
	if err := handleAccountRestricted(s, streams.NewIn(nil)); err != nil {
		t.Fatalf("handleAccountRestricted: %v", err)
	}
	if s.retry.get() {
		t.Error("expected retry=false after AccountRestricted")
	}
	if s.connected.get() {
		t.Error("expected connected=false after AccountRestricted")
	}
}
