package bancho

import (
	"testing"

	"bancho/internal/packet"
)

func TestOutboundQueueEnqueueDrain(t *testing.T) {
	q := newOutboundQueue()
	if !q.empty() {
		t.Fatal("expected new queue to be empty")
	}

	q.enqueue(packet.Ping, nil)
	q.enqueue(packet.Logout, []byte{0, 0, 0, 0})

	if q.empty() {
		t.Fatal("expected queue to be non-empty after enqueue")
	}

	drained := q.drain()
	if len(drained) == 0 {
		t.Fatal("expected drain to return bytes")
	}
	if !q.empty() {
		t.Error("expected queue to be empty again after drain")
	}

	frames, err := packet.DecodeStream(drained, false)
	if err != nil {
		t.Fatalf("DecodeStream: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[0].ID != uint16(packet.Ping) {
		t.Errorf("expected first frame Ping, got %d", frames[0].ID)
	}
	if frames[1].ID != uint16(packet.Logout) {
		t.Errorf("expected second frame Logout, got %d", frames[1].ID)
	}
}

func TestOutboundQueueDrainEmptyReturnsNil(t *testing.T) {
	q := newOutboundQueue()
	if got := q.drain(); got != nil {
		t.Errorf("expected nil from draining an empty queue, got %v", got)
	}
}

func TestSessionJoinLeaveLobbyTracksState(t *testing.T) {
	s := &Session{log: testLogger(), outbound: newOutboundQueue()}

	s.JoinLobby()
	if !s.InLobby() {
		t.Fatal("expected InLobby true after JoinLobby")
	}

	// Regression: LeaveLobby must clear in_lobby, unlike the historical
	// client which left it true by mistake.
	s.LeaveLobby()
	if s.InLobby() {
		t.Error("expected InLobby false after LeaveLobby")
	}
}

func TestSessionFriendsAddRemove(t *testing.T) {
	s := &Session{
		log:      testLogger(),
		outbound: newOutboundQueue(),
		friends:  make(map[int32]struct{}),
	}

	s.AddFriend(42)
	s.friendsMu.Lock()
	_, ok := s.friends[42]
	s.friendsMu.Unlock()
	if !ok {
		t.Fatal("expected friend 42 to be tracked")
	}

	s.RemoveFriend(42)
	s.friendsMu.Lock()
	_, ok = s.friends[42]
	s.friendsMu.Unlock()
	if ok {
		t.Error("expected friend 42 to be removed")
	}
}

func TestSessionUpdateStatusStoresOnSelf(t *testing.T) {
	self := NewPlayer(1, "me")
	s := &Session{log: testLogger(), outbound: newOutboundQueue(), self: self}

	status := NewStatus()
	status.Action = packet.Playing
	status.Text = "a beatmap"
	s.UpdateStatus(status)

	self.mu.Lock()
	got := self.Status
	self.mu.Unlock()

	if got.Action != packet.Playing || got.Text != "a beatmap" {
		t.Errorf("expected status stored on self, got %+v", got)
	}
}

func TestSessionSpectatingLifecycle(t *testing.T) {
	self := NewPlayer(1, "me")
	s := &Session{log: testLogger(), outbound: newOutboundQueue(), self: self}
	target := NewPlayer(2, "target")

	s.StartSpectating(target)
	if got := s.SpectatingTarget(); got != target {
		t.Fatalf("expected spectating target set, got %v", got)
	}

	s.StopSpectating()
	if got := s.SpectatingTarget(); got != nil {
		t.Errorf("expected spectating target cleared, got %v", got)
	}
}
