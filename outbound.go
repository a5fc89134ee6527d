package bancho

import (
	"sync"

	"github.com/valyala/bytebufferpool"

	"bancho/internal/packet"
	"bancho/internal/streams"
)

// outboundQueue is a thread-safe FIFO of already-framed byte buffers
// (§4.6). Frames are pooled via bytebufferpool, generalizing the teacher's
// sync.Pool-backed datagram reuse (see SPEC_FULL.md's DOMAIN STACK entry
// for bytebufferpool) to a variable-length, queue-shaped workload.
type outboundQueue struct {
	mu    sync.Mutex
	items []*bytebufferpool.ByteBuffer
}

func newOutboundQueue() *outboundQueue {
	return &outboundQueue{}
}

// enqueue serializes header+payload and appends it to the queue. Safe to
// call from any goroutine.
func (q *outboundQueue) enqueue(id packet.ClientPacket, payload []byte) {
	buf := bytebufferpool.Get()
	buf.Write(packet.Encode(uint16(id), payload))

	q.mu.Lock()
	q.items = append(q.items, buf)
	q.mu.Unlock()
}

// drain removes and returns every queued frame, concatenated, releasing
// each buffer back to the pool. Returns nil if the queue was empty.
func (q *outboundQueue) drain() []byte {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()

	if len(items) == 0 {
		return nil
	}
	var out []byte
	for _, buf := range items {
		out = append(out, buf.B...)
		bytebufferpool.Put(buf)
	}
	return out
}

func (q *outboundQueue) empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0
}

// --- outbound operations (§4.9) ---

func encodePing() []byte {
	return packet.Encode(uint16(packet.Ping), nil)
}

// Ping sends an empty PING packet.
func (s *Session) Ping() {
	s.outbound.enqueue(packet.Ping, nil)
}

// Logout sends LOGOUT (payload is four zero bytes, historically reserved).
func (s *Session) Logout() {
	s.outbound.enqueue(packet.Logout, []byte{0, 0, 0, 0})
}

// RequestPresence asks the server for presence info on the given ids.
func (s *Session) RequestPresence(ids []int32) {
	s.outbound.enqueue(packet.UserPresenceRequest, encodeIntList(ids))
}

// RequestStats asks the server for stats on the given ids.
func (s *Session) RequestStats(ids []int32) {
	s.outbound.enqueue(packet.UserStatsRequest, encodeIntList(ids))
}

// RequestStatus asks the server to resend this client's own stats.
func (s *Session) RequestStatus() {
	s.outbound.enqueue(packet.RequestStatusUpdate, nil)
}

// UpdateStatus sends the given status block as CHANGE_ACTION and stores it
// as this client's current status.
func (s *Session) UpdateStatus(status Status) {
	s.self.mu.Lock()
	s.self.Status = status
	s.self.mu.Unlock()
	s.outbound.enqueue(packet.ChangeAction, encodeStatus(status))
}

// StartSpectating begins spectating target: sends START_SPECTATING, then
// mirrors target's status locally as Watching and republishes it.
func (s *Session) StartSpectating(target *Player) {
	s.outbound.enqueue(packet.StartSpectating, s32LE(target.ID))

	s.spectatingMu.Lock()
	s.spectatingTarget = target
	s.spectatingMu.Unlock()

	target.mu.Lock()
	watching := target.Status
	target.mu.Unlock()
	watching.Action = packet.Watching
	s.UpdateStatus(watching)
}

// StopSpectating ends spectating and resets this client's status to idle.
func (s *Session) StopSpectating() {
	s.outbound.enqueue(packet.StopSpectating, nil)

	s.spectatingMu.Lock()
	s.spectatingTarget = nil
	s.spectatingMu.Unlock()

	s.UpdateStatus(NewStatus())
}

// CantSpectate tells the server this client cannot render the spectated map.
func (s *Session) CantSpectate() {
	s.outbound.enqueue(packet.CantSpectate, nil)
}

// SendFrames replays frames to spectators. extra is the spectated target's
// id while spectating, else the replay seed.
func (s *Session) SendFrames(action packet.ReplayAction, frames []ReplayFrame, score *ScoreFrame, seed int32) {
	extra := seed
	if t := s.SpectatingTarget(); t != nil {
		extra = t.ID
	}

	out := streams.NewOut()
	out.S32(extra)
	out.U16(uint16(len(frames)))
	for _, f := range frames {
		f.Encode(out)
	}
	out.U8(uint8(action))
	if score != nil {
		score.Encode(out)
	}
	s.outbound.enqueue(packet.SpectateFrames, out.Bytes())
}

// JoinChannel sends CHANNEL_JOIN for name.
func (s *Session) JoinChannel(name string) {
	s.outbound.enqueue(packet.ChannelJoin, encodeString(name))
}

// LeaveChannel sends CHANNEL_PART for name.
func (s *Session) LeaveChannel(name string) {
	s.outbound.enqueue(packet.ChannelPart, encodeString(name))
}

// SendPublicMessage sends text to a "#"-prefixed channel.
func (s *Session) SendPublicMessage(text, channel string) {
	s.outbound.enqueue(packet.SendPublicMessage, encodeChatPayload(s.self.Name, text, channel, s.self.ID))
}

// SendPrivateMessage sends text directly to a username.
func (s *Session) SendPrivateMessage(text, username string) {
	s.outbound.enqueue(packet.SendPrivateMessage, encodeChatPayload(s.self.Name, text, username, s.self.ID))
}

// AddFriend adds id to the friends set and notifies the server.
func (s *Session) AddFriend(id int32) {
	s.friendsMu.Lock()
	s.friends[id] = struct{}{}
	s.friendsMu.Unlock()
	s.outbound.enqueue(packet.FriendAdd, s32LE(id))
}

// RemoveFriend removes id from the friends set and notifies the server.
func (s *Session) RemoveFriend(id int32) {
	s.friendsMu.Lock()
	delete(s.friends, id)
	s.friendsMu.Unlock()
	s.outbound.enqueue(packet.FriendRemove, s32LE(id))
}

// JoinLobby sends JOIN_LOBBY and marks in_lobby true.
func (s *Session) JoinLobby() {
	s.outbound.enqueue(packet.JoinLobby, nil)
	s.setInLobby(true)
}

// LeaveLobby sends PART_LOBBY and marks in_lobby false. The historical
// client left in_lobby true here by mistake (SPEC_FULL.md §9); this sets
// it false, matching PART's meaning.
func (s *Session) LeaveLobby() {
	s.outbound.enqueue(packet.PartLobby, nil)
	s.setInLobby(false)
}

// CreateMatch sends CREATE_MATCH with the encoded match.
func (s *Session) CreateMatch(m *Match) {
	s.outbound.enqueue(packet.CreateMatch, m.Encode())
}

func encodeIntList(ids []int32) []byte {
	out := streams.NewOut()
	out.IntList(ids)
	return out.Bytes()
}

func encodeString(v string) []byte {
	out := streams.NewOut()
	out.String(v)
	return out.Bytes()
}

func encodeStatus(status Status) []byte {
	out := streams.NewOut()
	out.U8(uint8(status.Action))
	out.String(status.Text)
	out.String(status.Checksum)
	out.U32(uint32(status.Mods))
	out.U8(uint8(status.Mode))
	out.S32(status.BeatmapID)
	return out.Bytes()
}

func s32LE(v int32) []byte {
	u := uint32(v)
	return []byte{byte(u), byte(u >> 8), byte(u >> 16), byte(u >> 24)}
}
