package bancho

import (
	"time"

	"bancho/internal/packet"
	"bancho/internal/streams"
)

// handleLoginReply decodes the s32 UserID/LoginReply payload during the
// login handshake only — it is never registered on the PacketRegistry
// since it needs the in-flight LoginRequest, unlike every other handler
// (§4.8).
func (s *Session) handleLoginReply(in *streams.In, req LoginRequest) error {
	code, err := in.S32()
	if err != nil {
		return err
	}

	if code < 0 {
		le := &LoginError{Code: packet.LoginCode(code)}
		if le.Code == packet.VerificationNeeded {
			s.log.Warnw("verification required", "message", le.Code.Description())
		}
		return le
	}

	s.self = NewPlayer(code, req.Username)
	s.Players.Add(s.self)
	s.fastRead.set(true)
	return nil
}

// registerBuiltinHandlers wires every built-in packet handler in the order
// §4.8 describes them. User callbacks (EventRegistry) always run after
// these, per §4.7/§5's ordering guarantee.
func registerBuiltinHandlers(r *PacketRegistry) {
	r.Register(packet.Pong, handlePong)

	r.Register(packet.Privileges, handlePrivileges)
	r.Register(packet.FriendsList, handleFriendsList)
	r.Register(packet.ProtocolVersion, handleInformational(packet.ProtocolVersion))
	r.Register(packet.MainMenuIcon, handleInformationalString(packet.MainMenuIcon))
	r.Register(packet.VersionUpdate, handleInformational(packet.VersionUpdate))
	r.Register(packet.VersionUpdateForced, handleInformational(packet.VersionUpdateForced))
	r.Register(packet.GetAttention, handleInformational(packet.GetAttention))
	r.Register(packet.Notification, handleInformationalString(packet.Notification))

	r.Register(packet.UserPresence, handleUserPresence)
	r.Register(packet.UserStats, handleUserStats)
	r.Register(packet.UserPresenceBundle, handleUserPresenceBundle)
	r.Register(packet.UserPresenceSingle, handleUserPresenceSingle)
	r.Register(packet.UserLogout, handleUserLogout)

	r.Register(packet.SendMessage, handleSendMessage)
	r.Register(packet.SilenceEnd, handleSilenceEnd)
	r.Register(packet.UserSilenced, handleFlagByID(func(p *Player) { p.Silenced = true }))
	r.Register(packet.TargetIsSilenced, handleFlagByID(func(p *Player) { p.Silenced = true }))
	r.Register(packet.UserDmBlocked, handleFlagByID(func(p *Player) { p.DmsBlocked = true }))

	r.Register(packet.SpectatorJoined, handleSpectatorJoined)
	r.Register(packet.SpectatorLeft, handleSpectatorLeft)
	r.Register(packet.FellowSpectatorJoined, handleFellowSpectatorJoined)
	r.Register(packet.FellowSpectatorLeft, handleFellowSpectatorLeft)
	r.Register(packet.SpectatorCantSpectate, handleSpectatorCantSpectate)
	r.Register(packet.SpectateFrames, handleSpectateFrames)

	r.Register(packet.ChannelInfo, handleChannelInfo)
	r.Register(packet.ChannelAutoJoin, handleChannelAutoJoin)
	r.Register(packet.ChannelJoinSuccess, handleChannelJoinSuccess)
	r.Register(packet.ChannelKick, handleChannelKick)
	r.Register(packet.ChannelInfoEnd, handleChannelInfoEnd)

	for _, kind := range matchPacketKinds {
		r.Register(kind, handleMatchPacket(kind))
	}

	r.Register(packet.Restart, handleRestart)
	r.Register(packet.AccountRestricted, handleAccountRestricted)
	r.Register(packet.SwitchServer, handleInformationalString(packet.SwitchServer))
	r.Register(packet.SwitchTournamentServer, handleInformationalString(packet.SwitchTournamentServer))
	r.Register(packet.BeatmapInfoReply, handleBeatmapInfoReply)
}

func handlePong(s *Session, in *streams.In) error {
	s.events.Fire(packet.Pong)
	return nil
}

func handlePrivileges(s *Session, in *streams.In) error {
	v, err := in.S32()
	if err != nil {
		return err
	}
	s.privilegesMu.Lock()
	s.privileges = packet.Privileges(v)
	s.privilegesMu.Unlock()
	s.events.Fire(packet.Privileges, s.privileges)
	return nil
}

func handleFriendsList(s *Session, in *streams.In) error {
	ids, err := in.IntList()
	if err != nil {
		return err
	}
	s.friendsMu.Lock()
	s.friends = make(map[int32]struct{}, len(ids))
	for _, id := range ids {
		s.friends[id] = struct{}{}
	}
	s.friendsMu.Unlock()
	s.events.Fire(packet.FriendsList, ids)
	return nil
}

// handleInformational reads nothing further (the packet carries no payload
// meaningful to the core, or its payload is opaque) and simply surfaces
// the event.
func handleInformational(kind packet.ServerPacket) Handler {
	return func(s *Session, in *streams.In) error {
		s.events.Fire(kind)
		return nil
	}
}

// handleInformationalString decodes a single trailing string payload and
// surfaces it to user events.
func handleInformationalString(kind packet.ServerPacket) Handler {
	return func(s *Session, in *streams.In) error {
		text, err := in.String()
		if err != nil {
			return err
		}
		s.events.Fire(kind, text)
		return nil
	}
}

func decodeUserPresence(in *streams.In) (id int32, name string, timezone int8, country uint8, privileges packet.Privileges, mode packet.Mode, longitude, latitude float32, rank int32, err error) {
	if id, err = in.S32(); err != nil {
		return
	}
	if name, err = in.String(); err != nil {
		return
	}
	var rawTZ int8
	if rawTZ, err = in.S8(); err != nil {
		return
	}
	timezone = rawTZ - 24
	if country, err = in.U8(); err != nil {
		return
	}
	var packed uint8
	if packed, err = in.U8(); err != nil {
		return
	}
	mode = packet.Mode(clampByte((packed&0xE0)>>5, 0, 3))
	privileges = packet.Privileges(packed &^ 0xE0)
	if longitude, err = in.Float32(); err != nil {
		return
	}
	if latitude, err = in.Float32(); err != nil {
		return
	}
	rank, err = in.S32()
	return
}

func clampByte(v, lo, hi uint8) uint8 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func handleUserPresence(s *Session, in *streams.In) error {
	id, name, timezone, country, privileges, mode, longitude, latitude, rank, err := decodeUserPresence(in)
	if err != nil {
		return err
	}

	p := s.Players.ByID(id)
	if p == nil {
		p = NewPlayer(id, name)
		s.Players.Add(p)
	}
	p.mu.Lock()
	p.Name = name
	p.Timezone = timezone
	p.CountryCode = country
	p.Privileges = privileges
	p.Status.Mode = mode
	p.Longitude = longitude
	p.Latitude = latitude
	p.Rank = rank
	p.mu.Unlock()

	s.fastRead.set(true)
	s.events.Fire(packet.UserPresence, p)
	return nil
}

func decodeStatusBlock(in *streams.In) (Status, error) {
	var status Status
	action, err := in.U8()
	if err != nil {
		return status, err
	}
	status.Action = packet.StatusAction(action)
	if status.Text, err = in.String(); err != nil {
		return status, err
	}
	if status.Checksum, err = in.String(); err != nil {
		return status, err
	}
	mods, err := in.U32()
	if err != nil {
		return status, err
	}
	status.Mods = packet.Mods(mods)
	mode, err := in.U8()
	if err != nil {
		return status, err
	}
	status.Mode = packet.Mode(mode)
	status.BeatmapID, err = in.S32()
	return status, err
}

func handleUserStats(s *Session, in *streams.In) error {
	id, err := in.S32()
	if err != nil {
		return err
	}
	status, err := decodeStatusBlock(in)
	if err != nil {
		return err
	}
	rankedScore, err := in.S64()
	if err != nil {
		return err
	}
	accuracy, err := in.Float32()
	if err != nil {
		return err
	}
	playCount, err := in.S32()
	if err != nil {
		return err
	}
	totalScore, err := in.S64()
	if err != nil {
		return err
	}
	rank, err := in.S32()
	if err != nil {
		return err
	}
	performance, err := in.S16()
	if err != nil {
		return err
	}

	p := s.Players.ByID(id)
	unknown := p == nil
	if unknown {
		p = NewPlayer(id, "")
		s.Players.Add(p)
	}

	p.mu.Lock()
	p.LastStatus = p.Status
	p.Status = status
	p.RankedScore = rankedScore
	p.Accuracy = accuracy
	p.PlayCount = playCount
	p.TotalScore = totalScore
	p.Rank = rank
	p.Performance = performance
	p.mu.Unlock()

	if unknown {
		s.RequestPresence([]int32{id})
	}
	s.events.Fire(packet.UserStats, p)
	return nil
}

func (s *Session) ensurePresence(ids []int32) {
	var unknown []int32
	for _, id := range ids {
		if !s.Players.Contains(id) {
			s.Players.Add(NewPlayer(id, ""))
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		s.RequestPresence(unknown)
	}
}

func handleUserPresenceBundle(s *Session, in *streams.In) error {
	ids, err := in.IntList()
	if err != nil {
		return err
	}
	s.ensurePresence(ids)
	s.fastRead.set(true)
	s.events.Fire(packet.UserPresenceBundle, ids)
	return nil
}

func handleUserPresenceSingle(s *Session, in *streams.In) error {
	id, err := in.S32()
	if err != nil {
		return err
	}
	s.ensurePresence([]int32{id})
	s.events.Fire(packet.UserPresenceSingle, id)
	return nil
}

func handleUserLogout(s *Session, in *streams.In) error {
	id, err := in.S32()
	if err != nil {
		return err
	}
	s.Players.Remove(id)
	if t := s.SpectatingTarget(); t != nil && t.ID == id {
		s.spectatingMu.Lock()
		s.spectatingTarget = nil
		s.spectatingMu.Unlock()
	}
	s.events.Fire(packet.UserLogout, id)
	return nil
}

func handleSendMessage(s *Session, in *streams.In) error {
	senderName, err := in.String()
	if err != nil {
		return err
	}
	text, err := in.String()
	if err != nil {
		return err
	}
	target, err := in.String()
	if err != nil {
		return err
	}
	senderID, err := in.S32()
	if err != nil {
		return err
	}

	var sender *Player
	if senderID != 0 {
		sender = s.Players.ByID(senderID)
	}
	if sender == nil {
		sender = s.Players.ByName(senderName)
	}
	if sender != nil && !sender.Loaded() {
		s.RequestPresence([]int32{sender.ID})
	}

	var targetRef any
	if len(target) > 0 && target[0] == '#' {
		targetRef = s.Channels.Get(target)
	} else {
		tp := s.Players.ByName(target)
		if tp == nil {
			targetRef = target
		} else {
			targetRef = tp
		}
	}

	if !s.chatLoggingDisabled {
		s.log.Infow("chat", "sender", senderName, "target", target, "text", text)
	}
	s.events.Fire(packet.SendMessage, sender, text, targetRef)
	return nil
}

func handleSilenceEnd(s *Session, in *streams.In) error {
	remaining, err := in.S32()
	if err != nil {
		return err
	}
	if remaining > 0 {
		if s.self != nil {
			s.self.mu.Lock()
			s.self.Silenced = true
			s.self.mu.Unlock()
		}
		// The historical client constructed this timer but never started
		// it; scheduling it on the task manager is the fix recorded in
		// SPEC_FULL.md §9.
		s.tasks.Register(func() {
			if s.self != nil {
				s.self.mu.Lock()
				s.self.Silenced = false
				s.self.mu.Unlock()
			}
		}, time.Duration(remaining)*time.Second, false, false)
	} else if s.self != nil {
		s.self.mu.Lock()
		s.self.Silenced = false
		s.self.mu.Unlock()
	}
	s.events.Fire(packet.SilenceEnd, remaining)
	return nil
}

func handleFlagByID(apply func(*Player)) Handler {
	return func(s *Session, in *streams.In) error {
		id, err := in.S32()
		if err != nil {
			return err
		}
		if p := s.Players.ByID(id); p != nil {
			p.mu.Lock()
			apply(p)
			p.mu.Unlock()
		}
		return nil
	}
}

func handleSpectatorJoined(s *Session, in *streams.In) error {
	id, err := in.S32()
	if err != nil {
		return err
	}
	if s.self != nil {
		if p := s.Players.ByID(id); p != nil {
			s.self.AddSpectator(p)
		}
	}
	s.events.Fire(packet.SpectatorJoined, id)
	return nil
}

func handleSpectatorLeft(s *Session, in *streams.In) error {
	id, err := in.S32()
	if err != nil {
		return err
	}
	if s.self != nil {
		s.self.RemoveSpectator(id)
	}
	s.events.Fire(packet.SpectatorLeft, id)
	return nil
}

func handleFellowSpectatorJoined(s *Session, in *streams.In) error {
	id, err := in.S32()
	if err != nil {
		return err
	}
	if target := s.SpectatingTarget(); target != nil {
		if p := s.Players.ByID(id); p != nil {
			target.AddSpectator(p)
		}
	}
	s.events.Fire(packet.FellowSpectatorJoined, id)
	return nil
}

// handleFellowSpectatorLeft fires FellowSpectatorLeft — the historical
// handler fired the joined event's name by mistake (SPEC_FULL.md §9).
func handleFellowSpectatorLeft(s *Session, in *streams.In) error {
	id, err := in.S32()
	if err != nil {
		return err
	}
	if target := s.SpectatingTarget(); target != nil {
		target.RemoveSpectator(id)
	}
	s.events.Fire(packet.FellowSpectatorLeft, id)
	return nil
}

func handleSpectatorCantSpectate(s *Session, in *streams.In) error {
	id, err := in.S32()
	if err != nil {
		return err
	}
	if p := s.Players.ByID(id); p != nil {
		p.mu.Lock()
		p.CantSpectate = true
		p.mu.Unlock()
	}
	s.events.Fire(packet.SpectatorCantSpectate, id)
	return nil
}

func handleSpectateFrames(s *Session, in *streams.In) error {
	extra, err := in.S32()
	if err != nil {
		return err
	}
	count, err := in.U16()
	if err != nil {
		return err
	}
	frames := make([]ReplayFrame, 0, count)
	for i := uint16(0); i < count; i++ {
		f, err := DecodeReplayFrame(in)
		if err != nil {
			return err
		}
		frames = append(frames, f)
	}
	action, err := in.U8()
	if err != nil {
		return err
	}

	var score *ScoreFrame
	if in.Available() > 0 {
		sf, err := DecodeScoreFrame(in)
		if err == nil {
			score = &sf
		}
	}

	s.events.Fire(packet.SpectateFrames, extra, frames, packet.ReplayAction(action), score)
	return nil
}

func handleChannelInfo(s *Session, in *streams.In) error {
	name, err := in.String()
	if err != nil {
		return err
	}
	topic, err := in.String()
	if err != nil {
		return err
	}
	count, err := in.S16()
	if err != nil {
		return err
	}

	ch := s.Channels.Get(name)
	if ch == nil {
		ch = NewChannel(name, topic)
		s.Channels.Add(ch)
	}
	ch.Update(topic, count)

	if name == "#osu" {
		if !ch.MarkJoining() {
			s.JoinChannel(name)
		}
	}

	s.events.Fire(packet.ChannelInfo, ch)
	return nil
}

func handleChannelAutoJoin(s *Session, in *streams.In) error {
	name, err := in.String()
	if err != nil {
		return err
	}
	topic, err := in.String()
	if err != nil {
		return err
	}
	count, err := in.S16()
	if err != nil {
		return err
	}

	ch := s.Channels.Get(name)
	if ch == nil {
		ch = NewChannel(name, topic)
		s.Channels.Add(ch)
	}
	ch.Update(topic, count)
	ch.MarkJoinSuccess()

	s.events.Fire(packet.ChannelAutoJoin, ch)
	return nil
}

func handleChannelJoinSuccess(s *Session, in *streams.In) error {
	name, err := in.String()
	if err != nil {
		return err
	}

	ch := s.Channels.Get(name)
	if ch == nil {
		ch = NewChannel(name, "")
		s.Channels.Add(ch)
	}
	ch.MarkJoinSuccess()

	if name == "#osu" {
		for _, chunk := range s.Players.PendingChunks() {
			s.RequestPresence(chunk)
		}
	}

	s.events.Fire(packet.ChannelJoinSuccess, ch)
	return nil
}

func handleChannelKick(s *Session, in *streams.In) error {
	name, err := in.String()
	if err != nil {
		return err
	}
	s.Channels.Remove(name)
	s.events.Fire(packet.ChannelKick, name)
	return nil
}

func handleChannelInfoEnd(s *Session, in *streams.In) error {
	s.events.Fire(packet.ChannelInfoEnd)
	return nil
}

// matchPacketKinds is every multiplayer packet kind handled by
// handleMatchPacket (§4.8). DisposeMatch, MatchSkip, MatchAbort,
// MatchJoinFail and MatchTransferHostSv are surfaced without reading their
// payload; MatchPlayerFailed is decoded as a bare s32; every other kind is
// decoded as a match struct and then surfaced.
var matchPacketKinds = []packet.ServerPacket{
	packet.MatchJoinSuccess,
	packet.NewMatch,
	packet.UpdateMatch,
	packet.DisposeMatch,
	packet.MatchStartSv,
	packet.MatchCompleteSv,
	packet.MatchSkip,
	packet.MatchAllPlayersLoaded,
	packet.MatchPlayerFailed,
	packet.MatchScoreUpdateSv,
	packet.MatchTransferHostSv,
	packet.MatchInvite,
	packet.MatchChangePassword,
	packet.MatchJoinFail,
	packet.MatchAbort,
}

// matchPacketsWithScalarPayload carries a bare s32 (a player id, typically)
// instead of a full match struct.
var matchPacketsWithScalarPayload = map[packet.ServerPacket]bool{
	packet.MatchPlayerFailed: true,
}

func handleMatchPacket(kind packet.ServerPacket) Handler {
	return func(s *Session, in *streams.In) error {
		switch kind {
		case packet.DisposeMatch, packet.MatchSkip, packet.MatchAbort, packet.MatchJoinFail:
			s.events.Fire(kind)
			return nil
		case packet.MatchTransferHostSv:
			s.events.Fire(kind)
			return nil
		}

		if matchPacketsWithScalarPayload[kind] {
			id, err := in.S32()
			if err != nil {
				return err
			}
			s.events.Fire(kind, id)
			return nil
		}

		m, err := DecodeMatch(in)
		if err != nil {
			return err
		}
		s.events.Fire(kind, m)
		return nil
	}
}

func handleRestart(s *Session, in *streams.In) error {
	ms, err := in.S32()
	if err != nil {
		return err
	}
	s.retry.set(true)
	s.connected.set(false)
	s.events.Fire(packet.Restart, ms)
	return nil
}

func handleAccountRestricted(s *Session, in *streams.In) error {
	s.retry.set(false)
	s.connected.set(false)
	s.events.Fire(packet.AccountRestricted)
	return nil
}

func handleBeatmapInfoReply(s *Session, in *streams.In) error {
	count, err := in.S32()
	if err != nil {
		return err
	}
	infos := make([]BeatmapInfo, 0, count)
	for i := int32(0); i < count; i++ {
		b, err := DecodeBeatmapInfo(in)
		if err != nil {
			return err
		}
		infos = append(infos, b)
	}
	s.events.Fire(packet.BeatmapInfoReply, infos)
	return nil
}
