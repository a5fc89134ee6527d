package bancho

import (
	"bancho/internal/packet"
	"bancho/internal/streams"
)

// Slot is one of a Match's fixed positions.
type Slot struct {
	PlayerID int32
	Status   packet.SlotStatus
	Team     packet.SlotTeam
	Mods     packet.Mods
}

// NewSlot returns an empty, locked slot.
func NewSlot() Slot {
	return Slot{PlayerID: -1, Status: packet.SlotLocked, Team: packet.TeamNeutral}
}

// HasPlayer reports whether the slot is occupied (§3 invariant: has_player
// iff status is one of NotReady/Ready/NoMap/Playing/Complete).
func (s Slot) HasPlayer() bool {
	return s.Status&packet.SlotHasPlayer != 0
}

// IsOpen reports whether the slot is open for anyone to join.
func (s Slot) IsOpen() bool { return s.Status == packet.SlotOpen }

// IsReady reports whether the occupant has readied up.
func (s Slot) IsReady() bool { return s.Status == packet.SlotReady }

// NumSlots is the fixed multiplayer room size.
const NumSlots = 16

// Match describes a multiplayer room's full state.
type Match struct {
	ID       uint16
	Name     string
	Password string

	HostID int32

	Freemod    bool
	InProgress bool
	Type       packet.MatchType
	Mods       packet.Mods
	Mode       packet.Mode
	ScoringType packet.MatchScoringTypes
	TeamType   packet.MatchTeamTypes

	BeatmapText     string
	BeatmapID       int32
	BeatmapChecksum string

	Slots [NumSlots]Slot
	Seed  int32
}

// NewMatch constructs a default-settings match for the given host, with
// every slot empty. Name defaults to "{host}'s Game" per the original.
func NewMatch(host *Player, password string) *Match {
	m := &Match{
		Name:      host.Name + "'s Game",
		Password:  password,
		HostID:    host.ID,
		Type:      packet.MatchStandard,
		Mode:      packet.ModeOsu,
		ScoringType: packet.ScoringScore,
		TeamType:  packet.TeamsHeadToHead,
		BeatmapID: -1,
	}
	for i := range m.Slots {
		m.Slots[i] = NewSlot()
	}
	return m
}

// Encode serializes the match per the exact field order the live source
// uses (match.py's Match.encode): header, name/password/beatmap, per-slot
// status then team then (only occupied slots') player ids, host id, mode,
// scoring/team type, freemod flag, then (only if freemod) per-slot mods,
// finally the seed.
func (m *Match) Encode() []byte {
	out := streams.NewOut()
	out.U16(m.ID)

	out.Bool(m.InProgress)
	out.U8(uint8(m.Type))
	out.U32(uint32(m.Mods))

	out.String(m.Name)
	out.String(m.Password)
	out.String(m.BeatmapText)
	out.S32(m.BeatmapID)
	out.String(m.BeatmapChecksum)

	for _, s := range m.Slots {
		out.U8(uint8(s.Status))
	}
	for _, s := range m.Slots {
		out.U8(uint8(s.Team))
	}
	for _, s := range m.Slots {
		if s.HasPlayer() {
			out.S32(s.PlayerID)
		}
	}

	out.S32(m.HostID)
	out.U8(uint8(m.Mode))
	out.U8(uint8(m.ScoringType))
	out.U8(uint8(m.TeamType))

	out.Bool(m.Freemod)
	if m.Freemod {
		for _, s := range m.Slots {
			out.U32(uint32(s.Mods))
		}
	}

	out.S32(m.Seed)
	return out.Bytes()
}

// DecodeMatch reads a Match in the same field order Encode writes it.
func DecodeMatch(in *streams.In) (*Match, error) {
	m := &Match{}

	id, err := in.U16()
	if err != nil {
		return nil, err
	}
	m.ID = id

	if m.InProgress, err = in.Bool(); err != nil {
		return nil, err
	}
	t, err := in.U8()
	if err != nil {
		return nil, err
	}
	m.Type = packet.MatchType(t)

	mods, err := in.U32()
	if err != nil {
		return nil, err
	}
	m.Mods = packet.Mods(mods)

	if m.Name, err = in.String(); err != nil {
		return nil, err
	}
	if m.Password, err = in.String(); err != nil {
		return nil, err
	}
	if m.BeatmapText, err = in.String(); err != nil {
		return nil, err
	}
	if m.BeatmapID, err = in.S32(); err != nil {
		return nil, err
	}
	if m.BeatmapChecksum, err = in.String(); err != nil {
		return nil, err
	}

	var statuses [NumSlots]packet.SlotStatus
	for i := range statuses {
		b, err := in.U8()
		if err != nil {
			return nil, err
		}
		statuses[i] = packet.SlotStatus(b)
	}

	var teams [NumSlots]packet.SlotTeam
	for i := range teams {
		b, err := in.U8()
		if err != nil {
			return nil, err
		}
		teams[i] = packet.SlotTeam(b)
	}

	var ids [NumSlots]int32
	for i := range ids {
		if statuses[i]&packet.SlotHasPlayer != 0 {
			v, err := in.S32()
			if err != nil {
				return nil, err
			}
			ids[i] = v
		} else {
			ids[i] = -1
		}
	}

	hostID, err := in.S32()
	if err != nil {
		return nil, err
	}
	m.HostID = hostID

	modeByte, err := in.U8()
	if err != nil {
		return nil, err
	}
	m.Mode = packet.Mode(modeByte)

	scoringByte, err := in.U8()
	if err != nil {
		return nil, err
	}
	m.ScoringType = packet.MatchScoringTypes(scoringByte)

	teamByte, err := in.U8()
	if err != nil {
		return nil, err
	}
	m.TeamType = packet.MatchTeamTypes(teamByte)

	if m.Freemod, err = in.Bool(); err != nil {
		return nil, err
	}

	var mods32 [NumSlots]packet.Mods
	if m.Freemod {
		for i := range mods32 {
			v, err := in.U32()
			if err != nil {
				return nil, err
			}
			mods32[i] = packet.Mods(v)
		}
	}

	for i := range m.Slots {
		m.Slots[i] = Slot{PlayerID: ids[i], Status: statuses[i], Team: teams[i], Mods: mods32[i]}
	}

	if m.Seed, err = in.S32(); err != nil {
		return nil, err
	}
	return m, nil
}
