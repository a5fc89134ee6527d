package bancho

import "bancho/internal/packet"

// Status is a player's current activity: what they're doing, on what
// beatmap, with which mods.
type Status struct {
	Action   packet.StatusAction
	Text     string
	Checksum string
	Mods     packet.Mods
	Mode     packet.Mode
	BeatmapID int32
}

// NewStatus returns the default Idle status.
func NewStatus() Status {
	return Status{Action: packet.Idle, Mode: packet.ModeOsu}
}

// Reset restores every field to its default, matching Status.reset() in the
// original source.
func (s *Status) Reset() {
	*s = NewStatus()
}
