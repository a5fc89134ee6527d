package bancho

import (
	"fmt"
	"sync"

	"bancho/internal/packet"
	"bancho/internal/streams"
)

// Player is a known user of the server: either fully loaded (name received)
// or a placeholder created in response to a stats/presence packet that
// referenced an id we haven't seen presence for yet (§3).
type Player struct {
	mu sync.Mutex

	ID   int32
	Name string

	Timezone    int8
	CountryCode uint8
	Longitude   float32
	Latitude    float32
	Rank        int32

	Status     Status
	LastStatus Status

	RankedScore int64
	TotalScore  int64
	Accuracy    float32
	PlayCount   int32
	Performance int16

	Privileges packet.Privileges

	spectatorsMu sync.Mutex
	spectators   map[int32]*Player

	CantSpectate bool
	Silenced     bool
	DmsBlocked   bool
}

// NewPlayer constructs a placeholder or fully-named player, matching the
// historical Player.__init__ defaults (accuracy starts at 100%).
func NewPlayer(id int32, name string) *Player {
	return &Player{
		ID:         id,
		Name:       name,
		Status:     NewStatus(),
		LastStatus: NewStatus(),
		Accuracy:   100.0,
		Privileges: packet.Normal,
		spectators: make(map[int32]*Player),
	}
}

func (p *Player) String() string {
	return fmt.Sprintf("<Player %q (%d)>", p.Name, p.ID)
}

// Mode proxies the player's status mode, matching the mode property/setter
// pair in the original source.
func (p *Player) Mode() packet.Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Status.Mode
}

// SetMode updates the player's status mode.
func (p *Player) SetMode(mode packet.Mode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status.Mode = mode
}

// Loaded reports whether a presence packet has named this player yet.
func (p *Player) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Name != ""
}

// AddSpectator adds id to this player's spectator set.
func (p *Player) AddSpectator(spectator *Player) {
	p.spectatorsMu.Lock()
	defer p.spectatorsMu.Unlock()
	p.spectators[spectator.ID] = spectator
}

// RemoveSpectator removes id from this player's spectator set.
func (p *Player) RemoveSpectator(id int32) {
	p.spectatorsMu.Lock()
	defer p.spectatorsMu.Unlock()
	delete(p.spectators, id)
}

// Spectators returns a point-in-time snapshot of this player's spectators.
func (p *Player) Spectators() []*Player {
	p.spectatorsMu.Lock()
	defer p.spectatorsMu.Unlock()
	out := make([]*Player, 0, len(p.spectators))
	for _, s := range p.spectators {
		out = append(out, s)
	}
	return out
}

// HasSpectators reports whether anyone is currently spectating this player.
func (p *Player) HasSpectators() bool {
	p.spectatorsMu.Lock()
	defer p.spectatorsMu.Unlock()
	return len(p.spectators) > 0
}

// encodeChatPayload builds the shared "sender name, text, target name,
// sender id" layout used by both public and private messages.
func encodeChatPayload(senderName, text, targetName string, senderID int32) []byte {
	out := streams.NewOut()
	out.String(senderName)
	out.String(text)
	out.String(targetName)
	out.S32(senderID)
	return out.Bytes()
}
