package bancho

import (
	"sync"

	"github.com/samber/lo"

	"bancho/internal/packet"
)

// Players is the thread-safe set of known players, keyed by id. Unlike the
// historical LockedSet (whose __iter__ only holds its lock while
// constructing the iterator, letting the returned iterator observe
// concurrent mutation), every read here operates on a snapshot copy taken
// under the lock — see SPEC_FULL.md's "Snapshot iteration is a correctness
// fix, not a preference."
type Players struct {
	mu      sync.Mutex
	byID    map[int32]*Player
}

// NewPlayers returns an empty collection.
func NewPlayers() *Players {
	return &Players{byID: make(map[int32]*Player)}
}

// Add inserts player, replacing any existing entry with the same id.
func (p *Players) Add(player *Player) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byID[player.ID] = player
}

// Remove deletes the player with the given id, if present.
func (p *Players) Remove(id int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.byID, id)
}

// Contains reports whether id is known.
func (p *Players) Contains(id int32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.byID[id]
	return ok
}

// Snapshot returns every known player at the time of the call.
func (p *Players) Snapshot() []*Player {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Player, 0, len(p.byID))
	for _, pl := range p.byID {
		out = append(out, pl)
	}
	return out
}

// ByID looks up a player by id.
func (p *Players) ByID(id int32) *Player {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.byID[id]
}

// ByName looks up a player by display name (first match over a snapshot).
func (p *Players) ByName(name string) *Player {
	for _, pl := range p.Snapshot() {
		if pl.Name == name {
			return pl
		}
	}
	return nil
}

// IDs returns every known player's id.
func (p *Players) IDs() []int32 {
	return lo.Map(p.Snapshot(), func(pl *Player, _ int) int32 { return pl.ID })
}

// Pending returns every player that has no name yet (presence not received).
func (p *Players) Pending() []*Player {
	return lo.Filter(p.Snapshot(), func(pl *Player, _ int) bool { return !pl.Loaded() })
}

// chunkSize is the protocol-mandated limit on a single presence-request
// batch (§9 "Auto-join #osu"), not a tuning knob.
const chunkSize = 255

// PendingChunks splits the pending (name-less) players into groups of at
// most chunkSize ids, for ChannelJoinSuccess's bulk presence-request
// fan-out.
func (p *Players) PendingChunks() [][]int32 {
	pending := p.Pending()
	ids := lo.Map(pending, func(pl *Player, _ int) int32 { return pl.ID })
	return lo.Chunk(ids, chunkSize)
}

// Channels is the thread-safe set of known channels, keyed by name.
type Channels struct {
	mu   sync.Mutex
	byName map[string]*Channel
}

// NewChannels returns an empty collection.
func NewChannels() *Channels {
	return &Channels{byName: make(map[string]*Channel)}
}

// Add inserts channel, replacing any existing entry with the same name.
func (c *Channels) Add(ch *Channel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byName[ch.Name] = ch
}

// Remove deletes the channel with the given name, if present.
func (c *Channels) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byName, name)
}

// Get looks up a channel by name.
func (c *Channels) Get(name string) *Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byName[name]
}

// Snapshot returns every known channel at the time of the call.
func (c *Channels) Snapshot() []*Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Channel, 0, len(c.byName))
	for _, ch := range c.byName {
		out = append(out, ch)
	}
	return out
}

// Joined returns every channel currently marked joined.
func (c *Channels) Joined() []*Channel {
	return lo.Filter(c.Snapshot(), func(ch *Channel, _ int) bool {
		joined, _ := ch.snapshot()
		return joined
	})
}

// presenceFilterPayload encodes a PresenceFilter as a ReceiveUpdates
// payload. No Session method sends a ReceiveUpdates packet.
func presenceFilterPayload(filter packet.PresenceFilter) []byte {
	return u32LE(uint32(filter))
}

func u32LE(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}
