package bancho

import "sync"

// Channel is a named chat channel (always prefixed "#"). Identity is by
// name; Joined/Joining track the handshake with the server independently
// of membership in a Channels collection.
type Channel struct {
	mu sync.Mutex

	Name      string
	Topic     string
	UserCount int16

	Joined  bool
	Joining bool
}

// NewChannel constructs an unjoined channel.
func NewChannel(name, topic string) *Channel {
	return &Channel{Name: name, Topic: topic}
}

func (c *Channel) snapshot() (joined, joining bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Joined, c.Joining
}

// MarkJoining flips Joining on, matching Channel.join()'s bookkeeping; the
// CHANNEL_JOIN packet itself is sent by the session's JoinChannel method.
func (c *Channel) MarkJoining() (alreadyJoined bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Joined {
		return true
	}
	c.Joining = true
	return false
}

// MarkLeaving clears Joined/Joining, matching Channel.leave()'s bookkeeping.
func (c *Channel) MarkLeaving() (wasJoined bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.Joined {
		return false
	}
	c.Joining = false
	c.Joined = false
	return true
}

// MarkJoinSuccess marks the channel joined, as the server's
// CHANNEL_JOIN_SUCCESS/CHANNEL_AUTO_JOIN handlers do. Returns whether this
// is the first time the channel is marked joined.
func (c *Channel) MarkJoinSuccess() (firstJoin bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	firstJoin = !c.Joined
	c.Joining = false
	c.Joined = true
	return firstJoin
}

// Update applies a ChannelInfo packet's topic/user-count fields.
func (c *Channel) Update(topic string, userCount int16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Topic = topic
	c.UserCount = userCount
}
