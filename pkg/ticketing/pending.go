package ticketing

import (
	"sync"
	"time"
)

// Collector tracks "waiting for the next message" prompts, such as the
// add-user flow where the bot asks for a mention and collects the
// user's next message in the channel. At most one prompt is live per
// (channel, user) pair; a new prompt replaces the old one.
type Collector struct {
	mu      sync.Mutex
	pending map[pendingKey]time.Time

	now func() time.Time
}

type pendingKey struct {
	channelID string
	userID    string
}

// PendingPrompt identifies a prompt that timed out, so the caller can
// tell the user.
type PendingPrompt struct {
	ChannelID string
	UserID    string
}

// NewCollector creates a new prompt collector.
func NewCollector() *Collector {
	return &Collector{
		pending: make(map[pendingKey]time.Time),
		now:     time.Now,
	}
}

// Await registers a prompt that accepts the user's next message in the
// channel within the window.
func (c *Collector) Await(channelID, userID string, window time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[pendingKey{channelID, userID}] = c.now().Add(window)
}

// Fulfil consumes the prompt for the pair, reporting whether a live
// one existed. An expired prompt is removed and not honoured.
func (c *Collector) Fulfil(channelID, userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := pendingKey{channelID, userID}
	deadline, ok := c.pending[key]
	if !ok {
		return false
	}
	delete(c.pending, key)
	return c.now().Before(deadline)
}

// Cancel drops the prompt for the pair, if any.
func (c *Collector) Cancel(channelID, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, pendingKey{channelID, userID})
}

// Expire drops prompts whose window has passed and returns them.
func (c *Collector) Expire() []PendingPrompt {
	c.mu.Lock()
	defer c.mu.Unlock()

	var dropped []PendingPrompt
	now := c.now()
	for key, deadline := range c.pending {
		if !now.Before(deadline) {
			delete(c.pending, key)
			dropped = append(dropped, PendingPrompt{ChannelID: key.channelID, UserID: key.userID})
		}
	}
	return dropped
}
