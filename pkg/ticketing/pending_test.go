package ticketing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCollector_FulfilConsumes(t *testing.T) {
	c := NewCollector()

	c.Await("c1", "u1", time.Minute)
	require.True(t, c.Fulfil("c1", "u1"))
	require.False(t, c.Fulfil("c1", "u1"))
}

func TestCollector_KeyedByChannelAndUser(t *testing.T) {
	c := NewCollector()

	c.Await("c1", "u1", time.Minute)
	require.False(t, c.Fulfil("c1", "u2"))
	require.False(t, c.Fulfil("c2", "u1"))
	require.True(t, c.Fulfil("c1", "u1"))
}

func TestCollector_ExpiredPromptNotHonoured(t *testing.T) {
	c := NewCollector()

	now := time.Now()
	c.now = func() time.Time { return now }
	c.Await("c1", "u1", time.Minute)

	c.now = func() time.Time { return now.Add(2 * time.Minute) }
	require.False(t, c.Fulfil("c1", "u1"))
}

func TestCollector_NewPromptReplacesOld(t *testing.T) {
	c := NewCollector()

	now := time.Now()
	c.now = func() time.Time { return now }
	c.Await("c1", "u1", time.Second)

	// Re-prompting extends the window.
	c.now = func() time.Time { return now.Add(30 * time.Second) }
	c.Await("c1", "u1", time.Minute)

	c.now = func() time.Time { return now.Add(time.Minute) }
	require.True(t, c.Fulfil("c1", "u1"))
}

func TestCollector_Expire(t *testing.T) {
	c := NewCollector()

	now := time.Now()
	c.now = func() time.Time { return now }
	c.Await("c1", "u1", time.Second)
	c.Await("c2", "u2", time.Hour)

	c.now = func() time.Time { return now.Add(time.Minute) }
	expired := c.Expire()
	require.Equal(t, []PendingPrompt{{ChannelID: "c1", UserID: "u1"}}, expired)
	require.True(t, c.Fulfil("c2", "u2"))
}

func TestCollector_Cancel(t *testing.T) {
	c := NewCollector()

	c.Await("c1", "u1", time.Minute)
	c.Cancel("c1", "u1")
	require.False(t, c.Fulfil("c1", "u1"))
}
