package ticketing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInteractionLimiter_BurstThenRefused(t *testing.T) {
	l := NewInteractionLimiter(time.Minute, 3)

	for i := 0; i < 3; i++ {
		require.True(t, l.Allow("u1"))
	}
	require.False(t, l.Allow("u1"))
}

func TestInteractionLimiter_PerUser(t *testing.T) {
	l := NewInteractionLimiter(time.Minute, 1)

	require.True(t, l.Allow("u1"))
	require.False(t, l.Allow("u1"))

	// Another user has their own budget.
	require.True(t, l.Allow("u2"))
}

func TestInteractionLimiter_SweepDropsIdle(t *testing.T) {
	l := NewInteractionLimiter(time.Minute, 1)

	now := time.Now()
	l.now = func() time.Time { return now }

	require.True(t, l.Allow("u1"))
	require.Len(t, l.users, 1)

	l.now = func() time.Time { return now.Add(time.Hour) }
	l.Sweep()
	require.Empty(t, l.users)
}
