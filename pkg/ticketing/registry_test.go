package ticketing

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/flimando/porter/pkg/entities"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Open_QuotaEnforced(t *testing.T) {
	dal := newMemTicketDal()
	r := NewRegistry(testLogger(), dal)
	ctx := context.Background()

	create := func(channelID string) func(context.Context) (*entities.Ticket, error) {
		return func(context.Context) (*entities.Ticket, error) {
			return &entities.Ticket{GuildID: "g1", ChannelID: channelID, OwnerID: "u1"}, nil
		}
	}

	for i := 0; i < 3; i++ {
		_, err := r.Open(ctx, "g1", "u1", 3, create(fmt.Sprintf("c%d", i)))
		require.NoError(t, err)
	}

	// Fourth open is refused.
	ok, err := r.CanOpen(ctx, "g1", "u1", 3)
	require.NoError(t, err)
	require.False(t, ok)
	_, err = r.Open(ctx, "g1", "u1", 3, create("c3"))
	require.ErrorIs(t, err, ErrQuotaExceeded)

	// Closing one makes room again.
	released, err := r.Release(ctx, "g1", "c0")
	require.NoError(t, err)
	require.True(t, released)

	ok, err = r.CanOpen(ctx, "g1", "u1", 3)
	require.NoError(t, err)
	require.True(t, ok)
	_, err = r.Open(ctx, "g1", "u1", 3, create("c3"))
	require.NoError(t, err)
}

func TestRegistry_Open_QuotaPerUser(t *testing.T) {
	dal := newMemTicketDal()
	r := NewRegistry(testLogger(), dal)
	ctx := context.Background()

	_, err := r.Open(ctx, "g1", "u1", 1, func(context.Context) (*entities.Ticket, error) {
		return &entities.Ticket{GuildID: "g1", ChannelID: "c1", OwnerID: "u1"}, nil
	})
	require.NoError(t, err)

	// Another user is unaffected by u1's quota.
	_, err = r.Open(ctx, "g1", "u2", 1, func(context.Context) (*entities.Ticket, error) {
		return &entities.Ticket{GuildID: "g1", ChannelID: "c2", OwnerID: "u2"}, nil
	})
	require.NoError(t, err)
}

func TestRegistry_Open_ConcurrentClicksSerialised(t *testing.T) {
	dal := newMemTicketDal()
	r := NewRegistry(testLogger(), dal)
	ctx := context.Background()

	const attempts = 10

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = r.Open(ctx, "g1", "u1", 1, func(context.Context) (*entities.Ticket, error) {
				return &entities.Ticket{GuildID: "g1", ChannelID: fmt.Sprintf("c%d", n), OwnerID: "u1"}, nil
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, ErrQuotaExceeded)
		}
	}
	require.Equal(t, 1, succeeded)

	count, err := dal.CountUserTickets(ctx, "g1", "u1")
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestRegistry_Open_CreateFailureNotRecorded(t *testing.T) {
	dal := newMemTicketDal()
	r := NewRegistry(testLogger(), dal)
	ctx := context.Background()

	boom := fmt.Errorf("channel create failed")
	_, err := r.Open(ctx, "g1", "u1", 3, func(context.Context) (*entities.Ticket, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	count, err := dal.CountUserTickets(ctx, "g1", "u1")
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestRegistry_Lookup(t *testing.T) {
	dal := newMemTicketDal()
	r := NewRegistry(testLogger(), dal)
	ctx := context.Background()

	_, err := r.Lookup(ctx, "g1", "c1")
	require.ErrorIs(t, err, ErrNotATicket)

	require.NoError(t, dal.SaveTicket(ctx, &entities.Ticket{GuildID: "g1", ChannelID: "c1", OwnerID: "u1"}))

	ticket, err := r.Lookup(ctx, "g1", "c1")
	require.NoError(t, err)
	require.Equal(t, "u1", ticket.OwnerID)
}

func TestRegistry_Release_DoubleClose(t *testing.T) {
	dal := newMemTicketDal()
	r := NewRegistry(testLogger(), dal)
	ctx := context.Background()

	require.NoError(t, dal.SaveTicket(ctx, &entities.Ticket{GuildID: "g1", ChannelID: "c1", OwnerID: "u1"}))

	released, err := r.Release(ctx, "g1", "c1")
	require.NoError(t, err)
	require.True(t, released)

	released, err = r.Release(ctx, "g1", "c1")
	require.NoError(t, err)
	require.False(t, released)
}
