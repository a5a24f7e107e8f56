package ticketing

import (
	"context"
	"fmt"
	"testing"

	"github.com/flimando/porter/pkg/entities"
	"github.com/stretchr/testify/require"
)

func TestGhostReconciler_Sweep(t *testing.T) {
	dal := newMemTicketDal()
	transport := newFakeTransport()
	ctx := context.Background()

	// c1 still exists, c2 was deleted manually, c3 errors transiently.
	transport.addChannel("c1")
	transport.channelErr["c3"] = fmt.Errorf("connection reset")

	for _, ch := range []string{"c1", "c2", "c3"} {
		require.NoError(t, dal.SaveTicket(ctx, &entities.Ticket{GuildID: "g1", ChannelID: ch, OwnerID: "u1"}))
	}

	g := NewGhostReconciler(testLogger(), dal, transport)
	removed, err := g.Sweep(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	// Only the definitively missing channel lost its record.
	_, err = dal.GetTicket(ctx, "g1", "c1")
	require.NoError(t, err)
	_, err = dal.GetTicket(ctx, "g1", "c2")
	require.Error(t, err)
	_, err = dal.GetTicket(ctx, "g1", "c3")
	require.NoError(t, err)
}

func TestGhostReconciler_Sweep_ScopedToGuild(t *testing.T) {
	dal := newMemTicketDal()
	transport := newFakeTransport()
	ctx := context.Background()

	require.NoError(t, dal.SaveTicket(ctx, &entities.Ticket{GuildID: "g1", ChannelID: "c1", OwnerID: "u1"}))
	require.NoError(t, dal.SaveTicket(ctx, &entities.Ticket{GuildID: "g2", ChannelID: "c2", OwnerID: "u1"}))

	g := NewGhostReconciler(testLogger(), dal, transport)
	removed, err := g.Sweep(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	// The other guild's ghost is untouched.
	_, err = dal.GetTicket(ctx, "g2", "c2")
	require.NoError(t, err)
}
