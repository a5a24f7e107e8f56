package ticketing

import (
	"context"
	"testing"
	"time"

	"github.com/flimando/porter/pkg/entities"
	"github.com/stretchr/testify/require"
)

func TestRestorer_PanelRefreshedWhenPresent(t *testing.T) {
	ctx := context.Background()
	panels := newMemPanelDal()
	tickets := newMemTicketDal()
	transport := newFakeTransport()

	transport.addChannel("c1")
	transport.addMessage("c1", "m1", time.Now())
	require.NoError(t, panels.SavePanel(ctx, &entities.Panel{GuildID: "g1", ChannelID: "c1", MessageID: "m1"}))

	r := NewRestorer(testLogger(), &memConfigDal{}, panels, tickets, transport)
	require.NoError(t, r.RestoreAll(ctx))

	// The panel message was re-rendered in place.
	require.Len(t, transport.edits, 1)
	require.Equal(t, "m1", transport.edits[0].ID)

	// The record survives.
	_, err := panels.GetPanel(ctx, "g1")
	require.NoError(t, err)
}

func TestRestorer_StalePanelRecordDropped(t *testing.T) {
	ctx := context.Background()
	panels := newMemPanelDal()
	tickets := newMemTicketDal()
	transport := newFakeTransport()

	require.NoError(t, panels.SavePanel(ctx, &entities.Panel{GuildID: "g1", ChannelID: "c1", MessageID: "m1"}))

	r := NewRestorer(testLogger(), &memConfigDal{}, panels, tickets, transport)
	require.NoError(t, r.RestoreAll(ctx))

	_, err := panels.GetPanel(ctx, "g1")
	require.Error(t, err)
}

func TestRestorer_ControlSurfaceReattached(t *testing.T) {
	ctx := context.Background()
	panels := newMemPanelDal()
	tickets := newMemTicketDal()
	transport := newFakeTransport()

	transport.addChannel("c1")
	transport.addMessage("c1", "m1", time.Now())
	require.NoError(t, tickets.SaveTicket(ctx, &entities.Ticket{
		GuildID:          "g1",
		ChannelID:        "c1",
		OwnerID:          "u1",
		CategoryLabel:    "Support",
		ControlMessageID: "m1",
	}))

	r := NewRestorer(testLogger(), &memConfigDal{}, panels, tickets, transport)
	require.NoError(t, r.RestoreAll(ctx))

	require.Len(t, transport.edits, 1)
	require.Equal(t, "m1", transport.edits[0].ID)
	require.NotEmpty(t, transport.edits[0].Components)
}

func TestRestorer_UnknownLabelFallsBackToFirstCategory(t *testing.T) {
	ctx := context.Background()
	panels := newMemPanelDal()
	tickets := newMemTicketDal()
	transport := newFakeTransport()

	transport.addChannel("c1")
	transport.addMessage("c1", "m1", time.Now())
	require.NoError(t, tickets.SaveTicket(ctx, &entities.Ticket{
		GuildID:          "g1",
		ChannelID:        "c1",
		OwnerID:          "u1",
		CategoryLabel:    "Removed Category",
		ControlMessageID: "m1",
	}))

	r := NewRestorer(testLogger(), &memConfigDal{}, panels, tickets, transport)
	require.NoError(t, r.RestoreAll(ctx))

	require.Len(t, transport.edits, 1)
	require.NotNil(t, transport.edits[0].Embed)
	require.Equal(t, "Support Ticket", transport.edits[0].Embed.Title)
}

func TestRestorer_MissingControlMessageCleared(t *testing.T) {
	ctx := context.Background()
	panels := newMemPanelDal()
	tickets := newMemTicketDal()
	transport := newFakeTransport()

	transport.addChannel("c1")
	require.NoError(t, tickets.SaveTicket(ctx, &entities.Ticket{
		GuildID:          "g1",
		ChannelID:        "c1",
		OwnerID:          "u1",
		ControlMessageID: "gone",
	}))

	r := NewRestorer(testLogger(), &memConfigDal{}, panels, tickets, transport)
	require.NoError(t, r.RestoreAll(ctx))

	ticket, err := tickets.GetTicket(ctx, "g1", "c1")
	require.NoError(t, err)
	require.Empty(t, ticket.ControlMessageID)
}

func TestRestorer_GhostTicketDropped(t *testing.T) {
	ctx := context.Background()
	panels := newMemPanelDal()
	tickets := newMemTicketDal()
	transport := newFakeTransport()

	require.NoError(t, tickets.SaveTicket(ctx, &entities.Ticket{GuildID: "g1", ChannelID: "c1", OwnerID: "u1"}))

	r := NewRestorer(testLogger(), &memConfigDal{}, panels, tickets, transport)
	require.NoError(t, r.RestoreAll(ctx))

	_, err := tickets.GetTicket(ctx, "g1", "c1")
	require.Error(t, err)
}

func TestRestorer_Idempotent(t *testing.T) {
	ctx := context.Background()
	panels := newMemPanelDal()
	tickets := newMemTicketDal()
	transport := newFakeTransport()

	transport.addChannel("c1")
	transport.addMessage("c1", "m1", time.Now())
	require.NoError(t, panels.SavePanel(ctx, &entities.Panel{GuildID: "g1", ChannelID: "c1", MessageID: "m1"}))

	transport.addChannel("c2")
	transport.addMessage("c2", "m2", time.Now())
	require.NoError(t, tickets.SaveTicket(ctx, &entities.Ticket{
		GuildID:          "g1",
		ChannelID:        "c2",
		OwnerID:          "u1",
		CategoryLabel:    "Support",
		ControlMessageID: "m2",
	}))

	// A ticket whose channel no longer exists.
	require.NoError(t, tickets.SaveTicket(ctx, &entities.Ticket{GuildID: "g1", ChannelID: "gone", OwnerID: "u2"}))

	r := NewRestorer(testLogger(), &memConfigDal{}, panels, tickets, transport)
	require.NoError(t, r.RestoreAll(ctx))
	require.NoError(t, r.RestoreAll(ctx))

	// Nothing was posted, only edits in place; the live records remain
	// and the dead one was pruned.
	require.Empty(t, transport.sent)
	_, err := tickets.GetTicket(ctx, "g1", "gone")
	require.Error(t, err)
	_, err = panels.GetPanel(ctx, "g1")
	require.NoError(t, err)
	_, err = tickets.GetTicket(ctx, "g1", "c2")
	require.NoError(t, err)

	count, err := tickets.CountUserTickets(ctx, "g1", "u1")
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestRestorer_PartialFailureTolerated(t *testing.T) {
	ctx := context.Background()
	panels := newMemPanelDal()
	tickets := newMemTicketDal()
	transport := newFakeTransport()

	// g1's panel message is gone; g2's is fine.
	require.NoError(t, panels.SavePanel(ctx, &entities.Panel{GuildID: "g1", ChannelID: "c1", MessageID: "m1"}))
	transport.addChannel("c2")
	transport.addMessage("c2", "m2", time.Now())
	require.NoError(t, panels.SavePanel(ctx, &entities.Panel{GuildID: "g2", ChannelID: "c2", MessageID: "m2"}))

	r := NewRestorer(testLogger(), &memConfigDal{}, panels, tickets, transport)
	require.NoError(t, r.RestoreAll(ctx))

	_, err := panels.GetPanel(ctx, "g1")
	require.Error(t, err)
	_, err = panels.GetPanel(ctx, "g2")
	require.NoError(t, err)
	require.Len(t, transport.edits, 1)
}
