package ticketing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flimando/porter/pkg/dataaccess"
	"github.com/flimando/porter/pkg/logging"
)

// GhostReconciler removes ticket records whose channel was deleted
// behind the bot's back, so they stop counting against user quotas.
type GhostReconciler struct {
	// l is the logger.
	l *slog.Logger

	// dal is the ticket store.
	dal dataaccess.ITicketDal

	// transport is the Discord session.
	transport Transport
}

// NewGhostReconciler creates a new ghost reconciler.
func NewGhostReconciler(logger *slog.Logger, dal dataaccess.ITicketDal, transport Transport) *GhostReconciler {
	return &GhostReconciler{
		l:         logger,
		dal:       dal,
		transport: transport,
	}
}

// Sweep checks every ticket in the guild and removes the records whose
// channel no longer exists. Records are only removed when Discord
// definitively reports the channel gone; transient errors leave the
// record alone. It returns the number of records removed.
func (g *GhostReconciler) Sweep(ctx context.Context, guildID string) (int, error) {
	tickets, err := g.dal.ListGuildTickets(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("error listing tickets: %w", err)
	}

	removed := 0
	for _, ticket := range tickets {
		_, err := g.transport.Channel(ticket.ChannelID)
		if err == nil {
			continue
		}
		if !IsNotFound(err) {
			g.l.Warn("Error checking ticket channel, skipping",
				slog.String(logging.KeyChannel, ticket.ChannelID),
				slog.String(logging.KeyError, err.Error()),
			)
			continue
		}

		deleted, err := g.dal.DeleteTicket(ctx, ticket.GuildID, ticket.ChannelID)
		if err != nil {
			g.l.Error("Error removing ghost ticket",
				slog.String(logging.KeyChannel, ticket.ChannelID),
				slog.String(logging.KeyError, err.Error()),
			)
			continue
		}
		if deleted {
			removed++
			g.l.Info("Removed ghost ticket",
				slog.String(logging.KeyGuild, ticket.GuildID),
				slog.String(logging.KeyChannel, ticket.ChannelID),
			)
		}
	}

	return removed, nil
}
