package ticketing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flimando/porter/pkg/dataaccess"
	"github.com/flimando/porter/pkg/entities"
	"github.com/flimando/porter/pkg/logging"
)

// CloseFunc closes a ticket the same way a staff member would,
// including transcript and audit logging.
type CloseFunc func(ctx context.Context, ticket *entities.Ticket, reason string) error

// AutoCloser closes tickets that have gone quiet. A ticket is stale
// when its newest message is older than the guild's auto-close window;
// a window of zero hours disables the sweep for that guild.
type AutoCloser struct {
	// l is the logger.
	l *slog.Logger

	configs   dataaccess.IGuildConfigDal
	tickets   dataaccess.ITicketDal
	transport Transport

	close CloseFunc

	now func() time.Time
}

// NewAutoCloser creates a new auto closer.
func NewAutoCloser(logger *slog.Logger, configs dataaccess.IGuildConfigDal, tickets dataaccess.ITicketDal, transport Transport, close CloseFunc) *AutoCloser {
	return &AutoCloser{
		l:         logger,
		configs:   configs,
		tickets:   tickets,
		transport: transport,
		close:     close,
		now:       time.Now,
	}
}

// Sweep closes every stale ticket and returns how many were closed.
func (a *AutoCloser) Sweep(ctx context.Context) (int, error) {
	tickets, err := a.tickets.ListTickets(ctx)
	if err != nil {
		return 0, fmt.Errorf("error listing tickets: %w", err)
	}

	// Guild configs are fetched once per guild, not once per ticket.
	configs := make(map[string]*entities.GuildConfig)

	closed := 0
	for _, ticket := range tickets {
		cfg, ok := configs[ticket.GuildID]
		if !ok {
			cfg = a.configs.GetGuildConfig(ctx, ticket.GuildID)
			configs[ticket.GuildID] = cfg
		}
		if cfg.AutoCloseHours <= 0 {
			continue
		}

		stale, err := a.isStale(ticket, time.Duration(cfg.AutoCloseHours)*time.Hour)
		if err != nil {
			a.l.Warn("Error checking ticket activity, skipping",
				slog.String(logging.KeyChannel, ticket.ChannelID),
				slog.String(logging.KeyError, err.Error()),
			)
			continue
		}
		if !stale {
			continue
		}

		if err := a.close(ctx, ticket, fmt.Sprintf("Closed automatically after %d hours of inactivity", cfg.AutoCloseHours)); err != nil {
			a.l.Error("Error auto-closing ticket",
				slog.String(logging.KeyChannel, ticket.ChannelID),
				slog.String(logging.KeyError, err.Error()),
			)
			continue
		}
		closed++
	}

	return closed, nil
}

func (a *AutoCloser) isStale(ticket *entities.Ticket, window time.Duration) (bool, error) {
	msgs, err := a.transport.ChannelMessages(ticket.ChannelID, 1, "", "", "")
	if err != nil {
		return false, fmt.Errorf("error getting messages: %w", err)
	}

	last := ticket.CreatedAt.Time()
	if len(msgs) > 0 {
		last = msgs[0].Timestamp
	}

	return a.now().Sub(last) > window, nil
}
