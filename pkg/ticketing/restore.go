package ticketing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/flimando/porter/pkg/dataaccess"
	"github.com/flimando/porter/pkg/logging"
)

// Restorer reconnects the bot to its panel and ticket messages after a
// restart. Component custom IDs are stable, so restoring is a matter
// of making the recorded messages match reality again: re-render
// surfaces that still exist from the current config, and prune records
// whose backing channel or message is confirmed gone. Entries are
// handled independently; one broken guild never blocks the rest.
type Restorer struct {
	// l is the logger.
	l *slog.Logger

	configs   dataaccess.IGuildConfigDal
	panels    dataaccess.IPanelDal
	tickets   dataaccess.ITicketDal
	transport Transport
}

// NewRestorer creates a new restorer.
func NewRestorer(logger *slog.Logger, configs dataaccess.IGuildConfigDal, panels dataaccess.IPanelDal, tickets dataaccess.ITicketDal, transport Transport) *Restorer {
	return &Restorer{
		l:         logger,
		configs:   configs,
		panels:    panels,
		tickets:   tickets,
		transport: transport,
	}
}

// RestoreAll runs both restore phases. It is safe to run repeatedly;
// a second run over an already restored state changes nothing.
func (r *Restorer) RestoreAll(ctx context.Context) error {
	if err := r.restorePanels(ctx); err != nil {
		return fmt.Errorf("error restoring panels: %w", err)
	}
	if err := r.restoreTickets(ctx); err != nil {
		return fmt.Errorf("error restoring tickets: %w", err)
	}
	return nil
}

func (r *Restorer) restorePanels(ctx context.Context) error {
	panels, err := r.panels.ListPanels(ctx)
	if err != nil {
		return fmt.Errorf("error listing panels: %w", err)
	}

	for _, panel := range panels {
		_, err := r.transport.ChannelMessage(panel.ChannelID, panel.MessageID)
		switch {
		case IsNotFound(err):
			// The panel message is gone; the record is useless now.
			if err := r.panels.RemovePanel(ctx, panel.GuildID); err != nil {
				r.l.Error("Error removing stale panel record",
					slog.String(logging.KeyGuild, panel.GuildID),
					slog.String(logging.KeyError, err.Error()),
				)
			}
			continue
		case IsForbidden(err):
			// Keep the record; access may come back.
			r.l.Warn("No access to panel message, skipping",
				slog.String(logging.KeyGuild, panel.GuildID),
				slog.String(logging.KeyChannel, panel.ChannelID),
			)
			continue
		case err != nil:
			r.l.Warn("Error checking panel message, skipping",
				slog.String(logging.KeyGuild, panel.GuildID),
				slog.String(logging.KeyChannel, panel.ChannelID),
				slog.String(logging.KeyError, err.Error()),
			)
			continue
		}

		// Re-render the panel from the current category list so edits
		// made while the bot was down are reflected.
		cfg := r.configs.GetGuildConfig(ctx, panel.GuildID)
		if _, err := r.transport.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel:    panel.ChannelID,
			ID:         panel.MessageID,
			Embed:      PanelEmbed(cfg),
			Components: PanelComponents(cfg),
		}); err != nil {
			r.l.Error("Error refreshing panel message",
				slog.String(logging.KeyGuild, panel.GuildID),
				slog.String(logging.KeyChannel, panel.ChannelID),
				slog.String(logging.KeyError, err.Error()),
			)
		}
	}

	return nil
}

func (r *Restorer) restoreTickets(ctx context.Context) error {
	tickets, err := r.tickets.ListTickets(ctx)
	if err != nil {
		return fmt.Errorf("error listing tickets: %w", err)
	}

	for _, ticket := range tickets {
		_, err := r.transport.Channel(ticket.ChannelID)
		switch {
		case IsNotFound(err):
			if _, err := r.tickets.DeleteTicket(ctx, ticket.GuildID, ticket.ChannelID); err != nil {
				r.l.Error("Error removing ghost ticket",
					slog.String(logging.KeyChannel, ticket.ChannelID),
					slog.String(logging.KeyError, err.Error()),
				)
			}
			continue
		case IsForbidden(err):
			r.l.Warn("No access to ticket channel, skipping",
				slog.String(logging.KeyChannel, ticket.ChannelID),
			)
			continue
		case err != nil:
			r.l.Warn("Error checking ticket channel, skipping",
				slog.String(logging.KeyChannel, ticket.ChannelID),
				slog.String(logging.KeyError, err.Error()),
			)
			continue
		}

		if ticket.ControlMessageID == "" {
			continue
		}

		_, err = r.transport.ChannelMessage(ticket.ChannelID, ticket.ControlMessageID)
		switch {
		case IsNotFound(err):
			// The control message was deleted; clear the reference so
			// nothing keeps pointing at it.
			if err := r.tickets.AttachControlMessage(ctx, ticket.GuildID, ticket.ChannelID, ""); err != nil {
				r.l.Error("Error clearing control message reference",
					slog.String(logging.KeyChannel, ticket.ChannelID),
					slog.String(logging.KeyError, err.Error()),
				)
			}
			continue
		case err != nil:
			r.l.Warn("Error checking control message, skipping",
				slog.String(logging.KeyChannel, ticket.ChannelID),
				slog.String(logging.KeyError, err.Error()),
			)
			continue
		}

		// Re-render the control surface. The ticket only stores the
		// label it was created under; fall back to the first category
		// when the label no longer matches one.
		cfg := r.configs.GetGuildConfig(ctx, ticket.GuildID)
		category, ok := cfg.Categories.ByLabel(ticket.CategoryLabel)
		if !ok {
			category = cfg.Categories.First()
		}

		edit := &discordgo.MessageEdit{
			Channel:    ticket.ChannelID,
			ID:         ticket.ControlMessageID,
			Components: ControlComponents(cfg),
		}
		if category != nil {
			msg := ControlMessage(cfg, ticket.OwnerID, category)
			edit.Embed = msg.Embed
		}

		if _, err := r.transport.ChannelMessageEditComplex(edit); err != nil {
			r.l.Error("Error refreshing control message",
				slog.String(logging.KeyChannel, ticket.ChannelID),
				slog.String(logging.KeyError, err.Error()),
			)
		}
	}

	return nil
}
