package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/flimando/porter/pkg/entities"
	"github.com/flimando/porter/pkg/ticketing"
	"go.mongodb.org/mongo-driver/mongo"
)

func panelController(_ IApp, cmd string) (slashProcessor, error) {
	switch cmd {
	case "refresh":
		return refreshPanelProcessor, nil
	case "restore":
		return restoreProcessor, nil
	default:
		return nil, fmt.Errorf("unknown subcommand %q", cmd)
	}
}

// setupPanelProcessor posts the panel into the channel the command was
// run in and records where it lives. Running setup twice simply moves
// the panel; the last write wins.
func setupPanelProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if ok, err := requireAdmin(a, i); !ok {
		return err
	}

	cfg := guildConfigFor(a, i)
	if cfg.Categories.Len() == 0 {
		return respondSlashEphemeral(a, i, "No ticket categories are configured. Add one with /ticket-category add first.")
	}

	msg, err := a.Session().ChannelMessageSendComplex(i.ChannelID, ticketing.PanelMessage(cfg))
	if err != nil {
		return fmt.Errorf("error sending panel message: %w", err)
	}

	if err := a.PanelDal().SavePanel(context.Background(), &entities.Panel{
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		MessageID: msg.ID,
	}); err != nil {
		return fmt.Errorf("error saving panel: %w", err)
	}

	return respondSlashEphemeral(a, i, "Ticket panel created.")
}

// refreshPanelProcessor re-renders the stored panel from the current
// category list.
func refreshPanelProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if ok, err := requireAdmin(a, i); !ok {
		return err
	}

	ctx := context.Background()
	panel, err := a.PanelDal().GetPanel(ctx, i.GuildID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return respondSlashEphemeral(a, i, "No panel exists yet. Create one with /ticket-setup.")
		}
		return fmt.Errorf("error getting panel: %w", err)
	}

	cfg := guildConfigFor(a, i)
	_, err = a.Session().ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    panel.ChannelID,
		ID:         panel.MessageID,
		Embed:      ticketing.PanelEmbed(cfg),
		Components: ticketing.PanelComponents(cfg),
	})
	if err != nil {
		if ticketing.IsNotFound(err) {
			// The message is gone, so the record is useless. This is an
			// explicit admin action, so say so rather than silently prune.
			if err := a.PanelDal().RemovePanel(ctx, i.GuildID); err != nil {
				return fmt.Errorf("error removing stale panel: %w", err)
			}
			return respondSlashEphemeral(a, i, "The panel message was deleted; its record has been removed. Run /ticket-setup to create a new one.")
		}
		return fmt.Errorf("error editing panel message: %w", err)
	}

	return respondSlashEphemeral(a, i, "Panel refreshed.")
}

// restoreProcessor runs the full persistent-view restoration on demand.
func restoreProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if ok, err := requireAdmin(a, i); !ok {
		return err
	}

	if err := a.Restorer().RestoreAll(context.Background()); err != nil {
		return fmt.Errorf("error restoring views: %w", err)
	}

	return respondSlashEphemeral(a, i, "Panels and ticket controls restored.")
}
