package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/flimando/porter/pkg/custom"
	"github.com/flimando/porter/pkg/entities"
	"github.com/flimando/porter/pkg/logging"
	"github.com/flimando/porter/pkg/messages"
	"github.com/flimando/porter/pkg/ticketing"
)

// createTicketHandler handles a panel button click. The clicked button's
// custom ID carries the category the ticket is opened under.
func createTicketHandler(a IApp, i *discordgo.InteractionCreate) error {
	categoryID, ok := ticketing.ParseCreateComponentID(i.MessageComponentData().CustomID)
	if !ok {
		return fmt.Errorf("component %q is not a create button", i.MessageComponentData().CustomID)
	}

	cfg := guildConfigFor(a, i)
	if !cfg.Enabled {
		return respondSlashEphemeral(a, i, messages.ErrTicketingDisabled)
	}

	category, ok := cfg.Categories.Get(categoryID)
	if !ok {
		// The panel message can outlive a category edit.
		return respondSlashEphemeral(a, i, "That ticket category no longer exists. Ask an administrator to refresh the panel.")
	}

	// Drop records whose channels were deleted by hand, so they do not
	// count against the quota.
	if _, err := a.Ghosts().Sweep(context.Background(), i.GuildID); err != nil {
		a.Log().Warn("Error sweeping ghost tickets",
			slog.String(logging.KeyGuild, i.GuildID),
			slog.String(logging.KeyError, err.Error()),
		)
	}

	ownerID := interactionUserID(i)

	// Answer an over-quota click before provisioning anything. Open
	// re-checks under its lock, so this is feedback, not enforcement.
	if ok, err := a.Registry().CanOpen(context.Background(), i.GuildID, ownerID, cfg.MaxTicketsPerUser); err != nil {
		return fmt.Errorf("error checking ticket quota: %w", err)
	} else if !ok {
		return respondSlashEphemeral(a, i, messages.Render(cfg.Message(entities.MsgMaxTicketsReached), map[string]string{
			"max": fmt.Sprintf("%d", cfg.MaxTicketsPerUser),
		}))
	}

	ticket, err := a.Registry().Open(context.Background(), i.GuildID, ownerID, cfg.MaxTicketsPerUser, func(ctx context.Context) (*entities.Ticket, error) {
		return provisionTicketChannel(a, i, cfg, category)
	})
	if err != nil {
		if errors.Is(err, ticketing.ErrQuotaExceeded) {
			return respondSlashEphemeral(a, i, messages.Render(cfg.Message(entities.MsgMaxTicketsReached), map[string]string{
				"max": fmt.Sprintf("%d", cfg.MaxTicketsPerUser),
			}))
		}
		return fmt.Errorf("error opening ticket: %w", err)
	}

	TotalTicketsOpened.WithLabelValues(category.ID).Inc()

	return respondSlashEphemeral(a, i, messages.Render(cfg.Message(entities.MsgTicketCreated), map[string]string{
		"category": category.Name,
		"channel":  fmt.Sprintf("<#%s>", ticket.ChannelID),
	}))
}

// provisionTicketChannel creates the private channel and its control
// message. Only the owner, the configured staff roles and the bot can
// see the channel.
func provisionTicketChannel(a IApp, i *discordgo.InteractionCreate, cfg *entities.GuildConfig, category *entities.Category) (*entities.Ticket, error) {
	overwrites := []*discordgo.PermissionOverwrite{
		// Deny @everyone from seeing the ticket.
		{
			ID:    i.GuildID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: 0,
			Deny:  discordgo.PermissionAll,
		},
		// The creator of the ticket can see the ticket.
		{
			ID:    interactionUserID(i),
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionAllText,
			Deny:  discordgo.PermissionMentionEveryone,
		},
		// The bot needs to keep access to its own channel.
		{
			ID:    a.Session().State.User.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionAllText,
			Deny:  0,
		},
	}
	for _, roleID := range cfg.StaffRoleIDs {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: discordgo.PermissionAllText,
			Deny:  discordgo.PermissionMentionEveryone,
		})
	}

	username := ""
	if i.Member != nil && i.Member.User != nil {
		username = i.Member.User.Username
	}

	channel, err := a.Session().GuildChannelCreateComplex(i.GuildID, discordgo.GuildChannelCreateData{
		Name:                 entities.ChannelName(username, category.ID),
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                fmt.Sprintf("%s ticket opened by %s", category.Name, username),
		PermissionOverwrites: overwrites,
		ParentID:             category.DestinationCategoryID,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating ticket channel: %w", err)
	}

	ticket := &entities.Ticket{
		GuildID:       i.GuildID,
		ChannelID:     channel.ID,
		OwnerID:       interactionUserID(i),
		CategoryLabel: category.Name,
		CreatedAt:     custom.Datetime(time.Now().UTC()),
	}

	// The control message carries the close / add-user / transcript
	// buttons. Failing to send it is not fatal: the restorer clears the
	// missing reference on the next pass.
	msg, err := a.Session().ChannelMessageSendComplex(channel.ID, ticketing.ControlMessage(cfg, ticket.OwnerID, category))
	if err != nil {
		a.Log().Warn("Error sending ticket control message",
			slog.String(logging.KeyChannel, channel.ID),
			slog.String(logging.KeyError, err.Error()),
		)
	} else {
		ticket.ControlMessageID = msg.ID
	}

	return ticket, nil
}

// autoCloseTicket adapts the app into the close callback the auto-close
// sweep runs for each stale ticket.
func autoCloseTicket(a *App) ticketing.CloseFunc {
	return func(ctx context.Context, ticket *entities.Ticket, reason string) error {
		cfg := a.ConfigDal().GetGuildConfig(ctx, ticket.GuildID)

		removed, err := a.Registry().Release(ctx, ticket.GuildID, ticket.ChannelID)
		if err != nil {
			return fmt.Errorf("error releasing ticket: %w", err)
		}
		if !removed {
			// Already closed by someone else between listing and now.
			return nil
		}

		sendTicketAudit(a, cfg, ticket, a.Session().State.User.ID, reason)

		if _, err := a.Session().ChannelDelete(ticket.ChannelID); err != nil && !ticketing.IsNotFound(err) {
			return fmt.Errorf("error deleting ticket channel: %w", err)
		}

		TotalTicketsClosed.WithLabelValues("auto").Inc()
		return nil
	}
}
