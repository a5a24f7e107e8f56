package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/flimando/porter/pkg/entities"
	"github.com/flimando/porter/pkg/logging"
	"github.com/flimando/porter/pkg/ticketing"
)

// closeConfirmWindow is how long a close confirmation prompt stays
// valid.
const closeConfirmWindow = 30 * time.Second

// pendingCloseKey namespaces close confirmations in the collector so a
// pending add-user reply in the same channel cannot swallow them.
func pendingCloseKey(channelID string) string {
	return "close/" + channelID
}

// closeCommandProcessor handles /close inside a ticket channel.
func closeCommandProcessor(a IApp, i *discordgo.InteractionCreate) error {
	return requestClose(a, i)
}

// closeButtonHandler handles the close button on the control message.
func closeButtonHandler(a IApp, i *discordgo.InteractionCreate) error {
	return requestClose(a, i)
}

// requestClose checks the actor may close the ticket and posts the
// confirm / cancel prompt. Nothing is closed until the confirmation is
// clicked.
func requestClose(a IApp, i *discordgo.InteractionCreate) error {
	cfg := guildConfigFor(a, i)

	ticket, err := a.Registry().Lookup(context.Background(), i.GuildID, i.ChannelID)
	if err != nil {
		if errors.Is(err, ticketing.ErrNotATicket) {
			return respondSlashEphemeral(a, i, cfg.Message(entities.MsgNotATicket))
		}
		return fmt.Errorf("error looking up ticket: %w", err)
	}

	if !canManageTicket(cfg, ticket, i) {
		return respondSlashEphemeral(a, i, cfg.Message(entities.MsgNoPermission))
	}

	a.Collector().Await(pendingCloseKey(i.ChannelID), interactionUserID(i), closeConfirmWindow)

	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    "Are you sure you want to close this ticket?",
			Components: ticketing.CloseConfirmComponents(),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
}

// closeConfirmHandler performs the close once confirmed. The ticket is
// looked up again first, so a double click (or a race with the
// auto-close sweep) lands on the friendly already-closed path instead
// of a second delete.
func closeConfirmHandler(a IApp, i *discordgo.InteractionCreate) error {
	cfg := guildConfigFor(a, i)

	ticket, err := a.Registry().Lookup(context.Background(), i.GuildID, i.ChannelID)
	if err != nil {
		if errors.Is(err, ticketing.ErrNotATicket) {
			return respondSlashEphemeral(a, i, "This ticket has already been closed.")
		}
		return fmt.Errorf("error looking up ticket: %w", err)
	}

	if !canManageTicket(cfg, ticket, i) {
		return respondSlashEphemeral(a, i, cfg.Message(entities.MsgNoPermission))
	}

	if !a.Collector().Fulfil(pendingCloseKey(i.ChannelID), interactionUserID(i)) {
		return respondSlashEphemeral(a, i, "The close confirmation has expired. Press close again.")
	}

	// Acknowledge before the channel the interaction lives in goes away.
	if err := respondSlashEphemeral(a, i, cfg.Message(entities.MsgTicketClosed)); err != nil {
		a.Log().Warn("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
	}

	removed, err := a.Registry().Release(context.Background(), i.GuildID, i.ChannelID)
	if err != nil {
		return fmt.Errorf("error releasing ticket: %w", err)
	}
	if !removed {
		return nil
	}

	sendTicketAudit(a, cfg, ticket, interactionUserID(i), "Closed manually")

	if _, err := a.Session().ChannelDelete(i.ChannelID); err != nil && !ticketing.IsNotFound(err) {
		return fmt.Errorf("error deleting ticket channel: %w", err)
	}

	TotalTicketsClosed.WithLabelValues("manual").Inc()
	return nil
}

// closeCancelHandler abandons a pending close. The ticket stays open.
func closeCancelHandler(a IApp, i *discordgo.InteractionCreate) error {
	a.Collector().Cancel(pendingCloseKey(i.ChannelID), interactionUserID(i))
	return respondSlashEphemeral(a, i, "Close cancelled.")
}

// sendTicketAudit posts the closed-ticket embed to the guild's log
// channel. A missing or broken log channel never blocks the close.
func sendTicketAudit(a IApp, cfg *entities.GuildConfig, ticket *entities.Ticket, closedBy, reason string) {
	if cfg.LogChannelID == "" {
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "Ticket Closed",
		Color: entities.ColorRed,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Category", Value: ticket.CategoryLabel, Inline: true},
			{Name: "Owner", Value: fmt.Sprintf("<@%s>", ticket.OwnerID), Inline: true},
			{Name: "Closed by", Value: fmt.Sprintf("<@%s>", closedBy), Inline: true},
			{Name: "Opened", Value: ticket.CreatedAt.Time().Format(time.RFC1123), Inline: true},
			{Name: "Reason", Value: reason},
		},
	}

	if _, err := a.Session().ChannelMessageSendComplex(cfg.LogChannelID, &discordgo.MessageSend{Embed: embed}); err != nil {
		a.Log().Warn("Error sending ticket audit message",
			slog.String(logging.KeyGuild, ticket.GuildID),
			slog.String(logging.KeyChannel, cfg.LogChannelID),
			slog.String(logging.KeyError, err.Error()),
		)
	}
}
