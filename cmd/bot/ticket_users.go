package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/flimando/porter/pkg/entities"
	"github.com/flimando/porter/pkg/logging"
	"github.com/flimando/porter/pkg/messages"
	"github.com/flimando/porter/pkg/ticketing"
)

const (
	// addUserWindow is how long the bot waits for the reply naming the
	// users to add.
	addUserWindow = 60 * time.Second

	// addUserKeyPrefix namespaces add-user prompts in the collector.
	addUserKeyPrefix = "adduser/"
)

func pendingAddKey(channelID string) string {
	return addUserKeyPrefix + channelID
}

// addParticipantHandler handles the add-user button. The actual user
// IDs arrive in the actor's next message, collected by
// messageCreateHandler.
func addParticipantHandler(a IApp, i *discordgo.InteractionCreate) error {
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

	a.Collector().Await(pendingAddKey(i.ChannelID), interactionUserID(i), addUserWindow)

	return respondSlashEphemeral(a, i, cfg.Message(entities.MsgAddUserPrompt))
}

// messageCreateHandler watches for the reply to an add-user prompt.
// Every other message passes straight through.
func messageCreateHandler(a *App) func(s *discordgo.Session, m *discordgo.MessageCreate) {
	return func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot {
			return
		}
		if !a.Collector().Fulfil(pendingAddKey(m.ChannelID), m.Author.ID) {
			return
		}

		if err := addParticipants(a, m); err != nil {
			a.Log().Error("Error adding ticket participants",
				slog.String(logging.KeyChannel, m.ChannelID),
				slog.String(logging.KeyUser, m.Author.ID),
				slog.String(logging.KeyError, err.Error()),
			)
			if _, err := a.Session().ChannelMessageSend(m.ChannelID, messages.ErrUserErrorProcessing); err != nil {
				a.Log().Error("Error sending message", slog.String(logging.KeyError, err.Error()))
			}
		}
	}
}

// addParticipants parses the reply, validates every named user is a
// guild member, and only then grants channel access. One unknown ID
// fails the whole batch so a typo cannot half-apply.
func addParticipants(a IApp, m *discordgo.MessageCreate) error {
	cfg := a.ConfigDal().GetGuildConfig(context.Background(), m.GuildID)

	reply := func(content string) error {
		_, err := a.Session().ChannelMessageSend(m.ChannelID, content)
		return err
	}

	if strings.TrimSpace(m.Content) == "" {
		return reply(cfg.Message(entities.MsgAddUserNoInput))
	}

	ids := ticketing.ParseUserIDs(m.Content)
	if len(ids) == 0 {
		return reply(cfg.Message(entities.MsgAddUserInvalid))
	}

	var unknown []string
	for _, id := range ids {
		if _, err := a.Session().GuildMember(m.GuildID, id); err != nil {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return reply(fmt.Sprintf("These users are not members of this server: %s. Nobody was added.", strings.Join(unknown, ", ")))
	}

	mentions := make([]string, 0, len(ids))
	for _, id := range ids {
		err := a.Session().ChannelPermissionSet(m.ChannelID, id, discordgo.PermissionOverwriteTypeMember, discordgo.PermissionAllText, discordgo.PermissionMentionEveryone)
		if err != nil {
			return fmt.Errorf("error granting channel access to %s: %w", id, err)
		}
		mentions = append(mentions, fmt.Sprintf("<@%s>", id))
	}

	return reply(messages.Render(cfg.Message(entities.MsgUserAdded), map[string]string{
		"user": strings.Join(mentions, ", "),
	}))
}
