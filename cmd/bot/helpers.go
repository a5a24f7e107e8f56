package main

import (
	"context"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/flimando/porter/pkg/entities"
	"github.com/flimando/porter/pkg/messages"
)

func respondSlashError(a IApp, i *discordgo.InteractionCreate) error {
	return respondSlashEphemeral(a, i, messages.ErrUserErrorProcessing)
}

func respondSlashEphemeral(a IApp, i *discordgo.InteractionCreate, content string) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// interactionUserID returns the acting user regardless of whether the
// interaction arrived from a guild or a DM.
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// isAdministrator reports whether the acting member has the guild
// administrator permission.
func isAdministrator(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

// canManageTicket reports whether the actor may close a ticket or
// change its participants: the owner, an administrator, or a holder of
// a configured staff role.
func canManageTicket(cfg *entities.GuildConfig, ticket *entities.Ticket, i *discordgo.InteractionCreate) bool {
	if interactionUserID(i) == ticket.OwnerID {
		return true
	}
	if isAdministrator(i) {
		return true
	}
	return i.Member != nil && cfg.HasStaffRole(i.Member.Roles)
}

// requireAdmin rejects the interaction with an ephemeral notice when
// the actor is not an administrator.
func requireAdmin(a IApp, i *discordgo.InteractionCreate) (bool, error) {
	if isAdministrator(i) {
		return true, nil
	}
	return false, respondSlashEphemeral(a, i, messages.ErrNotAdministrator)
}

// guildConfigFor loads the fresh config for the interaction's guild.
// State is never cached across operations, so a panel rebuilt
// mid-flight always reflects the latest category edits.
func guildConfigFor(a IApp, i *discordgo.InteractionCreate) *entities.GuildConfig {
	return a.ConfigDal().GetGuildConfig(context.Background(), i.GuildID)
}
