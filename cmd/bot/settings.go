package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/flimando/porter/pkg/entities"
)

const (
	minMaxTickets = 1
	maxMaxTickets = 10
)

func settingsController(_ IApp, cmd string) (slashProcessor, error) {
	switch cmd {
	case "enabled":
		return settingsEnabledProcessor, nil
	case "staff-add":
		return settingsStaffAddProcessor, nil
	case "staff-remove":
		return settingsStaffRemoveProcessor, nil
	case "log-channel":
		return settingsLogChannelProcessor, nil
	case "max-tickets":
		return settingsMaxTicketsProcessor, nil
	case "auto-close":
		return settingsAutoCloseProcessor, nil
	case "transcripts":
		return settingsTranscriptsProcessor, nil
	default:
		return nil, fmt.Errorf("unknown subcommand %q", cmd)
	}
}

func settingsEnabledProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if ok, err := requireAdmin(a, i); !ok {
		return err
	}

	value := subcommandOptions(i)["value"].BoolValue()

	cfg := guildConfigFor(a, i)
	cfg.Enabled = value
	if err := a.ConfigDal().SaveGuildConfig(context.Background(), cfg); err != nil {
		return fmt.Errorf("error saving guild config: %w", err)
	}

	if value {
		return respondSlashEphemeral(a, i, "Ticketing enabled.")
	}
	return respondSlashEphemeral(a, i, "Ticketing disabled. Existing tickets stay open; the panel stops creating new ones.")
}

func settingsStaffAddProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if ok, err := requireAdmin(a, i); !ok {
		return err
	}

	roleID := subcommandOptions(i)["role"].RoleValue(a.Session(), i.GuildID).ID

	cfg := guildConfigFor(a, i)
	for _, have := range cfg.StaffRoleIDs {
		if have == roleID {
			return respondSlashEphemeral(a, i, "That role is already a staff role.")
		}
	}
	cfg.StaffRoleIDs = append(cfg.StaffRoleIDs, roleID)

	if err := a.ConfigDal().SaveGuildConfig(context.Background(), cfg); err != nil {
		return fmt.Errorf("error saving guild config: %w", err)
	}

	return respondSlashEphemeral(a, i, fmt.Sprintf("<@&%s> added as a staff role.", roleID))
}

func settingsStaffRemoveProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if ok, err := requireAdmin(a, i); !ok {
		return err
	}

	roleID := subcommandOptions(i)["role"].RoleValue(a.Session(), i.GuildID).ID

	cfg := guildConfigFor(a, i)
	kept := cfg.StaffRoleIDs[:0]
	removed := false
	for _, have := range cfg.StaffRoleIDs {
		if have == roleID {
			removed = true
			continue
		}
		kept = append(kept, have)
	}
	if !removed {
		return respondSlashEphemeral(a, i, "That role is not a staff role; nothing removed.")
	}
	cfg.StaffRoleIDs = kept

	if err := a.ConfigDal().SaveGuildConfig(context.Background(), cfg); err != nil {
		return fmt.Errorf("error saving guild config: %w", err)
	}

	return respondSlashEphemeral(a, i, fmt.Sprintf("<@&%s> removed from the staff roles.", roleID))
}

func settingsLogChannelProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if ok, err := requireAdmin(a, i); !ok {
		return err
	}

	channelID := subcommandOptions(i)["channel"].ChannelValue(a.Session()).ID

	cfg := guildConfigFor(a, i)
	cfg.LogChannelID = channelID
	if err := a.ConfigDal().SaveGuildConfig(context.Background(), cfg); err != nil {
		return fmt.Errorf("error saving guild config: %w", err)
	}

	return respondSlashEphemeral(a, i, fmt.Sprintf("Audit messages will be sent to <#%s>.", channelID))
}

func settingsMaxTicketsProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if ok, err := requireAdmin(a, i); !ok {
		return err
	}

	value := int(subcommandOptions(i)["value"].IntValue())
	if value < minMaxTickets || value > maxMaxTickets {
		return respondSlashEphemeral(a, i, fmt.Sprintf("Max tickets must be between %d and %d.", minMaxTickets, maxMaxTickets))
	}

	cfg := guildConfigFor(a, i)
	cfg.MaxTicketsPerUser = value
	if err := a.ConfigDal().SaveGuildConfig(context.Background(), cfg); err != nil {
		return fmt.Errorf("error saving guild config: %w", err)
	}

	return respondSlashEphemeral(a, i, fmt.Sprintf("Users may now have %d tickets open at once.", value))
}

func settingsAutoCloseProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if ok, err := requireAdmin(a, i); !ok {
		return err
	}

	hours := int(subcommandOptions(i)["hours"].IntValue())
	if hours < 0 {
		return respondSlashEphemeral(a, i, "Auto-close hours cannot be negative.")
	}

	cfg := guildConfigFor(a, i)
	cfg.AutoCloseHours = hours
	if err := a.ConfigDal().SaveGuildConfig(context.Background(), cfg); err != nil {
		return fmt.Errorf("error saving guild config: %w", err)
	}

	if hours == 0 {
		return respondSlashEphemeral(a, i, "Auto-close disabled.")
	}
	return respondSlashEphemeral(a, i, fmt.Sprintf("Tickets quiet for %d hours will be closed automatically.", hours))
}

func settingsTranscriptsProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if ok, err := requireAdmin(a, i); !ok {
		return err
	}

	value := subcommandOptions(i)["value"].BoolValue()

	cfg := guildConfigFor(a, i)
	cfg.TranscriptEnabled = value
	if err := a.ConfigDal().SaveGuildConfig(context.Background(), cfg); err != nil {
		return fmt.Errorf("error saving guild config: %w", err)
	}

	if value {
		return respondSlashEphemeral(a, i, "Transcript export enabled.")
	}
	return respondSlashEphemeral(a, i, "Transcript export disabled.")
}

// showConfigProcessor renders the current config as an ephemeral embed.
func showConfigProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if ok, err := requireAdmin(a, i); !ok {
		return err
	}

	cfg := guildConfigFor(a, i)

	staff := "none"
	if len(cfg.StaffRoleIDs) > 0 {
		mentions := make([]string, 0, len(cfg.StaffRoleIDs))
		for _, id := range cfg.StaffRoleIDs {
			mentions = append(mentions, fmt.Sprintf("<@&%s>", id))
		}
		staff = strings.Join(mentions, " ")
	}

	logChannel := "not set"
	if cfg.LogChannelID != "" {
		logChannel = fmt.Sprintf("<#%s>", cfg.LogChannelID)
	}

	autoClose := "disabled"
	if cfg.AutoCloseHours > 0 {
		autoClose = fmt.Sprintf("%d hours", cfg.AutoCloseHours)
	}

	embed := &discordgo.MessageEmbed{
		Title: "Ticket Configuration",
		Color: entities.ColorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Enabled", Value: fmt.Sprintf("%t", cfg.Enabled), Inline: true},
			{Name: "Max tickets per user", Value: fmt.Sprintf("%d", cfg.MaxTicketsPerUser), Inline: true},
			{Name: "Auto-close", Value: autoClose, Inline: true},
			{Name: "Transcripts", Value: fmt.Sprintf("%t", cfg.TranscriptEnabled), Inline: true},
			{Name: "Log channel", Value: logChannel, Inline: true},
			{Name: "Categories", Value: fmt.Sprintf("%d", cfg.Categories.Len()), Inline: true},
			{Name: "Staff roles", Value: staff},
		},
	}

	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

// cleanupProcessor runs the ghost sweep for the guild on demand.
func cleanupProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if ok, err := requireAdmin(a, i); !ok {
		return err
	}

	removed, err := a.Ghosts().Sweep(context.Background(), i.GuildID)
	if err != nil {
		return fmt.Errorf("error sweeping ghost tickets: %w", err)
	}

	if removed == 0 {
		return respondSlashEphemeral(a, i, "No ghost tickets found.")
	}
	return respondSlashEphemeral(a, i, fmt.Sprintf("Removed %d ghost ticket record(s).", removed))
}
