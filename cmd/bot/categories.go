package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/flimando/porter/pkg/entities"
)

func categoryController(_ IApp, cmd string) (slashProcessor, error) {
	switch cmd {
	case "add":
		return categoryAddProcessor, nil
	case "edit":
		return categoryEditProcessor, nil
	case "remove":
		return categoryRemoveProcessor, nil
	case "list":
		return categoryListProcessor, nil
	default:
		return nil, fmt.Errorf("unknown subcommand %q", cmd)
	}
}

func categoryAddProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if ok, err := requireAdmin(a, i); !ok {
		return err
	}

	opts := subcommandOptions(i)
	id := strings.ToLower(strings.TrimSpace(opts["id"].StringValue()))
	if id == "" {
		return respondSlashEphemeral(a, i, "The category id cannot be empty.")
	}

	category := categoryFromOptions(entities.Category{ID: id}, opts)
	if category.Embed.Title == "" {
		category.Embed = entities.CategoryEmbed{
			Title:       category.Name,
			Description: fmt.Sprintf("Welcome to your %s ticket!", category.Name),
			Color:       entities.ColorBlue,
		}
	}

	cfg := guildConfigFor(a, i)
	if err := cfg.Categories.Add(category); err != nil {
		switch {
		case errors.Is(err, entities.ErrDuplicateCategory):
			return respondSlashEphemeral(a, i, fmt.Sprintf("A category with id `%s` already exists.", id))
		case errors.Is(err, entities.ErrCategoryLimit):
			return respondSlashEphemeral(a, i, fmt.Sprintf("The category limit of %d has been reached.", entities.MaxCategories))
		default:
			return fmt.Errorf("error adding category: %w", err)
		}
	}

	if err := a.ConfigDal().SaveGuildConfig(context.Background(), cfg); err != nil {
		return fmt.Errorf("error saving guild config: %w", err)
	}

	return respondSlashEphemeral(a, i, fmt.Sprintf("Category `%s` added. Run /ticket-panel refresh to update the panel.", id))
}

func categoryEditProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if ok, err := requireAdmin(a, i); !ok {
		return err
	}

	opts := subcommandOptions(i)
	id := strings.ToLower(strings.TrimSpace(opts["id"].StringValue()))

	cfg := guildConfigFor(a, i)
	existing, ok := cfg.Categories.Get(id)
	if !ok {
		return respondSlashEphemeral(a, i, fmt.Sprintf("No category with id `%s` exists.", id))
	}

	updated := categoryFromOptions(*existing, opts)
	if err := cfg.Categories.Update(id, updated); err != nil {
		return fmt.Errorf("error updating category: %w", err)
	}

	if err := a.ConfigDal().SaveGuildConfig(context.Background(), cfg); err != nil {
		return fmt.Errorf("error saving guild config: %w", err)
	}

	return respondSlashEphemeral(a, i, fmt.Sprintf("Category `%s` updated. Run /ticket-panel refresh to update the panel.", id))
}

func categoryRemoveProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if ok, err := requireAdmin(a, i); !ok {
		return err
	}

	opts := subcommandOptions(i)
	id := strings.ToLower(strings.TrimSpace(opts["id"].StringValue()))

	cfg := guildConfigFor(a, i)
	if !cfg.Categories.Remove(id) {
		// Removing something that is not there is reported, not fatal.
		return respondSlashEphemeral(a, i, fmt.Sprintf("No category with id `%s` exists; nothing removed.", id))
	}

	if err := a.ConfigDal().SaveGuildConfig(context.Background(), cfg); err != nil {
		return fmt.Errorf("error saving guild config: %w", err)
	}

	return respondSlashEphemeral(a, i, fmt.Sprintf("Category `%s` removed. Run /ticket-panel refresh to update the panel.", id))
}

func categoryListProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if ok, err := requireAdmin(a, i); !ok {
		return err
	}

	cfg := guildConfigFor(a, i)
	if cfg.Categories.Len() == 0 {
		return respondSlashEphemeral(a, i, "No ticket categories are configured.")
	}

	var sb strings.Builder
	for _, c := range cfg.Categories.All() {
		line := fmt.Sprintf("`%s` - %s", c.ID, c.Name)
		if c.Emoji != "" {
			line = c.Emoji + " " + line
		}
		if c.Description != "" {
			line += ": " + c.Description
		}
		if c.StaffPing {
			line += " (pings staff)"
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Ticket Categories",
					Description: sb.String(),
					Color:       entities.ColorBlue,
				},
			},
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}
