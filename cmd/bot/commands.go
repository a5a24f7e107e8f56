package main

import (
	"fmt"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/flimando/porter/pkg/entities"
	"github.com/flimando/porter/pkg/ticketing"
)

const (
	// interactionInterval and interactionBurst bound how fast a single
	// user may click components.
	interactionInterval = 2 * time.Second
	interactionBurst    = 5
)

var (
	ticketSetupCmd = &discordgo.ApplicationCommand{
		Name:        "ticket-setup",
		Description: "Post the ticket panel in this channel.",
	}

	ticketConfigCmd = &discordgo.ApplicationCommand{
		Name:        "ticket-config",
		Description: "Show the ticket configuration for this server.",
	}

	ticketCategoryCmd = &discordgo.ApplicationCommand{
		Name:        "ticket-category",
		Description: "Manage ticket categories.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "add",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Add a ticket category.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "id",
						Type:        discordgo.ApplicationCommandOptionString,
						Description: "Short identifier for the category.",
						Required:    true,
					},
					{
						Name:        "name",
						Type:        discordgo.ApplicationCommandOptionString,
						Description: "Display name shown on the panel button.",
						Required:    true,
					},
					{
						Name:        "emoji",
						Type:        discordgo.ApplicationCommandOptionString,
						Description: "Emoji shown on the panel button.",
					},
					{
						Name:        "description",
						Type:        discordgo.ApplicationCommandOptionString,
						Description: "What this category is for.",
					},
					{
						Name:        "staff-ping",
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Description: "Ping the staff roles when a ticket opens.",
					},
					{
						Name:        "destination",
						Type:        discordgo.ApplicationCommandOptionChannel,
						Description: "Channel category new tickets are filed under.",
					},
				},
			},
			{
				Name:        "edit",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Edit a ticket category.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "id",
						Type:        discordgo.ApplicationCommandOptionString,
						Description: "Identifier of the category to edit.",
						Required:    true,
					},
					{
						Name:        "name",
						Type:        discordgo.ApplicationCommandOptionString,
						Description: "New display name.",
					},
					{
						Name:        "emoji",
						Type:        discordgo.ApplicationCommandOptionString,
						Description: "New emoji.",
					},
					{
						Name:        "description",
						Type:        discordgo.ApplicationCommandOptionString,
						Description: "New description.",
					},
					{
						Name:        "staff-ping",
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Description: "Ping the staff roles when a ticket opens.",
					},
					{
						Name:        "destination",
						Type:        discordgo.ApplicationCommandOptionChannel,
						Description: "Channel category new tickets are filed under.",
					},
				},
			},
			{
				Name:        "remove",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Remove a ticket category.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "id",
						Type:        discordgo.ApplicationCommandOptionString,
						Description: "Identifier of the category to remove.",
						Required:    true,
					},
				},
			},
			{
				Name:        "list",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "List the configured ticket categories.",
			},
		},
	}

	ticketPanelCmd = &discordgo.ApplicationCommand{
		Name:        "ticket-panel",
		Description: "Manage the ticket panel.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "refresh",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Re-render the panel from the current categories.",
			},
			{
				Name:        "restore",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Re-bind all panels and ticket controls.",
			},
		},
	}

	ticketSettingsCmd = &discordgo.ApplicationCommand{
		Name:        "ticket-settings",
		Description: "Change the ticket settings.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "enabled",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Enable or disable ticketing.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "value",
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Description: "Whether ticketing is enabled.",
						Required:    true,
					},
				},
			},
			{
				Name:        "staff-add",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Add a staff role.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "role",
						Type:        discordgo.ApplicationCommandOptionRole,
						Description: "Role granted access to every ticket.",
						Required:    true,
					},
				},
			},
			{
				Name:        "staff-remove",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Remove a staff role.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "role",
						Type:        discordgo.ApplicationCommandOptionRole,
						Description: "Role to remove from the staff list.",
						Required:    true,
					},
				},
			},
			{
				Name:        "log-channel",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Set the audit log channel.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "channel",
						Type:        discordgo.ApplicationCommandOptionChannel,
						Description: "Channel ticket audit messages are sent to.",
						Required:    true,
					},
				},
			},
			{
				Name:        "max-tickets",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Set how many tickets a user may have open.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "value",
						Type:        discordgo.ApplicationCommandOptionInteger,
						Description: fmt.Sprintf("Between %d and %d.", minMaxTickets, maxMaxTickets),
						Required:    true,
					},
				},
			},
			{
				Name:        "auto-close",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Set the inactivity auto-close window in hours.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "hours",
						Type:        discordgo.ApplicationCommandOptionInteger,
						Description: "Hours of silence before auto-close. 0 disables.",
						Required:    true,
					},
				},
			},
			{
				Name:        "transcripts",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "Enable or disable transcript export.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "value",
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Description: "Whether transcripts may be exported.",
						Required:    true,
					},
				},
			},
		},
	}

	ticketCleanupCmd = &discordgo.ApplicationCommand{
		Name:        "ticket-cleanup",
		Description: "Remove ticket records whose channel no longer exists.",
	}

	closeCmd = &discordgo.ApplicationCommand{
		Name:        "close",
		Description: "Close this ticket.",
	}

	// slashCommands is every command the bot registers per guild.
	slashCommands = []*discordgo.ApplicationCommand{
		ticketSetupCmd,
		ticketConfigCmd,
		ticketCategoryCmd,
		ticketPanelCmd,
		ticketSettingsCmd,
		ticketCleanupCmd,
		closeCmd,
	}

	// slashControllers routes command names to their processors.
	slashControllers = map[string]slashCommandController{
		ticketSetupCmd.Name:    singleProcessor(setupPanelProcessor),
		ticketConfigCmd.Name:   singleProcessor(showConfigProcessor),
		ticketCategoryCmd.Name: categoryController,
		ticketPanelCmd.Name:    panelController,
		ticketSettingsCmd.Name: settingsController,
		ticketCleanupCmd.Name:  singleProcessor(cleanupProcessor),
		closeCmd.Name:          singleProcessor(closeCommandProcessor),
	}

	// componentProcessors routes component custom IDs. Panel create
	// buttons carry the category in the ID and are matched by prefix
	// in the dispatcher instead.
	componentProcessors = map[string]slashProcessor{
		ticketing.ComponentClose:          closeButtonHandler,
		ticketing.ComponentCloseConfirm:   closeConfirmHandler,
		ticketing.ComponentCloseCancel:    closeCancelHandler,
		ticketing.ComponentAddParticipant: addParticipantHandler,
		ticketing.ComponentTranscript:     transcriptHandler,
	}
)

// singleProcessor adapts a command without subcommands to the
// controller shape.
func singleProcessor(p slashProcessor) slashCommandController {
	return func(IApp, string) (slashProcessor, error) {
		return p, nil
	}
}

// subcommandOptions returns the options of the invoked subcommand.
func subcommandOptions(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption)
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return out
	}
	for _, opt := range data.Options[0].Options {
		out[opt.Name] = opt
	}
	return out
}

// categoryFromOptions builds a Category from the add/edit options,
// starting from base.
func categoryFromOptions(base entities.Category, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) entities.Category {
	if opt, ok := opts["name"]; ok {
		base.Name = opt.StringValue()
	}
	if opt, ok := opts["emoji"]; ok {
		base.Emoji = opt.StringValue()
	}
	if opt, ok := opts["description"]; ok {
		base.Description = opt.StringValue()
	}
	if opt, ok := opts["staff-ping"]; ok {
		base.StaffPing = opt.BoolValue()
	}
	if opt, ok := opts["destination"]; ok {
		base.DestinationCategoryID = opt.ChannelValue(nil).ID
	}
	return base
}
