package ticketing

import (
	"fmt"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/flimando/porter/pkg/entities"
)

const (
	closeEmoji      = "\U0001F512"
	addUserEmoji    = "➕"
	transcriptEmoji = "\U0001F4C4"
)

// PanelComponents builds one button per category, five to a row. The
// custom IDs are stable so buttons on old panel messages keep working.
func PanelComponents(cfg *entities.GuildConfig) []discordgo.MessageComponent {
	var components []discordgo.MessageComponent
	var row discordgo.ActionsRow

	for _, category := range cfg.Categories.All() {
		label := category.Name
		if category.Emoji != "" {
			label = fmt.Sprintf("%s %s", category.Emoji, category.Name)
		}

		row.Components = append(row.Components, discordgo.Button{
			Label:    label,
			Style:    discordgo.PrimaryButton,
			Emoji:    discordgo.ComponentEmoji{},
			CustomID: CreateComponentID(category.ID),
		})

		// Discord caps a row at five buttons.
		if len(row.Components) == 5 {
			components = append(components, row)
			row = discordgo.ActionsRow{}
		}
	}
	if len(row.Components) > 0 {
		components = append(components, row)
	}

	return components
}

// PanelEmbed builds the panel embed from the guild's message templates.
func PanelEmbed(cfg *entities.GuildConfig) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       cfg.Message(entities.MsgPanelTitle),
		Description: cfg.Message(entities.MsgPanelDescription),
		Color:       entities.ColorBlue,
	}
}

// PanelMessage builds the full panel message.
func PanelMessage(cfg *entities.GuildConfig) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embed:      PanelEmbed(cfg),
		Components: PanelComponents(cfg),
	}
}

// ControlComponents builds the button row posted inside each ticket.
// The transcript button is left off when transcripts are disabled.
func ControlComponents(cfg *entities.GuildConfig) []discordgo.MessageComponent {
	row := discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    fmt.Sprintf("%s Close", closeEmoji),
				Style:    discordgo.DangerButton,
				Emoji:    discordgo.ComponentEmoji{},
				CustomID: ComponentClose,
			},
			discordgo.Button{
				Label:    fmt.Sprintf("%s Add User", addUserEmoji),
				Style:    discordgo.SecondaryButton,
				Emoji:    discordgo.ComponentEmoji{},
				CustomID: ComponentAddParticipant,
			},
		},
	}

	if cfg.TranscriptEnabled {
		row.Components = append(row.Components, discordgo.Button{
			Label:    fmt.Sprintf("%s Transcript", transcriptEmoji),
			Style:    discordgo.SecondaryButton,
			Emoji:    discordgo.ComponentEmoji{},
			CustomID: ComponentTranscript,
		})
	}

	return []discordgo.MessageComponent{row}
}

// ControlMessage builds the control message sent into a freshly
// created ticket channel. The owner is mentioned, and the guild's
// staff roles are pinged when the category asks for it.
func ControlMessage(cfg *entities.GuildConfig, ownerID string, category *entities.Category) *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Title:       category.Embed.Title,
		Description: category.Embed.Description,
		Color:       category.Embed.Color,
	}
	if embed.Title == "" {
		embed.Title = category.Name
	}
	if embed.Color == 0 {
		embed.Color = entities.ColorBlue
	}

	mentions := []string{fmt.Sprintf("<@%s>", ownerID)}
	if category.StaffPing {
		for _, roleID := range cfg.StaffRoleIDs {
			mentions = append(mentions, fmt.Sprintf("<@&%s>", roleID))
		}
	}

	return &discordgo.MessageSend{
		Content:    strings.Join(mentions, " "),
		Embed:      embed,
		Components: ControlComponents(cfg),
	}
}

// CloseConfirmComponents builds the confirm/cancel row for closing a
// ticket.
func CloseConfirmComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Confirm",
					Style:    discordgo.DangerButton,
					Emoji:    discordgo.ComponentEmoji{},
					CustomID: ComponentCloseConfirm,
				},
				discordgo.Button{
					Label:    "Cancel",
					Style:    discordgo.SecondaryButton,
					Emoji:    discordgo.ComponentEmoji{},
					CustomID: ComponentCloseCancel,
				},
			},
		},
	}
}
