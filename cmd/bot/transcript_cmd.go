package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/flimando/porter/pkg/entities"
	"github.com/flimando/porter/pkg/ticketing"
)

// transcriptHandler handles the transcript button: the channel history
// is rendered to a standalone HTML file and attached to an ephemeral
// reply.
func transcriptHandler(a IApp, i *discordgo.InteractionCreate) error {
	cfg := guildConfigFor(a, i)
	if !cfg.TranscriptEnabled {
		return respondSlashEphemeral(a, i, "Transcripts are disabled on this server.")
	}

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

	transcript, err := a.Exporter().Export(i.ChannelID)
	if err != nil {
		return fmt.Errorf("error exporting transcript: %w", err)
	}

	name := fmt.Sprintf("transcript-%s-%s.html", i.ChannelID, time.Now().UTC().Format("20060102-150405"))

	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Here is the transcript of this ticket.",
			Flags:   discordgo.MessageFlagsEphemeral,
			Files: []*discordgo.File{
				{
					Name:        name,
					ContentType: "text/html",
					Reader:      bytes.NewReader(transcript),
				},
			},
		},
	})
}
