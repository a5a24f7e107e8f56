package main

import (
	"context"
	"strings"
	"time"

	"log/slog"

	"github.com/flimando/porter/pkg/entities"
	"github.com/flimando/porter/pkg/logging"
	"github.com/flimando/porter/pkg/ticketing"
)

const (
	// autoCloseInterval is how often stale tickets are swept.
	autoCloseInterval = time.Hour

	// housekeepingInterval is how often expired prompts and idle
	// rate-limiter entries are dropped.
	housekeepingInterval = 10 * time.Minute
)

// startBackground re-binds the panel and ticket control surfaces left
// over from before the restart, then starts the periodic sweeps. All of
// it runs off the event loop so a slow Discord API cannot hold up
// startup.
func (a *App) startBackground() {
	go func() {
		if err := a.restorer.RestoreAll(context.Background()); err != nil {
			a.Error("Error restoring persistent views", slog.String(logging.KeyError, err.Error()))
		}
	}()

	go func() {
		ticker := time.NewTicker(autoCloseInterval)
		defer ticker.Stop()
		for range ticker.C {
			closed, err := a.autoClose.Sweep(context.Background())
			if err != nil {
				a.Error("Error sweeping stale tickets", slog.String(logging.KeyError, err.Error()))
				continue
			}
			if closed > 0 {
				a.Info("Closed stale tickets", slog.Int("closed", closed))
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(housekeepingInterval)
		defer ticker.Stop()
		for range ticker.C {
			for _, prompt := range a.collector.Expire() {
				a.notifyPromptTimeout(prompt)
			}
			a.limiter.Sweep()
		}
	}()
}

// notifyPromptTimeout tells the user their add-user prompt lapsed.
// Expired close confirmations are dropped silently; the prompt message
// itself was ephemeral.
func (a *App) notifyPromptTimeout(prompt ticketing.PendingPrompt) {
	channelID, ok := strings.CutPrefix(prompt.ChannelID, addUserKeyPrefix)
	if !ok {
		return
	}

	channel, err := a.s.Channel(channelID)
	if err != nil {
		return
	}
	cfg := a.configDal.GetGuildConfig(context.Background(), channel.GuildID)

	if _, err := a.s.ChannelMessageSend(channelID, cfg.Message(entities.MsgAddUserTimeout)); err != nil {
		a.Warn("Error sending prompt timeout message",
			slog.String(logging.KeyChannel, channelID),
			slog.String(logging.KeyError, err.Error()),
		)
	}
}
