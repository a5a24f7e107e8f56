package main

import (
	"fmt"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/flimando/porter/cmd/bot/config"
	"github.com/flimando/porter/pkg/logging"

	"log/slog"
)

func guildJoinedHandler(a *App) func(s *discordgo.Session, g *discordgo.GuildCreate) {
	return func(_ *discordgo.Session, g *discordgo.GuildCreate) {
		a.Log().Info(fmt.Sprintf("Joined guild %s", g.Name))

		// Increment the total number of guilds.
		TotalDiscordGuilds.Inc()

		// Make the commands available without waiting for a restart.
		for _, cmd := range slashCommands {
			if _, err := a.Session().ApplicationCommandCreate(config.ApplicationId, g.ID, cmd); err != nil {
				a.Log().Error("Error creating command for joined guild",
					slog.String(logging.KeyGuild, g.ID),
					slog.String(logging.KeyCommand, cmd.Name),
					slog.String(logging.KeyError, err.Error()),
				)
			}
		}
	}
}

func guildLeaveHandler(a *App) func(s *discordgo.Session, g *discordgo.GuildDelete) {
	return func(_ *discordgo.Session, g *discordgo.GuildDelete) {
		a.Log().Info(fmt.Sprintf("Left guild %s", g.ID))

		// Decrement the total number of guilds.
		TotalDiscordGuilds.Dec()
	}
}
