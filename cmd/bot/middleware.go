package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/flimando/porter/pkg/logging"
	"github.com/flimando/porter/pkg/request"
	"github.com/flimando/porter/pkg/ticketing"
	"github.com/gorilla/mux"
)

// slashCommandController resolves a subcommand name to its processor.
type slashCommandController func(a IApp, cmd string) (slashProcessor, error)

// slashProcessor handles a single interaction.
type slashProcessor func(a IApp, i *discordgo.InteractionCreate) error

type Controller func(w http.ResponseWriter, r *http.Request)

func middlewareHttp(handler Controller, a IApp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		cw := request.NewClientWriter(w)

		// Recover from any panics that occur in the handler.
		defer func() {
			if rec := recover(); rec != nil {
				a.Log().Error("Panic in handler",
					slog.String(logging.KeyError, fmt.Sprintf("%v", rec)),
					slog.String("stack", string(debug.Stack())),
				)
				cw.WriteHeader(http.StatusInternalServerError)
				if err := json.NewEncoder(cw).Encode(request.NewMessage(request.ErrInternalServer.Error())); err != nil {
					a.Log().Error("Error encoding response", slog.String(logging.KeyError, err.Error()))
				}
			}
		}()

		var path string
		route := mux.CurrentRoute(r)
		if route != nil { // The route may be nil if the request is not routed.
			var err error
			path, err = route.GetPathTemplate()
			if err != nil {
				// An error here is only returned if the route does not define a path.
				a.Log().Error("Error getting path template", slog.String(logging.KeyError, err.Error()))
				path = r.URL.Path // If the route does not define a path, use the URL path.
			}
		} else {
			path = r.URL.Path // If the route is nil, use the URL path.
		}

		defer func() {
			// Run after the handler, as the status code is not available until then.
			HttpTotalRequests.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Inc()
			HttpRequestDuration.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Observe(time.Since(now).Seconds())
		}()

		handler(cw, r)
	}
}

// interactionHandler routes slash commands and component clicks to
// their processors. Errors and panics are logged with context and
// answered with a generic ephemeral message; one bad interaction never
// takes the process down.
func interactionHandler(a *App, slash map[string]slashCommandController, components map[string]slashProcessor) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		defer func() {
			if rec := recover(); rec != nil {
				a.Log().Error("Panic in interaction handler",
					slog.String(logging.KeyError, fmt.Sprintf("%v", rec)),
					slog.String(logging.KeyGuild, i.GuildID),
					slog.String("stack", string(debug.Stack())),
				)
				if err := respondSlashError(a, i); err != nil {
					a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
				}
			}
		}()

		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			slashCommandHandler(a, slash)(i)
		case discordgo.InteractionMessageComponent:
			componentHandler(a, components)(i)
		}
	}
}

func slashCommandHandler(a *App, controllers map[string]slashCommandController) func(i *discordgo.InteractionCreate) {
	return func(i *discordgo.InteractionCreate) {
		data := i.ApplicationCommandData()
		a.Log().Debug("Handling interaction " + data.Name)

		t := time.Now()
		defer func() {
			DiscordCommandDuration.WithLabelValues(data.Name).Observe(time.Since(t).Seconds())
		}()

		controller, ok := controllers[data.Name]
		if !ok {
			a.Log().Error("No controller found for command",
				slog.String(logging.KeyCommand, data.Name))

			if err := respondSlashError(a, i); err != nil {
				a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
			}
			return
		}

		sub := ""
		if len(data.Options) > 0 && data.Options[0].Type == discordgo.ApplicationCommandOptionSubCommand {
			sub = data.Options[0].Name
		}

		processor, err := controller(a, sub)
		if err != nil {
			a.Log().Error(fmt.Sprintf("Error getting processor for command %s", data.Name),
				slog.String(logging.KeyError, err.Error()))

			if err := respondSlashError(a, i); err != nil {
				a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
			}
			return
		}

		if err := processor(a, i); err != nil {
			a.Log().Error(fmt.Sprintf("Error processing command %s", data.Name),
				slog.String(logging.KeyError, err.Error()),
				slog.String(logging.KeyGuild, i.GuildID),
				slog.String(logging.KeyUser, interactionUserID(i)),
			)

			if err := respondSlashError(a, i); err != nil {
				a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
			}
		}
	}
}

func componentHandler(a *App, processors map[string]slashProcessor) func(i *discordgo.InteractionCreate) {
	return func(i *discordgo.InteractionCreate) {
		customID := i.MessageComponentData().CustomID
		a.Log().Debug("Handling component " + customID)

		// A held-down button is not a workload.
		if !a.limiter.Allow(interactionUserID(i)) {
			if err := respondSlashEphemeral(a, i, "You are clicking too fast. Give it a moment."); err != nil {
				a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
			}
			return
		}

		t := time.Now()
		defer func() {
			DiscordCommandDuration.WithLabelValues(customID).Observe(time.Since(t).Seconds())
		}()

		processor, ok := processors[customID]
		if !ok {
			// Panel buttons carry the category in the custom ID.
			if _, isCreate := ticketing.ParseCreateComponentID(customID); isCreate {
				processor = createTicketHandler
			}
		}
		if processor == nil {
			a.Log().Error("No processor found for component",
				slog.String(logging.KeyCommand, customID))

			if err := respondSlashError(a, i); err != nil {
				a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
			}
			return
		}

		if err := processor(a, i); err != nil {
			a.Log().Error(fmt.Sprintf("Error processing component %s", customID),
				slog.String(logging.KeyError, err.Error()),
				slog.String(logging.KeyGuild, i.GuildID),
				slog.String(logging.KeyUser, interactionUserID(i)),
			)

			if err := respondSlashError(a, i); err != nil {
				a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
			}
		}
	}
}
