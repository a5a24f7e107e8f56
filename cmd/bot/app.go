package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/flimando/porter/cmd/bot/config"
	"github.com/flimando/porter/pkg/dataaccess"
	"github.com/flimando/porter/pkg/logging"
	"github.com/flimando/porter/pkg/request"
	"github.com/flimando/porter/pkg/ticketing"
	"github.com/flimando/porter/pkg/transcript"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// PathMetrics is the path for metrics.
	PathMetrics = "/metrics"

	// PathHealth is the path for the health check.
	PathHealth = "/health"
)

// IApp is the surface the command and component handlers see.
type IApp interface {
	// Session returns the discord session.
	Session() *discordgo.Session

	// Log returns the logger.
	Log() *slog.Logger

	// ConfigDal returns the guild config store.
	ConfigDal() dataaccess.IGuildConfigDal

	// TicketDal returns the ticket store.
	TicketDal() dataaccess.ITicketDal

	// PanelDal returns the panel store.
	PanelDal() dataaccess.IPanelDal

	// Registry returns the ticket registry.
	Registry() *ticketing.Registry

	// Ghosts returns the ghost reconciler.
	Ghosts() *ticketing.GhostReconciler

	// Collector returns the pending-prompt collector.
	Collector() *ticketing.Collector

	// Restorer returns the persistent-view restorer.
	Restorer() *ticketing.Restorer

	// Exporter returns the transcript exporter.
	Exporter() *transcript.Exporter
}

type App struct {
	// is the logger.
	*slog.Logger

	// r is the router for the application.
	r *mux.Router

	// svr is the server for the application.
	svr *http.Server

	// s is the discord session.
	s *discordgo.Session

	// eventNotifier is the channel for notifying of events.
	eventNotifier chan any

	configDal dataaccess.IGuildConfigDal
	ticketDal dataaccess.ITicketDal
	panelDal  dataaccess.IPanelDal

	registry  *ticketing.Registry
	ghosts    *ticketing.GhostReconciler
	collector *ticketing.Collector
	restorer  *ticketing.Restorer
	autoClose *ticketing.AutoCloser
	limiter   *ticketing.InteractionLimiter
	exporter  *transcript.Exporter
}

// NewApp creates a new instance of App.
func NewApp(l *slog.Logger, r *mux.Router) *App {
	return &App{
		Logger: l,
		r:      r,
	}
}

func (a *App) Run() error {
	// Register bot.
	if err := a.RegisterBot(); err != nil {
		return fmt.Errorf("error registering bot: %w", err)
	}

	// The DALs and services need the Mongo connection, so they are
	// built after config.Parse has run.
	a.buildServices()

	a.s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		a.Info(fmt.Sprintf("Logged in as %s#%s", r.User.Username, r.User.Discriminator))
	})

	// Register slash commands.
	if err := a.registerSlashCommands(); err != nil {
		return fmt.Errorf("error registering slash commands: %w", err)
	}

	if err := a.RegisterDiscordHandlers(); err != nil {
		return fmt.Errorf("error registering discord handlers: %w", err)
	}

	// Start event listener.
	go a.eventListener()

	// Open websocket.
	if err := a.s.Open(); err != nil {
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	a.Info("Bot is now running.")

	// Re-bind the panel and ticket control surfaces that survived the
	// restart, then start the periodic sweeps.
	a.startBackground()

	a.generateServer()
	a.setupRoutes()
	a.runServer()

	// Register listener for shutdown signal.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	// Process shutdown signal.
	for sig := range c {
		a.Info("Received shutdown signal", slog.String("signal", sig.String()))
		if err := a.ShutdownHook(); err != nil {
			a.Error("Error shutting down application", slog.String(logging.KeyError, err.Error()))
		}
		os.Exit(0)
	}
	return nil
}

func (a *App) buildServices() {
	a.configDal = dataaccess.NewGuildConfigDal(a.Logger)
	a.ticketDal = dataaccess.NewTicketDal(a.Logger)
	a.panelDal = dataaccess.NewPanelDal(a.Logger)

	a.registry = ticketing.NewRegistry(a.Logger, a.ticketDal)
	a.ghosts = ticketing.NewGhostReconciler(a.Logger, a.ticketDal, a.s)
	a.collector = ticketing.NewCollector()
	a.restorer = ticketing.NewRestorer(a.Logger, a.configDal, a.panelDal, a.ticketDal, a.s)
	a.autoClose = ticketing.NewAutoCloser(a.Logger, a.configDal, a.ticketDal, a.s, autoCloseTicket(a))
	a.limiter = ticketing.NewInteractionLimiter(interactionInterval, interactionBurst)
	a.exporter = transcript.NewExporter(a.Logger, a.s)
}

func (a *App) ShutdownHook() error {
	// Reset the total number of guilds to 0.
	TotalDiscordGuilds.Set(0)

	// Unregister slash commands.
	if err := a.unregisterSlashCommands(); err != nil {
		return fmt.Errorf("error unregistering slash commands: %w", err)
	}

	// Close the connection to Discord.
	if err := a.s.Close(); err != nil {
		return fmt.Errorf("error closing connection to Discord: %w", err)
	}
	return nil
}

func (a *App) RegisterBot() error {
	// Default the number of guilds to 0.
	TotalDiscordGuilds.Set(0)

	dg, err := discordgo.New("Bot " + config.BotToken)
	if err != nil {
		return fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsAll)

	if a.eventNotifier == nil {
		// Buffered to keep the gateway reader from blocking on us.
		a.eventNotifier = make(chan any, 100)
	}

	dg.SetEventNotifier(a.eventNotifier)

	a.s = dg
	return nil
}

func (a *App) runServer() {
	go func() {
		a.Info("Starting monitoring server")
		if err := a.svr.ListenAndServe(); err != nil {
			a.Error("Error starting monitoring server", slog.String(logging.KeyError, err.Error()))
			a.Warn("Monitoring server will not be available")
		}
	}()
}

func (a *App) setupRoutes() {
	// PathMetrics is the path for metrics.
	a.r.HandleFunc(PathMetrics, promhttp.Handler().ServeHTTP).Methods(http.MethodGet)

	// PathHealth is the path for health check.
	a.r.HandleFunc(PathHealth, middlewareHttp(a.healthCheck(), a)).Methods(http.MethodGet)

	// NotFoundHandler is the handler for 404.
	a.r.NotFoundHandler = request.NotFoundHandler(a.Logger)

	// MethodNotAllowedHandler is the handler for 405.
	a.r.MethodNotAllowedHandler = request.MethodNotAllowedHandler(a.Logger)
}

func (a *App) generateServer() {
	a.svr = &http.Server{
		Addr:    ":" + config.MonitoringPort,
		Handler: a.r,
	}
}

func (a *App) GetJoinedGuilds() ([]*discordgo.UserGuild, error) {
	guilds, err := a.s.UserGuilds(0, "", "")
	if err != nil {
		return nil, fmt.Errorf("error getting guilds: %w", err)
	}
	return guilds, nil
}

func (a *App) RegisterDiscordHandlers() error {
	// Bot joined guild.
	a.s.AddHandler(guildJoinedHandler(a))

	// Bot left guild.
	a.s.AddHandler(guildLeaveHandler(a))

	// Interaction create handler.
	a.s.AddHandler(interactionHandler(a, slashControllers, componentProcessors))

	// Free-text replies for pending prompts (add-participant flow).
	a.s.AddHandler(messageCreateHandler(a))
	return nil
}

func (a *App) eventListener() {
	for e := range a.eventNotifier {
		switch t := e.(type) {
		case *discordgo.Event:
			if t.Type != "" {
				TotalDiscordEvents.WithLabelValues(t.Type).Inc()
			} else {
				// If there is no type, then use the operation name.
				TotalDiscordEvents.WithLabelValues(strings.ToUpper(t.Operation.String())).Inc()
			}
		default:
			a.Error("Unknown event type", slog.String("type", fmt.Sprintf("%T", e)))
			TotalDiscordEvents.WithLabelValues("UNKNOWN").Inc()
		}
	}
}

func (a *App) registerSlashCommands() error {
	// Get all guilds the bot is in.
	guilds, err := a.GetJoinedGuilds()
	if err != nil {
		return fmt.Errorf("error getting guilds: %w", err)
	}

	// Register slash commands for each guild.
	for _, g := range guilds {
		for _, cmd := range slashCommands {
			if _, err := a.Session().ApplicationCommandCreate(config.ApplicationId, g.ID, cmd); err != nil {
				return fmt.Errorf("error creating %s command for guild %s: %w", cmd.Name, g.ID, err)
			}
		}
	}
	return nil
}

func (a *App) unregisterSlashCommands() error {
	// Get all guilds the bot is in.
	guilds, err := a.GetJoinedGuilds()
	if err != nil {
		return fmt.Errorf("error getting guilds: %w", err)
	}

	// Delete slash commands for each guild.
	for _, guild := range guilds {
		for _, cmd := range slashCommands {
			if err := a.s.ApplicationCommandDelete(config.ApplicationId, guild.ID, cmd.ID); err != nil {
				return fmt.Errorf("error deleting %s command for guild %s: %w", cmd.Name, guild.ID, err)
			}
		}
	}
	return nil
}

func (a *App) Session() *discordgo.Session {
	return a.s
}

func (a *App) Log() *slog.Logger {
	return a.Logger
}

func (a *App) ConfigDal() dataaccess.IGuildConfigDal {
	return a.configDal
}

func (a *App) TicketDal() dataaccess.ITicketDal {
	return a.ticketDal
}

func (a *App) PanelDal() dataaccess.IPanelDal {
	return a.panelDal
}

func (a *App) Registry() *ticketing.Registry {
	return a.registry
}

func (a *App) Ghosts() *ticketing.GhostReconciler {
	return a.ghosts
}

func (a *App) Collector() *ticketing.Collector {
	return a.collector
}

func (a *App) Restorer() *ticketing.Restorer {
	return a.restorer
}

func (a *App) Exporter() *transcript.Exporter {
	return a.exporter
}
