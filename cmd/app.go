package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/oauth2"

	"github.com/teemow/chatcal/internal/auth"
	"github.com/teemow/chatcal/internal/bot"
	"github.com/teemow/chatcal/internal/calendar"
	"github.com/teemow/chatcal/internal/command"
	"github.com/teemow/chatcal/internal/config"
	"github.com/teemow/chatcal/internal/google"
	"github.com/teemow/chatcal/internal/instrumentation"
	"github.com/teemow/chatcal/internal/logging"
	"github.com/teemow/chatcal/internal/persist"
	"github.com/teemow/chatcal/internal/plugin"
	"github.com/teemow/chatcal/internal/transport"
)

// app is the wired bot: one credential store, one calendar client and the
// components that share them.
type app struct {
	logger     *slog.Logger
	calendarID string
	store      persist.Store
	creds      *google.CredentialStore
	controller *auth.Controller
	dispatcher *command.Dispatcher
	bot        *bot.Bot
	router     *transport.Router
}

// appDeps are the inputs of newApp that do not come from configuration.
type appDeps struct {
	logger   *slog.Logger
	provider *instrumentation.Provider

	// Overrides for tests.
	oauthEndpoint   oauth2.Endpoint
	calendarOptions []calendar.ClientOption
}

func newApp(ctx context.Context, cfg *config.Config, deps appDeps) (*app, error) {
	logger := deps.logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := deps.provider.Metrics()

	store, err := persist.Open(ctx, cfg.Store())
	if err != nil {
		return nil, fmt.Errorf("failed to open persistence: %w", err)
	}

	initial, err := persist.LoadCredentials(ctx, store, cfg.Credentials())
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	oauthCfg := cfg.OAuth()
	oauthCfg.Endpoint = deps.oauthEndpoint

	creds, err := google.NewCredentialStore(oauthCfg, initial,
		google.WithRecorder(metrics),
		google.WithLogger(logger),
		google.WithRefreshHook(func(ctx context.Context, refreshed google.CredentialSet) {
			if err := persist.SaveCredentials(ctx, store, refreshed); err != nil {
				logger.Warn("failed to persist refreshed credentials", logging.Err(err))
			}
		}),
	)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create credential store: %w", err)
	}

	calOpts := append([]calendar.ClientOption{
		calendar.WithRecorder(metrics),
		calendar.WithLogger(logger),
	}, deps.calendarOptions...)

	client, err := calendar.NewClient(ctx, creds.TokenSource(ctx), calOpts...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	router := transport.NewRouter()

	controller := auth.NewController(creds, store, router,
		auth.WithLogger(logger),
		auth.WithRecorder(metrics),
	)

	cal := plugin.New(client, controller,
		plugin.WithCalendarID(cfg.Calendar.ID),
		plugin.WithLogger(logger),
	)
	dispatcher := cal.Dispatcher(command.NewGroupAuthorizer(cfg.PermissionGroups()),
		command.WithRecorder(metrics),
		command.WithLogger(logger),
	)

	return &app{
		logger:     logger,
		calendarID: cfg.Calendar.ID,
		store:      store,
		creds:      creds,
		controller: controller,
		dispatcher: dispatcher,
		bot:        bot.New(dispatcher, controller, logger),
		router:     router,
	}, nil
}

// credentialsCheck reports whether a calendar account is linked.
func (a *app) credentialsCheck() error {
	if !a.creds.Current().Linked() {
		return fmt.Errorf("no calendar account linked, run \"calendar setup\"")
	}
	return nil
}

// status describes the bot for the MCP status resource.
func (a *app) status(context.Context) transport.Status {
	return transport.Status{
		CalendarID: a.calendarID,
		Linked:     a.creds.Current().Linked(),
		Commands:   strings.Split(a.dispatcher.Help(""), "\n"),
	}
}

func (a *app) Close() error {
	return a.store.Close()
}
