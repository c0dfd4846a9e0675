package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/chatcal/internal/config"
	"github.com/teemow/chatcal/internal/instrumentation"
	"github.com/teemow/chatcal/internal/logging"
	"github.com/teemow/chatcal/internal/server"
	"github.com/teemow/chatcal/internal/transport"
)

const metricsStartTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the calendar bot",
		Long: `Run the calendar bot on a chat transport.

Transports:
  - console: read commands from the terminal (default)
  - mcp: expose the calendar_message tool over MCP on stdin/stdout

Commands understood by the bot:
  schedule <text>   create an event from a free-text description
  events            list the next upcoming events
  calendar setup    link a Google account
  calendar help     list the commands you may use

Configuration is read from --config, CHATCAL_* environment variables
and the flags below. google.client_id and google.client_secret are
required.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return runServe(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().String("transport", config.TransportConsole, "Transport type: console or mcp")
	cmd.Flags().String("console-user", "", "User id of the terminal user (console transport, default: $USER)")
	addCommonFlags(cmd)
	cmd.Flags().String("metrics-addr", instrumentation.DefaultConfig().MetricsAddr, "Metrics and health server address, empty to disable")
	cmd.Flags().String("metrics-exporter", instrumentation.ExporterPrometheus, "Metrics exporter: prometheus, otlp or stdout")
	cmd.Flags().String("tracing-exporter", instrumentation.ExporterNone, "Tracing exporter: otlp, stdout or none")
	cmd.Flags().String("otlp-endpoint", "", "OTLP collector endpoint, e.g. localhost:4318")
	cmd.Flags().Bool("instrumentation", true, "Enable OpenTelemetry instrumentation")

	return cmd
}

// addCommonFlags registers the flags shared by serve and auth.
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("calendar-id", config.DefaultCalendarID, "Calendar to operate on")
	cmd.Flags().String("log-level", "info", "Log level: debug, info, warn or error")
	cmd.Flags().String("log-format", logging.FormatText, "Log format: text or json")
	cmd.Flags().String("persistence", "file", "Token persistence: memory, file, sqlite or valkey")
	cmd.Flags().String("persistence-path", config.DefaultStatePath, "State file (file) or database (sqlite)")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Console.User == "" {
		cfg.Console.User = os.Getenv("USER")
	}
	cfg.Instrumentation.ServiceVersion = version
	return cfg, nil
}

func runServe(ctx context.Context, cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) error {
	logger, _, err := logging.New(stderr, cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	provider, err := instrumentation.NewProvider(ctx, cfg.Instrumentation)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	a, err := newApp(ctx, cfg, appDeps{logger: logger, provider: provider})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("error closing persistence", logging.Err(err))
		}
	}()

	health := server.NewHealthChecker()
	health.AddCheck("credentials", a.credentialsCheck)

	metricsServer, err := startMetricsServer(cfg, provider, health, logger)
	if err != nil {
		return err
	}
	if metricsServer != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("error during metrics server shutdown", logging.Err(err))
			}
		}()
	}

	health.SetReady(true)
	defer health.SetShuttingDown()

	logger.Info("starting calendar bot",
		slog.String("transport", cfg.Transport),
		slog.String("calendar", cfg.Calendar.ID),
		slog.Bool("linked", a.creds.Current().Linked()))

	switch cfg.Transport {
	case config.TransportMCP:
		return runMCP(ctx, a, logger)
	default:
		console := transport.NewConsole(stdin, stdout, cfg.Console.User, logger)
		a.router.Register(transport.ConsoleAdapter, console)
		return console.Run(ctx, a.bot)
	}
}

func runMCP(ctx context.Context, a *app, logger *slog.Logger) error {
	m := transport.NewMCP(version, logger)
	m.SetHandler(a.bot)
	m.AddStatusResource(a.status)
	a.router.Register(transport.MCPAdapter, m)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := m.ServeStdio(); err != nil {
			serverDone <- err
		}
	}()

	select {
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	case <-ctx.Done():
		return nil
	}
}

// startMetricsServer starts the metrics and health server when metrics are
// exported to Prometheus. It returns nil when there is nothing to serve.
func startMetricsServer(cfg *config.Config, provider *instrumentation.Provider, health *server.HealthChecker, logger *slog.Logger) (*server.MetricsServer, error) {
	if cfg.Instrumentation.MetricsAddr == "" || !provider.Enabled() || provider.MetricsHandler() == nil {
		return nil, nil
	}

	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    cfg.Instrumentation.MetricsAddr,
		InstrumentationProvider: provider,
		Health:                  health,
		Logger:                  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		logger.Info("metrics server started", slog.String("addr", metricsServer.Addr()))
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(metricsStartTimeout):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}
