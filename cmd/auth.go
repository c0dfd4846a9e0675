package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/chatcal/internal/auth"
	"github.com/teemow/chatcal/internal/chat"
	"github.com/teemow/chatcal/internal/config"
	"github.com/teemow/chatcal/internal/instrumentation"
	"github.com/teemow/chatcal/internal/logging"
	"github.com/teemow/chatcal/internal/transport"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Link a Google Calendar account from the terminal",
		Long: `Run the calendar setup flow in the terminal.

chatcal prints an authorization URL. Open it, grant access and paste the
code Google shows you. The tokens are saved to the configured persistence
backend and used by "chatcal serve".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return runAuth(ctx, cfg, appDeps{}, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	addCommonFlags(cmd)
	return cmd
}

func runAuth(ctx context.Context, cfg *config.Config, deps appDeps, stdin io.Reader, stdout, stderr io.Writer) error {
	if deps.logger == nil {
		logger, _, err := logging.New(stderr, cfg.Log.Format, cfg.Log.Level)
		if err != nil {
			return err
		}
		deps.logger = logger
	}
	if deps.provider == nil {
		instrCfg := cfg.Instrumentation
		instrCfg.Enabled = false
		provider, err := instrumentation.NewProvider(ctx, instrCfg)
		if err != nil {
			return err
		}
		deps.provider = provider
	}

	a, err := newApp(ctx, cfg, deps)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	user := cfg.Console.User
	if user == "" {
		user = "terminal"
	}

	console := transport.NewConsole(stdin, stdout, user, deps.logger)
	a.router.Register(transport.ConsoleAdapter, console)

	if _, err := a.controller.BeginSetup(ctx, user, transport.ConsoleAdapter); err != nil {
		return err
	}

	scanner := bufio.NewScanner(stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read code: %w", err)
		}
		return fmt.Errorf("no authorization code entered")
	}

	msg := chat.Message{
		UserID:  user,
		Adapter: transport.ConsoleAdapter,
		Text:    strings.TrimSpace(scanner.Text()),
		Type:    auth.PromptType,
	}
	if !a.controller.CompleteSetup(ctx, msg) {
		return fmt.Errorf("calendar setup failed")
	}
	return nil
}
