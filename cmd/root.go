package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the chatcal application
var rootCmd = &cobra.Command{
	Use:   "chatcal",
	Short: "Google Calendar commands for chat",
	Long: `chatcal is a chat bot plugin that creates and lists Google Calendar
events from chat messages.

It can run as:
  - A terminal bot (serve --transport console)
  - An MCP (Model Context Protocol) server for AI assistants (serve --transport mcp)`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "chatcal version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ./chatcal.yaml or $HOME/.config/chatcal/chatcal.yaml)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
