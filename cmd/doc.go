// Package cmd implements the command-line interface for chatcal.
//
// This package provides the following commands:
//   - serve: Run the calendar bot on the console or MCP transport
//   - auth: Link a Google Calendar account from the terminal
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for the chat commands and the MCP tool
package cmd
