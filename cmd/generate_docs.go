package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/chatcal/internal/command"
	"github.com/teemow/chatcal/internal/plugin"
	"github.com/teemow/chatcal/internal/transport"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate chat command and MCP tool documentation",
		Long: `Generate markdown documentation for the chat commands and the MCP tool.
This command introspects the registered command rules and tools and outputs
their documentation in markdown format, so the documentation stays in sync
with the implementation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

// docsSetup stands in for the auth controller so the setup rule is listed.
type docsSetup struct{}

func (docsSetup) BeginSetup(context.Context, string, string) (string, error) {
	return "", nil
}

func runGenerateDocs(outputFile string) error {
	rules := plugin.New(nil, docsSetup{}).Rules()

	serverTools := transport.NewMCP(version, nil).Server().ListTools()

	// Extract mcp.Tool from each ServerTool
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}
	sort.Slice(tools, func(i, j int) bool {
		return tools[i].Name < tools[j].Name
	})

	markdown := generateCommandsMarkdown(rules) + "\n" + generateToolsMarkdown(tools)

	// Write to output
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	} else {
		fmt.Print(markdown)
	}

	return nil
}

func generateCommandsMarkdown(rules []command.Rule) string {
	var sb strings.Builder

	sb.WriteString("# Chat Commands Reference\n\n")
	sb.WriteString("Commands are matched case-insensitively in the order listed; the first match wins.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the command rules.\n\n")

	sb.WriteString("| Command | Usage | Permission |\n")
	sb.WriteString("|---------|-------|------------|\n")
	for _, r := range rules {
		sb.WriteString(fmt.Sprintf("| `%s` | %s | `%s` |\n", r.Name, r.Help, r.Permission))
	}
	sb.WriteString("\n")
	sb.WriteString("Users are granted permissions in the `permissions` section of the config file. ")
	sb.WriteString(fmt.Sprintf("`%s` commands are available to everybody.\n", command.Public))

	return sb.String()
}

func generateToolsMarkdown(tools []mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("These tools are available when running `chatcal serve --transport mcp`.\n\n")

	for _, tool := range tools {
		sb.WriteString(generateToolMarkdown(tool))
		sb.WriteString("\n")
	}

	return sb.String()
}

func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	// Tool name
	sb.WriteString(fmt.Sprintf("## %s\n\n", tool.Name))

	// Description
	if tool.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", tool.Description))
	}

	// Input schema
	if len(tool.InputSchema.Properties) > 0 {
		sb.WriteString("**Arguments:**\n")

		// Sort properties for consistent output
		propNames := make([]string, 0, len(tool.InputSchema.Properties))
		for name := range tool.InputSchema.Properties {
			propNames = append(propNames, name)
		}
		sort.Strings(propNames)

		for _, name := range propNames {
			prop := tool.InputSchema.Properties[name]

			requiredStr := "optional"
			if contains(tool.InputSchema.Required, name) {
				requiredStr = "required"
			}

			// Get property type and description from the property map
			propMap, ok := prop.(map[string]interface{})
			if !ok {
				continue
			}

			sb.WriteString(fmt.Sprintf("- `%s` (%s): ", name, requiredStr))

			if desc, ok := propMap["description"].(string); ok {
				sb.WriteString(desc)
			} else {
				sb.WriteString(fmt.Sprintf("%s parameter", getPropertyType(propMap)))
			}

			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func getPropertyType(prop map[string]interface{}) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
