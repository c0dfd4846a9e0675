package transport

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusResourceURI is the MCP resource describing the bot's state.
const StatusResourceURI = "chatcal://status"

// Status is the content of the status resource.
type Status struct {
	CalendarID string   `json:"calendarId"`
	Linked     bool     `json:"linked"`
	Commands   []string `json:"commands"`
}

// StatusFunc reports the current status.
type StatusFunc func(ctx context.Context) Status

// AddStatusResource registers the status resource.
func (m *MCP) AddStatusResource(status StatusFunc) {
	resource := mcp.NewResource(
		StatusResourceURI,
		"Calendar Bot Status",
		mcp.WithResourceDescription("Whether a Google account is linked, the calendar in use and the public commands"),
		mcp.WithMIMEType("application/json"),
	)

	m.server.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return readStatus(ctx, request, status)
	})
}

func readStatus(ctx context.Context, request mcp.ReadResourceRequest, status StatusFunc) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(status(ctx), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal status: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
