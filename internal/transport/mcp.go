package transport

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/chatcal/internal/chat"
	"github.com/teemow/chatcal/internal/logging"
)

// MCPAdapter is the adapter name of the MCP transport.
const MCPAdapter = "mcp"

// MessageToolName is the MCP tool that relays a chat message.
const MessageToolName = "calendar_message"

// MCP exposes the bot as an MCP tool. Output sent to a user while their
// message is handled (prompts, setup notices) is returned in the tool result.
type MCP struct {
	handler Handler
	server  *mcpserver.MCPServer
	logger  *slog.Logger

	prompts promptTracker

	mu     sync.Mutex
	outbox map[string][]string
}

// NewMCP creates the MCP transport and registers its tool. The handler can
// be set later with SetHandler, since the bot usually needs the transport
// to be built first.
func NewMCP(version string, logger *slog.Logger) *MCP {
	if logger == nil {
		logger = slog.Default()
	}

	m := &MCP{
		server: mcpserver.NewMCPServer("chatcal", version,
			mcpserver.WithToolCapabilities(true),
			mcpserver.WithResourceCapabilities(false, false),
		),
		logger: logging.WithService(logger, "mcp"),
		outbox: make(map[string][]string),
	}

	messageTool := mcp.NewTool(MessageToolName,
		mcp.WithDescription("Send a chat message to the calendar bot on behalf of a user. "+
			"Supports \"schedule <event>\", \"events\", \"calendar setup\" and \"calendar help\". "+
			"After \"calendar setup\", send the authorization code as the next message."),
		mcp.WithString("user",
			mcp.Required(),
			mcp.Description("Stable identifier of the user sending the message"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The message text"),
		),
	)
	m.server.AddTool(messageTool, m.handleMessage)

	return m
}

// SetHandler sets the handler tool calls are delivered to.
func (m *MCP) SetHandler(h Handler) {
	m.handler = h
}

// Server returns the underlying MCP server.
func (m *MCP) Server() *mcpserver.MCPServer {
	return m.server
}

// ServeStdio serves the MCP protocol on stdin and stdout until EOF.
func (m *MCP) ServeStdio() error {
	return mcpserver.ServeStdio(m.server)
}

// Prompt implements chat.Transport.
func (m *MCP) Prompt(_ context.Context, _ string, prompt chat.Prompt) error {
	m.prompts.set(prompt.UserID, prompt.Type)
	m.queue(prompt.UserID, promptText(prompt))
	return nil
}

// Send implements chat.Transport.
func (m *MCP) Send(_ context.Context, _ string, userID, text string) error {
	m.queue(userID, text)
	return nil
}

func (m *MCP) handleMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	user, ok := args["user"].(string)
	if !ok || user == "" {
		return mcp.NewToolResultError("user is required"), nil
	}
	text, ok := args["text"].(string)
	if !ok {
		return mcp.NewToolResultError("text is required"), nil
	}
	if m.handler == nil {
		return mcp.NewToolResultError("calendar bot is not ready"), nil
	}

	msg := chat.Message{
		UserID:  user,
		Adapter: MCPAdapter,
		Text:    strings.TrimSpace(text),
		Type:    m.prompts.take(user),
	}

	resp := m.handler.Handle(ctx, msg)

	var out []string
	if resp.Reply != "" {
		out = append(out, resp.Reply)
	}
	out = append(out, m.drain(user)...)

	if len(out) == 0 {
		if resp.Handled {
			return mcp.NewToolResultText("OK"), nil
		}
		return mcp.NewToolResultText(MsgNotACommand), nil
	}
	return mcp.NewToolResultText(strings.Join(out, "\n\n")), nil
}

func (m *MCP) queue(userID, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outbox[userID] = append(m.outbox[userID], text)
}

func (m *MCP) drain(userID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.outbox[userID]
	delete(m.outbox, userID)
	return out
}
