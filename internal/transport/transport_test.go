package transport

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/chatcal/internal/bot"
	"github.com/teemow/chatcal/internal/chat"
)

const setupType = "calendarSetup"

// scriptedHandler mimics the bot: "setup" prompts the user, a reply to
// that prompt completes silently, "hi" is unknown, anything else echoes.
type scriptedHandler struct {
	transport chat.Transport

	mu   sync.Mutex
	seen []chat.Message
}

func (h *scriptedHandler) Handle(ctx context.Context, msg chat.Message) bot.Response {
	h.mu.Lock()
	h.seen = append(h.seen, msg)
	h.mu.Unlock()

	switch {
	case msg.Type == setupType:
		_ = h.transport.Send(ctx, msg.Adapter, msg.UserID, "Calendar setup complete.")
		return bot.Response{Handled: true}
	case msg.Text == "setup":
		_ = h.transport.Prompt(ctx, msg.Adapter, chat.Prompt{
			Type:        setupType,
			MessageText: "https://accounts.example/auth",
			UserID:      msg.UserID,
		})
		return bot.Response{Handled: true, Reply: "I sent you a link."}
	case msg.Text == "hi":
		return bot.Response{}
	}
	return bot.Response{Handled: true, Reply: "echo " + msg.Text}
}

func (h *scriptedHandler) messages() []chat.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]chat.Message(nil), h.seen...)
}

type recordingTransport struct {
	prompts []chat.Prompt
	sent    []string
}

func (r *recordingTransport) Prompt(_ context.Context, _ string, p chat.Prompt) error {
	r.prompts = append(r.prompts, p)
	return nil
}

func (r *recordingTransport) Send(_ context.Context, _, _, text string) error {
	r.sent = append(r.sent, text)
	return nil
}

func TestRouterDelegatesByAdapter(t *testing.T) {
	ctx := context.Background()
	a := &recordingTransport{}
	b := &recordingTransport{}

	r := NewRouter()
	r.Register("a", a)
	r.Register("b", b)

	require.NoError(t, r.Send(ctx, "a", "u1", "hello"))
	require.NoError(t, r.Prompt(ctx, "b", chat.Prompt{Type: setupType, UserID: "u1"}))

	assert.Equal(t, []string{"hello"}, a.sent)
	assert.Empty(t, a.prompts)
	assert.Empty(t, b.sent)
	assert.Len(t, b.prompts, 1)
}

func TestRouterUnknownAdapter(t *testing.T) {
	r := NewRouter()

	err := r.Send(context.Background(), "slack", "u1", "hello")
	assert.True(t, errors.Is(err, ErrUnknownAdapter))

	err = r.Prompt(context.Background(), "slack", chat.Prompt{})
	assert.ErrorIs(t, err, ErrUnknownAdapter)
}

func TestPromptTrackerTakeClears(t *testing.T) {
	var p promptTracker
	assert.Empty(t, p.take("u1"))

	p.set("u1", setupType)
	assert.Equal(t, setupType, p.take("u1"))
	assert.Empty(t, p.take("u1"))
}

func TestConsoleRun(t *testing.T) {
	in := strings.NewReader("events\n\n   \nsetup\n4/abc\nhi\n")
	var out bytes.Buffer

	c := NewConsole(in, &out, "alice", nil)
	h := &scriptedHandler{transport: c}

	require.NoError(t, c.Run(context.Background(), h))

	msgs := h.messages()
	require.Len(t, msgs, 4)

	assert.Equal(t, chat.Message{UserID: "alice", Adapter: ConsoleAdapter, Text: "events"}, msgs[0])
	assert.Equal(t, "", msgs[1].Type)
	assert.Equal(t, setupType, msgs[2].Type, "line after a prompt is the prompt reply")
	assert.Equal(t, "4/abc", msgs[2].Text)
	assert.Equal(t, "", msgs[3].Type)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"echo events",
		"Open this link to authorize calendar access, then send me the code you receive:",
		"https://accounts.example/auth",
		"I sent you a link.",
		"Calendar setup complete.",
		MsgNotACommand,
	}, lines)
}

func TestConsoleRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewConsole(strings.NewReader("events\n"), &bytes.Buffer{}, "alice", nil)
	h := &scriptedHandler{transport: c}

	assert.NoError(t, c.Run(ctx, h))
}

func callMessageTool(t *testing.T, m *MCP, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      MessageToolName,
			Arguments: args,
		},
	}
	result, err := m.handleMessage(context.Background(), request)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestMCPMessageTool(t *testing.T) {
	m := NewMCP("test", nil)
	h := &scriptedHandler{transport: m}
	m.SetHandler(h)

	result := callMessageTool(t, m, map[string]interface{}{"user": "alice", "text": "  events "})
	assert.False(t, result.IsError)
	assert.Equal(t, "echo events", resultText(t, result))

	result = callMessageTool(t, m, map[string]interface{}{"user": "alice", "text": "setup"})
	text := resultText(t, result)
	assert.True(t, strings.HasPrefix(text, "I sent you a link.\n\nOpen this link"))
	assert.Contains(t, text, "https://accounts.example/auth")

	// Another user's message is not a reply to alice's prompt.
	callMessageTool(t, m, map[string]interface{}{"user": "bob", "text": "events"})

	result = callMessageTool(t, m, map[string]interface{}{"user": "alice", "text": "4/abc"})
	assert.Equal(t, "Calendar setup complete.", resultText(t, result))

	result = callMessageTool(t, m, map[string]interface{}{"user": "alice", "text": "hi"})
	assert.Equal(t, MsgNotACommand, resultText(t, result))

	msgs := h.messages()
	require.Len(t, msgs, 5)
	assert.Equal(t, MCPAdapter, msgs[0].Adapter)
	assert.Equal(t, "events", msgs[0].Text)
	assert.Equal(t, "", msgs[2].Type)
	assert.Equal(t, "bob", msgs[2].UserID)
	assert.Equal(t, setupType, msgs[3].Type)
	assert.Equal(t, "", msgs[4].Type)
}

func TestMCPMessageToolValidation(t *testing.T) {
	m := NewMCP("test", nil)
	m.SetHandler(&scriptedHandler{transport: m})

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{name: "missing user", args: map[string]interface{}{"text": "events"}},
		{name: "empty user", args: map[string]interface{}{"user": "", "text": "events"}},
		{name: "missing text", args: map[string]interface{}{"user": "alice"}},
		{name: "wrong type", args: map[string]interface{}{"user": 42, "text": "events"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := callMessageTool(t, m, tt.args)
			assert.True(t, result.IsError)
		})
	}
}

func TestMCPWithoutHandler(t *testing.T) {
	m := NewMCP("test", nil)

	result := callMessageTool(t, m, map[string]interface{}{"user": "alice", "text": "events"})
	assert.True(t, result.IsError)
}

func TestMCPStatusResource(t *testing.T) {
	status := func(context.Context) Status {
		return Status{CalendarID: "primary", Linked: true, Commands: []string{"events - list the next 5 events"}}
	}

	request := mcp.ReadResourceRequest{}
	request.Params.URI = StatusResourceURI

	contents, err := readStatus(context.Background(), request, status)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(*mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, StatusResourceURI, text.URI)
	assert.Equal(t, "application/json", text.MIMEType)
	assert.JSONEq(t, `{"calendarId":"primary","linked":true,"commands":["events - list the next 5 events"]}`, text.Text)

	m := NewMCP("test", nil)
	m.AddStatusResource(status)
}
