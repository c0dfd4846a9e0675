package chat

import "context"

// Message is one inbound chat message.
type Message struct {
	// UserID identifies the sender within the adapter.
	UserID string

	// Adapter names the transport the message arrived on. Replies and
	// prompts are sent back through the same adapter.
	Adapter string

	// Text is the raw message text.
	Text string

	// Type is empty for ordinary messages. A reply to a prompt carries the
	// prompt's Type so it can be routed back to whoever asked.
	Type string
}

// Prompt asks a user a question out of band.
type Prompt struct {
	// Type tags the eventual reply (see Message.Type).
	Type string

	// MessageText is shown to the user.
	MessageText string

	// UserID is the user being asked.
	UserID string

	// SessionID lets the transport correlate the reply with the request.
	SessionID string
}

// Transport is the part of a chat adapter the bot talks back to.
type Transport interface {
	// Prompt asks prompt.UserID a question; the next message from that user
	// on adapter is delivered with Type set to prompt.Type.
	Prompt(ctx context.Context, adapter string, prompt Prompt) error

	// Send delivers a plain message to a user.
	Send(ctx context.Context, adapter, userID, text string) error
}
