// Package chat defines the values exchanged between the bot and the chat
// transport: inbound messages, out-of-band prompts, and the Transport
// interface adapters implement.
package chat
