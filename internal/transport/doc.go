// Package transport connects the bot to the places users talk to it.
//
// Console reads messages line by line from a terminal. MCP exposes the bot as
// a single calendar_message tool over the Model Context Protocol, so an MCP
// client can relay a user's messages. Both implement chat.Transport and
// remember prompts they sent, so the user's next message is delivered as the
// reply to that prompt.
//
// A Router fans chat.Transport calls out to the registered adapters by name.
package transport
