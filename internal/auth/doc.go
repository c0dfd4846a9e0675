// Package auth runs the chat-driven Google authorization flow.
//
// A setup starts with BeginSetup, which prompts the user with the
// authorization URL. The user's reply to that prompt comes back as a message
// typed PromptType and is handed to CompleteSetup, which exchanges the code,
// persists the new tokens and tells the user how it went.
//
// Each user has at most one pending session. Starting a new setup supersedes
// the previous one.
package auth
