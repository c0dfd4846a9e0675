// Package bot routes inbound chat messages. Replies to a setup prompt go to
// the auth controller; everything else goes through the command dispatcher.
// The bot also decides what a user sees when a command fails.
package bot
