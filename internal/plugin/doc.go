// Package plugin implements the calendar chat commands: scheduling an event
// from free text, listing upcoming events, starting the Google setup flow
// and listing the available commands.
package plugin
