// Package command routes chat messages to handlers.
//
// A Dispatcher holds an ordered list of Rules. Each rule pairs a
// case-insensitive pattern with the permission group a sender needs and the
// handler to run. The first rule whose pattern matches decides the outcome:
// if the sender lacks the permission the dispatch fails with
// ErrUnauthorized and no later rule is tried.
//
// Rules are plain data built at plugin construction time:
//
//	rules := []command.Rule{
//	    command.MustRule("schedule", `^schedule\s*(.+)`, "addEvents", "Schedule an event", quickAdd),
//	    command.MustRule("events", `^(?:events|calendar list).*`, command.Public, "List upcoming events", list),
//	}
//	d := command.NewDispatcher(authorizer, rules...)
package command
