// Package calendar is the thin provider client the bot uses to talk to the
// Google Calendar API.
//
// Only two operations are needed: quick-add (Google parses a free-text
// description into an event) and listing upcoming events. Every request is
// authenticated through the oauth2.TokenSource handed to NewClient, so a
// token refreshed or exchanged by another goroutine is used on the next
// call.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := calendar.NewClient(ctx, store.TokenSource(ctx))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	events, err := client.ListUpcoming(ctx, "primary", time.Now(), 5)
package calendar
