package google

import (
	calendar "google.golang.org/api/calendar/v3"
)

// DefaultOAuthScopes are the scopes requested during calendar setup.
// Quick-add and listing both need read/write access to events.
var DefaultOAuthScopes = []string{
	calendar.CalendarScope,
}

// OOBRedirectURL is the out-of-band redirect used when the user pastes the
// authorization code back into the chat.
const OOBRedirectURL = "urn:ietf:wg:oauth:2.0:oob"
