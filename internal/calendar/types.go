package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// Event is the read-only view of a provider event used for display.
type Event struct {
	ID      string
	Summary string

	// StartDateTime is the RFC3339 start of a timed event, including the
	// offset the calendar owner entered.
	StartDateTime string

	// StartDate is the yyyy-mm-dd start of an all-day event.
	StartDate string
}

// AllDay reports whether the event has no time component.
func (e Event) AllDay() bool {
	return e.StartDateTime == ""
}

// Start parses StartDateTime keeping its original offset. All-day events
// return the zero time and false.
func (e Event) Start() (time.Time, bool) {
	if e.StartDateTime == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, e.StartDateTime)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// toEvent converts a Google Calendar event to an Event
func toEvent(event *calendar.Event) Event {
	if event == nil {
		return Event{}
	}

	ev := Event{
		ID:      event.Id,
		Summary: event.Summary,
	}
	if event.Start != nil {
		ev.StartDateTime = event.Start.DateTime
		ev.StartDate = event.Start.Date
	}
	return ev
}
