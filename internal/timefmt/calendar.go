package timefmt

import (
	"time"

	"github.com/teemow/chatcal/internal/calendar"
)

// Layouts used by Calendar.
const (
	TimeLayout     = "3:04 PM"
	DateTimeLayout = "01/02/2006 3:04 PM"
)

// Calendar formats t relative to the day containing now, measured in t's
// location.
func Calendar(t, now time.Time) string {
	clock := t.Format(TimeLayout)

	switch days := dayDiff(t, now); {
	case days < -6:
		return t.Format(DateTimeLayout)
	case days < -1:
		return "Last " + t.Weekday().String() + " at " + clock
	case days < 0:
		return "Yesterday at " + clock
	case days < 1:
		return "Today at " + clock
	case days < 2:
		return "Tomorrow at " + clock
	case days < 7:
		return t.Weekday().String() + " at " + clock
	default:
		return t.Format(DateTimeLayout)
	}
}

// EventStart formats the start of ev. All-day events have no time component
// and are shown as their raw date string.
func EventStart(ev calendar.Event, now time.Time) string {
	start, ok := ev.Start()
	if !ok {
		if ev.StartDate != "" {
			return ev.StartDate
		}
		return ev.StartDateTime
	}
	return Calendar(start, now)
}

// EventRelative returns the relative phrase for ev's start. All-day events
// are measured from midnight of their date in now's location.
func EventRelative(ev calendar.Event, now time.Time) string {
	if start, ok := ev.Start(); ok {
		return Relative(start, now)
	}
	if ev.StartDate == "" {
		return ""
	}
	day, err := time.ParseInLocation("2006-01-02", ev.StartDate, now.Location())
	if err != nil {
		return ""
	}
	return Relative(day, now)
}

// dayDiff returns the fractional number of days between the start of now's
// day and t, both taken in t's location.
func dayDiff(t, now time.Time) float64 {
	local := now.In(t.Location())
	startOfDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, t.Location())
	return t.Sub(startOfDay).Hours() / 24
}
