package timefmt

import (
	"time"

	"github.com/dustin/go-humanize"
)

const (
	day   = 24 * time.Hour
	month = 30 * day
	year  = 365 * day
)

// relMagnitudes follow the usual chat-style thresholds: under 45 seconds is
// "a few seconds", under 90 seconds "a minute", and so on up to years.
// Durations are rounded to the nearest unit before lookup.
var relMagnitudes = []humanize.RelTimeMagnitude{
	{D: 45 * time.Second, Format: "a few seconds", DivBy: time.Second},
	{D: 90 * time.Second, Format: "a minute", DivBy: time.Minute},
	{D: 45 * time.Minute, Format: "%d minutes", DivBy: time.Minute},
	{D: 90 * time.Minute, Format: "an hour", DivBy: time.Hour},
	{D: 22 * time.Hour, Format: "%d hours", DivBy: time.Hour},
	{D: 36 * time.Hour, Format: "a day", DivBy: day},
	{D: 26 * day, Format: "%d days", DivBy: day},
	{D: 45 * day, Format: "a month", DivBy: month},
	{D: 320 * day, Format: "%d months", DivBy: month},
	{D: 548 * day, Format: "a year", DivBy: year},
	{D: 1<<63 - 1, Format: "%d years", DivBy: year},
}

// Relative returns "in <phrase>" for times after now and "<phrase> ago" for
// times before it.
func Relative(t, now time.Time) string {
	diff := t.Sub(now)
	future := diff >= 0
	if !future {
		diff = -diff
	}

	phrase := humanize.CustomRelTime(now, now.Add(round(diff)), "", "", relMagnitudes)
	if future {
		return "in " + phrase
	}
	return phrase + " ago"
}

// round rounds d to the unit of the magnitude it falls into, so 2h40m reads
// as "3 hours" rather than "2 hours". A value rounded up to the threshold
// moves into the next magnitude, so 44m40s reads as "an hour".
func round(d time.Duration) time.Duration {
	for _, m := range relMagnitudes {
		if d < m.D {
			return d.Round(m.DivBy)
		}
	}
	return d
}
