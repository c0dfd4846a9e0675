// Package timefmt renders provider timestamps for chat replies.
//
// Calendar formats a time relative to the current day ("Today at 3:04 PM",
// "Tomorrow at 9:00 AM", "Friday at 1:30 PM") and falls back to an absolute
// "01/02/2006 3:04 PM" for anything further away. Relative renders a
// human phrase such as "in 3 hours" or "2 days ago".
//
// Times keep the offset they were parsed with. Day boundaries are computed
// in that offset, so an event entered at 9 AM New York time shows as 9 AM
// no matter where the bot runs.
package timefmt
