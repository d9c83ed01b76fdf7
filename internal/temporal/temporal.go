// Package temporal holds the pure date/time helpers shared by the
// expansion, reconciliation and deletion logic. Everything here operates on
// absolute instants; callers convert into the policy timezone before asking
// calendar-day questions.
package temporal

import (
	"errors"
	"time"
)

// ErrInvalidRange is returned when an event's end precedes its start.
var ErrInvalidRange = errors.New("temporal: end before start")

// weekdayCodes maps iCalendar-style two-letter codes to time.Weekday.
var weekdayCodes = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}

// Duration returns end - start, or ErrInvalidRange when end < start.
// A zero-length range is allowed.
func Duration(start, end time.Time) (time.Duration, error) {
	if end.Before(start) {
		return 0, ErrInvalidRange
	}
	return end.Sub(start), nil
}

// AddDuration returns the instant span after t.
func AddDuration(t time.Time, span time.Duration) time.Time {
	return t.Add(span)
}

// ParseWeekdayCode resolves a two-letter weekday code (MO, TU, ...).
// The second result is false for unknown codes.
func ParseWeekdayCode(code string) (time.Weekday, bool) {
	wd, ok := weekdayCodes[code]
	return wd, ok
}

// WeekdaySet builds a membership set from weekday codes. Unknown codes are
// skipped; an all-unknown input yields an empty set.
func WeekdaySet(codes []string) map[time.Weekday]bool {
	set := make(map[time.Weekday]bool, len(codes))
	for _, c := range codes {
		if wd, ok := ParseWeekdayCode(c); ok {
			set[wd] = true
		}
	}
	return set
}

// MatchesWeekday reports whether t's calendar day-of-week, in t's own
// location, is a member of set.
func MatchesWeekday(t time.Time, set map[time.Weekday]bool) bool {
	return set[t.Weekday()]
}

// SameDay reports whether a and b fall on the same calendar date in a's
// location. b is converted first.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// EndOfDay returns the last representable instant of t's calendar date in
// t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// LocalFormat renders t as a human-editable YYYY-MM-DDTHH:mm string in t's
// location. UI boundary only; expansion math never round-trips through it.
func LocalFormat(t time.Time) string {
	return t.Format("2006-01-02T15:04")
}
