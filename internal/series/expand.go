// Package series implements recurrence expansion, series reconciliation and
// deletion resolution over an in-memory event collection. All operations are
// pure functions of their inputs; callers own snapshotting and persistence.
package series

import (
	"errors"
	"fmt"
	"time"

	appLog "flowcal/internal/log"
	"flowcal/internal/model"
	"flowcal/internal/temporal"
)

const (
	// defaultHorizonDays bounds expansion when the rule has no until date.
	defaultHorizonDays = 30

	// defaultMaxOccurrences is a safety cap per expansion call.
	defaultMaxOccurrences = 1000
)

// ErrMissingBaseID is returned when expansion or reconciliation is invoked
// on an event without an id; occurrence linkage cannot be established then.
var ErrMissingBaseID = errors.New("series: base event has no id")

// ErrInvalidRange mirrors temporal.ErrInvalidRange at this package's
// boundary so callers can match either.
var ErrInvalidRange = temporal.ErrInvalidRange

// Engine evaluates recurrence rules and collection edits under a single
// timezone policy.
type Engine struct {
	// Location is the zone in which calendar days and weekdays are
	// computed. If nil, time.UTC is used. Day steps preserve wall-clock
	// time-of-day in this zone, also across DST transitions.
	Location *time.Location

	// MaxOccurrences caps one expansion call. If zero,
	// defaultMaxOccurrences is used.
	MaxOccurrences int
}

func (e *Engine) loc() *time.Location {
	if e == nil || e.Location == nil {
		return time.UTC
	}
	return e.Location
}

func (e *Engine) limit() int {
	if e == nil || e.MaxOccurrences <= 0 {
		return defaultMaxOccurrences
	}
	return e.MaxOccurrences
}

// Expand derives the ordered occurrence list of a base event.
//
// A base without a recurrence rule, with an unrecognized frequency, or with
// a weekly rule lacking usable weekday codes yields an empty list and a nil
// error: the base event standing alone is still valid. Only a missing id or
// an inverted time range is fatal.
//
// Every occurrence keeps the base's duration and attributes, gets
// SeriesID = base.ID and a deterministic id derived from the base id and
// the occurrence start. The base's own start instant is never re-emitted.
func (e *Engine) Expand(base model.Event) ([]model.Event, error) {
	if base.ID == "" {
		return nil, ErrMissingBaseID
	}

	dur, err := temporal.Duration(base.Start, base.End)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", base.ID, err)
	}

	if !base.Recurring() {
		return nil, nil
	}

	start := base.Start.In(e.loc())
	bound := ExpansionBound(start, base.Recurrence.Until)

	var out []model.Event

	switch base.Recurrence.Frequency {
	case model.FreqDaily:
		for cur := start.AddDate(0, 0, 1); !cur.After(bound); cur = cur.AddDate(0, 0, 1) {
			out = append(out, occurrence(base, cur, dur))
			if len(out) >= e.limit() {
				logCapHit(base.ID, e.limit())
				return out, nil
			}
		}

	case model.FreqWeekly:
		days := temporal.WeekdaySet(base.Recurrence.ByWeekday)
		if len(days) == 0 {
			appLog.Debug("expand: weekly rule without usable weekdays", "id", base.ID)
			return nil, nil
		}
		for cur := start; !cur.After(bound); cur = cur.AddDate(0, 0, 1) {
			if !temporal.MatchesWeekday(cur, days) || cur.Equal(start) {
				continue
			}
			out = append(out, occurrence(base, cur, dur))
			if len(out) >= e.limit() {
				logCapHit(base.ID, e.limit())
				return out, nil
			}
		}

	default:
		appLog.Debug("expand: unrecognized frequency", "id", base.ID, "frequency", base.Recurrence.Frequency)
		return nil, nil
	}

	return out, nil
}

// ExpansionBound returns the last admissible occurrence start for a rule
// anchored at start. An explicit until date is inclusive by calendar date
// in start's location; otherwise the default horizon after start applies.
// Exported so feed rendering can state the same bound the engine honors.
func ExpansionBound(start time.Time, until time.Time) time.Time {
	if until.IsZero() {
		return start.AddDate(0, 0, defaultHorizonDays)
	}
	return temporal.EndOfDay(until.In(start.Location()))
}

func occurrence(base model.Event, start time.Time, dur time.Duration) model.Event {
	return model.Event{
		ID:       occurrenceID(base.ID, start),
		SeriesID: base.ID,
		Title:    base.Title,
		Start:    start,
		End:      temporal.AddDuration(start, dur),
		Attrs:    base.CloneAttrs(),
	}
}

// occurrenceID derives a per-occurrence id from the base id and the
// occurrence start in compact UTC form, e.g. "b1-2025-08-11T210000Z".
// Deterministic ids make regenerated occurrences easy to correlate in
// stores and logs.
func occurrenceID(baseID string, start time.Time) string {
	return baseID + "-" + start.UTC().Format("2006-01-02T150405") + "Z"
}

func logCapHit(id string, limit int) {
	appLog.Error("expand: occurrence cap reached, truncating",
		errors.New("max occurrences reached"),
		"id", id,
		"cap", limit,
	)
}
