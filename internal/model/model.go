package model

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// Recurrence frequencies understood by the expander. Anything else is
// treated as "nothing to expand", not as an error.
const (
	FreqDaily  = "daily"
	FreqWeekly = "weekly"
)

// Recurrence describes how a base event repeats.
type Recurrence struct {
	// Frequency is FreqDaily or FreqWeekly.
	Frequency string `json:"frequency" yaml:"frequency"`

	// ByWeekday lists two-letter weekday codes (MO, TU, ...) and is
	// required when Frequency is FreqWeekly.
	ByWeekday []string `json:"byWeekday,omitempty" yaml:"by_weekday,omitempty"`

	// Until bounds the expansion, inclusive by calendar date. Zero means
	// the default horizon applies.
	Until time.Time `json:"until,omitempty" yaml:"until,omitempty"`
}

// Event is the atomic schedulable unit. A base event optionally carries a
// Recurrence; derived occurrences carry SeriesID instead.
type Event struct {
	ID string `json:"id"`

	// SeriesID is the id of the base event this instance was derived from.
	// Empty on non-recurring events and on the base event itself.
	SeriesID string `json:"seriesId,omitempty"`

	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	Recurrence *Recurrence `json:"recurrence,omitempty"`

	// Attrs is an open-ended bag of descriptive attributes (tag, color,
	// location, reminder, completion flags). The engine copies it from
	// base to occurrence without interpreting it, except for the
	// well-known keys below.
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Well-known attribute keys. Only the elapsed-event sweep and the
// tag-matching deletion predicate look at these; everything else in Attrs
// is opaque.
const (
	AttrTag         = "tag"
	AttrIsCompleted = "isCompleted"
	AttrIsReviewed  = "isReviewed"
)

// Recurring reports whether the event carries a non-empty recurrence rule.
func (e Event) Recurring() bool {
	return e.Recurrence != nil && e.Recurrence.Frequency != ""
}

// Tag returns the event's tag attribute, or "" when unset.
func (e Event) Tag() string {
	if e.Attrs == nil {
		return ""
	}
	if s, ok := e.Attrs[AttrTag].(string); ok {
		return s
	}
	return ""
}

// CloneAttrs returns a copy of the attribute bag so that occurrences and
// edited events never alias the base event's map.
func (e Event) CloneAttrs() map[string]any {
	if e.Attrs == nil {
		return nil
	}
	return maps.Clone(e.Attrs)
}

// NewID mints a fresh event id. The engine derives occurrence ids from the
// base id; NewID is for callers assigning ids to incoming base events that
// arrive without one.
func NewID() string {
	return uuid.NewString()
}
