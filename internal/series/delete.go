package series

import (
	"strings"
	"time"

	appLog "flowcal/internal/log"
	"flowcal/internal/model"
	"flowcal/internal/temporal"
)

// Match fields accepted in a deletion intent.
const (
	MatchTitle = "title"
	MatchTag   = "tag"
	MatchDate  = "date"
)

// Deletion scopes.
const (
	ScopeSingle = "single"
	ScopeAll    = "all"
)

// DeleteIntent describes what to remove. Either IDs is set, or the
// MatchField/MatchValue/Scope triple is.
type DeleteIntent struct {
	// IDs removes exactly these ids. Deleting a base event's id cascades
	// to every event whose seriesId equals it; deleting an occurrence's
	// id removes that occurrence only.
	IDs []string `json:"ids,omitempty"`

	MatchField string `json:"matchField,omitempty"`
	MatchValue string `json:"matchValue,omitempty"`

	// Scope is ScopeSingle or ScopeAll. ScopeSingle removes the first
	// match in collection order.
	Scope string `json:"scope,omitempty"`
}

// ResolveDeletion returns the surviving collection. Nothing here is an
// error: unknown ids, empty intents and predicates matching nothing all
// leave the collection as it was. The input slice is not mutated.
func (e *Engine) ResolveDeletion(current []model.Event, intent DeleteIntent) []model.Event {
	if len(intent.IDs) > 0 {
		return deleteByIDs(current, intent.IDs)
	}
	if intent.MatchField != "" {
		return e.deleteByPredicate(current, intent)
	}
	return current
}

func deleteByIDs(current []model.Event, ids []string) []model.Event {
	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" {
			doomed[id] = true
		}
	}

	out := make([]model.Event, 0, len(current))
	for _, ev := range current {
		// SeriesID membership cascades a base deletion to its
		// occurrences; an occurrence id never appears as a seriesId.
		if doomed[ev.ID] || (ev.SeriesID != "" && doomed[ev.SeriesID]) {
			continue
		}
		out = append(out, ev)
	}

	appLog.Debug("delete: by ids", "requested", len(ids), "removed", len(current)-len(out))
	return out
}

func (e *Engine) deleteByPredicate(current []model.Event, intent DeleteIntent) []model.Event {
	match := e.predicate(intent)
	if match == nil {
		appLog.Info("delete: unknown match field, collection unchanged", "field", intent.MatchField)
		return current
	}

	single := intent.Scope == ScopeSingle

	out := make([]model.Event, 0, len(current))
	removed := 0
	for _, ev := range current {
		if match(ev) && (!single || removed == 0) {
			removed++
			continue
		}
		out = append(out, ev)
	}

	if removed == 0 {
		// Predicate matched nothing; a no-op, not a failure.
		return current
	}

	appLog.Debug("delete: by predicate",
		"field", intent.MatchField,
		"value", intent.MatchValue,
		"scope", intent.Scope,
		"removed", removed,
	)
	return out
}

// predicate builds the match function for a field, or nil when the field is
// unknown.
func (e *Engine) predicate(intent DeleteIntent) func(model.Event) bool {
	switch intent.MatchField {
	case MatchTitle:
		// Substring, case-insensitive: intent sources send partial
		// titles ("Workout" for "Gym Workout").
		needle := strings.ToLower(intent.MatchValue)
		return func(ev model.Event) bool {
			return needle != "" && strings.Contains(strings.ToLower(ev.Title), needle)
		}

	case MatchTag:
		value := intent.MatchValue
		return func(ev model.Event) bool {
			return value != "" && strings.EqualFold(ev.Tag(), value)
		}

	case MatchDate:
		day, ok := e.parseMatchDate(intent.MatchValue)
		if !ok {
			return func(model.Event) bool { return false }
		}
		return func(ev model.Event) bool {
			return temporal.SameDay(day, ev.Start)
		}
	}
	return nil
}

// parseMatchDate accepts YYYY-MM-DD or RFC 3339 values, interpreted in the
// policy zone.
func (e *Engine) parseMatchDate(v string) (time.Time, bool) {
	if t, err := time.ParseInLocation("2006-01-02", v, e.loc()); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.In(e.loc()), true
	}
	appLog.Info("delete: unparseable date value", "value", v)
	return time.Time{}, false
}
