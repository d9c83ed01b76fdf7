package series

import (
	"fmt"

	appLog "flowcal/internal/log"
	"flowcal/internal/model"
)

// EditMode selects whether an edit targets the whole series or one
// occurrence.
type EditMode string

const (
	// ModeSeries regenerates the edited event's series: stale occurrences
	// are discarded and replaced by a fresh expansion.
	ModeSeries EditMode = "series"

	// ModeSingle replaces exactly one existing record, leaving its
	// siblings untouched.
	ModeSingle EditMode = "single"
)

// Reconcile merges an edited or newly created event into the current
// collection and returns the replacement collection. The input slice is not
// mutated.
//
// ModeSeries removes every event whose id or seriesId equals edited.ID,
// then appends the edited base followed by its fresh occurrences. Events of
// other series, and events with no seriesId, always survive unchanged.
//
// ModeSingle swaps in the edited content for the matching id only, keeping
// the stored seriesId so the record stays linked to its series even when
// its content diverges. An unknown id leaves the collection unchanged.
func (e *Engine) Reconcile(current []model.Event, edited model.Event, mode EditMode) ([]model.Event, error) {
	if edited.ID == "" {
		return nil, ErrMissingBaseID
	}

	if mode == ModeSingle {
		return reconcileSingle(current, edited), nil
	}

	// Expand before touching the collection so a validation failure
	// surfaces without discarding anything.
	occurrences, err := e.Expand(edited)
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	out := make([]model.Event, 0, len(current)+1+len(occurrences))
	removed := 0
	for _, ev := range current {
		if ev.ID == edited.ID || ev.SeriesID == edited.ID {
			removed++
			continue
		}
		out = append(out, ev)
	}

	out = append(out, edited)
	out = append(out, occurrences...)

	appLog.Debug("reconcile: series regenerated",
		"id", edited.ID,
		"removed", removed,
		"occurrences", len(occurrences),
	)
	return out, nil
}

func reconcileSingle(current []model.Event, edited model.Event) []model.Event {
	out := make([]model.Event, len(current))
	found := false
	for i, ev := range current {
		if ev.ID == edited.ID {
			next := edited
			next.SeriesID = ev.SeriesID
			out[i] = next
			found = true
			continue
		}
		out[i] = ev
	}
	if !found {
		appLog.Debug("reconcile: single edit target not found", "id", edited.ID)
	}
	return out
}
