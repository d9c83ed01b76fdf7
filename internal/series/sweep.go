package series

import (
	"strings"
	"time"

	"flowcal/internal/model"
)

// Sweeper marks elapsed events as completed. Events whose tag is in
// AutoReviewTags are additionally marked reviewed, so routine blocks
// (classes, social time) skip the manual review queue.
type Sweeper struct {
	AutoReviewTags []string
}

// MarkElapsed returns the collection with every event whose end has passed
// flagged isCompleted, leaving already-completed events alone. Untouched
// events are carried over as-is; touched ones get a fresh attribute bag.
func (s Sweeper) MarkElapsed(current []model.Event, now time.Time) []model.Event {
	out := make([]model.Event, len(current))
	for i, ev := range current {
		out[i] = s.markOne(ev, now)
	}
	return out
}

func (s Sweeper) markOne(ev model.Event, now time.Time) model.Event {
	if !ev.End.Before(now) || boolAttr(ev, model.AttrIsCompleted) {
		return ev
	}

	attrs := ev.CloneAttrs()
	if attrs == nil {
		attrs = make(map[string]any, 2)
	}
	attrs[model.AttrIsCompleted] = true
	if !boolAttr(ev, model.AttrIsReviewed) && s.autoReviewed(ev.Tag()) {
		attrs[model.AttrIsReviewed] = true
	}

	ev.Attrs = attrs
	return ev
}

func (s Sweeper) autoReviewed(tag string) bool {
	for _, t := range s.AutoReviewTags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func boolAttr(ev model.Event, key string) bool {
	if ev.Attrs == nil {
		return false
	}
	b, _ := ev.Attrs[key].(bool)
	return b
}
