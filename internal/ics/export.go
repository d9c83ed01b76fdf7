// Package ics serializes an event collection as an iCalendar feed. The
// engine stays ICS-agnostic; this is the event-sink boundary for calendar
// subscribers.
package ics

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	appLog "flowcal/internal/log"
	"flowcal/internal/model"
	"flowcal/internal/series"
)

const prodID = "-//flowcal//calendar feed//EN"

// rruleWeekdays maps the model's weekday codes onto rrule weekdays.
var rruleWeekdays = map[string]rrule.Weekday{
	"SU": rrule.SU,
	"MO": rrule.MO,
	"TU": rrule.TU,
	"WE": rrule.WE,
	"TH": rrule.TH,
	"FR": rrule.FR,
	"SA": rrule.SA,
}

// Export renders the collection as a VCALENDAR payload. A base event is the
// series master VEVENT and carries its rule as an RRULE property; each
// materialized occurrence is an override of that master: same UID, plus a
// RECURRENCE-ID naming the rule instant it replaces. Subscribers that
// expand the RRULE therefore show each instance once, with the override
// content winning.
//
// loc is the policy zone in which the engine computes calendar days; the
// RRULE bound is rendered in it so re-expanding the rule reproduces the
// engine's occurrence set. Events that cannot be rendered are skipped, not
// fatal.
//
// TODO: emit EXDATE for rule instants whose occurrence was deleted from the
// collection, so single-occurrence deletions survive a subscriber's own
// expansion.
func Export(events []model.Event, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)

	now := time.Now().UTC()

	for _, ev := range events {
		if ev.ID == "" || ev.End.Before(ev.Start) {
			appLog.Debug("ics export: skipping malformed event", "id", ev.ID)
			continue
		}

		uid := ev.ID
		if ev.SeriesID != "" {
			uid = ev.SeriesID
		}

		ve := cal.AddEvent(uid)
		ve.SetDtStampTime(now)
		ve.SetSummary(ev.Title)
		ve.SetStartAt(ev.Start)
		ve.SetEndAt(ev.End)

		if place, ok := ev.Attrs["location"].(string); ok && place != "" {
			ve.SetLocation(place)
		}
		if desc, ok := ev.Attrs["description"].(string); ok && desc != "" {
			ve.SetDescription(desc)
		}

		if ev.SeriesID != "" {
			ve.SetProperty(ical.ComponentProperty("RECURRENCE-ID"), compactUTC(recurrenceInstant(ev)))
		}

		if ev.Recurring() {
			if rule, ok := ruleString(ev, loc); ok {
				ve.SetProperty(ical.ComponentPropertyRrule, rule)
			}
		}
	}

	return cal.Serialize()
}

// recurrenceInstant recovers the rule instant an occurrence overrides. The
// engine encodes it in the occurrence id ("<base>-<compact UTC start>Z"),
// which survives single-occurrence edits that move the event; the current
// start is the fallback for ids minted elsewhere.
func recurrenceInstant(ev model.Event) time.Time {
	suffix := strings.TrimPrefix(ev.ID, ev.SeriesID+"-")
	suffix = strings.TrimSuffix(suffix, "Z")
	if t, err := time.ParseInLocation("2006-01-02T150405", suffix, time.UTC); err == nil {
		return t
	}
	return ev.Start
}

// compactUTC renders an instant in the ICS basic UTC form, e.g.
// "20250811T170000Z".
func compactUTC(t time.Time) string {
	return t.UTC().Format("20060102T150405") + "Z"
}

// ruleString renders an event's recurrence as RRULE property text, e.g.
// "FREQ=WEEKLY;UNTIL=20250818T235959Z;BYDAY=MO,WE". UNTIL is always
// emitted, set to the engine's expansion bound: end of the until date in
// the policy zone, or the default horizon when the rule has none. An
// unbounded RRULE would promise instances the engine never materializes.
func ruleString(ev model.Event, loc *time.Location) (string, bool) {
	opt := rrule.ROption{}

	switch ev.Recurrence.Frequency {
	case model.FreqDaily:
		opt.Freq = rrule.DAILY
	case model.FreqWeekly:
		opt.Freq = rrule.WEEKLY
		for _, code := range ev.Recurrence.ByWeekday {
			if wd, ok := rruleWeekdays[code]; ok {
				opt.Byweekday = append(opt.Byweekday, wd)
			}
		}
		if len(opt.Byweekday) == 0 {
			return "", false
		}
	default:
		// The expander treats unknown frequencies as inert; the feed
		// does the same.
		return "", false
	}

	opt.Until = series.ExpansionBound(ev.Start.In(loc), ev.Recurrence.Until).UTC()

	if _, err := rrule.NewRRule(opt); err != nil {
		appLog.Error("ics export: invalid recurrence rule", err, "id", ev.ID)
		return "", false
	}
	return opt.RRuleString(), true
}
