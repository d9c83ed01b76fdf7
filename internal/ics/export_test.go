package ics

import (
	"strings"
	"testing"
	"time"

	"flowcal/internal/model"
)

func TestExportFeed(t *testing.T) {
	start := time.Date(2025, 8, 4, 17, 0, 0, 0, time.UTC)
	base := model.Event{
		ID:    "b1",
		Title: "Gym",
		Start: start,
		End:   start.Add(time.Hour),
		Recurrence: &model.Recurrence{
			Frequency: model.FreqWeekly,
			ByWeekday: []string{"MO", "WE"},
			Until:     time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC),
		},
		Attrs: map[string]any{"location": "Campus Gym"},
	}
	occ := model.Event{
		ID:       "b1-2025-08-06T170000Z",
		SeriesID: "b1",
		Title:    "Gym",
		Start:    start.AddDate(0, 0, 2),
		End:      start.AddDate(0, 0, 2).Add(time.Hour),
	}

	out := Export([]model.Event{base, occ}, time.UTC)

	if !strings.Contains(out, "BEGIN:VCALENDAR") || !strings.Contains(out, "END:VCALENDAR") {
		t.Fatal("output is not a VCALENDAR payload")
	}
	if got := strings.Count(out, "BEGIN:VEVENT"); got != 2 {
		t.Fatalf("VEVENT count = %d, want 2", got)
	}
	// Master and override share the series UID; the occurrence names the
	// rule instant it replaces.
	if got := strings.Count(out, "UID:b1\r\n"); got != 2 {
		t.Errorf("shared-UID count = %d, want 2:\n%s", got, out)
	}
	if !strings.Contains(out, "RECURRENCE-ID:20250806T170000Z") {
		t.Errorf("occurrence should carry RECURRENCE-ID of its rule instant:\n%s", out)
	}
	if !strings.Contains(out, "RRULE:") || !strings.Contains(out, "FREQ=WEEKLY") {
		t.Error("base event should carry an RRULE property")
	}
	if !strings.Contains(out, "BYDAY=MO,WE") {
		t.Errorf("RRULE should list BYDAY=MO,WE:\n%s", out)
	}
	if !strings.Contains(out, "LOCATION:Campus Gym") {
		t.Error("location attribute should be exported")
	}
}

func TestExportUntilMatchesEngineBound(t *testing.T) {
	start := time.Date(2025, 8, 4, 17, 0, 0, 0, time.UTC)
	base := model.Event{
		ID:    "b1",
		Title: "Gym",
		Start: start,
		End:   start.Add(time.Hour),
		Recurrence: &model.Recurrence{
			Frequency: model.FreqWeekly,
			ByWeekday: []string{"MO", "WE"},
			Until:     time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC),
		},
	}

	out := Export([]model.Event{base}, time.UTC)

	// The engine includes the 17:00 occurrence on the until date, so the
	// rendered rule must reach end-of-day, not the raw until instant: a
	// subscriber re-expanding UNTIL=20250818T000000Z would drop the final
	// Monday.
	if !strings.Contains(out, "UNTIL=20250818T235959Z") {
		t.Fatalf("UNTIL should be the end-of-day expansion bound:\n%s", out)
	}
	if strings.Contains(out, "UNTIL=20250818T000000Z") {
		t.Fatal("raw until instant leaked into the RRULE")
	}
}

func TestExportUnboundedRuleGetsHorizonUntil(t *testing.T) {
	start := time.Date(2025, 8, 4, 9, 0, 0, 0, time.UTC)
	base := model.Event{
		ID:         "d1",
		Title:      "Standup",
		Start:      start,
		End:        start.Add(30 * time.Minute),
		Recurrence: &model.Recurrence{Frequency: model.FreqDaily},
	}

	out := Export([]model.Event{base}, time.UTC)

	// No until date still yields a bounded rule at the engine's default
	// horizon; an open-ended RRULE would promise instances the engine
	// never materializes.
	if !strings.Contains(out, "UNTIL=20250903T090000Z") {
		t.Fatalf("UNTIL should sit at the default horizon:\n%s", out)
	}
}

func TestExportMovedOccurrenceKeepsRuleInstant(t *testing.T) {
	start := time.Date(2025, 8, 11, 17, 0, 0, 0, time.UTC)
	// A single-occurrence edit moved this instance an hour later; the
	// override must still name the original rule instant encoded in its
	// id.
	moved := model.Event{
		ID:       "b1-2025-08-11T170000Z",
		SeriesID: "b1",
		Title:    "Gym (moved)",
		Start:    start.Add(time.Hour),
		End:      start.Add(2 * time.Hour),
	}

	out := Export([]model.Event{moved}, time.UTC)

	if !strings.Contains(out, "RECURRENCE-ID:20250811T170000Z") {
		t.Fatalf("RECURRENCE-ID should be the original instant:\n%s", out)
	}
	if !strings.Contains(out, "DTSTART:20250811T180000Z") {
		t.Fatalf("DTSTART should be the moved start:\n%s", out)
	}
}

func TestExportSkipsMalformed(t *testing.T) {
	start := time.Date(2025, 8, 4, 17, 0, 0, 0, time.UTC)
	events := []model.Event{
		{Title: "no id", Start: start, End: start.Add(time.Hour)},
		{ID: "inverted", Title: "x", Start: start, End: start.Add(-time.Hour)},
		{ID: "ok", Title: "fine", Start: start, End: start.Add(time.Hour)},
	}

	out := Export(events, time.UTC)
	if got := strings.Count(out, "BEGIN:VEVENT"); got != 1 {
		t.Fatalf("VEVENT count = %d, want only the well-formed event", got)
	}
}

func TestExportUnknownFrequencyHasNoRule(t *testing.T) {
	start := time.Date(2025, 8, 4, 17, 0, 0, 0, time.UTC)
	ev := model.Event{
		ID:    "m1",
		Title: "Monthly?",
		Start: start,
		End:   start.Add(time.Hour),
		Recurrence: &model.Recurrence{
			Frequency: "monthly",
		},
	}

	out := Export([]model.Event{ev}, time.UTC)
	if strings.Contains(out, "RRULE") {
		t.Fatal("unknown frequency must not emit an RRULE")
	}
}
