package temporal

import (
	"errors"
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	start := time.Date(2025, 8, 4, 17, 0, 0, 0, time.UTC)

	d, err := Duration(start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("Duration returned error: %v", err)
	}
	if d != time.Hour {
		t.Fatalf("Duration = %v, want %v", d, time.Hour)
	}

	if _, err := Duration(start, start.Add(-time.Minute)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("inverted range: err = %v, want ErrInvalidRange", err)
	}

	// Zero-length range is allowed.
	if d, err := Duration(start, start); err != nil || d != 0 {
		t.Fatalf("zero range: d = %v, err = %v", d, err)
	}
}

func TestAddDuration(t *testing.T) {
	start := time.Date(2025, 8, 4, 17, 0, 0, 0, time.UTC)
	got := AddDuration(start, 90*time.Minute)
	want := time.Date(2025, 8, 4, 18, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("AddDuration = %v, want %v", got, want)
	}
}

func TestWeekdaySet(t *testing.T) {
	set := WeekdaySet([]string{"MO", "WE", "XX", ""})
	if len(set) != 2 || !set[time.Monday] || !set[time.Wednesday] {
		t.Fatalf("WeekdaySet = %v, want {Monday, Wednesday}", set)
	}

	if len(WeekdaySet([]string{"XX", "YY"})) != 0 {
		t.Fatal("all-unknown codes should yield an empty set")
	}
}

func TestMatchesWeekday(t *testing.T) {
	set := WeekdaySet([]string{"MO", "WE"})

	monday := time.Date(2025, 8, 4, 17, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	if !MatchesWeekday(monday, set) {
		t.Error("Monday should match {MO, WE}")
	}
	if MatchesWeekday(tuesday, set) {
		t.Error("Tuesday should not match {MO, WE}")
	}
}

func TestParseWeekdayCode(t *testing.T) {
	cases := map[string]time.Weekday{
		"SU": time.Sunday,
		"MO": time.Monday,
		"SA": time.Saturday,
	}
	for code, want := range cases {
		got, ok := ParseWeekdayCode(code)
		if !ok || got != want {
			t.Errorf("ParseWeekdayCode(%q) = %v, %v; want %v, true", code, got, ok, want)
		}
	}
	if _, ok := ParseWeekdayCode("mo"); ok {
		t.Error("codes are uppercase only; 'mo' should not resolve")
	}
}

func TestSameDay(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}

	a := time.Date(2025, 8, 4, 0, 30, 0, 0, ny)
	// Same instant expressed in UTC lands on the same New York date.
	if !SameDay(a, a.UTC()) {
		t.Error("same instant should be the same calendar day in a's zone")
	}

	b := time.Date(2025, 8, 5, 0, 0, 0, 0, ny)
	if SameDay(a, b) {
		t.Error("different New York dates should not match")
	}
}

func TestEndOfDay(t *testing.T) {
	at := time.Date(2025, 8, 18, 9, 15, 0, 0, time.UTC)
	eod := EndOfDay(at)

	if !SameDay(at, eod) {
		t.Fatal("EndOfDay left the calendar date")
	}
	if !eod.Add(time.Nanosecond).Equal(time.Date(2025, 8, 19, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("EndOfDay = %v, want last nanosecond of the date", eod)
	}
}

func TestLocalFormat(t *testing.T) {
	at := time.Date(2025, 8, 4, 9, 5, 30, 0, time.UTC)
	if got := LocalFormat(at); got != "2025-08-04T09:05" {
		t.Fatalf("LocalFormat = %q, want zero-padded 2025-08-04T09:05", got)
	}
}
