package store

import (
	"errors"
	"testing"
	"time"

	"flowcal/internal/model"
)

func TestSnapshotIsDetached(t *testing.T) {
	m := &Memory{}
	start := time.Date(2025, 8, 4, 17, 0, 0, 0, time.UTC)
	m.Replace([]model.Event{{ID: "a", Title: "One", Start: start, End: start.Add(time.Hour)}})

	snap := m.Snapshot()
	snap[0].Title = "mutated"

	if m.Snapshot()[0].Title != "One" {
		t.Fatal("snapshot aliases the stored slice")
	}
}

func TestUpdateAppliesResult(t *testing.T) {
	m := &Memory{}
	err := m.Update(func(current []model.Event) ([]model.Event, error) {
		return append(current, model.Event{ID: "a", Title: "One"}), nil
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}
}

func TestUpdateErrorLeavesCollection(t *testing.T) {
	m := &Memory{}
	m.Replace([]model.Event{{ID: "a", Title: "One"}})

	boom := errors.New("boom")
	err := m.Update(func(current []model.Event) ([]model.Event, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if m.Len() != 1 {
		t.Fatal("failed update must not touch the collection")
	}
}
