// Package store holds the working event collection for the daemon. The
// engine operates on snapshots; the store serializes read-modify-write
// cycles so concurrent HTTP edits apply last-writer-wins at collection
// level.
package store

import (
	"sync"

	"flowcal/internal/model"
)

// Memory is an in-memory collection holder. The zero value is ready to use.
type Memory struct {
	mu     sync.RWMutex
	events []model.Event
}

// Snapshot returns a copy of the current collection. Callers may read and
// pass it around freely; it never aliases the stored slice.
func (m *Memory) Snapshot() []model.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Event, len(m.events))
	copy(out, m.events)
	return out
}

// Len returns the current collection size.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// Replace installs a new collection wholesale.
func (m *Memory) Replace(events []model.Event) {
	m.mu.Lock()
	m.events = events
	m.mu.Unlock()
}

// Update runs fn against a snapshot under the write lock and installs its
// result. If fn errors, the collection is left untouched and the error is
// returned. This is the serialization point the engine's concurrency model
// asks the calling layer to provide.
func (m *Memory) Update(fn func([]model.Event) ([]model.Event, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]model.Event, len(m.events))
	copy(snapshot, m.events)

	next, err := fn(snapshot)
	if err != nil {
		return err
	}
	m.events = next
	return nil
}
