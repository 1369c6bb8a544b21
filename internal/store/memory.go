// internal/store/memory.go
//
// In-memory registry of live game runners.
//
// Characteristics:
//   - Runners keyed by game id in a map guarded by an RWMutex.
//   - Delete and Sweep close the runners they remove.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/alphasnake/internal/session"
)

// ErrNotFound is returned when no runner has the requested id.
var ErrNotFound = errors.New("not found")

// Store holds the live games of a server.
type Store interface {
	// Save registers or replaces a runner.
	Save(ctx context.Context, r *session.Runner) error

	// Get retrieves a runner by id.
	Get(ctx context.Context, id uuid.UUID) (*session.Runner, error)

	// Delete removes and closes a runner.
	Delete(ctx context.Context, id uuid.UUID) error
}

// Memory is a map-based Store.
type Memory struct {
	mu      sync.RWMutex
	runners map[uuid.UUID]*session.Runner
}

// NewMemoryStore constructs an empty Memory store.
func NewMemoryStore() *Memory {
	return &Memory{runners: make(map[uuid.UUID]*session.Runner)}
}

// Save adds or replaces the runner. A replaced runner is closed.
func (m *Memory) Save(ctx context.Context, r *session.Runner) error {
	m.mu.Lock()
	old, ok := m.runners[r.ID()]
	m.runners[r.ID()] = r
	m.mu.Unlock()
	if ok && old != r {
		old.Close()
	}
	return nil
}

// Get looks up a runner by id.
func (m *Memory) Get(ctx context.Context, id uuid.UUID) (*session.Runner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.runners[id]; ok {
		return r, nil
	}
	return nil, ErrNotFound
}

// Delete removes the runner and closes it.
func (m *Memory) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	r, ok := m.runners[id]
	delete(m.runners, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	r.Close()
	return nil
}

// Len returns the number of live runners.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runners)
}

// Sweep closes and removes runners with no activity since before cutoff.
// It returns the ids removed.
func (m *Memory) Sweep(cutoff time.Time) []uuid.UUID {
	m.mu.Lock()
	var idle []*session.Runner
	for id, r := range m.runners {
		if r.LastActive().Before(cutoff) {
			idle = append(idle, r)
			delete(m.runners, id)
		}
	}
	m.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(idle))
	for _, r := range idle {
		r.Close()
		ids = append(ids, r.ID())
	}
	return ids
}

// CloseAll closes every runner and empties the store.
func (m *Memory) CloseAll() {
	m.mu.Lock()
	all := m.runners
	m.runners = make(map[uuid.UUID]*session.Runner)
	m.mu.Unlock()
	for _, r := range all {
		r.Close()
	}
}
