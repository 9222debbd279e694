// Package cache holds the in-memory live view of the engine: active-call
// snapshots for the monitor and API, and the event batch drained into each
// broadcast frame.
package cache

import (
	"sync"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// LiveCallTracker maintains the current snapshot of every active call. The
// orchestrator writes through on every lifecycle and turn event; the monitor
// and the API read.
type LiveCallTracker struct {
	calls map[string]*types.CallSnapshot // callID -> current snapshot
	mu    sync.RWMutex
}

// NewLiveCallTracker creates an empty tracker
func NewLiveCallTracker() *LiveCallTracker {
	return &LiveCallTracker{
		calls: make(map[string]*types.CallSnapshot),
	}
}

// Upsert replaces the snapshot for a call
func (t *LiveCallTracker) Upsert(snap types.CallSnapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	copied := snap
	t.calls[snap.CallID] = &copied
}

// Get returns the snapshot for one call
func (t *LiveCallTracker) Get(callID string) (types.CallSnapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap, ok := t.calls[callID]
	if !ok {
		return types.CallSnapshot{}, false
	}
	return *snap, true
}

// GetAll returns snapshots for every active call
func (t *LiveCallTracker) GetAll() []types.CallSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snaps := make([]types.CallSnapshot, 0, len(t.calls))
	for _, snap := range t.calls {
		snaps = append(snaps, *snap)
	}
	return snaps
}

// Remove drops a call once it reaches a terminal state
func (t *LiveCallTracker) Remove(callID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.calls[callID]; !ok {
		return false
	}
	delete(t.calls, callID)
	return true
}

// Count returns the number of tracked calls
func (t *LiveCallTracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.calls)
}

// Wipe clears every tracked call and reports how many were dropped
func (t *LiveCallTracker) Wipe() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(t.calls)
	t.calls = make(map[string]*types.CallSnapshot)
	return n
}
