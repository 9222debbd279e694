package convo

import (
	"context"
	"sync"
	"time"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

// MemoryStore keeps contexts in process memory. Expiry is lazy: Get and
// Touch evict idle contexts as they find them, and Sweep clears the rest.
type MemoryStore struct {
	mu       sync.RWMutex
	contexts map[string]*types.ConversationContext
}

// NewMemoryStore creates an empty in-memory context store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{contexts: make(map[string]*types.ConversationContext)}
}

// Get returns the context for the call, evicting it when idle past retention
func (m *MemoryStore) Get(_ context.Context, callID string) (*types.ConversationContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.contexts[callID]
	if !ok {
		return nil, ErrNotFound
	}
	if c.ExpiredAt(time.Now()) {
		delete(m.contexts, callID)
		return nil, ErrExpired
	}
	return c, nil
}

// Save stores the context under its call ID
func (m *MemoryStore) Save(_ context.Context, c *types.ConversationContext) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contexts[c.CallID] = c
	return nil
}

// Touch refreshes last activity so the context stays resumable
func (m *MemoryStore) Touch(_ context.Context, callID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.contexts[callID]
	if !ok {
		return ErrNotFound
	}
	if c.ExpiredAt(time.Now()) {
		delete(m.contexts, callID)
		return ErrExpired
	}
	c.Touch()
	return nil
}

// Delete removes the context, if present
func (m *MemoryStore) Delete(_ context.Context, callID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.contexts, callID)
	return nil
}

// Sweep evicts every expired context and reports how many it removed.
// The orchestrator runs this on its housekeeping tick so contexts for calls
// that died without a clean end do not accumulate.
func (m *MemoryStore) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, c := range m.contexts {
		if c.ExpiredAt(now) {
			delete(m.contexts, id)
			removed++
		}
	}
	return removed
}

// Count returns the number of live contexts
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.contexts)
}
