// Package state keeps the per-user conversation position.
// Positions are ephemeral; only registration data is durable.
package state

import (
	"sync"
	"time"

	"zhukbot/internal/domain"
)

// Store holds one conversation state per user
type Store interface {
	// Get returns false when the user has no state
	Get(userID int64) (domain.State, bool)
	Set(userID int64, st domain.State)
	Remove(userID int64)
	// EvictIdle drops states untouched for longer than ttl and returns how many were removed
	EvictIdle(ttl time.Duration) int
}

type entry struct {
	state   domain.State
	touched time.Time
}

// MemoryStore is a Store backed by a map
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[int64]entry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[int64]entry),
		now:     time.Now,
	}
}

// Get returns the user's state if present
func (m *MemoryStore) Get(userID int64) (domain.State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[userID]
	return e.state, ok
}

// Set replaces the user's state
func (m *MemoryStore) Set(userID int64, st domain.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[userID] = entry{state: st, touched: m.now()}
}

// Remove forgets the user's state
func (m *MemoryStore) Remove(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, userID)
}

// EvictIdle drops states not written within ttl
func (m *MemoryStore) EvictIdle(ttl time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-ttl)
	evicted := 0
	for userID, e := range m.entries {
		if e.touched.Before(cutoff) {
			delete(m.entries, userID)
			evicted++
		}
	}
	return evicted
}

// Len reports the number of tracked users
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
