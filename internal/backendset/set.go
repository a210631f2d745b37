// Package backendset holds S, the backend set: an append-only, ordered
// sequence of backends safe for concurrent reads while a writer appends
// (spec.md §3). Order is registration order; the round-robin cursor and
// the primary index both index into this order.
package backendset

import (
	"sync"

	"msgproxy/internal/backend"
)

type Set struct {
	mu       sync.RWMutex
	backends []*backend.Backend
}

func New() *Set {
	return &Set{}
}

// Append adds b to the end of the set. Readers concurrently iterating a
// Snapshot taken before this call never observe b (spec.md §8 invariant
// 4: "A backend newly registered is never selected by forward before
// its entry is appended to S").
func (s *Set) Append(b *backend.Backend) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.backends = append(s.backends, b)
}

// Len returns the current size of S.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.backends)
}

// At returns the backend at idx, or nil if idx is out of range (the set
// may have shrunk — it never does today, but callers should not assume
// bounds from a stale Len()).
func (s *Set) At(idx int) *backend.Backend {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx < 0 || idx >= len(s.backends) {
		return nil
	}
	return s.backends[idx]
}

// Snapshot returns an independent copy of the current backend order, for
// callers (the heartbeat manager) that must iterate without holding a
// lock across blocking I/O.
func (s *Set) Snapshot() []*backend.Backend {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*backend.Backend, len(s.backends))
	copy(out, s.backends)
	return out
}
