// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package session

import (
	"sync"
	"sync/atomic"
)

// Store owns the single shared Session. Writers replace whole records under
// a lock; readers get complete value snapshots, so a reader never observes a
// half-applied multi-field update. Every write bumps the version returned by
// SnapshotVersion, which readers compare to skip redundant work.
type Store struct {
	mu      sync.RWMutex
	s       Session
	version atomic.Uint64
}

// NewStore creates a store holding initial
func NewStore(initial Session) *Store {
	return &Store{s: initial}
}

// Snapshot returns a copy of the current session
func (st *Store) Snapshot() Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s
}

// SnapshotVersion returns a copy and the version it was taken at
func (st *Store) SnapshotVersion() (Session, uint64) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s, st.version.Load()
}

// Update applies fn to the session atomically and returns the result
func (st *Store) Update(fn func(*Session)) Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	fn(&st.s)
	st.version.Add(1)
	return st.s
}
