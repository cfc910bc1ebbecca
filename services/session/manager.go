package session

import (
	"context"
	"log"
	"sync"
	"time"
)

// Manager keeps one Store per session token for the lifetime of the process
type Manager struct {
	repo Repository

	// IdleTTL drops stores not read for this long
	IdleTTL time.Duration
	// RevalidateEvery re-checks the identity behind a token at most this often
	RevalidateEvery time.Duration

	mu     sync.Mutex
	stores map[string]*Store
}

// NewManager creates a manager backed by repo
func NewManager(repo Repository) *Manager {
	return &Manager{
		repo:            repo,
		IdleTTL:         2 * time.Hour,
		RevalidateEvery: time.Minute,
		stores:          make(map[string]*Store),
	}
}

// Get returns the initialized store for token, creating it on first use.
// Stores that resolve to no identity are returned but not retained, so
// unknown or revoked tokens never stay subscribed to change events.
func (m *Manager) Get(ctx context.Context, token string) *Store {
	if token == "" {
		st := NewStore(m.repo, "")
		st.state = StateAnonymous
		return st
	}

	m.mu.Lock()
	st, ok := m.stores[token]
	if !ok {
		st = NewStore(m.repo, token)
		m.stores[token] = st
	}
	m.mu.Unlock()

	st.Init(ctx)
	if ok && m.RevalidateEvery > 0 && time.Since(st.verifiedSince()) > m.RevalidateEvery {
		st.Revalidate(ctx)
	}
	if st.State() == StateAnonymous {
		m.release(token, st)
	}
	return st
}

// release forgets st if it is still the store tracked for token
func (m *Manager) release(token string, st *Store) {
	m.mu.Lock()
	if m.stores[token] == st {
		delete(m.stores, token)
	}
	m.mu.Unlock()
	st.Close()
}

// Drop closes and forgets the store for token
func (m *Manager) Drop(token string) {
	m.mu.Lock()
	st, ok := m.stores[token]
	delete(m.stores, token)
	m.mu.Unlock()

	if ok {
		st.Close()
	}
}

// Prune drops anonymous and idle stores and returns how many were removed
func (m *Manager) Prune() int {
	cutoff := time.Now().Add(-m.IdleTTL)

	m.mu.Lock()
	var stale []*Store
	for token, st := range m.stores {
		if st.State() == StateAnonymous || st.idleSince().Before(cutoff) {
			stale = append(stale, st)
			delete(m.stores, token)
		}
	}
	m.mu.Unlock()

	for _, st := range stale {
		st.Close()
	}
	if len(stale) > 0 {
		log.Printf("[SESSION] Pruned %d session stores", len(stale))
	}
	return len(stale)
}

// Len returns the number of tracked stores
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}

// Close tears down every store
func (m *Manager) Close() {
	m.mu.Lock()
	stores := m.stores
	m.stores = make(map[string]*Store)
	m.mu.Unlock()

	for _, st := range stores {
		st.Close()
	}
}
