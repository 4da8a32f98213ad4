// Package session tracks which vault files each browser session created, the
// only authorization convention the server enforces.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// CookieName is the session identifier cookie.
const CookieName = "vault_sid"

// Store maps opaque session identifiers to the set of relative paths that
// session created. State lives in memory for the life of the process; a
// restart forgets all ownership.
//
// Mutations are serialized by a single RWMutex so parallel creation requests
// from one client never lose updates; permission checks take the read lock
// and run concurrently.
type Store struct {
	mu    sync.RWMutex
	owned map[string]map[string]struct{}
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{owned: make(map[string]map[string]struct{})}
}

// Create registers a new session and returns its identifier.
func (s *Store) Create() string {
	sid := uuid.NewString()
	s.mu.Lock()
	s.owned[sid] = make(map[string]struct{})
	s.mu.Unlock()
	return sid
}

// Valid reports whether sid refers to a known session.
func (s *Store) Valid(sid string) bool {
	s.mu.RLock()
	_, ok := s.owned[sid]
	s.mu.RUnlock()
	return ok
}

// Add records that sid created path.
func (s *Store) Add(sid, path string) {
	s.mu.Lock()
	set, ok := s.owned[sid]
	if !ok {
		set = make(map[string]struct{})
		s.owned[sid] = set
	}
	set[path] = struct{}{}
	s.mu.Unlock()
}

// Remove forgets path for sid, typically after the session deletes its own
// file.
func (s *Store) Remove(sid, path string) {
	s.mu.Lock()
	if set, ok := s.owned[sid]; ok {
		delete(set, path)
	}
	s.mu.Unlock()
}

// Owns reports whether sid created path.
func (s *Store) Owns(sid, path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.owned[sid]
	if !ok {
		return false
	}
	_, ok = set[path]
	return ok
}

// OwnedPaths returns a snapshot copy of the paths sid created.
func (s *Store) OwnedPaths(sid string) map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.owned[sid]
	if !ok {
		return nil
	}
	out := make(map[string]struct{}, len(set))
	for p := range set {
		out[p] = struct{}{}
	}
	return out
}
