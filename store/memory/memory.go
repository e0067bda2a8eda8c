// Package memory is an in-process HistoryStore.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/smallnest/langlab/store"
)

// Store keeps histories in a map guarded by a mutex.
type Store struct {
	mu       sync.RWMutex
	sessions map[string][]store.Turn
}

var _ store.HistoryStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{sessions: make(map[string][]store.Turn)}
}

// Append adds turns to a session.
func (s *Store) Append(_ context.Context, sessionID string, turns ...store.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], turns...)
	return nil
}

// Load returns a copy of a session's turns.
func (s *Store) Load(_ context.Context, sessionID string) ([]store.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.sessions[sessionID]
	out := make([]store.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// Clear removes a session.
func (s *Store) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Sessions lists session IDs.
func (s *Store) Sessions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
