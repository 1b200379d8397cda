package session

import (
	"context"
	"sync"

	"github.com/hupe1980/learnmesh/core"
)

// InMemoryStore is a volatile SessionStore implementation storing
// sessions in a process local map. It is safe for concurrent access and best
// suited for tests or single-process deployments. Each returned session is
// cloned to prevent external mutation of internal state.
//
// Update holds the session's own lock for the read-modify-write, so updates
// to one session are serialized while distinct sessions proceed in parallel.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*core.Session)}
}

// Get returns an existing session (clone) or creates a new one lazily.
func (s *InMemoryStore) Get(_ context.Context, sessionID string) (*core.Session, error) {
	return s.session(sessionID).Clone(), nil
}

// Create forces the creation (or overwriting) of a session with the given id.
func (s *InMemoryStore) Create(_ context.Context, sessionID string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createSessionLocked(sessionID).Clone(), nil
}

// ApplyDelta merges a key/value delta into the session state.
func (s *InMemoryStore) ApplyDelta(_ context.Context, sessionID string, delta map[string]any) error {
	s.session(sessionID).ApplyStateDelta(delta)
	return nil
}

// Update atomically replaces one state key of the session.
func (s *InMemoryStore) Update(ctx context.Context, sessionID, key string, fn core.UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.session(sessionID).Update(key, fn)
}

// session returns the live session for id, creating it on first use.
func (s *InMemoryStore) session(sessionID string) *core.Session {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return sess
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		return sess
	}
	return s.createSessionLocked(sessionID)
}

// createSessionLocked allocates and stores a new session; caller must already
// hold the write lock.
func (s *InMemoryStore) createSessionLocked(sessionID string) *core.Session {
	sess := core.NewSession(sessionID)
	s.sessions[sessionID] = sess
	return sess
}
