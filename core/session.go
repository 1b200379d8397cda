package core

import (
	"context"
	"maps"
	"sync"
	"time"
)

// UpdateFunc computes the next value for a state key from the current one.
// ok reports whether the key existed. Durable stores may hand over the value
// in its serialized form (json.RawMessage) and may invoke the function more
// than once under contention, so it must be free of side effects.
type UpdateFunc func(current any, ok bool) (any, error)

// Session represents a conversational container tracking mutable key/value
// state. It is safe for concurrent access.
//
// Contract:
//   - State mutations update the Updated timestamp
//   - Update applies a read-modify-write under the write lock
//   - Clone performs a shallow copy of the state map for safe divergence.
type Session struct {
	ID      string         `json:"id"`
	State   map[string]any `json:"state"`
	Created time.Time      `json:"created"`
	Updated time.Time      `json:"updated"`
	mu      sync.RWMutex
}

// NewSession creates a new session with the given ID.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{ID: id, State: map[string]any{}, Created: now, Updated: now}
}

// GetState returns the value and existence flag for a state key.
func (s *Session) GetState(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.State[key]
	return v, ok
}

// SetState sets a key/value pair in session state updating the Updated timestamp.
func (s *Session) SetState(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State[key] = value
	s.Updated = time.Now()
}

// ApplyStateDelta merges the provided key/value pairs into State.
func (s *Session) ApplyStateDelta(delta map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.State, delta)
	s.Updated = time.Now()
}

// Update replaces the value under key with the result of fn. The read and the
// write happen under one lock acquisition; if fn fails nothing is written.
func (s *Session) Update(key string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.State[key]
	next, err := fn(cur, ok)
	if err != nil {
		return err
	}
	s.State[key] = next
	s.Updated = time.Now()
	return nil
}

// Clone returns a copy of the session safe for independent mutation of the
// state map. Values themselves are shared.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Session{ID: s.ID, State: make(map[string]any, len(s.State)), Created: s.Created, Updated: s.Updated}
	maps.Copy(clone.State, s.State)
	return clone
}

// SessionStore persists sessions and their evolving state.
type SessionStore interface {
	Create(ctx context.Context, id string) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	ApplyDelta(ctx context.Context, sessionID string, delta map[string]any) error
	// Update atomically replaces one state key. Updates against the same
	// session are serialized; updates against different sessions are not.
	Update(ctx context.Context, sessionID, key string, fn UpdateFunc) error
}

// StateHandle is an explicit handle on a single session's state. Aggregators
// receive it instead of reaching into ambient session maps.
type StateHandle interface {
	SessionID() string
	UpdateState(ctx context.Context, key string, fn UpdateFunc) error
}

type boundState struct {
	store     SessionStore
	sessionID string
}

// BindSession returns a StateHandle that routes updates for sessionID to store.
func BindSession(store SessionStore, sessionID string) StateHandle {
	return &boundState{store: store, sessionID: sessionID}
}

func (b *boundState) SessionID() string { return b.sessionID }

func (b *boundState) UpdateState(ctx context.Context, key string, fn UpdateFunc) error {
	return b.store.Update(ctx, b.sessionID, key, fn)
}
