package testutil

import (
	"context"

	"github.com/hupe1980/learnmesh/core"
	"github.com/hupe1980/learnmesh/session"
)

// SessionBuilder helps construct sessions with fluent chaining for tests.
// Example:
//
//	store := NewSessionBuilder("sess-1").State("k", "v").Store()
type SessionBuilder struct {
	id    string
	state map[string]any
}

// NewSessionBuilder creates a new builder for a session with the given id.
func NewSessionBuilder(id string) *SessionBuilder {
	return &SessionBuilder{id: id, state: map[string]any{}}
}

// State sets or overwrites a state key/value pair on the resulting session (chainable).
func (b *SessionBuilder) State(key string, val any) *SessionBuilder {
	b.state[key] = val
	return b
}

// Build returns a *core.Session with pre-populated state.
func (b *SessionBuilder) Build() *core.Session {
	s := core.NewSession(b.id)
	s.ApplyStateDelta(b.state)
	return s
}

// Store returns an in-memory session store already holding the session.
func (b *SessionBuilder) Store() *session.InMemoryStore {
	store := session.NewInMemoryStore()
	_ = store.ApplyDelta(context.Background(), b.id, b.state)
	return store
}
