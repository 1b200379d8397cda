package artifact

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/hupe1980/learnmesh/core"
)

// entry tracks every retained version of one artifact name plus the last
// version handed out. last survives Delete so versions are never reused.
type entry struct {
	last     int
	versions []core.Artifact
}

// InMemoryStore is a trivial in-process ArtifactStore implementation useful
// for tests, examples and single-process deployments. It keeps all artifacts
// in a nested map guarded by an RWMutex. Data is copied on save / retrieval
// to avoid accidental external mutation of internal buffers.
//
// Layout: sessionID -> name -> versions
type InMemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]map[string]*entry
	now       func() time.Time
}

// NewInMemoryStore returns an empty in-memory artifact store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{artifacts: make(map[string]map[string]*entry), now: time.Now}
}

// Save stores a new version of the named artifact and returns its number.
// The input slice is copied before storage.
func (a *InMemoryStore) Save(ctx context.Context, sessionID, name, mimeType string, data []byte) (int, error) {
	if name == "" {
		return 0, ErrInvalidName
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.artifacts[sessionID]; !exists {
		a.artifacts[sessionID] = make(map[string]*entry)
	}
	e, ok := a.artifacts[sessionID][name]
	if !ok {
		e = &entry{}
		a.artifacts[sessionID][name] = e
	}
	e.last++
	e.versions = append(e.versions, core.Artifact{
		Name:     name,
		MimeType: mimeType,
		Data:     slices.Clone(data),
		Version:  e.last,
		Created:  a.now(),
	})
	return e.last, nil
}

// Load returns a copy of the requested version (0 = latest) or ErrNotFound.
func (a *InMemoryStore) Load(_ context.Context, sessionID, name string, version int) (*core.Artifact, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	e, ok := a.lookup(sessionID, name)
	if !ok || len(e.versions) == 0 {
		return nil, ErrNotFound
	}
	if version == 0 {
		return cloneArtifact(e.versions[len(e.versions)-1]), nil
	}
	for _, v := range e.versions {
		if v.Version == version {
			return cloneArtifact(v), nil
		}
	}
	return nil, ErrNotFound
}

// Versions returns the retained version numbers in ascending order.
func (a *InMemoryStore) Versions(_ context.Context, sessionID, name string) ([]int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	e, ok := a.lookup(sessionID, name)
	if !ok || len(e.versions) == 0 {
		return nil, ErrNotFound
	}
	out := make([]int, len(e.versions))
	for i, v := range e.versions {
		out[i] = v.Version
	}
	return out, nil
}

// List returns the sorted artifact names stored for the session. The slice is
// a snapshot and safe for caller mutation.
func (a *InMemoryStore) List(_ context.Context, sessionID string) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.artifacts[sessionID]))
	for name, e := range a.artifacts[sessionID] {
		if len(e.versions) > 0 {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Delete drops every version of the artifact or returns ErrNotFound. The
// version counter is retained.
func (a *InMemoryStore) Delete(_ context.Context, sessionID, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.lookup(sessionID, name)
	if !ok || len(e.versions) == 0 {
		return ErrNotFound
	}
	e.versions = nil
	return nil
}

func (a *InMemoryStore) lookup(sessionID, name string) (*entry, bool) {
	m, ok := a.artifacts[sessionID]
	if !ok {
		return nil, false
	}
	e, ok := m[name]
	return e, ok
}

func cloneArtifact(v core.Artifact) *core.Artifact {
	v.Data = slices.Clone(v.Data)
	return &v
}
