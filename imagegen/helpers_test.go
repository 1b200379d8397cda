package imagegen

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type fakeBackend struct {
	name    string
	payload *Payload
	err     error
	block   bool

	mu        sync.Mutex
	calls     int
	prompts   []string
	deadlines []time.Time
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Generate(ctx context.Context, prompt string) (*Payload, error) {
	f.mu.Lock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	dl, _ := ctx.Deadline()
	f.deadlines = append(f.deadlines, dl)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.payload, f.err
}

func (f *fakeBackend) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type saved struct {
	name, mimeType string
	data           []byte
}

type fakeSink struct {
	mu       sync.Mutex
	versions map[string]int
	saves    []saved
	err      error
}

func newFakeSink() *fakeSink { return &fakeSink{versions: map[string]int{}} }

func (s *fakeSink) SaveArtifact(name, mimeType string, data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.versions[name]++
	s.saves = append(s.saves, saved{name, mimeType, data})
	return s.versions[name], nil
}

func pngBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func billingError(msg string) error {
	return fmt.Errorf("generate images: %w", &BackendError{Backend: "imagen", StatusCode: 400, Message: msg})
}
