package imagegen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/hupe1980/learnmesh/logging"
	"github.com/hupe1980/learnmesh/metrics"
)

// ArtifactSink persists a payload and returns the assigned version.
// core.ToolContext satisfies it for the calling session.
type ArtifactSink interface {
	SaveArtifact(name, mimeType string, data []byte) (int, error)
}

// Result describes a saved illustration.
type Result struct {
	ArtifactName string `json:"artifact_name"`
	Version      int    `json:"version"`
	MimeType     string `json:"mime_type"`
	Backend      string `json:"backend"`
	FallbackUsed bool   `json:"fallback_used"`
	Bytes        int    `json:"bytes"`
}

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	// AttemptTimeout bounds each backend hop, retries included.
	AttemptTimeout time.Duration
	// MaxConcurrent bounds acquisitions in flight across callers.
	MaxConcurrent int64
	Logger        logging.Logger
}

// Fetcher acquires images from a primary backend with a single classified
// fallback hop to a secondary backend.
type Fetcher struct {
	primary   Backend
	secondary Backend
	sem       *semaphore.Weighted
	opts      FetcherOptions
}

// DefaultAttemptTimeout bounds a backend hop when no positive timeout is set.
const DefaultAttemptTimeout = 60 * time.Second

// NewFetcher creates a fetcher. secondary may be nil, in which case every
// primary failure is terminal.
func NewFetcher(primary, secondary Backend, optFns ...func(o *FetcherOptions)) *Fetcher {
	opts := FetcherOptions{
		AttemptTimeout: DefaultAttemptTimeout,
		MaxConcurrent:  4,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = DefaultAttemptTimeout
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	return &Fetcher{
		primary:   primary,
		secondary: secondary,
		sem:       semaphore.NewWeighted(opts.MaxConcurrent),
		opts:      opts,
	}
}

// Acquire generates an image for prompt and saves it to sink under name, or
// under DeriveName(prompt) when name is empty.
func (f *Fetcher) Acquire(ctx context.Context, sink ArtifactSink, prompt, name string) (Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return Result{}, &AcquireError{Kind: ErrInvalidPrompt, Message: ErrInvalidPrompt.Error()}
	}
	if name == "" {
		name = DeriveName(prompt)
	}

	if err := f.sem.Acquire(ctx, 1); err != nil {
		return Result{}, &AcquireError{Kind: ErrBackendUnavailable, Message: err.Error(), Err: err}
	}
	defer f.sem.Release(1)

	log := logging.With(f.opts.Logger, "artifact", name)

	backend := f.primary
	fallback := false
	payload, err := f.attempt(ctx, f.primary, prompt)
	if err != nil {
		cf := Classify(err)
		log.Warn("imagegen.primary.failed",
			"backend", f.primary.Name(),
			"message", cf.RawMessage,
			"similarity", cf.Similarity,
			"reason", cf.Reason,
			"fallback_eligible", cf.FallbackEligible,
		)
		if !cf.FallbackEligible || f.secondary == nil {
			return Result{}, &AcquireError{
				Kind:    ErrBackendUnavailable,
				Backend: f.primary.Name(),
				Message: cf.RawMessage,
				Failure: &cf,
				Err:     err,
			}
		}

		metrics.FallbacksTotal.WithLabelValues(fallbackLabel(cf)).Inc()
		backend, fallback = f.secondary, true
		payload, err = f.attempt(ctx, f.secondary, prompt)
		if err != nil {
			msg := fmt.Sprintf("primary backend %s unavailable (%s); fallback %s failed: %s",
				f.primary.Name(), cf.RawMessage, f.secondary.Name(), ExtractMessage(err))
			log.Error("imagegen.fallback.failed", "backend", f.secondary.Name(), "error", err)
			return Result{}, &AcquireError{
				Kind:    ErrFallbackFailed,
				Backend: f.secondary.Name(),
				Message: msg,
				Failure: &cf,
				Err:     err,
			}
		}
	}

	if payload == nil || len(payload.Data) == 0 {
		metrics.BackendAttemptsTotal.WithLabelValues(backend.Name(), "empty").Inc()
		return Result{}, &AcquireError{
			Kind:    ErrEmptyPayload,
			Backend: backend.Name(),
			Message: fmt.Sprintf("%s returned an empty payload", backend.Name()),
		}
	}

	mimeType := payload.MimeType
	if mimeType == "" {
		mimeType = "image/png"
	}
	version, err := sink.SaveArtifact(name, mimeType, payload.Data)
	if err != nil {
		log.Error("imagegen.save.failed", "error", err)
		return Result{}, &AcquireError{
			Kind:    ErrStoreFailure,
			Backend: backend.Name(),
			Message: fmt.Sprintf("save artifact %q: %v", name, err),
			Err:     err,
		}
	}
	metrics.ArtifactsSavedTotal.WithLabelValues(backend.Name()).Inc()

	res := Result{
		ArtifactName: name,
		Version:      version,
		MimeType:     mimeType,
		Backend:      backend.Name(),
		FallbackUsed: fallback,
		Bytes:        len(payload.Data),
	}
	log.Info("imagegen.saved", "backend", res.Backend, "version", res.Version, "bytes", res.Bytes, "fallback", res.FallbackUsed)
	return res, nil
}

// attempt runs one backend hop under its own timeout.
func (f *Fetcher) attempt(ctx context.Context, b Backend, prompt string) (*Payload, error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.AttemptTimeout)
	defer cancel()
	start := time.Now()
	p, err := b.Generate(ctx, prompt)
	metrics.BackendLatency.WithLabelValues(b.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil {
			err = &BackendError{Backend: b.Name(), Reason: ReasonUnavailable, Message: fmt.Sprintf("%s timed out", b.Name()), Err: err}
		}
		metrics.BackendAttemptsTotal.WithLabelValues(b.Name(), "failure").Inc()
		return nil, err
	}
	metrics.BackendAttemptsTotal.WithLabelValues(b.Name(), "success").Inc()
	return p, nil
}

func fallbackLabel(cf ClassifiedFailure) string {
	if cf.Reason == ReasonTierRestricted || cf.Reason == ReasonQuotaExceeded {
		return string(cf.Reason)
	}
	return "similarity"
}
