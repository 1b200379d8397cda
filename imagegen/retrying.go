package imagegen

import (
	"context"
	"strconv"
	"time"

	"github.com/hupe1980/learnmesh/logging"
	"github.com/hupe1980/learnmesh/metrics"
	"github.com/hupe1980/learnmesh/retry"
)

// RetryingBackend applies a retry policy to every call of the wrapped backend.
type RetryingBackend struct {
	next   Backend
	policy retry.Policy
	logger logging.Logger
}

// WithRetry decorates b with policy.
func WithRetry(b Backend, policy retry.Policy, logger logging.Logger) *RetryingBackend {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &RetryingBackend{next: b, policy: policy, logger: logger}
}

// Name implements Backend.
func (r *RetryingBackend) Name() string { return r.next.Name() }

// Generate implements Backend.
func (r *RetryingBackend) Generate(ctx context.Context, prompt string) (*Payload, error) {
	return retry.Do(ctx, r.policy, func(ctx context.Context) (*Payload, error) {
		return r.next.Generate(ctx, prompt)
	}, func(err error, next time.Duration) {
		code, _ := retry.StatusCode(err)
		metrics.RetriesTotal.WithLabelValues(r.Name(), strconv.Itoa(code)).Inc()
		r.logger.Warn("imagegen.retry", "backend", r.Name(), "status", code, "next", next, "error", err)
	})
}
