// Package retry implements the uniform retry policy applied to outbound
// model and backend calls: a bounded number of attempts with exponential
// backoff, retrying only failures that carry one of a fixed set of HTTP
// status codes.
package retry

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	HTTPStatusCode() int
}

// Policy describes when and how often a failed call is retried.
type Policy struct {
	// Attempts is the total number of tries including the first one.
	Attempts uint
	// InitialDelay is the wait before the second attempt.
	InitialDelay time.Duration
	// Multiplier scales the delay after every failed attempt.
	Multiplier float64
	// MaxDelay caps a single wait.
	MaxDelay time.Duration
	// Jitter is the randomization factor in [0,1).
	Jitter float64
	// StatusCodes lists the HTTP status codes that are retried.
	StatusCodes []int
}

// DefaultPolicy returns 5 attempts starting at 1s with a multiplier of 7,
// retrying 429, 500, 503 and 504.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:     5,
		InitialDelay: time.Second,
		Multiplier:   7,
		MaxDelay:     60 * time.Second,
		Jitter:       0.5,
		StatusCodes:  []int{429, 500, 503, 504},
	}
}

// StatusCode extracts the HTTP status code from err, if any.
func StatusCode(err error) (int, bool) {
	var sc StatusCoder
	if errors.As(err, &sc) {
		if code := sc.HTTPStatusCode(); code > 0 {
			return code, true
		}
	}
	return 0, false
}

// Retryable reports whether err carries one of the policy's status codes.
func (p Policy) Retryable(err error) bool {
	code, ok := StatusCode(err)
	return ok && slices.Contains(p.StatusCodes, code)
}

// NotifyFunc observes a failed attempt before the next wait.
type NotifyFunc func(err error, next time.Duration)

// Do runs op until it succeeds, fails with a non-retryable error, the
// attempts are exhausted or ctx is done.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error), notify NotifyFunc) (T, error) {
	if p.Attempts <= 1 {
		return op(ctx)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = p.Jitter
	if p.MaxDelay > 0 {
		b.MaxInterval = p.MaxDelay
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(p.Attempts),
		backoff.WithMaxElapsedTime(0),
	}
	if notify != nil {
		opts = append(opts, backoff.WithNotify(backoff.Notify(notify)))
	}

	return backoff.Retry(ctx, func() (T, error) {
		v, err := op(ctx)
		if err != nil && !p.Retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, opts...)
}
