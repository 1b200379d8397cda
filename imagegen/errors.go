package imagegen

import "errors"

var (
	// ErrInvalidPrompt is returned for an empty prompt.
	ErrInvalidPrompt = errors.New("prompt must not be empty")
	// ErrBackendUnavailable marks a terminal primary failure.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrFallbackFailed marks a failed secondary attempt after a fallback
	// eligible primary failure.
	ErrFallbackFailed = errors.New("fallback failed")
	// ErrEmptyPayload marks a successful backend call that returned no bytes.
	ErrEmptyPayload = errors.New("empty payload")
	// ErrStoreFailure marks a failed artifact save.
	ErrStoreFailure = errors.New("artifact store failure")
)

// AcquireError is the terminal failure of an acquisition. Kind is one of the
// sentinel errors above; Message is safe to hand back to tool callers.
type AcquireError struct {
	Kind    error
	Backend string
	Message string
	// Failure is set when the primary failure was classified.
	Failure *ClassifiedFailure
	Err     error
}

func (e *AcquireError) Error() string { return e.Message }

func (e *AcquireError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
