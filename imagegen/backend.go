package imagegen

import (
	"context"
	"fmt"
)

// Payload is the binary result of a generation request.
type Payload struct {
	Data     []byte
	MimeType string
}

// Backend generates an image for a free-text prompt.
type Backend interface {
	Name() string
	Generate(ctx context.Context, prompt string) (*Payload, error)
}

// Reason is a structured failure category reported by a backend client.
type Reason string

const (
	ReasonUnknown        Reason = ""
	ReasonTierRestricted Reason = "TIER_RESTRICTED"
	ReasonQuotaExceeded  Reason = "QUOTA_EXCEEDED"
	ReasonRateLimited    Reason = "RATE_LIMITED"
	ReasonUnavailable    Reason = "UNAVAILABLE"
	ReasonInvalidRequest Reason = "INVALID_REQUEST"
)

// BackendError is the typed failure returned by backend clients.
type BackendError struct {
	Backend    string
	StatusCode int
	Reason     Reason
	Message    string
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %d: %s", e.Backend, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Backend, e.Message)
}

func (e *BackendError) Unwrap() error { return e.Err }

// HTTPStatusCode exposes the status code to the retry policy.
func (e *BackendError) HTTPStatusCode() int { return e.StatusCode }

// reasonForStatus maps generic HTTP status codes onto a Reason.
func reasonForStatus(code int) Reason {
	switch {
	case code == 429:
		return ReasonRateLimited
	case code == 400 || code == 404 || code == 422:
		return ReasonInvalidRequest
	case code >= 500:
		return ReasonUnavailable
	default:
		return ReasonUnknown
	}
}
