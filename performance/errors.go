package performance

import (
	"fmt"
	"math"
)

// ValidationError reports a score outside the accepted domain.
type ValidationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// Validate checks that score is a finite percentage in [0,100].
func Validate(score float64) error {
	switch {
	case math.IsNaN(score) || math.IsInf(score, 0):
		return &ValidationError{Field: "score", Value: score, Reason: "must be a finite number"}
	case score < 0:
		return &ValidationError{Field: "score", Value: score, Reason: "must not be negative"}
	case score > 100:
		return &ValidationError{Field: "score", Value: score, Reason: "must not exceed 100"}
	}
	return nil
}

// Percent converts a raw point score on a 0..outOf scale into a percentage.
func Percent(points, outOf float64) (float64, error) {
	if math.IsNaN(outOf) || math.IsInf(outOf, 0) || outOf <= 0 {
		return 0, &ValidationError{Field: "scale", Value: outOf, Reason: "must be a positive finite number"}
	}
	if math.IsNaN(points) || math.IsInf(points, 0) || points < 0 || points > outOf {
		return 0, &ValidationError{Field: "points", Value: points, Reason: fmt.Sprintf("must be within [0,%v]", outOf)}
	}
	return points / outOf * 100, nil
}
