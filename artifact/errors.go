package artifact

import "errors"

var (
	// ErrNotFound is returned when an artifact (or the requested version of
	// it) does not exist for the given session / name pair.
	ErrNotFound = errors.New("artifact not found")

	// ErrInvalidName is returned when saving under an empty name.
	ErrInvalidName = errors.New("artifact name must not be empty")
)
