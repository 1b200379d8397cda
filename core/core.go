package core

import (
	"github.com/google/uuid"

	"github.com/hupe1980/learnmesh/logging"
)

// NewID returns a random identifier suitable for sessions and function calls.
func NewID() string { return uuid.NewString() }

// loggerAdapter guarantees a non-nil logger for embedding types.
type loggerAdapter struct {
	logger logging.Logger
}

func newLoggerAdapter(l logging.Logger) *loggerAdapter {
	if l == nil {
		l = logging.NoOpLogger{}
	}
	return &loggerAdapter{logger: l}
}

// Logger returns the underlying logger.
func (l *loggerAdapter) Logger() logging.Logger { return l.logger }
