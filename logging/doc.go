// Package logging provides a minimal logging interface and adapters for learnmesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that tools, stores and backends use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging (json, text or colored console output)
//   - ZapAdapter for applications already standardized on zap
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "console", false)
//	mesh, err := learnmesh.New(func(o *learnmesh.Options) { o.Logger = logger })
package logging
