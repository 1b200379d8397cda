// Package tool implements the tool contracts the orchestrator invokes: schema
// validated arguments in, a flat result map out. Every result carries a
// "status" of "success" or "error"; failures additionally carry
// "error_message" and a "code" from a fixed taxonomy. No Go error escapes
// Execute.
package tool

import (
	"errors"
	"fmt"

	"github.com/hupe1980/learnmesh/core"
	"github.com/hupe1980/learnmesh/internal/util"
)

// Tool defines the interface for capabilities exposed to the orchestrator.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Define proper JSON schema for parameters
//   - Return *ToolError for failures with a known category
//   - Be thread-safe if used concurrently
type Tool interface {
	// Name returns the unique identifier for this tool (snake_case).
	Name() string

	// Description returns a human-readable description of what this tool does.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	Parameters() map[string]any

	// Call executes the tool with structured arguments and ToolContext.
	Call(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// Error codes carried in error results.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	CodeFallbackFailed     = "FALLBACK_FAILED"
	CodeEmptyPayload       = "EMPTY_PAYLOAD"
	CodeStoreFailure       = "STORE_FAILURE"
	CodeNotFound           = "NOT_FOUND"
	CodeExecution          = "EXECUTION_ERROR"
)

// Result status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
	Err     error  `json:"-"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

func (e *ToolError) Unwrap() error { return e.Err }

// ErrorResult converts err into an error result map.
func ErrorResult(err error) map[string]any {
	code, msg := CodeExecution, err.Error()
	var te *ToolError
	if errors.As(err, &te) {
		code, msg = te.Code, te.Message
		if code == "" {
			code = CodeExecution
		}
	}
	return map[string]any{
		"status":        StatusError,
		"error_message": msg,
		"message":       msg,
		"code":          code,
	}
}
