package tool

import (
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/learnmesh/core"
	"github.com/hupe1980/learnmesh/internal/util"
)

// FunctionTool adapts a plain Go function into a Tool. Arguments are checked
// against the declared schema before fn runs; failures surface as *ToolError
// (VALIDATION_ERROR for argument mismatches, EXECUTION_ERROR for untyped
// errors, any code fn chose otherwise).
//
// A FunctionTool is immutable after construction and safe for concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// NewFunctionTool constructs a FunctionTool from an explicit schema.
//
// Example:
//
//	echo := NewFunctionTool(
//	  "echo_percentage",
//	  "Echo a quiz percentage",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "percentage": map[string]any{"type": "number", "minimum": 0, "maximum": 100},
//	    },
//	    "required": []string{"percentage"},
//	  },
//	  func(tc *core.ToolContext, args map[string]any) (any, error) {
//	    p, _ := util.ToFloat(args["percentage"])
//	    return map[string]any{"percentage": p}, nil
//	  },
//	)
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(toolCtx *core.ToolContext, args map[string]any) (any, error),
) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from the tags of
// structType (see util.CreateSchema).
func NewFunctionToolFromStruct(
	name, description string,
	structType any,
	fn func(toolCtx *core.ToolContext, args map[string]any) (any, error),
) *FunctionTool {
	schema := util.CreateSchema(structType)
	return NewFunctionTool(name, description, schema, fn)
}

func (t *FunctionTool) Name() string               { return t.name }
func (t *FunctionTool) Description() string        { return t.description }
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates args and invokes the wrapped function.
func (t *FunctionTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	logger := toolCtx.Logger()
	start := time.Now()

	logger.Debug("tool.call.start", "tool", t.name)
	if err := util.ValidateParameters(args, t.parameters); err != nil {
		logger.Warn("tool.call.validation_failed", "tool", t.name, "error", err.Error())
		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    CodeValidation,
			Details: err,
			Err:     err,
		}
	}

	result, err := t.fn(toolCtx, args)
	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			if toolErr.Tool == "" {
				toolErr.Tool = t.name
			}
			logger.Warn("tool.call.failed", "tool", t.name, "code", toolErr.Code, "error", toolErr.Message)
			return nil, toolErr
		}

		logger.Error("tool.call.error", "tool", t.name, "error", err.Error())
		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    CodeExecution,
			Err:     err,
		}
	}

	logger.Info("tool.call.success", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())
	return result, nil
}
