package tool

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/learnmesh/core"
	"github.com/hupe1980/learnmesh/metrics"
)

// Execute runs t and always returns a result map. Errors and panics are
// converted into error results.
func Execute(tc *core.ToolContext, t Tool, args map[string]any) (result map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			tc.Logger().Error("tool.call.panic", "tool", t.Name(), "panic", r)
			result = ErrorResult(&ToolError{Tool: t.Name(), Message: fmt.Sprintf("panic: %v", r), Code: CodeExecution})
		}
		status, _ := result["status"].(string)
		metrics.ToolCallsTotal.WithLabelValues(t.Name(), status).Inc()
	}()

	if args == nil {
		args = map[string]any{}
	}
	out, err := t.Call(tc, args)
	if err != nil {
		return ErrorResult(err)
	}
	switch v := out.(type) {
	case map[string]any:
		if _, ok := v["status"]; !ok {
			v["status"] = StatusSuccess
		}
		return v
	case nil:
		return map[string]any{"status": StatusSuccess}
	default:
		return map[string]any{"status": StatusSuccess, "result": v}
	}
}

// Registry holds tools by name.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry returns a registry holding tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.tools[t.Name()] = t
	}
	return r
}

// Register adds t, replacing any tool with the same name.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns the registered tools sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
