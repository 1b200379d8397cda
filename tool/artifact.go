package tool

import (
	"encoding/base64"
	"errors"

	"github.com/hupe1980/learnmesh/artifact"
	"github.com/hupe1980/learnmesh/core"
	"github.com/hupe1980/learnmesh/internal/util"
)

// Artifact tool names.
const (
	LoadArtifactToolName  = "load_artifact"
	ListArtifactsToolName = "list_artifacts"
)

// NewLoadArtifactTool returns a tool that loads a saved artifact of the
// calling session. Version 0 or omitted selects the latest.
func NewLoadArtifactTool() *FunctionTool {
	return NewFunctionTool(
		LoadArtifactToolName,
		"Load a previously saved artifact of this session by name and optional version.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":         map[string]any{"type": "string", "description": "Artifact name.", "minLength": 1},
				"version":      map[string]any{"type": "integer", "description": "Version to load; latest when omitted.", "minimum": 0},
				"include_data": map[string]any{"type": "boolean", "description": "Return the payload base64 encoded."},
			},
			"required": []string{"name"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			name, _ := args["name"].(string)
			version := 0
			if v, ok := util.ToFloat(args["version"]); ok {
				version = int(v)
			}
			a, err := tc.LoadArtifact(name, version)
			if err != nil {
				if errors.Is(err, artifact.ErrNotFound) {
					return nil, &ToolError{Message: err.Error(), Code: CodeNotFound, Err: err}
				}
				return nil, &ToolError{Message: err.Error(), Code: CodeStoreFailure, Err: err}
			}
			out := map[string]any{
				"status":        StatusSuccess,
				"artifact_name": a.Name,
				"version":       a.Version,
				"mime_type":     a.MimeType,
				"size":          len(a.Data),
			}
			if include, _ := args["include_data"].(bool); include {
				out["data_base64"] = base64.StdEncoding.EncodeToString(a.Data)
			}
			return out, nil
		},
	)
}

// NewListArtifactsTool returns a tool listing the artifact names of the session.
func NewListArtifactsTool() *FunctionTool {
	return NewFunctionTool(
		ListArtifactsToolName,
		"List the names of artifacts saved in this session.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(tc *core.ToolContext, _ map[string]any) (any, error) {
			names, err := tc.ListArtifacts()
			if err != nil {
				return nil, &ToolError{Message: err.Error(), Code: CodeStoreFailure, Err: err}
			}
			return map[string]any{"status": StatusSuccess, "artifacts": names}, nil
		},
	)
}
