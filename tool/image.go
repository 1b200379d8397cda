package tool

import (
	"errors"

	"github.com/hupe1980/learnmesh/core"
	"github.com/hupe1980/learnmesh/imagegen"
)

// GenerateImageToolName is the name of the illustration tool.
const GenerateImageToolName = "generate_image"

type generateImageInput struct {
	Prompt string `json:"prompt" description:"The main description of the image to generate." minLength:"1"`
	Name   string `json:"name,omitempty" description:"Optional artifact name. Derived from the prompt when omitted."`
}

// NewGenerateImageTool exposes fetcher as a tool that saves the generated
// image as a session artifact.
func NewGenerateImageTool(fetcher *imagegen.Fetcher) *FunctionTool {
	return NewFunctionToolFromStruct(
		GenerateImageToolName,
		"Generate an illustration for the lesson from a text prompt and save it as an artifact.",
		generateImageInput{},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			prompt, _ := args["prompt"].(string)
			name, _ := args["name"].(string)

			res, err := fetcher.Acquire(tc.Context(), tc, prompt, name)
			if err != nil {
				return nil, &ToolError{Message: err.Error(), Code: imageErrorCode(err), Err: err}
			}
			return map[string]any{
				"status":                   StatusSuccess,
				"processed_image_artifact": res.ArtifactName,
				"version_number":           res.Version,
				"artifact_name":            res.ArtifactName,
				"version":                  res.Version,
				"mime_type":                res.MimeType,
				"backend":                  res.Backend,
				"fallback_used":            res.FallbackUsed,
				"bytes":                    res.Bytes,
			}, nil
		},
	)
}

func imageErrorCode(err error) string {
	switch {
	case errors.Is(err, imagegen.ErrInvalidPrompt):
		return CodeValidation
	case errors.Is(err, imagegen.ErrFallbackFailed):
		return CodeFallbackFailed
	case errors.Is(err, imagegen.ErrEmptyPayload):
		return CodeEmptyPayload
	case errors.Is(err, imagegen.ErrStoreFailure):
		return CodeStoreFailure
	case errors.Is(err, imagegen.ErrBackendUnavailable):
		return CodeBackendUnavailable
	default:
		return CodeExecution
	}
}
