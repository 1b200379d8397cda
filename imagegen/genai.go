package imagegen

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

type imageGenerator interface {
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// GenAIOptions configures the Imagen backend.
type GenAIOptions struct {
	Model    string
	MimeType string
}

// GenAIBackend generates images with Google's Imagen models through the
// Gemini API. It is the primary backend and is tier gated.
type GenAIBackend struct {
	models imageGenerator
	opts   GenAIOptions
}

// NewGenAIBackend creates an Imagen backend authenticated with apiKey.
func NewGenAIBackend(ctx context.Context, apiKey string, optFns ...func(o *GenAIOptions)) (*GenAIBackend, error) {
	if apiKey == "" {
		return nil, errors.New("genai api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return NewGenAIBackendFromModels(client.Models, optFns...), nil
}

// NewGenAIBackendFromModels wraps an existing models service.
func NewGenAIBackendFromModels(models imageGenerator, optFns ...func(o *GenAIOptions)) *GenAIBackend {
	opts := GenAIOptions{
		Model:    "imagen-4.0-generate-001",
		MimeType: "image/png",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &GenAIBackend{models: models, opts: opts}
}

// Name implements Backend.
func (b *GenAIBackend) Name() string { return "imagen" }

// Generate implements Backend.
func (b *GenAIBackend) Generate(ctx context.Context, prompt string) (*Payload, error) {
	resp, err := b.models.GenerateImages(ctx, b.opts.Model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: b.opts.MimeType,
	})
	if err != nil {
		return nil, b.wrapError(err)
	}
	if resp == nil {
		return &Payload{}, nil
	}
	for _, gi := range resp.GeneratedImages {
		if gi == nil || gi.Image == nil || len(gi.Image.ImageBytes) == 0 {
			continue
		}
		mt := gi.Image.MIMEType
		if mt == "" {
			mt = b.opts.MimeType
		}
		return &Payload{Data: gi.Image.ImageBytes, MimeType: mt}, nil
	}
	return &Payload{MimeType: b.opts.MimeType}, nil
}

func (b *GenAIBackend) wrapError(err error) error {
	var ae genai.APIError
	if !errors.As(err, &ae) {
		return &BackendError{Backend: b.Name(), Message: err.Error(), Err: err}
	}
	reason := reasonForStatus(ae.Code)
	switch ae.Status {
	case "RESOURCE_EXHAUSTED":
		reason = ReasonQuotaExceeded
	case "UNAVAILABLE":
		reason = ReasonUnavailable
	}
	return &BackendError{
		Backend:    b.Name(),
		StatusCode: ae.Code,
		Reason:     reason,
		Message:    ae.Message,
		Err:        err,
	}
}
