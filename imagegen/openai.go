package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type imagesService interface {
	Generate(ctx context.Context, body openai.ImageGenerateParams, opts ...option.RequestOption) (*openai.ImagesResponse, error)
}

// OpenAIOptions configures the OpenAI image backend.
type OpenAIOptions struct {
	Model string
	Size  openai.ImageGenerateParamsSize
}

// OpenAIBackend generates images with the OpenAI Images API. It can stand in
// as the primary backend when no Imagen access is configured.
type OpenAIBackend struct {
	images imagesService
	opts   OpenAIOptions
}

// NewOpenAIBackend creates a backend using the official client. Client level
// retries are disabled; the retry policy is applied by the caller.
func NewOpenAIBackend(apiKey string, optFns ...func(o *OpenAIOptions)) *OpenAIBackend {
	client := openai.NewClient(option.WithAPIKey(apiKey), option.WithMaxRetries(0))
	return NewOpenAIBackendFromService(&client.Images, optFns...)
}

// NewOpenAIBackendFromService wraps an existing images service.
func NewOpenAIBackendFromService(images imagesService, optFns ...func(o *OpenAIOptions)) *OpenAIBackend {
	opts := OpenAIOptions{
		Model: string(openai.ImageModelGPTImage1),
		Size:  openai.ImageGenerateParamsSize1024x1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &OpenAIBackend{images: images, opts: opts}
}

// Name implements Backend.
func (b *OpenAIBackend) Name() string { return "openai" }

// Generate implements Backend.
func (b *OpenAIBackend) Generate(ctx context.Context, prompt string) (*Payload, error) {
	resp, err := b.images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(b.opts.Model),
		N:      openai.Int(1),
		Size:   b.opts.Size,
	})
	if err != nil {
		return nil, b.wrapError(err)
	}
	if resp == nil || len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return &Payload{MimeType: "image/png"}, nil
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, &BackendError{Backend: b.Name(), Message: fmt.Sprintf("decode image: %v", err), Err: err}
	}
	return &Payload{Data: data, MimeType: "image/png"}, nil
}

func (b *OpenAIBackend) wrapError(err error) error {
	var oe *openai.Error
	if !errors.As(err, &oe) {
		return &BackendError{Backend: b.Name(), Message: err.Error(), Err: err}
	}
	reason := reasonForStatus(oe.StatusCode)
	switch oe.Code {
	case "insufficient_quota", "billing_hard_limit_reached":
		reason = ReasonQuotaExceeded
	case "billing_not_active":
		reason = ReasonTierRestricted
	}
	msg := oe.Message
	if msg == "" {
		msg = err.Error()
	}
	return &BackendError{
		Backend:    b.Name(),
		StatusCode: oe.StatusCode,
		Reason:     reason,
		Message:    msg,
		Err:        err,
	}
}
