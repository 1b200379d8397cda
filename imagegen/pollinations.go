package imagegen

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PollinationsOptions configures the secondary backend. Layout parameters
// are fixed defaults and not exposed to tool callers.
type PollinationsOptions struct {
	BaseURL string
	Width   int
	Height  int
	Enhance bool
	NoLogo  bool
	Model   string
	// MaxBytes bounds the accepted response size.
	MaxBytes   int64
	HTTPClient *http.Client
}

// PollinationsBackend fetches images from the public Pollinations REST API.
// It needs no credentials and is the fallback for tier gated primaries.
type PollinationsBackend struct {
	opts PollinationsOptions
}

// NewPollinationsBackend creates the secondary backend.
func NewPollinationsBackend(optFns ...func(o *PollinationsOptions)) *PollinationsBackend {
	opts := PollinationsOptions{
		BaseURL:  "https://image.pollinations.ai",
		Width:    1024,
		Height:   1024,
		Enhance:  true,
		NoLogo:   true,
		Model:    "flux",
		MaxBytes: 32 << 20,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &PollinationsBackend{opts: opts}
}

// Name implements Backend.
func (b *PollinationsBackend) Name() string { return "pollinations" }

// URL returns the request URL for prompt.
func (b *PollinationsBackend) URL(prompt string) string {
	q := url.Values{}
	q.Set("width", fmt.Sprint(b.opts.Width))
	q.Set("height", fmt.Sprint(b.opts.Height))
	q.Set("enhance", fmt.Sprint(b.opts.Enhance))
	q.Set("nologo", fmt.Sprint(b.opts.NoLogo))
	q.Set("model", b.opts.Model)
	return strings.TrimSuffix(b.opts.BaseURL, "/") + "/prompt/" + url.PathEscape(prompt) + "?" + q.Encode()
}

// Generate implements Backend.
func (b *PollinationsBackend) Generate(ctx context.Context, prompt string) (*Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.URL(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := b.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, &BackendError{Backend: b.Name(), Reason: ReasonUnavailable, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &BackendError{
			Backend:    b.Name(),
			StatusCode: resp.StatusCode,
			Reason:     reasonForStatus(resp.StatusCode),
			Message:    messageFromText(msg),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, b.opts.MaxBytes+1))
	if err != nil {
		return nil, &BackendError{Backend: b.Name(), Reason: ReasonUnavailable, Message: fmt.Sprintf("read body: %v", err), Err: err}
	}
	if int64(len(data)) > b.opts.MaxBytes {
		return nil, &BackendError{Backend: b.Name(), Message: fmt.Sprintf("image exceeds %d bytes", b.opts.MaxBytes)}
	}
	return &Payload{Data: data, MimeType: contentType(resp.Header.Get("Content-Type"))}, nil
}

func contentType(h string) string {
	mt, _, err := mime.ParseMediaType(h)
	if err != nil || !strings.HasPrefix(mt, "image/") {
		return "image/png"
	}
	return mt
}
