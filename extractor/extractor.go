// Package extractor is the client boundary to the external
// content-reconstruction service: raw file bytes go in, a constrained
// HTML fragment comes out.
//
// The service is a black box and its output is never trusted — callers
// must pass every response through fragment.Sanitize/Parse. This package
// only carries bytes and translates transport failures into
// human-readable errors.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// maxResponseBody caps response reads from the remote service (10 MiB).
const maxResponseBody int64 = 10 << 20

// Request carries one reconstruction call.
type Request struct {
	// Data is the raw file payload.
	Data []byte `json:"data"`

	// MimeType is the declared mime type of the upload.
	MimeType string `json:"mime_type"`

	// TargetHint tells the service which format family the fragment
	// will be encoded to. Advisory only.
	TargetHint string `json:"target_format"`
}

// Extractor reconstructs document content as an allowlist-constrained
// HTML fragment.
type Extractor interface {
	Reconstruct(ctx context.Context, req Request) (string, error)
}

// HTTPConfig configures the HTTP client.
type HTTPConfig struct {
	// Endpoint is the reconstruction service URL.
	Endpoint string

	// Timeout for one reconstruction call. Extraction is network-bound
	// and may take seconds. Default: 60s.
	Timeout time.Duration

	Logger *slog.Logger
}

func (c *HTTPConfig) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// HTTPClient calls a reconstruction service over HTTP: POST JSON request,
// JSON response {"html": "..."} or {"error": "..."}.
type HTTPClient struct {
	cfg    HTTPConfig
	client *http.Client
}

// NewHTTPClient creates an HTTPClient.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	cfg.defaults()
	return &HTTPClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Reconstruct posts the file to the service and returns the raw fragment.
func (c *HTTPClient) Reconstruct(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("extractor: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("extractor: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("extractor: service unreachable: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", fmt.Errorf("extractor: read response: %w", err)
	}

	c.cfg.Logger.Debug("extractor: reconstruction call",
		"status", resp.StatusCode, "bytes", len(data), "elapsed", time.Since(start))

	var out struct {
		HTML  string `json:"html"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("extractor: malformed response (status %d)", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != "" {
			return "", fmt.Errorf("extractor: %s", out.Error)
		}
		return "", fmt.Errorf("extractor: service returned status %d", resp.StatusCode)
	}
	if out.Error != "" {
		return "", fmt.Errorf("extractor: %s", out.Error)
	}
	if strings.TrimSpace(out.HTML) == "" {
		return "", fmt.Errorf("extractor: service returned empty content")
	}
	return out.HTML, nil
}
