package extractor

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// reconstructPrompt constrains the model to the fragment grammar. The
// response is still sanitized downstream — the prompt is a request, not a
// guarantee.
const reconstructPrompt = `You reconstruct document content as a minimal HTML fragment.
Use ONLY these tags: h1, h2, p, br, ul, li, strong. No attributes, no other
tags, no markdown, no commentary. Preserve the document's headings,
paragraphs, line breaks and lists. Reply with the fragment only.`

// OpenAIConfig configures the OpenAI-compatible extractor.
type OpenAIConfig struct {
	// APIKey authenticates against the service.
	APIKey string

	// BaseURL overrides the API endpoint for OpenAI-compatible local
	// backends. Empty = api.openai.com.
	BaseURL string

	// Model is the chat model used for reconstruction.
	// Default: gpt-4o-mini.
	Model string
}

func (c *OpenAIConfig) defaults() {
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
}

// OpenAIClient reconstructs content through an OpenAI-compatible chat
// endpoint. Text-bearing inputs are sent as text; images go through the
// vision content path as a data URL.
type OpenAIClient struct {
	cfg   OpenAIConfig
	inner *openai.Client
}

// NewOpenAIClient creates an OpenAIClient.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	cfg.defaults()
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{cfg: cfg, inner: openai.NewClientWithConfig(apiCfg)}
}

// Reconstruct asks the model to rebuild the document as an
// allowlist-only fragment.
func (c *OpenAIClient) Reconstruct(ctx context.Context, req Request) (string, error) {
	var user openai.ChatCompletionMessage

	if strings.HasPrefix(req.MimeType, "image/") {
		dataURL := fmt.Sprintf("data:%s;base64,%s",
			req.MimeType, base64.StdEncoding.EncodeToString(req.Data))
		user = openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText,
					Text: "Reconstruct the text content of this image as an HTML fragment."},
				{Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
			},
		}
	} else {
		user = openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: string(req.Data),
		}
	}

	resp, err := c.inner.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: reconstructPrompt},
			user,
		},
	})
	if err != nil {
		return "", fmt.Errorf("extractor: reconstruction model: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("extractor: service returned empty content")
	}
	html := strings.TrimSpace(resp.Choices[0].Message.Content)
	if html == "" {
		return "", fmt.Errorf("extractor: service returned empty content")
	}
	return html, nil
}
