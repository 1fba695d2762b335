package providers

import (
	"context"
	"net/http"
	"strings"
)

const defaultAnthropicBaseURL = "https://api.anthropic.com"

// AnthropicBackend talks to the Anthropic messages API.
type AnthropicBackend struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewAnthropicBackend(apiKey, baseURL string) *AnthropicBackend {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultAnthropicBaseURL
	}
	return &AnthropicBackend{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(),
	}
}

func (b *AnthropicBackend) Name() string { return ProviderClaude }

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (b *AnthropicBackend) Complete(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	if b.apiKey == "" {
		return "", newError(KindAPIKeyMissing, "API key for %s is not configured or invalid. Please check Settings.", ProviderClaude)
	}
	if model == "" {
		model = "claude-3-5-sonnet-latest"
	}

	req := anthropicRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	}
	var res anthropicResponse
	err := postJSON(ctx, b.client, ProviderClaude, b.baseURL+"/v1/messages",
		map[string]string{
			"x-api-key":         b.apiKey,
			"anthropic-version": "2023-06-01",
		}, req, &res)
	if err != nil {
		return "", err
	}
	for _, block := range res.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", newError(KindInvalidResponse, "Received invalid response from %s. Please try again.", ProviderClaude)
}
