package providers

import (
	"context"
	"net/http"
	"strings"
)

const defaultOpenAIBaseURL = "https://api.openai.com"

// OpenAIBackend talks to the OpenAI chat completions API.
type OpenAIBackend struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewOpenAIBackend(apiKey, baseURL string) *OpenAIBackend {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIBackend{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(),
	}
}

func (b *OpenAIBackend) Name() string { return ProviderOpenAI }

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

func (b *OpenAIBackend) Complete(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	if b.apiKey == "" {
		return "", newError(KindAPIKeyMissing, "API key for %s is not configured or invalid. Please check Settings.", ProviderOpenAI)
	}
	if model == "" {
		model = "gpt-4"
	}

	req := openAIChatRequest{
		Model:       model,
		Messages:    []openAIMessage{{Role: "user", Content: prompt}},
		Temperature: 0.7,
		MaxTokens:   maxTokens,
	}
	var res openAIChatResponse
	err := postJSON(ctx, b.client, ProviderOpenAI, b.baseURL+"/v1/chat/completions",
		map[string]string{"Authorization": "Bearer " + b.apiKey}, req, &res)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", newError(KindInvalidResponse, "Received invalid response from %s. Please try again.", ProviderOpenAI)
	}
	return res.Choices[0].Message.Content, nil
}
