package providers

import (
	"context"
	"net/http"
	"strings"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiBackend talks to the Google Generative Language API.
type GeminiBackend struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewGeminiBackend(apiKey, baseURL string) *GeminiBackend {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultGeminiBaseURL
	}
	return &GeminiBackend{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(),
	}
}

func (b *GeminiBackend) Name() string { return ProviderGemini }

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (b *GeminiBackend) Complete(ctx context.Context, model, prompt string, _ int) (string, error) {
	if b.apiKey == "" {
		return "", newError(KindAPIKeyMissing, "API key for %s is not configured or invalid. Please check Settings.", ProviderGemini)
	}
	if model == "" {
		model = "gemini-pro"
	}

	req := geminiRequest{Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}}}
	var res geminiResponse
	url := b.baseURL + "/v1beta/models/" + model + ":generateContent?key=" + b.apiKey
	if err := postJSON(ctx, b.client, ProviderGemini, url, nil, req, &res); err != nil {
		return "", err
	}
	if len(res.Candidates) == 0 || len(res.Candidates[0].Content.Parts) == 0 {
		return "", newError(KindInvalidResponse, "Received invalid response from %s. Please try again.", ProviderGemini)
	}
	return res.Candidates[0].Content.Parts[0].Text, nil
}
