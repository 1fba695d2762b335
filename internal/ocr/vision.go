package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const visionAnnotateURL = "https://vision.googleapis.com/v1/images:annotate"

// GoogleVision extracts text through the Vision API's TEXT_DETECTION
// annotator.
type GoogleVision struct {
	apiKey  string
	client  *http.Client
	baseURL string
}

type GoogleVisionOption func(*GoogleVision)

func WithVisionBaseURL(u string) GoogleVisionOption {
	return func(g *GoogleVision) { g.baseURL = u }
}

func WithVisionHTTPClient(c *http.Client) GoogleVisionOption {
	return func(g *GoogleVision) { g.client = c }
}

func NewGoogleVision(apiKey string, opts ...GoogleVisionOption) *GoogleVision {
	g := &GoogleVision{
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: visionAnnotateURL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GoogleVision) Name() string { return "google" }

type visionRequest struct {
	Requests []visionImageRequest `json:"requests"`
}

type visionImageRequest struct {
	Image    visionImage     `json:"image"`
	Features []visionFeature `json:"features"`
}

type visionImage struct {
	Content string `json:"content"`
}

type visionFeature struct {
	Type string `json:"type"`
}

type visionResponse struct {
	Responses []struct {
		FullTextAnnotation struct {
			Text string `json:"text"`
		} `json:"fullTextAnnotation"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

func (g *GoogleVision) ExtractText(ctx context.Context, image []byte) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("google vision: api key not configured")
	}
	if len(image) == 0 {
		return "", nil
	}

	payload := visionRequest{Requests: []visionImageRequest{{
		Image:    visionImage{Content: base64.StdEncoding.EncodeToString(image)},
		Features: []visionFeature{{Type: "TEXT_DETECTION"}},
	}}}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("google vision: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"?key="+g.apiKey, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("google vision: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("google vision: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("google vision: unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	var out visionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("google vision: decode response: %w", err)
	}
	if len(out.Responses) == 0 {
		return "", nil
	}
	first := out.Responses[0]
	if first.Error != nil {
		return "", fmt.Errorf("google vision: %s", first.Error.Message)
	}
	return normalize(first.FullTextAnnotation.Text), nil
}
