package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/antoniostano/candidly/internal/audio"
)

const (
	deepgramListenURL = "https://api.deepgram.com/v1/listen"
	httpTimeout       = 60 * time.Second
)

// Deepgram transcribes audio through the prerecorded listen endpoint.
type Deepgram struct {
	apiKey     string
	model      string
	sampleRate int
	client     *http.Client
	baseURL    string
}

type DeepgramOption func(*Deepgram)

func WithDeepgramBaseURL(u string) DeepgramOption {
	return func(d *Deepgram) { d.baseURL = u }
}

func WithDeepgramHTTPClient(c *http.Client) DeepgramOption {
	return func(d *Deepgram) { d.client = c }
}

func NewDeepgram(apiKey string, sampleRate int, opts ...DeepgramOption) *Deepgram {
	d := &Deepgram{
		apiKey:     apiKey,
		model:      "nova-2",
		sampleRate: sampleRate,
		client:     &http.Client{Timeout: httpTimeout},
		baseURL:    deepgramListenURL,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Deepgram) Name() string { return "deepgram" }

type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

func (d *Deepgram) Transcribe(ctx context.Context, buf []byte) (string, error) {
	if d.apiKey == "" {
		return "", fmt.Errorf("deepgram: api key not configured")
	}
	if len(buf) == 0 {
		return "", nil
	}

	wav, err := audio.EnsureWAVPCM16LE(buf, d.sampleRate)
	if err != nil {
		return "", fmt.Errorf("deepgram: encode wav: %w", err)
	}

	q := url.Values{}
	q.Set("model", d.model)
	q.Set("smart_format", "true")
	q.Set("language", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"?"+q.Encode(), bytes.NewReader(wav))
	if err != nil {
		return "", fmt.Errorf("deepgram: build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+d.apiKey)
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepgram: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("deepgram: unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var out deepgramResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("deepgram: decode response: %w", err)
	}
	if len(out.Results.Channels) == 0 || len(out.Results.Channels[0].Alternatives) == 0 {
		return "", nil
	}
	return out.Results.Channels[0].Alternatives[0].Transcript, nil
}
