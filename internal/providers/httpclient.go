package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/antoniostano/candidly/internal/reliability"
)

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}

// postJSON sends a JSON request and decodes a JSON response, classifying
// transport and status failures as *Error so every backend speaks the same
// error taxonomy.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return newError(KindAPIError, "%s: marshal request: %v", provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return newError(KindAPIError, "%s: create request: %v", provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := client.Do(req)
	if err != nil {
		return newError(KindAPIError, "%s: send request: %v", provider, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		detail := strings.TrimSpace(string(body))
		switch {
		case reliability.IsAuthHTTPStatus(res.StatusCode):
			return newError(KindAPIKeyMissing, "API key for %s is not configured or invalid. Please check Settings.", provider)
		case reliability.IsRateLimitHTTPStatus(res.StatusCode):
			return newError(KindRateLimit, "Rate limit exceeded for %s. Please wait a moment and try again.", provider)
		default:
			return newError(KindAPIError, "%s: http status %d: %s", provider, res.StatusCode, detail)
		}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return newError(KindAPIError, "%s: read response: %v", provider, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return newError(KindInvalidResponse, "Received invalid response from %s. Please try again.", provider)
	}
	return nil
}
