package reliability

import "time"

// MaxAttempts bounds generation retries, including the first try.
const MaxAttempts = 3

// retryDelays is attempt-indexed: wait delays[i] after failed attempt i.
var retryDelays = []time.Duration{time.Second, 2 * time.Second, 5 * time.Second}

// IsAuthHTTPStatus classifies backend authentication failures.
func IsAuthHTTPStatus(code int) bool {
	return code == 401 || code == 403
}

// IsRateLimitHTTPStatus classifies backend rate limiting.
func IsRateLimitHTTPStatus(code int) bool {
	return code == 429
}

// RetryDelay returns how long to wait after failed attempt i (0-based).
// Attempts beyond the schedule reuse the final delay.
func RetryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= len(retryDelays) {
		attempt = len(retryDelays) - 1
	}
	return retryDelays[attempt]
}
