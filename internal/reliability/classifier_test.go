package reliability

import (
	"testing"
	"time"
)

func TestStatusClassification(t *testing.T) {
	for _, code := range []int{401, 403} {
		if !IsAuthHTTPStatus(code) {
			t.Fatalf("IsAuthHTTPStatus(%d) = false", code)
		}
		if IsRateLimitHTTPStatus(code) {
			t.Fatalf("IsRateLimitHTTPStatus(%d) = true", code)
		}
	}
	if !IsRateLimitHTTPStatus(429) {
		t.Fatalf("IsRateLimitHTTPStatus(429) = false")
	}
	if IsAuthHTTPStatus(500) || IsRateLimitHTTPStatus(500) {
		t.Fatalf("500 should be neither auth nor rate limit")
	}
}

func TestRetryDelaySchedule(t *testing.T) {
	want := []time.Duration{time.Second, 2 * time.Second, 5 * time.Second}
	for i, w := range want {
		if got := RetryDelay(i); got != w {
			t.Fatalf("RetryDelay(%d) = %v, want %v", i, got, w)
		}
	}
	if got := RetryDelay(10); got != 5*time.Second {
		t.Fatalf("RetryDelay(10) = %v, want capped at 5s", got)
	}
	if got := RetryDelay(-1); got != time.Second {
		t.Fatalf("RetryDelay(-1) = %v, want 1s", got)
	}
}
