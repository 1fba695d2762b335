package providers

import (
	"context"
	"sync"
)

// MockBackend is a scriptable in-process backend used in tests and when no
// API key is configured.
type MockBackend struct {
	name string

	mu      sync.Mutex
	scripts []mockResult
	calls   int
	prompts []string
}

type mockResult struct {
	text string
	err  error
}

func NewMockBackend() *MockBackend {
	return &MockBackend{name: ProviderMock}
}

// NewMockBackendNamed lets tests stand in for a real provider name.
func NewMockBackendNamed(name string) *MockBackend {
	return &MockBackend{name: name}
}

func (b *MockBackend) Name() string { return b.name }

// Script enqueues the next response. Responses are consumed in order; once
// exhausted, Complete returns a canned echo.
func (b *MockBackend) Script(text string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scripts = append(b.scripts, mockResult{text: text, err: err})
}

func (b *MockBackend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func (b *MockBackend) LastPrompt() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.prompts) == 0 {
		return ""
	}
	return b.prompts[len(b.prompts)-1]
}

func (b *MockBackend) Complete(_ context.Context, _, prompt string, _ int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	b.prompts = append(b.prompts, prompt)
	if len(b.scripts) > 0 {
		next := b.scripts[0]
		b.scripts = b.scripts[1:]
		return next.text, next.err
	}
	return "This is a simulated answer for local development.", nil
}
