package ocr

import (
	"context"
	"sync"
)

// Mock is a scriptable Engine for tests and keyless runs.
type Mock struct {
	name string

	mu    sync.Mutex
	queue []scripted
	calls int
	deflt string
}

type scripted struct {
	text string
	err  error
}

func NewMock(name, defaultText string) *Mock {
	return &Mock{name: name, deflt: defaultText}
}

func (m *Mock) Name() string { return m.name }

func (m *Mock) Script(text string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, scripted{text: text, err: err})
}

func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *Mock) ExtractText(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next.text, next.err
	}
	return m.deflt, nil
}
