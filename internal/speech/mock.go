package speech

import (
	"context"
	"sync"
)

// Mock is a scriptable Transcriber for tests and keyless runs.
type Mock struct {
	mu      sync.Mutex
	queue   []scripted
	calls   int
	deflt   string
	lastBuf []byte
}

type scripted struct {
	text string
	err  error
}

func NewMock(defaultText string) *Mock {
	return &Mock{deflt: defaultText}
}

// Script queues one response; queued responses are consumed before the
// default text is returned.
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

func (m *Mock) LastAudio() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastBuf
}

func (m *Mock) Name() string { return "mock" }

func (m *Mock) Transcribe(ctx context.Context, buf []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastBuf = append([]byte(nil), buf...)
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next.text, next.err
	}
	return m.deflt, nil
}
