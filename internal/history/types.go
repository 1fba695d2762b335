// Package history is the durable record of interview sessions. Each session
// collects the question/answer exchanges produced during one connection's
// lifetime; a retention cap keeps the store bounded.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/antoniostano/candidly/internal/providers"
)

// DefaultRetention caps how many sessions survive trimming.
const DefaultRetention = 50

var (
	ErrNotFound      = errors.New("session not found")
	ErrSessionClosed = errors.New("session already closed")
)

// QuestionAnswer is one recorded exchange within a session.
type QuestionAnswer struct {
	ID           string                  `json:"id"`
	Question     string                  `json:"question"`
	Answer       string                  `json:"answer"`
	CodeSnippets []providers.CodeSnippet `json:"codeSnippets,omitempty"`
	Source       string                  `json:"source"`
	Mode         string                  `json:"mode"`
	Provider     string                  `json:"provider"`
	Timestamp    time.Time               `json:"timestamp"`
}

// Session records one connection's lifetime. EndTime is nil while the
// connection is still live.
type Session struct {
	ID        string                 `json:"id"`
	StartTime time.Time              `json:"startTime"`
	EndTime   *time.Time             `json:"endTime,omitempty"`
	Questions []QuestionAnswer       `json:"questions"`
	Context   *providers.UserContext `json:"context,omitempty"`
}

// Closed reports whether the session has been end-timestamped.
func (s Session) Closed() bool { return s.EndTime != nil }

// Store persists sessions. Mutating operations are write-through: the
// store is durable after each call returns.
type Store interface {
	// Create opens a new session and persists it.
	Create(ctx context.Context, userCtx *providers.UserContext) (Session, error)
	// Append adds an exchange to an open session. Appending to a closed
	// session returns ErrSessionClosed; an unknown id returns ErrNotFound.
	Append(ctx context.Context, sessionID string, qa QuestionAnswer) error
	// CloseSession end-timestamps a session and enforces the retention cap.
	CloseSession(ctx context.Context, sessionID string) error
	// List returns sessions newest-first. limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]Session, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
	Clear(ctx context.Context) error
	Close() error
}
