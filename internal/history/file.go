package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/antoniostano/candidly/internal/providers"
)

const sessionsFileName = "sessions.json"

// FileStore keeps sessions in memory and writes the full set to a JSON file
// after every mutation. A missing file initializes empty; a corrupt file is
// logged and replaced rather than repaired.
type FileStore struct {
	path      string
	retention int
	log       *logrus.Logger

	mu       sync.RWMutex
	sessions []Session
}

func NewFileStore(dataDir string, retention int, log *logrus.Logger) (*FileStore, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &FileStore{
		path:      filepath.Join(dataDir, sessionsFileName),
		retention: retention,
		log:       log,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.sessions = []Session{}
		return s.save()
	}
	if err != nil {
		return fmt.Errorf("read sessions file: %w", err)
	}
	if err := json.Unmarshal(data, &s.sessions); err != nil {
		s.log.WithError(err).Warn("sessions file corrupt, starting empty")
		s.sessions = []Session{}
		return s.save()
	}
	s.trimLocked()
	return s.save()
}

// save writes the full session list. Callers must hold the write lock
// (or be running before concurrent use starts).
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write sessions file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace sessions file: %w", err)
	}
	return nil
}

func (s *FileStore) trimLocked() {
	if len(s.sessions) <= s.retention {
		return
	}
	sort.Slice(s.sessions, func(i, j int) bool {
		return s.sessions[i].StartTime.After(s.sessions[j].StartTime)
	})
	s.sessions = s.sessions[:s.retention]
}

func (s *FileStore) findLocked(id string) *Session {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return &s.sessions[i]
		}
	}
	return nil
}

func (s *FileStore) Create(ctx context.Context, userCtx *providers.UserContext) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := Session{
		ID:        uuid.NewString(),
		StartTime: time.Now().UTC(),
		Questions: []QuestionAnswer{},
		Context:   userCtx,
	}
	s.sessions = append(s.sessions, session)
	if err := s.save(); err != nil {
		return Session{}, err
	}
	return cloneSession(session), nil
}

func (s *FileStore) Append(ctx context.Context, sessionID string, qa QuestionAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.findLocked(sessionID)
	if session == nil {
		return ErrNotFound
	}
	if session.Closed() {
		return ErrSessionClosed
	}
	if qa.ID == "" {
		qa.ID = uuid.NewString()
	}
	if qa.Timestamp.IsZero() {
		qa.Timestamp = time.Now().UTC()
	}
	session.Questions = append(session.Questions, qa)
	return s.save()
}

func (s *FileStore) CloseSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.findLocked(sessionID)
	if session == nil {
		return ErrNotFound
	}
	if !session.Closed() {
		now := time.Now().UTC()
		session.EndTime = &now
	}
	s.trimLocked()
	return s.save()
}

func (s *FileStore) List(ctx context.Context, limit int) ([]Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, cloneSession(session))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *FileStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session := s.findLocked(sessionID)
	if session == nil {
		return nil, nil
	}
	clone := cloneSession(*session)
	return &clone, nil
}

func (s *FileStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.sessions[:0]
	for _, session := range s.sessions {
		if session.ID != sessionID {
			kept = append(kept, session)
		}
	}
	s.sessions = kept
	return s.save()
}

func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = []Session{}
	return s.save()
}

func (s *FileStore) Close() error { return nil }

func cloneSession(in Session) Session {
	out := in
	out.Questions = make([]QuestionAnswer, len(in.Questions))
	copy(out.Questions, in.Questions)
	if in.EndTime != nil {
		end := *in.EndTime
		out.EndTime = &end
	}
	if in.Context != nil {
		c := *in.Context
		out.Context = &c
	}
	return out
}
