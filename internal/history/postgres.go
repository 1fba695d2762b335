package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/antoniostano/candidly/internal/providers"
)

// PostgresStore persists sessions in PostgreSQL. Snippets and user context
// are stored as JSONB; pgx maps them through the json tags.
type PostgresStore struct {
	pool      *pgxpool.Pool
	retention int
}

func NewPostgresStore(ctx context.Context, databaseURL string, retention int) (*PostgresStore, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool, retention: retention}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS interview_sessions (
			id TEXT PRIMARY KEY,
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ,
			user_context JSONB
		);`,
		`CREATE TABLE IF NOT EXISTS interview_questions (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES interview_sessions(id) ON DELETE CASCADE,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			code_snippets JSONB,
			source TEXT NOT NULL,
			mode TEXT NOT NULL,
			provider TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_interview_questions_session ON interview_questions (session_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_interview_sessions_start ON interview_sessions (start_time DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, userCtx *providers.UserContext) (Session, error) {
	session := Session{
		ID:        uuid.NewString(),
		StartTime: time.Now().UTC(),
		Questions: []QuestionAnswer{},
		Context:   userCtx,
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO interview_sessions (id, start_time, user_context) VALUES ($1, $2, $3)`,
		session.ID, session.StartTime, session.Context,
	)
	if err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

func (s *PostgresStore) Append(ctx context.Context, sessionID string, qa QuestionAnswer) error {
	var endTime *time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT end_time FROM interview_sessions WHERE id=$1`, sessionID,
	).Scan(&endTime)
	if err == pgx.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup session: %w", err)
	}
	if endTime != nil {
		return ErrSessionClosed
	}

	if qa.ID == "" {
		qa.ID = uuid.NewString()
	}
	if qa.Timestamp.IsZero() {
		qa.Timestamp = time.Now().UTC()
	}
	var snippets any
	if len(qa.CodeSnippets) > 0 {
		snippets = qa.CodeSnippets
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO interview_questions (id, session_id, question, answer, code_snippets, source, mode, provider, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		qa.ID, sessionID, qa.Question, qa.Answer, snippets, qa.Source, qa.Mode, qa.Provider, qa.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append question: %w", err)
	}
	return nil
}

func (s *PostgresStore) CloseSession(ctx context.Context, sessionID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE interview_sessions SET end_time = COALESCE(end_time, now()) WHERE id=$1`, sessionID,
	)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	_, err = s.pool.Exec(ctx,
		`DELETE FROM interview_sessions WHERE id IN (
			SELECT id FROM interview_sessions ORDER BY start_time DESC OFFSET $1
		)`, s.retention,
	)
	if err != nil {
		return fmt.Errorf("trim sessions: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Session, error) {
	query := `SELECT id, start_time, end_time, user_context FROM interview_sessions ORDER BY start_time DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var session Session
		session.Questions = []QuestionAnswer{}
		if err := rows.Scan(&session.ID, &session.StartTime, &session.EndTime, &session.Context); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	for i := range sessions {
		questions, err := s.questions(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
		sessions[i].Questions = questions
	}
	return sessions, nil
}

func (s *PostgresStore) questions(ctx context.Context, sessionID string) ([]QuestionAnswer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, question, answer, code_snippets, source, mode, provider, created_at
		 FROM interview_questions WHERE session_id=$1 ORDER BY created_at`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	questions := []QuestionAnswer{}
	for rows.Next() {
		var qa QuestionAnswer
		if err := rows.Scan(&qa.ID, &qa.Question, &qa.Answer, &qa.CodeSnippets, &qa.Source, &qa.Mode, &qa.Provider, &qa.Timestamp); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, qa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return questions, nil
}

func (s *PostgresStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	var session Session
	err := s.pool.QueryRow(ctx,
		`SELECT id, start_time, end_time, user_context FROM interview_sessions WHERE id=$1`, sessionID,
	).Scan(&session.ID, &session.StartTime, &session.EndTime, &session.Context)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	questions, err := s.questions(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Questions = questions
	return &session, nil
}

func (s *PostgresStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM interview_sessions WHERE id=$1`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM interview_sessions`); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
