// Package conns tracks per-connection interview state. Each websocket
// connection owns exactly one State for its lifetime; the state is mutated
// only by that connection's worker, so the registry locks the map but the
// State itself needs no lock.
package conns

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/antoniostano/candidly/internal/providers"
)

// Phase is the per-connection orchestration state.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseListening Phase = "listening"
	PhasePaused    Phase = "paused"
	PhaseMock      Phase = "mockInterview"
)

var ErrNotFound = errors.New("connection not found")

// MockState holds the progress of an in-flight mock interview. It exists
// iff the connection is in PhaseMock.
type MockState struct {
	Difficulty      string
	QuestionTypes   []string
	Questions       []string
	Answers         []string
	Context         *providers.UserContext
	IntervalSeconds int
	StartedAt       time.Time
}

// State is one connection's view of the world.
type State struct {
	ConnID         string
	SessionID      string
	Phase          Phase
	HistoryEnabled bool
	OCRProvider    string
	Context        *providers.UserContext
	Mock           *MockState
	ConnectedAt    time.Time
}

// Ambient reports whether the ambient audio/screen pipeline may run.
func (s *State) Ambient() bool {
	return s.Phase == PhaseIdle || s.Phase == PhaseListening
}

// EnterMock flips the connection into mock-interview mode.
func (s *State) EnterMock(mock *MockState) {
	s.Phase = PhaseMock
	s.Mock = mock
}

// LeaveMock returns to idle and drops mock progress.
func (s *State) LeaveMock() *MockState {
	mock := s.Mock
	s.Mock = nil
	s.Phase = PhaseIdle
	return mock
}

// Registry maps connection ids to their state.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*State
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*State)}
}

// Create registers a new connection. Connections start idle with history
// enabled; ambient capture is client-driven.
func (r *Registry) Create() *State {
	s := &State{
		ConnID:         uuid.NewString(),
		Phase:          PhaseIdle,
		HistoryEnabled: true,
		ConnectedAt:    time.Now().UTC(),
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[s.ConnID] = s
	return s
}

func (r *Registry) Get(connID string) (*State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.conns[connID]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Remove drops a connection. It is safe to call for an unknown id.
func (r *Registry) Remove(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, connID)
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
