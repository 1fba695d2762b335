package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/antoniostano/candidly/internal/config"
	"github.com/antoniostano/candidly/internal/conns"
	"github.com/antoniostano/candidly/internal/history"
	"github.com/antoniostano/candidly/internal/observability"
	"github.com/antoniostano/candidly/internal/ocr"
	"github.com/antoniostano/candidly/internal/protocol"
	"github.com/antoniostano/candidly/internal/providers"
)

// Orchestrator runs one connection's event loop until the context is
// cancelled or the inbound channel closes.
type Orchestrator interface {
	RunConnection(ctx context.Context, state *conns.State, inbound <-chan []byte, outbound chan<- any)
}

type Server struct {
	cfg          config.Config
	log          *logrus.Logger
	registry     *conns.Registry
	orchestrator Orchestrator
	store        history.Store
	gateway      *providers.Gateway
	ocrEngines   *ocr.Registry
	transcriber  string
	metrics      *observability.Metrics
	perf         *observability.StageWindow
	upgrader     websocket.Upgrader
}

func New(
	cfg config.Config,
	log *logrus.Logger,
	registry *conns.Registry,
	orchestrator Orchestrator,
	store history.Store,
	gateway *providers.Gateway,
	ocrEngines *ocr.Registry,
	transcriber string,
	metrics *observability.Metrics,
	perf *observability.StageWindow,
) *Server {
	return &Server{
		cfg:          cfg,
		log:          log,
		registry:     registry,
		orchestrator: orchestrator,
		store:        store,
		gateway:      gateway,
		ocrEngines:   ocrEngines,
		transcriber:  transcriber,
		metrics:      metrics,
		perf:         perf,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// The desktop shell connects from a non-http origin during
				// local use, so any origin is accepted unless locked down.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Get("/v1/interview/ws", s.handleInterviewWS)
	r.Get("/v1/providers", s.handleListProviders)
	r.Get("/v1/sessions", s.handleListSessions)
	r.Get("/v1/sessions/export", s.handleExportSessions)
	r.Get("/v1/sessions/{id}", s.handleGetSession)
	r.Delete("/v1/sessions/{id}", s.handleDeleteSession)
	r.Delete("/v1/sessions", s.handleClearSessions)
	r.Get("/v1/perf/latency", s.handlePerfLatency)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"connections": s.registry.Count(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (s *Server) handleInterviewWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	state := s.registry.Create()
	s.log.WithField("conn_id", state.ConnID).Info("client connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	inbound := make(chan []byte, 256)
	outbound := make(chan any, 256)
	runDone := make(chan struct{})

	go func() {
		defer close(runDone)
		s.orchestrator.RunConnection(ctx, state, inbound, outbound)
	}()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-outbound:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteJSON(msg); err != nil {
					cancel()
					return
				}
				if t, ok := messageTypeOf(msg); ok {
					s.metrics.WSMessages.WithLabelValues("outbound", string(t)).Inc()
				}
			}
		}
	}()

	conn.SetReadLimit(16 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

readLoop:
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err == nil && env.Type != "" {
			s.metrics.WSMessages.WithLabelValues("inbound", string(env.Type)).Inc()
		}
		select {
		case <-ctx.Done():
			break readLoop
		case inbound <- data:
		}
	}

	cancel()
	close(inbound)
	<-runDone
	<-writerDone
	s.log.WithField("conn_id", state.ConnID).Info("client disconnected")
}

// messageTypeOf extracts the wire type of an outbound event for metrics.
func messageTypeOf(msg any) (protocol.MessageType, bool) {
	switch m := msg.(type) {
	case protocol.Connected:
		return m.Type, true
	case protocol.StatusUpdate:
		return m.Type, true
	case protocol.TranscriptionResult:
		return m.Type, true
	case protocol.QuestionDetected:
		return m.Type, true
	case protocol.AnswerReady:
		return m.Type, true
	case protocol.ErrorEvent:
		return m.Type, true
	case protocol.MockQuestion:
		return m.Type, true
	case protocol.MockInterviewEnded:
		return m.Type, true
	case protocol.MockFeedbackReady:
		return m.Type, true
	case protocol.SessionHistory:
		return m.Type, true
	case protocol.SessionsExported:
		return m.Type, true
	case protocol.ListeningPaused:
		return m.Type, true
	case protocol.ListeningResumed:
		return m.Type, true
	}
	return "", false
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
