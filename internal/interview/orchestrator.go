// Package interview runs the per-connection orchestration loop: it
// multiplexes audio, screenshots, and client commands onto one ordered
// stream, drives question detection and answer generation, and owns the
// mock-interview sub-flow.
package interview

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/antoniostano/candidly/internal/conns"
	"github.com/antoniostano/candidly/internal/detect"
	"github.com/antoniostano/candidly/internal/history"
	"github.com/antoniostano/candidly/internal/observability"
	"github.com/antoniostano/candidly/internal/ocr"
	"github.com/antoniostano/candidly/internal/protocol"
	"github.com/antoniostano/candidly/internal/providers"
	"github.com/antoniostano/candidly/internal/speech"
)

const (
	defaultHistoryLimit     = 10
	defaultMockIntervalSecs = 120
	sessionTeardownTimeout  = 5 * time.Second

	statusListening     = "listening"
	statusProcessing    = "processing"
	statusPaused        = "paused"
	statusIdle          = "idle"
	statusMockInterview = "mock-interview"

	sourceAudio  = "audio"
	sourceScreen = "screen"
)

// Orchestrator wires the per-connection loop to its collaborators. One
// Orchestrator serves all connections; per-connection state lives in
// conns.State and the loop locals.
type Orchestrator struct {
	log          *logrus.Logger
	metrics      *observability.Metrics
	perf         *observability.StageWindow
	registry     *conns.Registry
	store        history.Store
	gateway      *providers.Gateway
	transcriber  speech.Transcriber
	ocrEngines   *ocr.Registry
	version      string
	mockProvider string
	mockModel    string

	// randInt picks mock question types; swapped in tests.
	randInt func(n int) int
}

func NewOrchestrator(
	log *logrus.Logger,
	metrics *observability.Metrics,
	perf *observability.StageWindow,
	registry *conns.Registry,
	store history.Store,
	gateway *providers.Gateway,
	transcriber speech.Transcriber,
	ocrEngines *ocr.Registry,
	version string,
	mockProvider string,
	mockModel string,
) *Orchestrator {
	if mockProvider == "" {
		mockProvider = providers.ProviderOpenAI
	}
	return &Orchestrator{
		log:          log,
		metrics:      metrics,
		perf:         perf,
		registry:     registry,
		store:        store,
		gateway:      gateway,
		transcriber:  transcriber,
		ocrEngines:   ocrEngines,
		version:      version,
		mockProvider: mockProvider,
		mockModel:    mockModel,
		randInt:      rand.Intn,
	}
}

// connLoop is the single-goroutine worker for one connection. Everything it
// touches is owned by this goroutine, so event handling needs no locks and
// events are applied strictly in arrival order.
type connLoop struct {
	o        *Orchestrator
	state    *conns.State
	outbound chan<- any

	mockTimer *time.Timer
}

// RunConnection processes one connection until ctx is cancelled or the
// inbound channel closes. It blocks; the transport runs it on its own
// goroutine per connection.
func (o *Orchestrator) RunConnection(ctx context.Context, state *conns.State, inbound <-chan []byte, outbound chan<- any) {
	l := &connLoop{o: o, state: state, outbound: outbound}

	o.metrics.ActiveConnections.Inc()
	o.metrics.ConnectionEvents.WithLabelValues("connect").Inc()
	defer l.teardown()

	session, err := o.store.Create(ctx, nil)
	if err != nil {
		o.log.WithError(err).Warn("failed to create history session")
	} else {
		state.SessionID = session.ID
	}

	l.emit(ctx, protocol.Connected{
		Type:          protocol.TypeConnected,
		SessionID:     state.SessionID,
		Timestamp:     protocol.NowMillis(),
		ServerVersion: o.version,
	})

	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-inbound:
			if !ok {
				return
			}
			msg, err := protocol.ParseClientMessage(raw)
			if err != nil {
				l.emitError(ctx, protocol.CodeInvalidRequest, err.Error(), protocol.SeverityWarning)
				continue
			}
			l.dispatch(ctx, msg)
		case <-l.timerChan():
			l.autoAdvanceMock(ctx)
		}
	}
}

func (l *connLoop) teardown() {
	l.stopMockTimer()

	if l.state.SessionID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), sessionTeardownTimeout)
		defer cancel()
		if err := l.o.store.CloseSession(ctx, l.state.SessionID); err != nil {
			l.o.log.WithError(err).WithField("session_id", l.state.SessionID).Warn("failed to close history session")
		}
	}

	l.o.registry.Remove(l.state.ConnID)
	l.o.metrics.ActiveConnections.Dec()
	l.o.metrics.ConnectionEvents.WithLabelValues("disconnect").Inc()
}

// emit delivers one outbound event unless the connection is already gone.
func (l *connLoop) emit(ctx context.Context, ev any) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case l.outbound <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (l *connLoop) emitError(ctx context.Context, code, message, severity string) {
	l.emit(ctx, protocol.ErrorEvent{
		Type:      protocol.TypeError,
		Code:      code,
		Message:   message,
		Severity:  severity,
		Timestamp: protocol.NowMillis(),
	})
}

func (l *connLoop) emitStatus(ctx context.Context, status, message string) {
	l.emit(ctx, protocol.StatusUpdate{
		Type:      protocol.TypeStatusUpdate,
		Status:    status,
		Message:   message,
		Timestamp: protocol.NowMillis(),
	})
}

func (l *connLoop) dispatch(ctx context.Context, msg any) {
	switch m := msg.(type) {
	case protocol.AudioStream:
		l.handleAudio(ctx, m)
	case protocol.Screenshot:
		l.handleScreenshot(ctx, m)
	case protocol.GenerateAnswer:
		l.handleGenerateAnswer(ctx, m)
	case protocol.StartMockInterview:
		l.handleStartMock(ctx, m)
	case protocol.MockNextQuestion:
		l.handleMockNext(ctx)
	case protocol.StopMockInterview:
		l.handleStopMock(ctx)
	case protocol.RequestMockFeedback:
		l.handleMockFeedback(ctx, m)
	case protocol.GetSessionHistory:
		l.handleGetHistory(ctx, m)
	case protocol.ExportSessions:
		l.handleExport(ctx, m)
	case protocol.PauseListening:
		l.handlePause(ctx)
	case protocol.ResumeListening:
		l.handleResume(ctx)
	case protocol.ConfigUpdate:
		if m.Context != nil {
			l.state.Context = m.Context
		}
		if m.HistoryEnabled != nil {
			l.state.HistoryEnabled = *m.HistoryEnabled
		}
		if m.OCRProvider != "" {
			l.state.OCRProvider = m.OCRProvider
		}
	}
}

func (l *connLoop) handleAudio(ctx context.Context, msg protocol.AudioStream) {
	if !l.state.Ambient() {
		return
	}

	l.emitStatus(ctx, statusProcessing, "Transcribing audio...")

	buf, err := msg.Audio()
	if err != nil {
		l.emitError(ctx, protocol.CodeTranscriptionFailed, "failed to decode audio payload", protocol.SeverityError)
		return
	}

	start := time.Now()
	text, err := l.o.transcriber.Transcribe(ctx, buf)
	l.o.perf.ObserveDuration(observability.StageTranscription, time.Since(start))
	l.o.metrics.ObservePipelineLatency(observability.StageTranscription, time.Since(start))
	if err != nil {
		l.o.log.WithError(err).Warn("transcription failed")
		l.o.metrics.ProviderErrors.WithLabelValues(l.o.transcriber.Name(), protocol.CodeTranscriptionFailed).Inc()
		l.emitError(ctx, protocol.CodeTranscriptionFailed, "Failed to transcribe audio", protocol.SeverityError)
		return
	}
	if text == "" {
		return
	}

	l.emit(ctx, protocol.TranscriptionResult{
		Type:      protocol.TypeTranscription,
		Text:      text,
		IsPartial: false,
		Timestamp: protocol.NowMillis(),
	})

	result := detect.Score(text)
	if result.IsQuestion && result.Question != "" {
		l.o.metrics.QuestionsDetected.WithLabelValues(sourceAudio).Inc()
		l.emit(ctx, protocol.QuestionDetected{
			Type:       protocol.TypeQuestionDetected,
			Question:   result.Question,
			Source:     sourceAudio,
			Confidence: result.Confidence,
			Timestamp:  protocol.NowMillis(),
		})
	}
}

func (l *connLoop) handleScreenshot(ctx context.Context, msg protocol.Screenshot) {
	if !l.state.Ambient() {
		return
	}

	l.emitStatus(ctx, statusProcessing, "Processing screenshot...")

	buf, err := msg.Image()
	if err != nil {
		l.emitError(ctx, protocol.CodeOCRFailed, "failed to decode image payload", protocol.SeverityWarning)
		return
	}

	provider := msg.OCRProvider
	if provider == "" {
		provider = l.state.OCRProvider
	}
	engine := l.o.ocrEngines.Engine(provider)
	start := time.Now()
	text, err := engine.ExtractText(ctx, buf)
	l.o.perf.ObserveDuration(observability.StageOCR, time.Since(start))
	l.o.metrics.ObservePipelineLatency(observability.StageOCR, time.Since(start))
	if err != nil {
		l.o.log.WithError(err).Warn("ocr failed")
		l.o.metrics.ProviderErrors.WithLabelValues(engine.Name(), protocol.CodeOCRFailed).Inc()
		l.emitError(ctx, protocol.CodeOCRFailed, "Failed to extract text from screenshot", protocol.SeverityWarning)
		return
	}
	if text == "" {
		return
	}

	result := detect.ExtractBest(text)
	if result.IsQuestion && result.Question != "" {
		l.o.metrics.QuestionsDetected.WithLabelValues(sourceScreen).Inc()
		l.emit(ctx, protocol.QuestionDetected{
			Type:       protocol.TypeQuestionDetected,
			Question:   result.Question,
			Source:     sourceScreen,
			Confidence: result.Confidence,
			Timestamp:  protocol.NowMillis(),
		})
	}
}

func (l *connLoop) handleGenerateAnswer(ctx context.Context, msg protocol.GenerateAnswer) {
	l.emitStatus(ctx, statusProcessing, "Generating answer...")

	mode := providers.ModeHints
	if providers.Mode(msg.Mode) == providers.ModeFull {
		mode = providers.ModeFull
	}
	provider := msg.Provider
	if provider == "" {
		provider = providers.ProviderOpenAI
	}
	userCtx := msg.Context
	if userCtx == nil {
		userCtx = l.state.Context
	}

	start := time.Now()
	result, err := l.o.gateway.Generate(ctx, providers.GenerateRequest{
		Question: msg.Question,
		Mode:     mode,
		Provider: provider,
		Model:    msg.Model,
		Context:  userCtx,
	})
	l.o.metrics.ObserveGenerationLatency(time.Since(start))
	l.o.perf.ObserveDuration(observability.StageGeneration, time.Since(start))

	// The client may have disconnected while the backend was working;
	// there is no one left to receive the result.
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		kind := providers.KindOf(err)
		l.o.metrics.ProviderErrors.WithLabelValues(provider, string(kind)).Inc()
		l.emitError(ctx, string(kind), err.Error(), protocol.SeverityError)
		return
	}

	source := msg.Source
	if source == "" {
		source = sourceAudio
	}
	if l.state.HistoryEnabled && l.state.SessionID != "" {
		err := l.o.store.Append(ctx, l.state.SessionID, history.QuestionAnswer{
			Question:     msg.Question,
			Answer:       result.Answer,
			CodeSnippets: result.CodeSnippets,
			Source:       source,
			Mode:         string(mode),
			Provider:     provider,
		})
		if errors.Is(err, history.ErrSessionClosed) {
			l.o.log.WithField("session_id", l.state.SessionID).Warn("append to closed session ignored")
		} else if err != nil {
			l.o.log.WithError(err).WithField("session_id", l.state.SessionID).Warn("failed to append history")
		}
	}

	l.emit(ctx, protocol.AnswerReady{
		Type:         protocol.TypeAnswerReady,
		Question:     msg.Question,
		Answer:       result.Answer,
		CodeSnippets: result.CodeSnippets,
		Mode:         string(mode),
		Provider:     provider,
		Timestamp:    protocol.NowMillis(),
	})
	l.emitStatus(ctx, statusListening, "Ready")
}

func (l *connLoop) handleStartMock(ctx context.Context, msg protocol.StartMockInterview) {
	difficulty := providers.Difficulty(msg.Difficulty)
	switch difficulty {
	case providers.DifficultyEasy, providers.DifficultyMedium, providers.DifficultyHard:
	default:
		difficulty = providers.DifficultyMedium
	}

	types := make([]string, 0, len(msg.QuestionTypes))
	for _, t := range msg.QuestionTypes {
		if providers.ValidQuestionType(providers.QuestionType(t)) {
			types = append(types, t)
		}
	}
	if len(types) == 0 {
		types = []string{
			string(providers.TypeBehavioral),
			string(providers.TypeTechnical),
			string(providers.TypeCoding),
			string(providers.TypeSystemDesign),
		}
	}

	interval := msg.IntervalSeconds
	if interval <= 0 {
		interval = defaultMockIntervalSecs
	}

	l.state.EnterMock(&conns.MockState{
		Difficulty:      string(difficulty),
		QuestionTypes:   types,
		Questions:       []string{},
		Answers:         []string{},
		Context:         msg.Context,
		IntervalSeconds: interval,
		StartedAt:       time.Now().UTC(),
	})

	l.emitStatus(ctx, statusMockInterview, "Mock interview started")
	l.generateMockQuestion(ctx)
	l.resetMockTimer()
}

func (l *connLoop) generateMockQuestion(ctx context.Context) {
	mock := l.state.Mock
	if mock == nil {
		return
	}

	qtype := mock.QuestionTypes[l.o.randInt(len(mock.QuestionTypes))]

	start := time.Now()
	question, err := l.o.gateway.GenerateQuestion(
		ctx,
		providers.Difficulty(mock.Difficulty),
		providers.QuestionType(qtype),
		l.o.mockProvider,
		l.o.mockModel,
		mock.Context,
	)
	l.o.perf.ObserveDuration(observability.StageMockQuestion, time.Since(start))
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		l.o.log.WithError(err).Warn("mock question generation failed")
		l.o.metrics.ProviderErrors.WithLabelValues(l.o.mockProvider, string(providers.KindOf(err))).Inc()
		l.emitError(ctx, protocol.CodeMockQuestionFailed, "Failed to generate mock interview question", protocol.SeverityError)
		return
	}

	mock.Questions = append(mock.Questions, question)
	l.emit(ctx, protocol.MockQuestion{
		Type:         protocol.TypeMockQuestion,
		Question:     question,
		QuestionType: qtype,
		Difficulty:   mock.Difficulty,
		Timestamp:    protocol.NowMillis(),
	})
}

func (l *connLoop) handleMockNext(ctx context.Context) {
	if l.state.Phase != conns.PhaseMock {
		return
	}
	l.generateMockQuestion(ctx)
	l.resetMockTimer()
}

func (l *connLoop) autoAdvanceMock(ctx context.Context) {
	if l.state.Phase != conns.PhaseMock {
		l.stopMockTimer()
		return
	}
	l.generateMockQuestion(ctx)
	l.resetMockTimer()
}

func (l *connLoop) handleStopMock(ctx context.Context) {
	if l.state.Phase != conns.PhaseMock {
		return
	}

	mock := l.state.LeaveMock()
	l.stopMockTimer()

	l.emit(ctx, protocol.MockInterviewEnded{
		Type:            protocol.TypeMockInterviewEnded,
		Questions:       mock.Questions,
		Answers:         mock.Answers,
		DurationSeconds: int64(time.Since(mock.StartedAt).Seconds()),
		Timestamp:       protocol.NowMillis(),
	})
	l.emitStatus(ctx, statusIdle, "Mock interview ended")
}

func (l *connLoop) handleMockFeedback(ctx context.Context, msg protocol.RequestMockFeedback) {
	l.emitStatus(ctx, statusProcessing, "Analyzing your answers...")

	start := time.Now()
	feedback, err := l.o.gateway.AnalyzeTranscript(ctx, msg.Questions, msg.Answers, l.o.mockProvider, l.o.mockModel, msg.Context)
	l.o.perf.ObserveDuration(observability.StageMockFeedback, time.Since(start))
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		l.o.log.WithError(err).Warn("mock feedback failed")
		l.emitError(ctx, protocol.CodeMockFeedbackFailed, "Failed to generate feedback", protocol.SeverityError)
		return
	}

	l.emit(ctx, protocol.MockFeedbackReady{
		Type:           protocol.TypeMockFeedbackReady,
		OverallScore:   feedback.OverallScore,
		Summary:        feedback.Summary,
		Strengths:      feedback.Strengths,
		Improvements:   feedback.Improvements,
		AnswerFeedback: feedback.AnswerFeedback,
		Timestamp:      protocol.NowMillis(),
	})
}

func (l *connLoop) handleGetHistory(ctx context.Context, msg protocol.GetSessionHistory) {
	limit := msg.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	sessions, err := l.o.store.List(ctx, limit)
	if err != nil {
		l.o.log.WithError(err).Warn("failed to list sessions")
		l.emitError(ctx, protocol.CodeHistoryFailed, "Failed to load session history", protocol.SeverityError)
		return
	}
	l.emit(ctx, protocol.SessionHistory{
		Type:      protocol.TypeSessionHistory,
		Sessions:  sessions,
		Timestamp: protocol.NowMillis(),
	})
}

func (l *connLoop) handleExport(ctx context.Context, msg protocol.ExportSessions) {
	if !history.ValidFormat(msg.Format) {
		l.emitError(ctx, protocol.CodeInvalidRequest, "export format must be json or csv", protocol.SeverityWarning)
		return
	}
	sessions, err := l.o.store.List(ctx, 0)
	if err != nil {
		l.o.log.WithError(err).Warn("failed to list sessions for export")
		l.emitError(ctx, protocol.CodeExportFailed, "Failed to export sessions", protocol.SeverityError)
		return
	}
	content, err := history.Export(sessions, msg.Format)
	if err != nil {
		l.emitError(ctx, protocol.CodeExportFailed, "Failed to export sessions", protocol.SeverityError)
		return
	}
	l.emit(ctx, protocol.SessionsExported{
		Type:      protocol.TypeSessionsExported,
		Format:    msg.Format,
		Content:   content,
		Filename:  history.ExportFilename(msg.Format, time.Now().UTC()),
		Timestamp: protocol.NowMillis(),
	})
}

func (l *connLoop) handlePause(ctx context.Context) {
	if l.state.Phase == conns.PhaseMock {
		return
	}
	l.state.Phase = conns.PhasePaused
	l.emit(ctx, protocol.ListeningPaused{Type: protocol.TypeListeningPaused, Timestamp: protocol.NowMillis()})
	l.emitStatus(ctx, statusPaused, "Listening paused")
}

func (l *connLoop) handleResume(ctx context.Context) {
	if l.state.Phase == conns.PhaseMock {
		return
	}
	l.state.Phase = conns.PhaseListening
	l.emit(ctx, protocol.ListeningResumed{Type: protocol.TypeListeningResumed, Timestamp: protocol.NowMillis()})
	l.emitStatus(ctx, statusListening, "Listening resumed")
}

func (l *connLoop) timerChan() <-chan time.Time {
	if l.mockTimer == nil {
		return nil
	}
	return l.mockTimer.C
}

func (l *connLoop) resetMockTimer() {
	l.stopMockTimer()
	mock := l.state.Mock
	if mock == nil || mock.IntervalSeconds <= 0 {
		return
	}
	l.mockTimer = time.NewTimer(time.Duration(mock.IntervalSeconds) * time.Second)
}

func (l *connLoop) stopMockTimer() {
	if l.mockTimer == nil {
		return
	}
	l.mockTimer.Stop()
	l.mockTimer = nil
}
