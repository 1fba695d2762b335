package protocol

import (
	"github.com/antoniostano/candidly/internal/history"
	"github.com/antoniostano/candidly/internal/providers"
)

// Error severities carried on error events.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Error codes clients branch on.
const (
	CodeTranscriptionFailed = "TRANSCRIPTION_FAILED"
	CodeOCRFailed           = "OCR_FAILED"
	CodeGenerationFailed    = "AI_GENERATION_FAILED"
	CodeMockQuestionFailed  = "MOCK_QUESTION_FAILED"
	CodeMockFeedbackFailed  = "MOCK_FEEDBACK_FAILED"
	CodeHistoryFailed       = "HISTORY_FAILED"
	CodeExportFailed        = "EXPORT_FAILED"
	CodeInvalidRequest      = "INVALID_REQUEST"
)

type Connected struct {
	Type          MessageType `json:"type"`
	SessionID     string      `json:"sessionId"`
	Timestamp     int64       `json:"timestamp"`
	ServerVersion string      `json:"serverVersion"`
}

type StatusUpdate struct {
	Type      MessageType `json:"type"`
	Status    string      `json:"status"`
	Message   string      `json:"message,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type TranscriptionResult struct {
	Type      MessageType `json:"type"`
	Text      string      `json:"text"`
	IsPartial bool        `json:"isPartial"`
	Timestamp int64       `json:"timestamp"`
}

type QuestionDetected struct {
	Type       MessageType `json:"type"`
	Question   string      `json:"question"`
	Source     string      `json:"source"`
	Confidence float64     `json:"confidence"`
	Timestamp  int64       `json:"timestamp"`
}

type AnswerReady struct {
	Type         MessageType             `json:"type"`
	Question     string                  `json:"question"`
	Answer       string                  `json:"answer"`
	CodeSnippets []providers.CodeSnippet `json:"codeSnippets,omitempty"`
	Mode         string                  `json:"mode"`
	Provider     string                  `json:"provider"`
	Timestamp    int64                   `json:"timestamp"`
}

type ErrorEvent struct {
	Type      MessageType `json:"type"`
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Severity  string      `json:"severity"`
	Timestamp int64       `json:"timestamp"`
}

type MockQuestion struct {
	Type         MessageType `json:"type"`
	Question     string      `json:"question"`
	QuestionType string      `json:"questionType"`
	Difficulty   string      `json:"difficulty"`
	Timestamp    int64       `json:"timestamp"`
}

type MockInterviewEnded struct {
	Type            MessageType `json:"type"`
	Questions       []string    `json:"questions"`
	Answers         []string    `json:"answers"`
	DurationSeconds int64       `json:"duration"`
	Timestamp       int64       `json:"timestamp"`
}

type MockFeedbackReady struct {
	Type           MessageType                `json:"type"`
	OverallScore   float64                    `json:"overallScore"`
	Summary        string                     `json:"summary"`
	Strengths      []string                   `json:"strengths"`
	Improvements   []string                   `json:"improvements"`
	AnswerFeedback []providers.AnswerFeedback `json:"answerFeedback"`
	Timestamp      int64                      `json:"timestamp"`
}

type SessionHistory struct {
	Type      MessageType       `json:"type"`
	Sessions  []history.Session `json:"sessions"`
	Timestamp int64             `json:"timestamp"`
}

type SessionsExported struct {
	Type      MessageType `json:"type"`
	Format    string      `json:"format"`
	Content   string      `json:"content"`
	Filename  string      `json:"filename"`
	Timestamp int64       `json:"timestamp"`
}

type ListeningPaused struct {
	Type      MessageType `json:"type"`
	Timestamp int64       `json:"timestamp"`
}

type ListeningResumed struct {
	Type      MessageType `json:"type"`
	Timestamp int64       `json:"timestamp"`
}
