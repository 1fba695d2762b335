// Package protocol defines the websocket message surface between desktop
// clients and the interview backend. Field names are camelCase to match
// the client's wire format; timestamps are unix milliseconds.
package protocol

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/antoniostano/candidly/internal/providers"
)

// MessageType identifies websocket payload variants.
type MessageType string

// Client -> server.
const (
	TypeAudioStream         MessageType = "audio-stream"
	TypeScreenshot          MessageType = "screenshot"
	TypeGenerateAnswer      MessageType = "generate-answer"
	TypeStartMockInterview  MessageType = "start-mock-interview"
	TypeMockNextQuestion    MessageType = "mock-next-question"
	TypeStopMockInterview   MessageType = "stop-mock-interview"
	TypeRequestMockFeedback MessageType = "request-mock-feedback"
	TypeGetSessionHistory   MessageType = "get-session-history"
	TypeExportSessions      MessageType = "export-sessions"
	TypePauseListening      MessageType = "pause-listening"
	TypeResumeListening     MessageType = "resume-listening"
	TypeConfigUpdate        MessageType = "config-update"
)

// Server -> client.
const (
	TypeConnected          MessageType = "connected"
	TypeStatusUpdate       MessageType = "status-update"
	TypeTranscription      MessageType = "transcription-result"
	TypeQuestionDetected   MessageType = "question-detected"
	TypeAnswerReady        MessageType = "answer-ready"
	TypeError              MessageType = "error"
	TypeMockQuestion       MessageType = "mock-question"
	TypeMockInterviewEnded MessageType = "mock-interview-ended"
	TypeMockFeedbackReady  MessageType = "mock-feedback-ready"
	TypeSessionHistory     MessageType = "session-history"
	TypeSessionsExported   MessageType = "sessions-exported"
	TypeListeningPaused    MessageType = "listening-paused"
	TypeListeningResumed   MessageType = "listening-resumed"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// NowMillis is the wire timestamp for outbound events.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

type AudioStream struct {
	Type        MessageType `json:"type"`
	AudioBase64 string      `json:"audioBuffer"`
}

// Audio decodes the base64 audio payload.
func (m AudioStream) Audio() ([]byte, error) {
	return base64.StdEncoding.DecodeString(m.AudioBase64)
}

type Screenshot struct {
	Type        MessageType `json:"type"`
	ImageBase64 string      `json:"imageBuffer"`
	OCRProvider string      `json:"ocrProvider,omitempty"`
}

// Image decodes the base64 image payload.
func (m Screenshot) Image() ([]byte, error) {
	return base64.StdEncoding.DecodeString(m.ImageBase64)
}

type GenerateAnswer struct {
	Type     MessageType            `json:"type"`
	Question string                 `json:"question"`
	Mode     string                 `json:"mode,omitempty"`
	Provider string                 `json:"provider,omitempty"`
	Model    string                 `json:"model,omitempty"`
	Source   string                 `json:"source,omitempty"`
	Context  *providers.UserContext `json:"context,omitempty"`
}

type StartMockInterview struct {
	Type            MessageType            `json:"type"`
	Difficulty      string                 `json:"difficulty"`
	QuestionTypes   []string               `json:"questionTypes"`
	Context         *providers.UserContext `json:"context,omitempty"`
	IntervalSeconds int                    `json:"interval,omitempty"`
}

type MockNextQuestion struct {
	Type MessageType `json:"type"`
}

type StopMockInterview struct {
	Type MessageType `json:"type"`
}

type RequestMockFeedback struct {
	Type      MessageType            `json:"type"`
	Questions []string               `json:"questions"`
	Answers   []string               `json:"answers"`
	Context   *providers.UserContext `json:"context,omitempty"`
}

type GetSessionHistory struct {
	Type  MessageType `json:"type"`
	Limit int         `json:"limit,omitempty"`
}

type ExportSessions struct {
	Type   MessageType `json:"type"`
	Format string      `json:"format"`
}

type PauseListening struct {
	Type MessageType `json:"type"`
}

type ResumeListening struct {
	Type MessageType `json:"type"`
}

type ConfigUpdate struct {
	Type           MessageType            `json:"type"`
	Context        *providers.UserContext `json:"context,omitempty"`
	HistoryEnabled *bool                  `json:"historyEnabled,omitempty"`
	OCRProvider    string                 `json:"ocrProvider,omitempty"`
}

// ParseClientMessage decodes and validates one inbound frame.
func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeAudioStream:
		var msg AudioStream
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.AudioBase64 == "" {
			return nil, errors.New("invalid audio-stream: empty audioBuffer")
		}
		return msg, nil
	case TypeScreenshot:
		var msg Screenshot
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.ImageBase64 == "" {
			return nil, errors.New("invalid screenshot: empty imageBuffer")
		}
		return msg, nil
	case TypeGenerateAnswer:
		var msg GenerateAnswer
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.Question == "" {
			return nil, errors.New("invalid generate-answer: empty question")
		}
		return msg, nil
	case TypeStartMockInterview:
		var msg StartMockInterview
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case TypeMockNextQuestion:
		return MockNextQuestion{Type: env.Type}, nil
	case TypeStopMockInterview:
		return StopMockInterview{Type: env.Type}, nil
	case TypeRequestMockFeedback:
		var msg RequestMockFeedback
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case TypeGetSessionHistory:
		var msg GetSessionHistory
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case TypeExportSessions:
		var msg ExportSessions
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.Format == "" {
			return nil, errors.New("invalid export-sessions: empty format")
		}
		return msg, nil
	case TypePauseListening:
		return PauseListening{Type: env.Type}, nil
	case TypeResumeListening:
		return ResumeListening{Type: env.Type}, nil
	case TypeConfigUpdate:
		var msg ConfigUpdate
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}
