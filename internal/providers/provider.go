package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Mode selects the answer style.
type Mode string

const (
	ModeFull  Mode = "full"
	ModeHints Mode = "hints"
)

// Known backend names.
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

// ErrorKind is the stable classification carried to the client.
type ErrorKind string

const (
	KindAPIKeyMissing   ErrorKind = "API_KEY_MISSING"
	KindRateLimit       ErrorKind = "API_RATE_LIMIT"
	KindAPIError        ErrorKind = "API_ERROR"
	KindInvalidResponse ErrorKind = "INVALID_RESPONSE"
	KindValidation      ErrorKind = "VALIDATION"
)

// Error is a classified backend failure. Its string form is the wire
// format the client branches on: "<KIND>: <human message>".
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// AsError extracts the classified error, wrapping anything unclassified as
// a generic API_ERROR so callers always see a stable kind.
func AsError(err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return &Error{Kind: KindAPIError, Message: err.Error()}
}

// KindOf reports the classification of err, or "" for nil.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	return AsError(err).Kind
}

// UserContext is caller-supplied background folded into prompts. When
// Enabled is false every consumer ignores the remaining fields.
type UserContext struct {
	Enabled         bool   `json:"enabled"`
	JobTitle        string `json:"jobTitle,omitempty"`
	Field           string `json:"field,omitempty"`
	JobDescription  string `json:"jobDescription,omitempty"`
	CompanyInfo     string `json:"companyInfo,omitempty"`
	AdditionalNotes string `json:"additionalNotes,omitempty"`
}

// CodeSnippet is one fenced code block lifted out of an answer.
type CodeSnippet struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// Backend is one interchangeable text-generation service. Implementations
// classify their own failures as *Error; model may be empty, in which case
// the backend uses its default.
type Backend interface {
	Name() string
	Complete(ctx context.Context, model, prompt string, maxTokens int) (string, error)
}

// contextBlock renders the user-context section appended to prompts.
// Returns "" when the context is disabled or carries no content.
func contextBlock(uc *UserContext) string {
	if uc == nil || !uc.Enabled {
		return ""
	}
	var parts []string
	if uc.JobTitle != "" {
		parts = append(parts, "Job Title: "+uc.JobTitle)
	}
	if uc.Field != "" {
		parts = append(parts, "Field/Domain: "+uc.Field)
	}
	if uc.JobDescription != "" {
		parts = append(parts, "Job Description: "+uc.JobDescription)
	}
	if uc.CompanyInfo != "" {
		parts = append(parts, "Company: "+uc.CompanyInfo)
	}
	if uc.AdditionalNotes != "" {
		parts = append(parts, "Additional Context: "+uc.AdditionalNotes)
	}
	if len(parts) == 0 {
		return ""
	}
	return "\n\nContext about the user:\n" + strings.Join(parts, "\n") +
		"\n\nPlease tailor your answer to be relevant for this specific role and context."
}
