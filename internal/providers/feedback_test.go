package providers

import (
	"context"
	"strings"
	"testing"
)

const validFeedbackJSON = `{
  "overallScore": 82,
  "summary": "Solid overall.",
  "strengths": ["clear", "structured", "calm"],
  "improvements": ["depth", "examples", "pace"],
  "answerFeedback": [
    {"question": "Q1", "answer": "A1", "score": 82, "feedback": "good", "suggestions": ["s1", "s2"]}
  ]
}`

func TestAnalyzeTranscriptLengthMismatch(t *testing.T) {
	backend := NewMockBackendNamed(ProviderOpenAI)
	g := newTestGateway(backend)

	_, err := g.AnalyzeTranscript(context.Background(), []string{"q1", "q2"}, []string{"a1"}, ProviderOpenAI, "", nil)
	if KindOf(err) != KindValidation {
		t.Fatalf("kind = %s, want %s", KindOf(err), KindValidation)
	}
	if backend.Calls() != 0 {
		t.Fatalf("backend calls = %d, want 0", backend.Calls())
	}
}

func TestAnalyzeTranscriptParsesFencedJSON(t *testing.T) {
	backend := NewMockBackendNamed(ProviderOpenAI)
	backend.Script("Here is your feedback:\n```json\n"+validFeedbackJSON+"\n```", nil)

	g := newTestGateway(backend)
	fb, err := g.AnalyzeTranscript(context.Background(), []string{"Q1"}, []string{"A1"}, ProviderOpenAI, "", nil)
	if err != nil {
		t.Fatalf("AnalyzeTranscript() error = %v", err)
	}
	if fb.OverallScore != 82 || fb.Summary != "Solid overall." {
		t.Fatalf("feedback = %+v", fb)
	}
	if len(fb.AnswerFeedback) != 1 || fb.AnswerFeedback[0].Score != 82 {
		t.Fatalf("answer feedback = %+v", fb.AnswerFeedback)
	}
}

func TestAnalyzeTranscriptParsesRawJSON(t *testing.T) {
	backend := NewMockBackendNamed(ProviderOpenAI)
	backend.Script(validFeedbackJSON, nil)

	g := newTestGateway(backend)
	fb, err := g.AnalyzeTranscript(context.Background(), []string{"Q1"}, []string{"A1"}, ProviderOpenAI, "", nil)
	if err != nil {
		t.Fatalf("AnalyzeTranscript() error = %v", err)
	}
	if fb.OverallScore != 82 {
		t.Fatalf("OverallScore = %v", fb.OverallScore)
	}
}

func TestAnalyzeTranscriptFallbackOnUnparseableResponse(t *testing.T) {
	backend := NewMockBackendNamed(ProviderOpenAI)
	long := "I had some thoughts about your performance. " + strings.Repeat("More detail. ", 30)
	backend.Script(long, nil)

	g := newTestGateway(backend)
	questions := []string{"Q1", "Q2"}
	answers := []string{"A1", "A2"}
	fb, err := g.AnalyzeTranscript(context.Background(), questions, answers, ProviderOpenAI, "", nil)
	if err != nil {
		t.Fatalf("AnalyzeTranscript() error = %v, fallback must not fail", err)
	}
	if fb.OverallScore != 70 {
		t.Fatalf("OverallScore = %v, want generic 70", fb.OverallScore)
	}
	if len(fb.Summary) != summaryPreviewLen {
		t.Fatalf("Summary length = %d, want truncated to %d", len(fb.Summary), summaryPreviewLen)
	}
	if len(fb.AnswerFeedback) != 2 {
		t.Fatalf("AnswerFeedback length = %d, want one per question", len(fb.AnswerFeedback))
	}
	if fb.AnswerFeedback[1].Question != "Q2" || fb.AnswerFeedback[1].Answer != "A2" {
		t.Fatalf("AnswerFeedback[1] = %+v", fb.AnswerFeedback[1])
	}
}

func TestAnalyzeTranscriptFallbackOnSchemaMismatch(t *testing.T) {
	backend := NewMockBackendNamed(ProviderOpenAI)
	// Valid JSON, but missing required fields.
	backend.Script(`{"overallScore": 90}`, nil)

	g := newTestGateway(backend)
	fb, err := g.AnalyzeTranscript(context.Background(), []string{"Q1"}, []string{"A1"}, ProviderOpenAI, "", nil)
	if err != nil {
		t.Fatalf("AnalyzeTranscript() error = %v", err)
	}
	if fb.OverallScore != 70 {
		t.Fatalf("OverallScore = %v, want fallback", fb.OverallScore)
	}
}

func TestAnalyzeTranscriptPropagatesBackendError(t *testing.T) {
	backend := NewMockBackendNamed(ProviderOpenAI)
	backend.Script("", newError(KindAPIKeyMissing, "no key"))

	g := newTestGateway(backend)
	_, err := g.AnalyzeTranscript(context.Background(), []string{"Q1"}, []string{"A1"}, ProviderOpenAI, "", nil)
	if KindOf(err) != KindAPIKeyMissing {
		t.Fatalf("kind = %s, want %s", KindOf(err), KindAPIKeyMissing)
	}
}

func TestAnalyzeTranscriptPromptEmbedsPairs(t *testing.T) {
	backend := NewMockBackendNamed(ProviderOpenAI)
	backend.Script(validFeedbackJSON, nil)

	g := newTestGateway(backend)
	if _, err := g.AnalyzeTranscript(context.Background(), []string{"First?", "Second?"}, []string{"One", "Two"}, ProviderOpenAI, "", nil); err != nil {
		t.Fatalf("AnalyzeTranscript() error = %v", err)
	}
	prompt := backend.LastPrompt()
	for _, want := range []string{"Q1: First?", "A1: One", "Q2: Second?", "A2: Two", "Format as JSON"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
