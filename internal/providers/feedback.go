package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// summaryPreviewLen caps the raw-answer preview used when feedback parsing
// falls back.
const summaryPreviewLen = 200

// Feedback is the structured result of a mock-interview transcript
// analysis. Field names double as the JSON schema the backend is asked to
// produce.
type Feedback struct {
	OverallScore   float64          `json:"overallScore"`
	Summary        string           `json:"summary"`
	Strengths      []string         `json:"strengths"`
	Improvements   []string         `json:"improvements"`
	AnswerFeedback []AnswerFeedback `json:"answerFeedback"`
}

// AnswerFeedback scores one question/answer pair.
type AnswerFeedback struct {
	Question    string   `json:"question"`
	Answer      string   `json:"answer"`
	Score       float64  `json:"score"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}

var fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// AnalyzeTranscript scores a finished mock interview. A length mismatch is
// a VALIDATION error and no backend is called. Backend failures propagate;
// a malformed backend response never does — it degrades to a synthesized
// fallback because the overlay has no separate error path for this call.
func (g *Gateway) AnalyzeTranscript(ctx context.Context, questions, answers []string, provider, model string, uc *UserContext) (Feedback, error) {
	if len(questions) != len(answers) {
		return Feedback{}, newError(KindValidation, "questions and answers must have the same length (%d != %d)", len(questions), len(answers))
	}

	prompt := buildFeedbackPrompt(questions, answers, uc)
	text, err := g.complete(ctx, provider, model, prompt, fullMaxTokens)
	if err != nil {
		return Feedback{}, err
	}

	fb, ok := parseFeedback(text)
	if !ok {
		g.log.WithField("provider", provider).Warn("feedback response failed strict parse, using fallback")
		return fallbackFeedback(questions, answers, text), nil
	}
	return fb, nil
}

func buildFeedbackPrompt(questions, answers []string, uc *UserContext) string {
	var pairs strings.Builder
	for i, q := range questions {
		if i > 0 {
			pairs.WriteString("\n\n")
		}
		fmt.Fprintf(&pairs, "Q%d: %s\nA%d: %s", i+1, q, i+1, answers[i])
	}

	return fmt.Sprintf(`You are an interview coach. Analyze the following mock interview answers.
%s
Questions and Answers:
%s

Provide:
1. Overall score (0-100)
2. Overall performance summary (2-3 sentences)
3. Top 3 strengths
4. Top 3 areas for improvement
5. For each answer:
   - Score (0-100)
   - Specific feedback
   - 2-3 concrete suggestions for improvement

Format as JSON matching this structure:
{
  "overallScore": number,
  "summary": "string",
  "strengths": ["string", "string", "string"],
  "improvements": ["string", "string", "string"],
  "answerFeedback": [
    {
      "question": "string",
      "answer": "string",
      "score": number,
      "feedback": "string",
      "suggestions": ["string", "string"]
    }
  ]
}`, questionContextSection(uc), pairs.String())
}

// parseFeedback is the strict stage of the two-stage parse: locate a
// fenced JSON block if present, decode, and require every top-level field.
func parseFeedback(text string) (Feedback, bool) {
	payload := text
	if m := fencedJSONRe.FindStringSubmatch(text); m != nil {
		payload = m[1]
	}

	var probe struct {
		OverallScore   *float64         `json:"overallScore"`
		Summary        *string          `json:"summary"`
		Strengths      []string         `json:"strengths"`
		Improvements   []string         `json:"improvements"`
		AnswerFeedback []AnswerFeedback `json:"answerFeedback"`
	}
	if err := json.Unmarshal([]byte(payload), &probe); err != nil {
		return Feedback{}, false
	}
	if probe.OverallScore == nil || probe.Summary == nil ||
		probe.Strengths == nil || probe.Improvements == nil || probe.AnswerFeedback == nil {
		return Feedback{}, false
	}
	return Feedback{
		OverallScore:   *probe.OverallScore,
		Summary:        *probe.Summary,
		Strengths:      probe.Strengths,
		Improvements:   probe.Improvements,
		AnswerFeedback: probe.AnswerFeedback,
	}, true
}

// fallbackFeedback is the named degraded path: a generic score, the raw
// answer truncated as the summary, and placeholder per-answer feedback.
func fallbackFeedback(questions, answers []string, raw string) Feedback {
	summary := raw
	if len(summary) > summaryPreviewLen {
		summary = summary[:summaryPreviewLen]
	}
	per := make([]AnswerFeedback, len(questions))
	for i := range questions {
		per[i] = AnswerFeedback{
			Question:    questions[i],
			Answer:      answers[i],
			Score:       70,
			Feedback:    "Unable to parse detailed feedback. Please see summary.",
			Suggestions: []string{"Review your answer", "Practice more"},
		}
	}
	return Feedback{
		OverallScore:   70,
		Summary:        summary,
		Strengths:      []string{"Analysis complete"},
		Improvements:   []string{"See full feedback below"},
		AnswerFeedback: per,
	}
}
