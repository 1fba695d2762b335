package detect

import "strings"

// Result is the outcome of scoring a block of text for question-ness.
type Result struct {
	IsQuestion bool    `json:"is_question"`
	Question   string  `json:"question,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Threshold is the minimum confidence at which text counts as a question.
const Threshold = 0.7

var questionKeywords = []string{
	"what", "why", "how", "when", "where", "who",
	"can you", "could you", "would you", "will you",
	"explain", "describe", "tell me",
}

var imperativeKeywords = []string{
	"implement", "write a function", "create", "solve",
	"build", "design", "develop", "code", "program",
}

// Score rates a block of text as an interview question. ASR and OCR output
// is noisy, so this is a keyword heuristic, not a grammar: a question mark,
// a leading interrogative, repeated interrogatives, and imperative coding
// verbs all raise confidence; very short fragments lower it.
func Score(text string) Result {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Result{}
	}
	lower := strings.ToLower(trimmed)

	confidence := 0.5

	if strings.Contains(trimmed, "?") {
		confidence += 0.3
	}

	for _, kw := range questionKeywords {
		if strings.HasPrefix(lower, kw) {
			confidence += 0.2
			break
		}
	}

	indicators := 0
	for _, kw := range questionKeywords {
		if strings.Contains(lower, kw) {
			indicators++
		}
	}
	if indicators > 1 {
		confidence += float64(min(indicators-1, 3)) * 0.1
	}

	for _, kw := range imperativeKeywords {
		if strings.Contains(lower, kw) {
			confidence += 0.2
			break
		}
	}

	if len(strings.Fields(trimmed)) < 10 {
		confidence -= 0.2
	}

	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	r := Result{Confidence: confidence}
	if confidence >= Threshold {
		r.IsQuestion = true
		r.Question = trimmed
	}
	return r
}

// ExtractBest scores each sentence of a multi-sentence blob independently
// and returns the strongest candidate. Screen captures routinely mix an
// embedded question with surrounding prose; scoring the whole blob would
// underweight it. Falls back to scoring the full text when no sentence
// clears the threshold. The earliest maximum wins ties.
func ExtractBest(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{}
	}

	var best Result
	for _, sentence := range splitSentences(text) {
		if r := Score(sentence); r.Confidence > best.Confidence {
			best = r
		}
	}
	if !best.IsQuestion {
		best = Score(text)
	}
	return best
}

// splitSentences cuts text after runs of sentence terminators. Each
// fragment keeps its terminator so a trailing "?" still counts toward the
// fragment's score.
func splitSentences(text string) []string {
	var out []string
	var b strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		b.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Swallow the rest of the terminator run ("?!", "...").
		for i+1 < len(runes) && (runes[i+1] == '.' || runes[i+1] == '!' || runes[i+1] == '?') {
			b.WriteRune(runes[i+1])
			i++
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			out = append(out, s)
		}
		b.Reset()
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s)
	}
	return out
}
