package providers

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/antoniostano/candidly/internal/reliability"
)

const (
	hintsMaxTokens = 500
	fullMaxTokens  = 1500
)

const hintsSystemPrompt = `You are an interview coach assistant. Provide brief, concise hints to help answer the question.
Format:
- 3-5 key points maximum
- Each point should be one sentence
- If it's a coding question, include a short code example
- Be direct and helpful`

const fullSystemPrompt = `You are an interview coach assistant. Provide a comprehensive, detailed answer to help during an interview.
Format:
- Explain the concept thoroughly
- Include examples
- If it's a coding question, include complete code examples with explanations
- Structure: Introduction → Explanation → Example → Key Takeaways`

const codingInstruction = "\n\nInclude working code examples with syntax highlighting indicators (use markdown code blocks)."

var codingKeywords = []string{
	"code", "implement", "function", "method", "class", "algorithm",
	"data structure", "write a program", "debug", "fix", "refactor",
	"optimize", "python", "javascript", "java", "c++", "ruby", "go",
	"rust", "typescript", "react", "node", "api", "database", "sql",
	"array", "loop", "recursion", "sort", "search", "tree", "graph",
	"hash", "stack", "queue",
}

var codeBlockRe = regexp.MustCompile("(?s)```(\\w+)?\\n(.*?)```")

// GenerateRequest is one answer-generation call.
type GenerateRequest struct {
	Question string
	Mode     Mode
	Provider string
	Model    string
	Context  *UserContext
}

// GenerateResult is a successful answer. CodeSnippets is populated only
// for coding questions, with the fenced blocks replaced by placeholders in
// Answer.
type GenerateResult struct {
	Answer       string
	CodeSnippets []CodeSnippet
}

// Gateway dispatches generation calls to interchangeable backends and owns
// the retry and error-classification policy.
type Gateway struct {
	backends map[string]Backend
	log      *logrus.Logger

	// retryWait is swapped in tests to avoid real sleeps.
	retryWait func(ctx context.Context, attempt int) error
}

func NewGateway(log *logrus.Logger, backends ...Backend) *Gateway {
	g := &Gateway{
		backends: make(map[string]Backend, len(backends)),
		log:      log,
	}
	for _, b := range backends {
		g.backends[b.Name()] = b
	}
	g.retryWait = func(ctx context.Context, attempt int) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reliability.RetryDelay(attempt)):
			return nil
		}
	}
	return g
}

// Names lists the registered backends.
func (g *Gateway) Names() []string {
	out := make([]string, 0, len(g.backends))
	for name := range g.backends {
		out = append(out, name)
	}
	return out
}

// Generate produces an answer for an interview question. It never returns
// an unclassified error: every failure is an *Error whose kind the client
// can branch on.
func (g *Gateway) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	prompt := buildSystemPrompt(req.Mode, req.Context)
	isCoding := isCodingQuestion(req.Question)
	if isCoding {
		prompt += codingInstruction
	}
	prompt += "\n\nQuestion: " + req.Question

	text, err := g.complete(ctx, req.Provider, req.Model, prompt, maxTokensFor(req.Mode))
	if err != nil {
		return GenerateResult{}, err
	}

	if isCoding {
		answer, snippets := extractCodeSnippets(text)
		return GenerateResult{Answer: answer, CodeSnippets: snippets}, nil
	}
	return GenerateResult{Answer: text}, nil
}

// complete runs one backend call under the retry policy: up to
// reliability.MaxAttempts tries, waiting the attempt-indexed delay after a
// rate-limit failure; any other failure aborts immediately.
func (g *Gateway) complete(ctx context.Context, provider, model, prompt string, maxTokens int) (string, error) {
	backend, ok := g.backends[provider]
	if !ok {
		return "", newError(KindAPIError, "unknown provider: %s", provider)
	}

	var lastErr error
	for attempt := 0; attempt < reliability.MaxAttempts; attempt++ {
		text, err := backend.Complete(ctx, model, prompt, maxTokens)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if KindOf(err) != KindRateLimit || attempt == reliability.MaxAttempts-1 {
			break
		}
		g.log.WithFields(logrus.Fields{
			"provider": provider,
			"attempt":  attempt + 1,
			"delay":    reliability.RetryDelay(attempt).String(),
		}).Warn("rate limited, retrying")
		if err := g.retryWait(ctx, attempt); err != nil {
			return "", AsError(err)
		}
	}
	return "", AsError(lastErr)
}

func maxTokensFor(mode Mode) int {
	if mode == ModeHints {
		return hintsMaxTokens
	}
	return fullMaxTokens
}

func buildSystemPrompt(mode Mode, uc *UserContext) string {
	base := fullSystemPrompt
	if mode == ModeHints {
		base = hintsSystemPrompt
	}
	return base + contextBlock(uc)
}

func isCodingQuestion(question string) bool {
	lower := strings.ToLower(question)
	for _, kw := range codingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// extractCodeSnippets lifts fenced code blocks out of a markdown answer
// and replaces each one with a short placeholder the overlay renders
// separately.
func extractCodeSnippets(text string) (string, []CodeSnippet) {
	matches := codeBlockRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return text, nil
	}
	snippets := make([]CodeSnippet, 0, len(matches))
	for _, m := range matches {
		language := m[1]
		if language == "" {
			language = "text"
		}
		snippets = append(snippets, CodeSnippet{Language: language, Code: strings.TrimSpace(m[2])})
	}
	clean := strings.TrimSpace(codeBlockRe.ReplaceAllString(text, "\n[Code snippet]\n"))
	return clean, snippets
}
