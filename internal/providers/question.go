package providers

import (
	"context"
	"fmt"
	"strings"
)

// Difficulty of a mock-interview question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QuestionType selects the mock-interview question category.
type QuestionType string

const (
	TypeBehavioral   QuestionType = "behavioral"
	TypeTechnical    QuestionType = "technical"
	TypeCoding       QuestionType = "coding"
	TypeSystemDesign QuestionType = "system-design"
)

// ValidQuestionType reports whether t is one of the four categories.
func ValidQuestionType(t QuestionType) bool {
	switch t {
	case TypeBehavioral, TypeTechnical, TypeCoding, TypeSystemDesign:
		return true
	}
	return false
}

// GenerateQuestion asks a backend for one mock-interview question. Unlike
// Generate, failures propagate to the caller: the mock-interview flow must
// react synchronously.
func (g *Gateway) GenerateQuestion(ctx context.Context, difficulty Difficulty, qtype QuestionType, provider, model string, uc *UserContext) (string, error) {
	if !ValidQuestionType(qtype) {
		return "", newError(KindValidation, "unknown question type: %s", qtype)
	}

	prompt := buildQuestionPrompt(difficulty, qtype, uc)
	text, err := g.complete(ctx, provider, model, prompt, fullMaxTokens)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func buildQuestionPrompt(difficulty Difficulty, qtype QuestionType, uc *UserContext) string {
	var role string
	if uc != nil && uc.Enabled {
		role = fmt.Sprintf(" for a %s position in %s", uc.JobTitle, uc.Field)
	}
	section := questionContextSection(uc)

	var focus string
	switch qtype {
	case TypeBehavioral:
		focus = "Use the STAR method format."
	case TypeTechnical:
		focus = "Focus on concepts, architecture, and best practices."
	case TypeCoding:
		focus = "Include problem description and constraints."
	case TypeSystemDesign:
		focus = "Focus on scalability, architecture, and trade-offs."
	}

	label := string(qtype)
	if qtype == TypeSystemDesign {
		label = "system design"
	}
	return fmt.Sprintf("Generate a %s %s interview question%s.\n%s%s\nReturn only the question, no additional text.",
		difficulty, label, role, focus, section)
}

// questionContextSection is the terser context block used by the
// mock-interview prompts.
func questionContextSection(uc *UserContext) string {
	if uc == nil || !uc.Enabled {
		return ""
	}
	var parts []string
	if uc.JobTitle != "" {
		parts = append(parts, "Job Title: "+uc.JobTitle)
	}
	if uc.Field != "" {
		parts = append(parts, "Field: "+uc.Field)
	}
	if uc.JobDescription != "" {
		parts = append(parts, "Job Description: "+uc.JobDescription)
	}
	if uc.CompanyInfo != "" {
		parts = append(parts, "Company: "+uc.CompanyInfo)
	}
	if len(parts) == 0 {
		return ""
	}
	return "\nContext:\n" + strings.Join(parts, "\n") + "\n"
}
