package detect

import "testing"

func TestScoreStrongCodingQuestion(t *testing.T) {
	r := Score("What is a binary search tree and how would you implement one in code?")
	if !r.IsQuestion {
		t.Fatalf("IsQuestion = false, want true (confidence %v)", r.Confidence)
	}
	if r.Confidence < 0.9 {
		t.Fatalf("Confidence = %v, want >= 0.9", r.Confidence)
	}
	if r.Question == "" {
		t.Fatalf("Question should carry the trimmed text")
	}
}

func TestScoreShortText(t *testing.T) {
	r := Score("ok")
	if r.IsQuestion {
		t.Fatalf("IsQuestion = true, want false")
	}
	if r.Confidence > 0.3 {
		t.Fatalf("Confidence = %v, want <= 0.3", r.Confidence)
	}
}

func TestScoreEmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		r := Score(text)
		if r.IsQuestion || r.Question != "" || r.Confidence != 0 {
			t.Fatalf("Score(%q) = %+v, want zero result", text, r)
		}
	}
}

func TestScoreConfidenceClampedAndThresholdConsistent(t *testing.T) {
	inputs := []string{
		"What is a binary search tree and how would you implement one in code?",
		"ok",
		"the",
		"Tell me about yourself and describe what you would do, how you solve problems, and why.",
		"Implement code to solve this, write a function, build it, design it, program it now please ok?",
		"It was a sunny day and everyone went outside to enjoy the afternoon together.",
	}
	for _, text := range inputs {
		r := Score(text)
		if r.Confidence < 0 || r.Confidence > 1 {
			t.Fatalf("Score(%q) confidence %v outside [0,1]", text, r.Confidence)
		}
		if r.IsQuestion != (r.Confidence >= Threshold) {
			t.Fatalf("Score(%q) IsQuestion=%v inconsistent with confidence %v", text, r.IsQuestion, r.Confidence)
		}
	}
}

func TestExtractBestFindsEmbeddedQuestion(t *testing.T) {
	r := ExtractBest("The weather is nice. What data structure would you use here? I think arrays work.")
	if !r.IsQuestion {
		t.Fatalf("IsQuestion = false, want true (confidence %v)", r.Confidence)
	}
	if r.Question != "What data structure would you use here?" {
		t.Fatalf("Question = %q, want the middle sentence", r.Question)
	}
}

func TestExtractBestFallsBackToWholeText(t *testing.T) {
	// Each sentence carries one non-leading interrogative keyword and scores
	// 0.5; only the combined text collects the repeated-keyword bonus.
	text := "Our team talked for a long time about how the cache behaves under load. Nobody could say exactly when the latency regression was first noticed by users. Someone should explain the monitoring gaps to the rest of the group soon."
	for _, s := range []string{
		"Our team talked for a long time about how the cache behaves under load.",
		"Nobody could say exactly when the latency regression was first noticed by users.",
		"Someone should explain the monitoring gaps to the rest of the group soon.",
	} {
		if r := Score(s); r.IsQuestion {
			t.Fatalf("sentence %q unexpectedly clears the threshold (%v)", s, r.Confidence)
		}
	}
	r := ExtractBest(text)
	if !r.IsQuestion {
		t.Fatalf("IsQuestion = false, want fallback on whole text (confidence %v)", r.Confidence)
	}
	if r.Question != text {
		t.Fatalf("Question = %q, want whole text", r.Question)
	}
}

func TestExtractBestEarliestMaximumWins(t *testing.T) {
	// Two identical questions; strictly-greater comparison keeps the first.
	r := ExtractBest("What would you describe as your biggest technical strength overall? What would you describe as your biggest technical strength overall?")
	if r.Question != "What would you describe as your biggest technical strength overall?" {
		t.Fatalf("Question = %q, want first occurrence", r.Question)
	}
}

func TestExtractBestEmptyInput(t *testing.T) {
	r := ExtractBest("  ")
	if r.IsQuestion || r.Confidence != 0 {
		t.Fatalf("ExtractBest on blank = %+v, want zero result", r)
	}
}
