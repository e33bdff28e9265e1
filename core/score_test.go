package session

import (
	"strings"
	"testing"

	"github.com/xujimc/read-me/core/feedback"
)

func TestNarrationBands(t *testing.T) {
	allCorrect := feedback.Score{Correct: 2, Total: 2}
	if text := narration(nil, allCorrect); !strings.Contains(text, "Excellent work!") {
		t.Fatalf("expected excellent band for a perfect score, got %q", text)
	}

	half := feedback.Score{Correct: 2, Partial: 1, Incorrect: 1, Total: 4}
	if text := narration(nil, half); !strings.Contains(text, "Good job!") {
		t.Fatalf("expected good-job band for at least half correct, got %q", text)
	}

	poor := feedback.Score{Correct: 1, Incorrect: 2, Total: 3}
	if text := narration(nil, poor); !strings.Contains(text, "Let's review your answers.") {
		t.Fatalf("expected review band for under half correct, got %q", text)
	}
}

func TestNarrationRecapsEveryQuestion(t *testing.T) {
	results := []feedback.Result{
		{Correctness: "Correct", Explanation: "Paris is the capital."},
		{Correctness: "Incorrect", Explanation: "It is 42, not 36."},
		{Correctness: "Partially correct"},
	}
	score := feedback.Tally(results)

	text := narration(results, score)
	if !strings.HasPrefix(text, "You got 1 out of 3 questions correct.") {
		t.Fatalf("expected the score line first, got %q", text)
	}
	if !strings.Contains(text, "For question 1: correct. Paris is the capital.") {
		t.Fatalf("expected recap for question 1, got %q", text)
	}
	if !strings.Contains(text, "For question 2: incorrect. It is 42, not 36.") {
		t.Fatalf("expected recap for question 2, got %q", text)
	}
	if !strings.Contains(text, "For question 3: partially correct.") {
		t.Fatalf("expected recap for question 3, got %q", text)
	}
}
