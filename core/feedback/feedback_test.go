package feedback

import "testing"

func TestParseLabeledLines(t *testing.T) {
	raw := "Correctness: Partially correct\n" +
		"Explanation: You named one of the two causes.\n" +
		"Improvement: Mention the drought as well."

	result := Parse(raw)
	if result.Correctness != "Partially correct" {
		t.Fatalf("expected correctness to be parsed, got %q", result.Correctness)
	}
	if result.Explanation != "You named one of the two causes." {
		t.Fatalf("expected explanation to be parsed, got %q", result.Explanation)
	}
	if result.Improvement != "Mention the drought as well." {
		t.Fatalf("expected improvement to be parsed, got %q", result.Improvement)
	}
}

func TestParseToleratesMissingAndUnlabeledLines(t *testing.T) {
	result := Parse("Great answer overall.\nExplanation: Spot on.")
	if result.Correctness != "" {
		t.Fatalf("expected missing correctness to stay empty, got %q", result.Correctness)
	}
	if result.Explanation != "Spot on." {
		t.Fatalf("expected explanation to be parsed, got %q", result.Explanation)
	}
	if result.Improvement != "" {
		t.Fatalf("expected missing improvement to stay empty, got %q", result.Improvement)
	}
}

func TestParseTrimsSurroundingWhitespace(t *testing.T) {
	result := Parse("  Correctness:   Correct  \n")
	if result.Correctness != "Correct" {
		t.Fatalf("expected trimmed correctness, got %q", result.Correctness)
	}
}

func TestClassifyChecksIncorrectBeforePartial(t *testing.T) {
	cases := []struct {
		judgement string
		want      Class
	}{
		{"Correct", Correct},
		{"correct", Correct},
		{"Incorrect", Incorrect},
		{"INCORRECT", Incorrect},
		{"Partially correct", Partial},
		{"partial credit", Partial},
		{"Partially incorrect", Incorrect},
		{"", Correct},
		{"Excellent", Correct},
	}
	for _, c := range cases {
		if got := Classify(c.judgement); got != c.want {
			t.Errorf("Classify(%q) = %v, want %v", c.judgement, got, c.want)
		}
	}
}

func TestTallyCountsBuckets(t *testing.T) {
	score := Tally([]Result{
		{Correctness: "Correct"},
		{Correctness: "Partially correct"},
		{Correctness: "Incorrect"},
		{Correctness: ""},
	})

	if score.Total != 4 {
		t.Fatalf("expected total 4, got %d", score.Total)
	}
	if score.Correct != 2 {
		t.Fatalf("expected 2 correct (unrecognized counts as correct), got %d", score.Correct)
	}
	if score.Partial != 1 {
		t.Fatalf("expected 1 partial, got %d", score.Partial)
	}
	if score.Incorrect != 1 {
		t.Fatalf("expected 1 incorrect, got %d", score.Incorrect)
	}
}

func TestClassStringReadsNaturally(t *testing.T) {
	if Correct.String() != "correct" {
		t.Fatalf("unexpected string for Correct: %q", Correct.String())
	}
	if Partial.String() != "partially correct" {
		t.Fatalf("unexpected string for Partial: %q", Partial.String())
	}
	if Incorrect.String() != "incorrect" {
		t.Fatalf("unexpected string for Incorrect: %q", Incorrect.String())
	}
}
