package session

import (
	"fmt"
	"strings"

	"github.com/xujimc/read-me/core/feedback"
)

// narration builds the spoken feedback recap: score, an encouragement line
// chosen by score band, and a per-question correctness and explanation recap.
func narration(results []feedback.Result, score feedback.Score) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You got %d out of %d questions correct. ", score.Correct, score.Total)

	switch {
	case score.Correct == score.Total:
		b.WriteString("Excellent work!")
	case score.Correct*2 >= score.Total:
		b.WriteString("Good job!")
	default:
		b.WriteString("Let's review your answers.")
	}

	for i, result := range results {
		fmt.Fprintf(&b, " For question %d: %s.", i+1, feedback.Classify(result.Correctness))
		if result.Explanation != "" {
			b.WriteString(" " + result.Explanation)
		}
	}

	return b.String()
}
