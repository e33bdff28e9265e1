// Package feedback parses and classifies per-question evaluation feedback.
//
// The evaluation backend returns feedback as labeled lines:
//
//	Correctness: Incorrect
//	Explanation: The capital of Australia is Canberra, not Sydney.
//	Improvement: Re-read the second paragraph.
//
// Lines are order-independent and each label is optional.
package feedback

import "strings"

// Result is one question's parsed feedback.
type Result struct {
	Correctness string
	Explanation string
	Improvement string
}

// Class is the scoring bucket a correctness judgement falls into.
type Class int

const (
	Correct Class = iota
	Partial
	Incorrect
)

func (c Class) String() string {
	switch c {
	case Partial:
		return "partially correct"
	case Incorrect:
		return "incorrect"
	default:
		return "correct"
	}
}

// Parse splits raw feedback into its labeled fields. Unlabeled lines are
// ignored; missing labels leave their field empty.
func Parse(raw string) Result {
	result := Result{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Correctness:"):
			result.Correctness = strings.TrimSpace(strings.TrimPrefix(line, "Correctness:"))
		case strings.HasPrefix(line, "Explanation:"):
			result.Explanation = strings.TrimSpace(strings.TrimPrefix(line, "Explanation:"))
		case strings.HasPrefix(line, "Improvement:"):
			result.Improvement = strings.TrimSpace(strings.TrimPrefix(line, "Improvement:"))
		}
	}
	return result
}

// Classify buckets a correctness judgement. "incorrect" is checked before
// "partial" so that judgements like "partially incorrect" count against the
// score; anything unrecognized counts as correct.
func Classify(correctness string) Class {
	judgement := strings.ToLower(correctness)
	switch {
	case strings.Contains(judgement, "incorrect"):
		return Incorrect
	case strings.Contains(judgement, "partial"):
		return Partial
	default:
		return Correct
	}
}

// Score is the classification tally for one completed run.
type Score struct {
	Correct   int
	Partial   int
	Incorrect int
	Total     int
}

// Tally classifies each result's correctness judgement and counts the
// buckets.
func Tally(results []Result) Score {
	score := Score{Total: len(results)}
	for _, result := range results {
		switch Classify(result.Correctness) {
		case Incorrect:
			score.Incorrect++
		case Partial:
			score.Partial++
		default:
			score.Correct++
		}
	}
	return score
}
