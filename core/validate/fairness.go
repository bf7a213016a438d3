package validate

import (
	"fmt"
	"math"

	"github.com/longhornadam/QuizForge-sub000/core/quiz"
	"github.com/longhornadam/QuizForge-sub000/core/quizerr"
)

// Limits holds the fairness thresholds. Zero values are replaced by the
// defaults, so the zero Limits behaves sensibly.
type Limits struct {
	// LongestBias is the tolerated fraction of single-select items whose
	// longest choice is the correct one.
	LongestBias float64
	// LengthVariance is the tolerated coefficient of variation of choice
	// lengths when the correct choice is the longest.
	LengthVariance float64
	// MaxPositionRun is the longest tolerated streak of the same correct
	// position.
	MaxPositionRun int
}

// DefaultLimits are the stock thresholds.
var DefaultLimits = Limits{LongestBias: 0.30, LengthVariance: 0.30, MaxPositionRun: 2}

func (l Limits) withDefaults() Limits {
	if l.LongestBias == 0 {
		l.LongestBias = DefaultLimits.LongestBias
	}
	if l.LengthVariance == 0 {
		l.LengthVariance = DefaultLimits.LengthVariance
	}
	if l.MaxPositionRun == 0 {
		l.MaxPositionRun = DefaultLimits.MaxPositionRun
	}
	return l
}

// Fairness scans for answer patterns a test-wise student could exploit.
// Findings are warnings: the quiz still compiles, but the author should
// know.
func Fairness(q *quiz.Quiz, limits Limits) []quizerr.FairnessWarning {
	limits = limits.withDefaults()
	var warnings []quizerr.FairnessWarning

	var singles []*quiz.SingleSelectItem
	positions := make([]int, 0, len(q.Items))
	for _, it := range q.Items {
		ss, ok := it.(*quiz.SingleSelectItem)
		if !ok || len(ss.Choices) == 0 {
			continue
		}
		singles = append(singles, ss)
		for i, c := range ss.Choices {
			if c.Correct {
				positions = append(positions, i)
				break
			}
		}
	}
	if len(singles) == 0 {
		return nil
	}

	longest, shortest := 0, 0
	for _, ss := range singles {
		li, si := extremeChoices(ss.Choices)
		if ss.Choices[li].Correct {
			longest++
			if cv := lengthVariation(ss.Choices); cv > limits.LengthVariance {
				warnings = append(warnings, quizerr.FairnessWarning{
					Code:    "length-variance",
					Message: fmt.Sprintf("item %q: correct choice is the longest and choice lengths vary widely (cv %.2f)", ss.ItemCore.Prompt, cv),
				})
			}
		}
		if ss.Choices[si].Correct {
			shortest++
		}
	}

	n := float64(len(singles))
	if frac := float64(longest) / n; frac > limits.LongestBias {
		warnings = append(warnings, quizerr.FairnessWarning{
			Code:    "longest-bias",
			Message: fmt.Sprintf("longest choice is correct in %.0f%% of single-select items (%d/%d)", frac*100, longest, len(singles)),
		})
	}
	if frac := float64(shortest) / n; frac > limits.LongestBias {
		warnings = append(warnings, quizerr.FairnessWarning{
			Code:    "shortest-bias",
			Message: fmt.Sprintf("shortest choice is correct in %.0f%% of single-select items (%d/%d)", frac*100, shortest, len(singles)),
		})
	}

	if run, pos, at := longestRun(positions); run > limits.MaxPositionRun {
		warnings = append(warnings, quizerr.FairnessWarning{
			Code:    "position-run",
			Message: fmt.Sprintf("correct position %c repeats %d times in a row starting at single-select item %d", 'A'+pos, run, at+1),
		})
	}

	return warnings
}

// extremeChoices returns the indexes of the longest and shortest choices.
func extremeChoices(choices []quiz.Choice) (longest, shortest int) {
	for i, c := range choices {
		if len(c.Text) > len(choices[longest].Text) {
			longest = i
		}
		if len(c.Text) < len(choices[shortest].Text) {
			shortest = i
		}
	}
	return longest, shortest
}

// lengthVariation returns the coefficient of variation of choice lengths.
func lengthVariation(choices []quiz.Choice) float64 {
	var sum float64
	for _, c := range choices {
		sum += float64(len(c.Text))
	}
	mean := sum / float64(len(choices))
	var variance float64
	for _, c := range choices {
		d := float64(len(c.Text)) - mean
		variance += d * d
	}
	variance /= float64(len(choices))
	return math.Sqrt(variance) / math.Max(mean, 1)
}

// longestRun returns the length, value, and start index of the longest run
// of equal values.
func longestRun(values []int) (run, value, start int) {
	best, bestVal, bestStart := 0, 0, 0
	cur, curStart := 0, 0
	for i, v := range values {
		if i > 0 && v == values[i-1] {
			cur++
		} else {
			cur, curStart = 1, i
		}
		if cur > best {
			best, bestVal, bestStart = cur, v, curStart
		}
	}
	return best, bestVal, bestStart
}
