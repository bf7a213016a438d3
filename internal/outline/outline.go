// Package outline renders the teacher-facing review text: the answer-key
// outline and the processing log. Neither enters the Canvas zip; both go
// to the optional review bundle and the CLI's --outline path.
package outline

import (
	"fmt"
	"strings"
	"time"

	"github.com/longhornadam/QuizForge-sub000/core/quiz"
	"github.com/longhornadam/QuizForge-sub000/core/quizerr"
	"github.com/longhornadam/QuizForge-sub000/core/tolerance"
)

const rule = "------------------------------------------------------------"

// AnswerKey renders the per-item answer summary. Positions count every
// rendered item, matching the Q numbers in the generated package; passage
// blocks appear as unscored context rows.
func AnswerKey(q *quiz.Quiz) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - Answer Key\n", q.Title)
	b.WriteString(rule + "\n")

	position := 0
	for _, it := range q.Items {
		if it.Kind() == quiz.PassageEnd {
			continue
		}
		position++
		core := it.Core()
		if it.Kind() == quiz.PassageBlock {
			fmt.Fprintf(&b, "Q%02d [%s] passage context\n", position, it.Kind())
			continue
		}
		fmt.Fprintf(&b, "Q%02d [%s] %.1f pts: %s\n", position, it.Kind(), core.Points, answerSummary(it))
		if rationale, ok := q.Rationales[position]; ok {
			fmt.Fprintf(&b, "     rationale: %s\n", rationale)
		}
	}

	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Total Points: %.1f\n", q.PointSum())
	return b.String()
}

// answerSummary is the one-line correct answer for an item.
func answerSummary(it quiz.Item) string {
	switch v := it.(type) {
	case *quiz.SingleSelectItem:
		for i, c := range v.Choices {
			if c.Correct {
				return letter(i)
			}
		}
		return "?"
	case *quiz.MultiSelectItem:
		var letters []string
		for i, c := range v.Choices {
			if c.Correct {
				letters = append(letters, letter(i))
			}
		}
		if len(letters) == 0 {
			return "?"
		}
		return strings.Join(letters, ", ")
	case *quiz.BooleanItem:
		if v.AnswerTrue {
			return "True"
		}
		return "False"
	case *quiz.FillBlankItem:
		return strings.Join(v.Accept, " | ")
	case *quiz.EssayItem:
		return "manually graded"
	case *quiz.FileResponseItem:
		return "manually graded (file submission)"
	case *quiz.MatchPairsItem:
		parts := make([]string, len(v.Pairs))
		for i, p := range v.Pairs {
			parts[i] = p.Prompt + " => " + p.Answer
		}
		return strings.Join(parts, "; ")
	case *quiz.OrderedSequenceItem:
		parts := make([]string, len(v.Entries))
		for i, entry := range v.Entries {
			parts[i] = fmt.Sprintf("%d. %s", i+1, entry.Text)
		}
		return strings.Join(parts, "  ")
	case *quiz.CategorizeItem:
		parts := make([]string, 0, len(v.Categories))
		for _, c := range v.Categories {
			var members []string
			for _, m := range v.Members {
				if m.Category == c.Name {
					members = append(members, m.Text)
				}
			}
			parts = append(parts, c.Name+": "+strings.Join(members, ", "))
		}
		return strings.Join(parts, "; ")
	case *quiz.NumericResponseItem:
		return numericSummary(v.Answer)
	default:
		return "?"
	}
}

func numericSummary(ans quiz.NumericAnswer) string {
	if ans.Spec.Mode == tolerance.Range || !ans.HasTarget {
		return fmt.Sprintf("between %s and %s", ans.Bounds.Lower, ans.Bounds.Upper)
	}
	if ans.Spec.Mode == tolerance.Exact {
		return ans.Target.String()
	}
	return fmt.Sprintf("%s (%s; accepts %s to %s)", ans.Target, ans.Spec.Mode, ans.Bounds.Lower, ans.Bounds.Upper)
}

func letter(i int) string {
	return string(rune('A' + i))
}

// ProcessingLog renders the run summary: applied fixes, fairness findings,
// and final statistics.
func ProcessingLog(q *quiz.Quiz, fixes []string, warnings []quizerr.FairnessWarning) string {
	var lines []string
	banner := strings.Repeat("=", 60)
	lines = append(lines,
		banner,
		"QuizForge Processing Log",
		banner,
		fmt.Sprintf("Quiz: %s", q.Title),
		fmt.Sprintf("Processed: %s", time.Now().Format("2006-01-02 15:04:05")),
		fmt.Sprintf("Questions: %d", len(q.Scorable())),
		fmt.Sprintf("Total Points: %.1f", q.PointSum()),
		"",
	)

	if len(warnings) > 0 {
		lines = append(lines, "STATUS: WEAK PASS (Warnings detected)")
	} else {
		lines = append(lines, "STATUS: PASS (No issues)")
	}
	lines = append(lines, "")

	if len(fixes) > 0 {
		lines = append(lines, "AUTO-FIXES APPLIED:", rule)
		for i, fix := range fixes {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, fix))
		}
		lines = append(lines, "")
	}

	if len(warnings) > 0 {
		lines = append(lines, "WARNINGS:", rule)
		for i, w := range warnings {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, w))
		}
		lines = append(lines, "",
			"Note: These warnings do not prevent quiz generation,",
			"but you may want to review them for fairness.",
			"")
	}

	lines = append(lines, banner, "Quiz package generated successfully!", banner)
	return strings.Join(lines, "\n") + "\n"
}
