// Package validate checks a parsed quiz before any artifact is generated.
// Structural rules are hard failures the author must fix; fairness rules
// are soft findings that accompany a still-valid package.
package validate

import (
	"fmt"

	"github.com/longhornadam/QuizForge-sub000/core/quiz"
	"github.com/longhornadam/QuizForge-sub000/core/quizerr"
	"github.com/longhornadam/QuizForge-sub000/core/tolerance"
)

const (
	minChoices = 2
	maxChoices = 7
)

// Structure checks every non-negotiable rule and returns the full list of
// violations, so the author fixes them in one pass rather than one per run.
func Structure(q *quiz.Quiz) error {
	var errs quizerr.StructuralErrors

	if len(q.Items) == 0 {
		errs = append(errs, &quizerr.StructuralError{Message: "quiz must contain at least one item"})
		return errs
	}

	openPassages := map[string]bool{}
	for i, it := range q.Items {
		pos := i + 1
		kind := it.Kind()

		if kind == quiz.PassageBlock {
			openPassages[it.Core().ForcedIdent] = true
		}
		if ref := it.Core().PassageRef; ref != "" && !openPassages[ref] {
			errs = append(errs, itemErr(pos, kind, "references passage block %q which does not precede it", ref))
		}

		if kind.Scorable() && it.Core().Prompt == "" {
			errs = append(errs, itemErr(pos, kind, "prompt cannot be empty"))
		}

		switch v := it.(type) {
		case *quiz.SingleSelectItem:
			errs = append(errs, checkChoices(pos, kind, v.Choices, true)...)
		case *quiz.MultiSelectItem:
			errs = append(errs, checkChoices(pos, kind, v.Choices, false)...)
		case *quiz.FillBlankItem:
			if len(v.Accept) == 0 {
				errs = append(errs, itemErr(pos, kind, "needs at least one accepted answer"))
			}
		case *quiz.MatchPairsItem:
			if len(v.Pairs) < 2 {
				errs = append(errs, itemErr(pos, kind, "needs at least 2 pairs, has %d", len(v.Pairs)))
			}
		case *quiz.OrderedSequenceItem:
			if len(v.Entries) < 2 {
				errs = append(errs, itemErr(pos, kind, "needs at least 2 entries, has %d", len(v.Entries)))
			}
		case *quiz.CategorizeItem:
			if len(v.Categories) < 2 {
				errs = append(errs, itemErr(pos, kind, "needs at least 2 categories, has %d", len(v.Categories)))
			}
			if len(v.Members) == 0 {
				errs = append(errs, itemErr(pos, kind, "needs at least 1 member to categorize"))
			}
			names := map[string]bool{}
			for _, c := range v.Categories {
				names[c.Name] = true
			}
			for _, m := range v.Members {
				if !names[m.Category] {
					errs = append(errs, itemErr(pos, kind, "member %q names unknown category %q", m.Text, m.Category))
				}
			}
		case *quiz.NumericResponseItem:
			errs = append(errs, checkNumeric(pos, kind, v.Answer)...)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func itemErr(pos int, kind quiz.Kind, format string, args ...any) *quizerr.StructuralError {
	return &quizerr.StructuralError{Index: pos, Kind: kind.String(), Message: fmt.Sprintf(format, args...)}
}

func checkChoices(pos int, kind quiz.Kind, choices []quiz.Choice, single bool) quizerr.StructuralErrors {
	var errs quizerr.StructuralErrors
	if len(choices) < minChoices || len(choices) > maxChoices {
		errs = append(errs, itemErr(pos, kind, "choice count must be between %d and %d, has %d", minChoices, maxChoices, len(choices)))
	}
	correct := 0
	for _, c := range choices {
		if c.Correct {
			correct++
		}
	}
	if single && correct != 1 {
		errs = append(errs, itemErr(pos, kind, "must mark exactly 1 correct choice, has %d", correct))
	}
	if !single && correct == 0 {
		errs = append(errs, itemErr(pos, kind, "must mark at least 1 correct choice"))
	}
	return errs
}

func checkNumeric(pos int, kind quiz.Kind, a quiz.NumericAnswer) quizerr.StructuralErrors {
	var errs quizerr.StructuralErrors
	if !a.HasTarget && a.Spec.Mode != tolerance.Range {
		errs = append(errs, itemErr(pos, kind, "missing target value"))
		return errs
	}
	if a.Bounds.Lower.Cmp(a.Bounds.Upper) > 0 {
		errs = append(errs, itemErr(pos, kind, "acceptance bounds are inverted: %s > %s", a.Bounds.Lower, a.Bounds.Upper))
		return errs
	}
	if a.HasTarget {
		if err := a.Bounds.Validate(a.Target); err != nil {
			errs = append(errs, itemErr(pos, kind, "%v", err))
		}
	}
	return errs
}
