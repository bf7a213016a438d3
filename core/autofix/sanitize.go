package autofix

import (
	"strings"

	"github.com/longhornadam/QuizForge-sub000/core/quiz"
)

// Typographic characters word processors sneak into authored text. The
// replacements are ASCII, so sanitizing twice is a no-op.
var sanitizer = strings.NewReplacer(
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"—", "-", // em dash
	"–", "-", // en dash
	"…", "...", // ellipsis
	" ", " ", // non-breaking space
)

// SanitizeText normalizes one string.
func SanitizeText(s string) string { return sanitizer.Replace(s) }

// Sanitize normalizes every authored text field of the quiz.
func Sanitize(q *quiz.Quiz) (*quiz.Quiz, []string) {
	out := q.Clone()
	changed := false

	clean := func(s *string) {
		if fixed := SanitizeText(*s); fixed != *s {
			*s = fixed
			changed = true
		}
	}

	clean(&out.Title)
	for _, it := range out.Items {
		clean(&it.Core().Prompt)
		switch v := it.(type) {
		case *quiz.SingleSelectItem:
			for i := range v.Choices {
				clean(&v.Choices[i].Text)
			}
		case *quiz.MultiSelectItem:
			for i := range v.Choices {
				clean(&v.Choices[i].Text)
			}
		case *quiz.FillBlankItem:
			for i := range v.Accept {
				clean(&v.Accept[i])
			}
		case *quiz.MatchPairsItem:
			for i := range v.Pairs {
				clean(&v.Pairs[i].Prompt)
				clean(&v.Pairs[i].Answer)
			}
		case *quiz.OrderedSequenceItem:
			clean(&v.Header)
			for i := range v.Entries {
				clean(&v.Entries[i].Text)
			}
		case *quiz.CategorizeItem:
			for i := range v.Categories {
				clean(&v.Categories[i].Name)
			}
			for i := range v.Members {
				clean(&v.Members[i].Text)
				clean(&v.Members[i].Category)
			}
			for i := range v.Distractors {
				clean(&v.Distractors[i].Text)
			}
		}
	}
	for k := range out.Rationales {
		if fixed := SanitizeText(out.Rationales[k]); fixed != out.Rationales[k] {
			out.Rationales[k] = fixed
			changed = true
		}
	}

	if !changed {
		return out, nil
	}
	return out, []string{"normalized typographic characters to ASCII"}
}
