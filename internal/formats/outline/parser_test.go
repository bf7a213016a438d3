package outline

import (
	"errors"
	"strings"
	"testing"

	"github.com/longhornadam/QuizForge-sub000/core/quiz"
	"github.com/longhornadam/QuizForge-sub000/core/quizerr"
	"github.com/longhornadam/QuizForge-sub000/core/tolerance"
	"github.com/longhornadam/QuizForge-sub000/internal/detrand"
)

func testOptions() Options {
	return Options{
		Filename:     "unit1.txt",
		ZeroFallback: tolerance.MustDec("0.1"),
		Idents:       detrand.NewIdents(detrand.New([]byte("outline test"))),
	}
}

func mustParse(t *testing.T, text string) *quiz.Quiz {
	t.Helper()
	q, err := Parse([]byte(text), testOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return q
}

func TestParseHeader(t *testing.T) {
	q := mustParse(t, `Title: Chapter 3 Review
TotalPoints: 60
KeepPoints: yes
---
Type: ESSAY
Prompt: Discuss.
`)
	if q.Title != "Chapter 3 Review" {
		t.Errorf("Title = %q", q.Title)
	}
	if q.TotalPoints != 60 {
		t.Errorf("TotalPoints = %v", q.TotalPoints)
	}
	if !q.KeepPoints {
		t.Error("KeepPoints not set")
	}
}

func TestParseDefaultTitle(t *testing.T) {
	q := mustParse(t, "---\nType: ESSAY\nPrompt: Discuss.\n")
	if q.Title != "unit1" {
		t.Errorf("Title = %q, want filename stem", q.Title)
	}

	q2, err := Parse([]byte("---\nType: ESSAY\nPrompt: Discuss.\n"), Options{
		ZeroFallback: tolerance.MustDec("0.1"),
		Idents:       detrand.NewIdents(detrand.New([]byte("x"))),
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if q2.Title != "Untitled Quiz" {
		t.Errorf("Title = %q, want \"Untitled Quiz\"", q2.Title)
	}
}

func TestParseChoiceItems(t *testing.T) {
	q := mustParse(t, `---
Type: MC
Points: 4
Prompt: Which planet is largest?
Choices:
- [ ] Mars
- [x] Jupiter
- [ ] Venus
---
Type: MA
Prompt: Which are primes?
Choices:
- [x] 2
- [X] 3
- [ ] 4
`)
	if len(q.Items) != 2 {
		t.Fatalf("parsed %d items, want 2", len(q.Items))
	}

	mc := q.Items[0].(*quiz.SingleSelectItem)
	if !mc.ItemCore.PointsSet || mc.ItemCore.Points != 4 {
		t.Errorf("points = %v set=%v", mc.ItemCore.Points, mc.ItemCore.PointsSet)
	}
	if len(mc.Choices) != 3 || !mc.Choices[1].Correct || mc.Choices[0].Correct {
		t.Errorf("choices = %+v", mc.Choices)
	}

	ma := q.Items[1].(*quiz.MultiSelectItem)
	if ma.ItemCore.PointsSet {
		t.Error("unset points marked as set")
	}
	if ma.ItemCore.Points != 10 {
		t.Errorf("default points = %v, want 10", ma.ItemCore.Points)
	}
	if !ma.Choices[0].Correct || !ma.Choices[1].Correct || ma.Choices[2].Correct {
		t.Errorf("choices = %+v", ma.Choices)
	}
}

func TestParseBoolean(t *testing.T) {
	q := mustParse(t, "---\nType: TF\nPrompt: The sky is green.\nAnswer: false\n")
	if q.Items[0].(*quiz.BooleanItem).AnswerTrue {
		t.Error("Answer: false parsed as true")
	}

	_, err := Parse([]byte("---\nType: TF\nPrompt: p\nAnswer: maybe\n"), testOptions())
	if !errors.Is(err, quizerr.ErrSpec) {
		t.Errorf("invalid TF answer: got %v", err)
	}

	_, err = Parse([]byte("---\nType: TF\nPrompt: p\n"), testOptions())
	if !errors.Is(err, quizerr.ErrSpec) {
		t.Errorf("missing TF answer: got %v", err)
	}
}

func TestParseFillBlankSubstitution(t *testing.T) {
	q := mustParse(t, `---
Type: FITB
Prompt: Water boils at [blank] degrees Celsius.
Accept:
- 100
- one hundred
`)
	fb := q.Items[0].(*quiz.FillBlankItem)
	if fb.BlankToken == "" {
		t.Fatal("no blank token assigned")
	}
	if !strings.Contains(fb.ItemCore.Prompt, "["+fb.BlankToken+"]") {
		t.Errorf("token not substituted: %q", fb.ItemCore.Prompt)
	}
	if strings.Contains(fb.ItemCore.Prompt, "[blank]") {
		t.Errorf("placeholder survived: %q", fb.ItemCore.Prompt)
	}
	if len(fb.Accept) != 2 || fb.Accept[0] != "100" {
		t.Errorf("accept = %v", fb.Accept)
	}

	// Without a placeholder the blank is appended.
	q = mustParse(t, "---\nType: FITB\nPrompt: Name the capital of France.\nAccept:\n- Paris\n")
	fb = q.Items[0].(*quiz.FillBlankItem)
	if !strings.HasSuffix(fb.ItemCore.Prompt, "[ ["+fb.BlankToken+"] ]") {
		t.Errorf("blank not appended: %q", fb.ItemCore.Prompt)
	}
}

func TestParseMatching(t *testing.T) {
	q := mustParse(t, `---
Type: MATCHING
Prompt: Match the capitals.
Pairs:
- France => Paris
- Japan => Tokyo
`)
	m := q.Items[0].(*quiz.MatchPairsItem)
	if len(m.Pairs) != 2 || m.Pairs[0].Prompt != "France" || m.Pairs[0].Answer != "Paris" {
		t.Errorf("pairs = %+v", m.Pairs)
	}
}

func TestParseOrdering(t *testing.T) {
	q := mustParse(t, `---
Type: ORDERING
Header: Put the steps in order
Items:
1. Crack the eggs
2. Whisk
3. Fry
`)
	o := q.Items[0].(*quiz.OrderedSequenceItem)
	if o.Header != "Put the steps in order" {
		t.Errorf("header = %q", o.Header)
	}
	if o.ItemCore.Prompt != o.Header {
		t.Errorf("prompt should fall back to header, got %q", o.ItemCore.Prompt)
	}
	if len(o.Entries) != 3 || o.Entries[1].Text != "Whisk" {
		t.Errorf("entries = %+v", o.Entries)
	}
	for _, e := range o.Entries {
		if e.Ident == "" {
			t.Error("entry missing ident")
		}
	}
}

func TestParseCategorization(t *testing.T) {
	q := mustParse(t, `---
Type: CATEGORIZATION
Prompt: Sort the words.
Categories:
- Noun
- Verb
Items:
- run => Verb
- dog => Noun
- run => Verb
Distractors:
- purple
`)
	c := q.Items[0].(*quiz.CategorizeItem)
	if len(c.Categories) != 2 || len(c.Members) != 3 || len(c.Distractors) != 1 {
		t.Fatalf("shape = %d categories, %d members, %d distractors",
			len(c.Categories), len(c.Members), len(c.Distractors))
	}
	// Duplicate member text shares one ident.
	if c.Members[0].Ident != c.Members[2].Ident {
		t.Error("duplicate member text got distinct idents")
	}
	if c.Members[0].Ident == c.Members[1].Ident {
		t.Error("distinct member texts share an ident")
	}
}

func TestParseNumericModifiers(t *testing.T) {
	q := mustParse(t, `---
Type: NUMERICAL
Prompt: What is 10% of 1000?
Answer: 100
Tolerance: 5%
---
Type: NUMERICAL
Prompt: Estimate the mass.
Range: 5 to 10
---
Type: NUMERICAL
Prompt: State pi.
Answer: 3.14159
Precision: 3 sig figs
`)
	first := q.Items[0].(*quiz.NumericResponseItem).Answer
	if first.Spec.Mode != tolerance.PercentMargin {
		t.Errorf("mode = %v", first.Spec.Mode)
	}
	if first.Bounds.Lower.Cmp(tolerance.MustDec("95")) != 0 || first.Bounds.Upper.Cmp(tolerance.MustDec("105")) != 0 {
		t.Errorf("bounds = [%s, %s]", first.Bounds.Lower, first.Bounds.Upper)
	}

	second := q.Items[1].(*quiz.NumericResponseItem).Answer
	if second.HasTarget || second.Spec.Mode != tolerance.Range {
		t.Errorf("range answer = %+v", second)
	}

	third := q.Items[2].(*quiz.NumericResponseItem).Answer
	if third.Spec.Mode != tolerance.SigFigs || third.Spec.Digits != 3 {
		t.Errorf("precision spec = %+v", third.Spec)
	}
}

func TestParseMixedModifiersRejected(t *testing.T) {
	_, err := Parse([]byte(`---
Type: NUMERICAL
Prompt: p
Answer: 5
Tolerance: 5%
Precision: 2 dp
`), testOptions())
	if !errors.Is(err, quizerr.ErrSpec) {
		t.Fatalf("got %v, want spec error", err)
	}
	if !strings.Contains(err.Error(), "at most one") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestParsePassageBlocks(t *testing.T) {
	q := mustParse(t, `---
Type: STIMULUS
Prompt: Read the excerpt below.
---
Type: TF
Prompt: The narrator is unreliable.
Answer: true
---
Type: STIMULUS_END
---
Type: TF
Prompt: Standalone question.
Answer: false
`)
	if len(q.Items) != 3 {
		t.Fatalf("parsed %d items, want 3", len(q.Items))
	}
	passage := q.Items[0].(*quiz.PassageBlockItem)
	if passage.ItemCore.ForcedIdent == "" {
		t.Fatal("passage block has no ident")
	}
	if got := q.Items[1].Core().PassageRef; got != passage.ItemCore.ForcedIdent {
		t.Errorf("linked item ref = %q, want %q", got, passage.ItemCore.ForcedIdent)
	}
	if q.Items[2].Core().PassageRef != "" {
		t.Error("item after passage end still carries a ref")
	}
}

func TestParseUnclosedPassageLocator(t *testing.T) {
	text := `Title: T
---
Type: TF
Prompt: p
Answer: true
---
Type: STIMULUS
Prompt: Read this.
---
Type: TF
Prompt: q
Answer: false
`
	_, err := Parse([]byte(text), testOptions())
	var spec *quizerr.SpecError
	if !errors.As(err, &spec) {
		t.Fatalf("got %v, want SpecError", err)
	}
	if !strings.Contains(spec.Cause, "unclosed passage") {
		t.Errorf("cause = %q", spec.Cause)
	}
	// The locator points at the opening STIMULUS block, not the last line.
	if spec.Line != 7 || spec.Block != 2 {
		t.Errorf("locator = line %d block %d, want line 7 block 2", spec.Line, spec.Block)
	}
}

func TestParsePassageEndAliases(t *testing.T) {
	for _, tag := range []string{"STIMULUS_END", "ENDSTIMULUS", "END_STIMULUS", "UNLINK", "DETACH"} {
		text := "---\nType: STIMULUS\nPrompt: p\n---\nType: TF\nPrompt: q\nAnswer: true\n---\nType: " + tag + "\n"
		if _, err := Parse([]byte(text), testOptions()); err != nil {
			t.Errorf("alias %s rejected: %v", tag, err)
		}
	}

	_, err := Parse([]byte("---\nType: DETACH\n---\nType: ESSAY\nPrompt: p\n"), testOptions())
	if err == nil || !strings.Contains(err.Error(), "without an open passage") {
		t.Errorf("dangling passage end: got %v", err)
	}
}

func TestParseFieldErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"invalid points", "---\nType: MC\nPoints: lots\nPrompt: p\n", "invalid Points"},
		{"unsupported type", "---\nType: HAIKU\nPrompt: p\n", "unsupported Type"},
		{"bad choice line", "---\nType: MC\nPrompt: p\nChoices:\n* Jupiter\n", "invalid choice line"},
		{"items outside ordering", "---\nType: MC\nPrompt: p\nItems:\n- a\n", "only valid for ORDERING"},
		{"stray line", "---\nType: MC\nwhere am I\n", "outside any field"},
		{"answer on MC", "---\nType: MC\nPrompt: p\nAnswer: a\n", "not valid for type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.text), testOptions())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %v, want message containing %q", err, tt.want)
			}
		})
	}
}

func TestParseNoItems(t *testing.T) {
	_, err := Parse([]byte("Title: Empty\n"), testOptions())
	if !errors.Is(err, quizerr.ErrSpec) {
		t.Errorf("empty input: got %v", err)
	}
}

func TestParseRationales(t *testing.T) {
	q := mustParse(t, `---
Type: TF
Prompt: First.
Answer: true
---
Type: TF
Prompt: Second.
Answer: false
===RATIONALES===
first explanation
---
Q2: second explanation
`)
	// Entries without a Q-number align to their sequence position.
	if q.Rationales[1] != "first explanation" {
		t.Errorf("Rationales[1] = %q", q.Rationales[1])
	}
	if q.Rationales[2] != "second explanation" {
		t.Errorf("Rationales[2] = %q", q.Rationales[2])
	}
}

func TestParseMultilinePrompt(t *testing.T) {
	q := mustParse(t, `---
Type: ESSAY
Prompt: Compare the two passages.

Cite at least two examples.
`)
	prompt := q.Items[0].Core().Prompt
	if !strings.Contains(prompt, "Compare the two passages.") || !strings.Contains(prompt, "Cite at least two examples.") {
		t.Errorf("prompt = %q", prompt)
	}
	if !strings.Contains(prompt, "\n\n") {
		t.Errorf("blank line inside prompt lost: %q", prompt)
	}
}
