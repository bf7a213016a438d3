package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/longhornadam/QuizForge-sub000/core/quizerr"
	"github.com/longhornadam/QuizForge-sub000/internal/config"
)

const outlineSrc = `Title: Pipeline Demo
TotalPoints: 30

---
Type: MC
Prompt: Which planet is red?
Choices:
- [ ] Venus
- [x] Mars
- [ ] Neptune

---
Type: TF
Prompt: The sky is green.
Answer: false

---
Type: ESSAY
Prompt: Describe the water cycle.
`

const jsonSrc = `{
  "version": "1",
  "title": "JSON Demo",
  "items": [
    {
      "type": "MC",
      "prompt": "Which planet is red?",
      "choices": [
        {"text": "Venus"},
        {"text": "Mars", "correct": true},
        {"text": "Neptune"}
      ]
    },
    {"type": "TF", "prompt": "The sky is green.", "answer": false}
  ]
}`

func testOptions() Options {
	return Options{Filename: "demo.txt", Config: config.Default()}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatAuto},
		{"auto", FormatAuto},
		{"outline", FormatOutline},
		{"json", FormatJSON},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v", tt.in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("unknown format was accepted")
	}
}

func TestRunOutline(t *testing.T) {
	res, err := Run(context.Background(), []byte(outlineSrc), testOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Zip) == 0 {
		t.Error("no zip produced")
	}
	if res.Token == "" {
		t.Error("no token produced")
	}
	if got := res.Quiz.PointSum(); got != 30 {
		t.Errorf("PointSum = %v, want the authored pool of 30", got)
	}
	if !strings.Contains(res.Outline, "Pipeline Demo - Answer Key") {
		t.Error("answer key missing from the result")
	}
	if !strings.Contains(res.Log, "QuizForge Processing Log") {
		t.Error("processing log missing from the result")
	}
	if len(res.Fixes) == 0 {
		t.Error("point allocation should be reported as a fix")
	}
}

func TestRunJSONSniffing(t *testing.T) {
	res, err := Run(context.Background(), []byte(jsonSrc), testOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Quiz.Title != "JSON Demo" {
		t.Errorf("title = %q; auto format must detect JSON", res.Quiz.Title)
	}
}

func TestRunDeterministic(t *testing.T) {
	a, err := Run(context.Background(), []byte(outlineSrc), testOptions())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := Run(context.Background(), []byte(outlineSrc), testOptions())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if a.Token != b.Token {
		t.Errorf("tokens differ across identical runs: %s vs %s", a.Token, b.Token)
	}
	if !bytes.Equal(a.Zip, b.Zip) {
		t.Error("zips differ across identical runs")
	}
}

func TestRunFreshSeed(t *testing.T) {
	stable, err := Run(context.Background(), []byte(outlineSrc), testOptions())
	if err != nil {
		t.Fatalf("stable run: %v", err)
	}
	opts := testOptions()
	opts.FreshSeed = true
	fresh, err := Run(context.Background(), []byte(outlineSrc), opts)
	if err != nil {
		t.Fatalf("fresh run: %v", err)
	}
	if stable.Token == fresh.Token {
		t.Error("fresh seed reproduced the input-derived token")
	}
}

func TestRunTotalPointsOverride(t *testing.T) {
	opts := testOptions()
	opts.TotalPoints = 50
	res, err := Run(context.Background(), []byte(outlineSrc), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := res.Quiz.PointSum(); got != 50 {
		t.Errorf("PointSum = %v, want the overridden pool of 50", got)
	}
}

func TestRunKeepPointsOverride(t *testing.T) {
	opts := testOptions()
	opts.KeepPoints = true
	res, err := Run(context.Background(), []byte(outlineSrc), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Each block keeps its default 10 points instead of splitting the pool.
	if got := res.Quiz.PointSum(); got != 30 {
		t.Errorf("PointSum = %v", got)
	}
	for _, it := range res.Quiz.Scorable() {
		if it.Core().Points != 10 {
			t.Errorf("item points = %v, want the untouched 10", it.Core().Points)
		}
	}
}

func TestRunSpecError(t *testing.T) {
	src := strings.Replace(outlineSrc, "Type: TF", "Type: TF\nPoints: lots", 1)
	_, err := Run(context.Background(), []byte(src), testOptions())
	if !errors.Is(err, quizerr.ErrSpec) {
		t.Errorf("err = %v, want a spec error", err)
	}
}

func TestRunStructuralError(t *testing.T) {
	src := `---
Type: MC
Prompt: Lonely.
Choices:
- [x] only option
`
	_, err := Run(context.Background(), []byte(src), testOptions())
	if !errors.Is(err, quizerr.ErrStructural) {
		t.Errorf("err = %v, want a structural error", err)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, []byte(outlineSrc), testOptions()); err == nil {
		t.Error("cancelled context did not abort the run")
	}
}

func TestCheckReportsWarnings(t *testing.T) {
	// Three single-select items with the correct answer always first: a
	// position run autofix would normally break up.
	src := `---
Type: MC
Prompt: One?
Choices:
- [x] aye
- [ ] bee
- [ ] cee

---
Type: MC
Prompt: Two?
Choices:
- [x] dee
- [ ] eff
- [ ] gee

---
Type: MC
Prompt: Three?
Choices:
- [x] aitch
- [ ] kay
- [ ] ell
`
	q, warnings, err := Check(context.Background(), []byte(src), testOptions())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if q == nil || len(q.Scorable()) != 3 {
		t.Fatal("Check did not return the parsed quiz")
	}
	found := false
	for _, w := range warnings {
		if w.Code == "position-run" {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want a position-run finding", warnings)
	}
}
