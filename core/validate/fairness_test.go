package validate

import (
	"testing"

	"github.com/longhornadam/QuizForge-sub000/core/quiz"
	"github.com/longhornadam/QuizForge-sub000/core/quizerr"
)

func hasCode(warnings []quizerr.FairnessWarning, code string) bool {
	for _, w := range warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

func TestFairnessBalancedQuiz(t *testing.T) {
	// Correct choices are mid-length and rotate positions: nothing to flag.
	q := &quiz.Quiz{Items: []quiz.Item{
		mc("Q1", 0, "aaaa", "bbbbbb", "cc"),
		mc("Q2", 1, "dddddd", "eeee", "ff"),
		mc("Q3", 2, "gggggg", "hh", "iiii"),
	}}
	if warnings := Fairness(q, Limits{}); len(warnings) != 0 {
		t.Errorf("balanced quiz flagged: %v", warnings)
	}
}

func TestFairnessLongestBias(t *testing.T) {
	// Longest choice correct everywhere, but lengths stay close so the
	// variance rule keeps quiet, and positions alternate.
	q := &quiz.Quiz{Items: []quiz.Item{
		mc("Q1", 0, "longer rabbit", "short hare", "short deer", "short goat"),
		mc("Q2", 1, "short hare", "longer rabbit", "short deer", "short goat"),
		mc("Q3", 0, "longer rabbit", "short hare", "short deer", "short goat"),
		mc("Q4", 1, "short hare", "longer rabbit", "short deer", "short goat"),
	}}
	warnings := Fairness(q, Limits{})
	if !hasCode(warnings, "longest-bias") {
		t.Errorf("longest-choice bias not flagged: %v", warnings)
	}
	if hasCode(warnings, "position-run") {
		t.Errorf("alternating positions flagged as a run: %v", warnings)
	}
}

func TestFairnessShortestBias(t *testing.T) {
	q := &quiz.Quiz{Items: []quiz.Item{
		mc("Q1", 0, "tiny", "much longer answer", "another long answer"),
		mc("Q2", 1, "much longer answer", "tiny", "another long answer"),
		mc("Q3", 2, "much longer answer", "another long answer", "tiny"),
	}}
	warnings := Fairness(q, Limits{})
	if !hasCode(warnings, "shortest-bias") {
		t.Errorf("shortest-choice bias not flagged: %v", warnings)
	}
}

func TestFairnessLengthVariance(t *testing.T) {
	q := &quiz.Quiz{Items: []quiz.Item{
		mc("Q1", 0, "a very long and detailed correct answer", "no", "nah"),
	}}
	warnings := Fairness(q, Limits{})
	if !hasCode(warnings, "length-variance") {
		t.Errorf("wide length variance not flagged: %v", warnings)
	}
}

func TestFairnessPositionRun(t *testing.T) {
	// Same correct position four times in a row.
	q := &quiz.Quiz{Items: []quiz.Item{
		mc("Q1", 0, "aaaa", "bbbbbb", "cc"),
		mc("Q2", 0, "dddd", "eeeeee", "ff"),
		mc("Q3", 0, "gggg", "hhhhhh", "ii"),
		mc("Q4", 0, "jjjj", "kkkkkk", "ll"),
	}}
	warnings := Fairness(q, Limits{})
	if !hasCode(warnings, "position-run") {
		t.Errorf("position run not flagged: %v", warnings)
	}
}

func TestFairnessIgnoresOtherKinds(t *testing.T) {
	q := &quiz.Quiz{Items: []quiz.Item{
		&quiz.EssayItem{ItemCore: quiz.Core{Prompt: "Discuss", Points: 20}},
		&quiz.BooleanItem{ItemCore: quiz.Core{Prompt: "T or F", Points: 5}, AnswerTrue: true},
	}}
	if warnings := Fairness(q, Limits{}); warnings != nil {
		t.Errorf("non-select quiz flagged: %v", warnings)
	}
}
