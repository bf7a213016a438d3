// Package autofix applies the automatic repairs that run between
// structural validation and artifact generation: text sanitation, point
// allocation, and answer balancing. Every fixer is copy-on-write and the
// whole sequence is idempotent; running it twice yields a deeply equal
// quiz.
package autofix

import (
	"github.com/longhornadam/QuizForge-sub000/core/quiz"
	"github.com/longhornadam/QuizForge-sub000/internal/detrand"
)

// Options tunes the fixers.
type Options struct {
	// TotalPoints is the pool shared by items without explicit points.
	TotalPoints float64
	// HeavyWeight is the allocation multiplier for extended-response items.
	HeavyWeight float64
	// MaxPositionRun is the longest correct-position streak the balancer
	// leaves in place.
	MaxPositionRun int
	// Source drives every balancing decision.
	Source *detrand.Source
}

// DefaultOptions returns the stock tuning with the given source.
func DefaultOptions(src *detrand.Source) Options {
	return Options{TotalPoints: 100, HeavyWeight: 2.5, MaxPositionRun: 2, Source: src}
}

// Apply runs the full fixer sequence on a copy of q and returns the fixed
// quiz along with a human-readable log of what changed. Item order is
// preserved throughout.
func Apply(q *quiz.Quiz, opts Options) (*quiz.Quiz, []string) {
	var log []string

	fixed, msgs := Sanitize(q)
	log = append(log, msgs...)

	fixed, msgs = AllocatePoints(fixed, opts)
	log = append(log, msgs...)

	fixed, msgs = Balance(fixed, opts)
	log = append(log, msgs...)

	return fixed, log
}
