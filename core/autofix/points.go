package autofix

import (
	"fmt"
	"math"

	"github.com/longhornadam/QuizForge-sub000/core/quiz"
)

func round1(v float64) float64 { return math.Round(v*10) / 10 }

// AllocatePoints distributes the quiz's point pool across items the author
// left unscored. Explicitly scored items are never touched. Extended
// response items weigh Options.HeavyWeight units each; everything else
// weighs one. Allocation is to one decimal place; the first unscored item
// absorbs the rounding remainder so the quiz total lands exactly.
func AllocatePoints(q *quiz.Quiz, opts Options) (*quiz.Quiz, []string) {
	out := q.Clone()
	if out.KeepPoints {
		return out, nil
	}

	total := opts.TotalPoints
	if out.TotalPoints > 0 {
		total = out.TotalPoints
	}
	heavyWeight := opts.HeavyWeight
	if heavyWeight <= 0 {
		heavyWeight = 1
	}

	var unscored []quiz.Item
	var explicit float64
	for _, it := range out.Items {
		if !it.Kind().Scorable() {
			continue
		}
		if it.Core().PointsSet {
			explicit += it.Core().Points
		} else {
			unscored = append(unscored, it)
		}
	}
	if len(unscored) == 0 {
		return out, nil
	}

	var log []string
	remaining := total - explicit
	if remaining <= 0 {
		log = append(log, fmt.Sprintf("explicit points already total %.1f of %.1f; distributing the full pool across unscored items anyway", explicit, total))
		remaining = total
	}

	var units float64
	for _, it := range unscored {
		if it.Kind().Extended() {
			units += heavyWeight
		} else {
			units++
		}
	}
	base := remaining / units
	for _, it := range unscored {
		pts := base
		if it.Kind().Extended() {
			pts = base * heavyWeight
		}
		it.Core().Points = round1(pts)
	}

	// Absorb rounding drift so scorable points sum to the target exactly.
	if diff := round1(total - (explicit + sumPoints(unscored))); diff != 0 {
		first := unscored[0].Core()
		first.Points = round1(first.Points + diff)
	}

	log = append(log, fmt.Sprintf("allocated %.1f points across %d unscored items", remaining, len(unscored)))
	return out, log
}

func sumPoints(items []quiz.Item) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Core().Points
	}
	return round1(sum)
}
