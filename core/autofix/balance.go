package autofix

import (
	"fmt"

	"github.com/longhornadam/QuizForge-sub000/core/quiz"
)

// Balance spreads correct answers so their placement carries no signal:
// single-select correct positions move to the least-used slots, boolean
// answers drift toward an even true/false split, and multi-select correct
// choices leave the contiguous prefix authors tend to produce. Each fixer
// first checks whether its distribution already passes and does nothing if
// so, which makes the whole stage idempotent. Item order in the quiz is
// never changed; only choice lists move.
func Balance(q *quiz.Quiz, opts Options) (*quiz.Quiz, []string) {
	if opts.Source == nil {
		return q.Clone(), nil
	}
	maxRun := opts.MaxPositionRun
	if maxRun <= 0 {
		maxRun = 2
	}

	out := q.Clone()
	var log []string

	if n := balanceSingles(out, opts, maxRun); n > 0 {
		log = append(log, fmt.Sprintf("repositioned correct choices in %d single-select items", n))
	}
	if n := balanceBooleans(out, opts); n > 0 {
		log = append(log, fmt.Sprintf("flipped %d boolean answers toward an even split", n))
	}
	if n := balanceMultis(out, opts); n > 0 {
		log = append(log, fmt.Sprintf("reshuffled choices in %d multi-select items", n))
	}

	return out, log
}

func correctIndex(choices []quiz.Choice) int {
	for i, c := range choices {
		if c.Correct {
			return i
		}
	}
	return -1
}

// balanceSingles groups single-select items by choice count and, per
// group, spreads correct positions across the least-used slots, then
// breaks streaks longer than maxRun by swapping whole choice lists.
func balanceSingles(q *quiz.Quiz, opts Options, maxRun int) int {
	groups := map[int][]*quiz.SingleSelectItem{}
	var order []*quiz.SingleSelectItem
	for _, it := range q.Items {
		if ss, ok := it.(*quiz.SingleSelectItem); ok && len(ss.Choices) > 0 {
			groups[len(ss.Choices)] = append(groups[len(ss.Choices)], ss)
			order = append(order, ss)
		}
	}

	changed := 0
	for width, group := range groups {
		if singlesBalanced(group, width, maxRun) {
			continue
		}
		counts := make([]int, width)
		for _, ss := range group {
			opts.Source.Shuffle(len(ss.Choices), func(i, j int) {
				ss.Choices[i], ss.Choices[j] = ss.Choices[j], ss.Choices[i]
			})
			cur := correctIndex(ss.Choices)
			target := leastUsedSlot(counts, opts)
			if cur != target {
				ss.Choices[cur], ss.Choices[target] = ss.Choices[target], ss.Choices[cur]
			}
			counts[target]++
			changed++
		}
		breakStreaks(group, maxRun)
	}
	// Streaks can also span groups; breaking them needs equal widths, so
	// cross-group runs are left for the fairness checker to report.
	_ = order
	return changed
}

func singlesBalanced(group []*quiz.SingleSelectItem, width, maxRun int) bool {
	counts := make([]int, width)
	positions := make([]int, 0, len(group))
	for _, ss := range group {
		p := correctIndex(ss.Choices)
		counts[p]++
		positions = append(positions, p)
	}
	lo, hi := counts[0], counts[0]
	for _, c := range counts[1:] {
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	if hi-lo > 1 {
		return false
	}
	run := 1
	for i := 1; i < len(positions); i++ {
		if positions[i] == positions[i-1] {
			run++
			if run > maxRun {
				return false
			}
		} else {
			run = 1
		}
	}
	return true
}

func leastUsedSlot(counts []int, opts Options) int {
	lo := counts[0]
	for _, c := range counts[1:] {
		if c < lo {
			lo = c
		}
	}
	var candidates []int
	for i, c := range counts {
		if c == lo {
			candidates = append(candidates, i)
		}
	}
	return candidates[opts.Source.IntN(len(candidates))]
}

// breakStreaks swaps choice lists between items until no correct-position
// run exceeds maxRun. Swapping whole lists keeps every item's own prompt
// with a valid choice set.
func breakStreaks(group []*quiz.SingleSelectItem, maxRun int) {
	positions := make([]int, len(group))
	for i, ss := range group {
		positions[i] = correctIndex(ss.Choices)
	}
	for pass := 0; pass < len(group); pass++ {
		fixed := true
		for i := maxRun; i < len(positions); i++ {
			run := 1
			for j := i; j > 0 && positions[j-1] == positions[i]; j-- {
				run++
			}
			if run <= maxRun {
				continue
			}
			swap := -1
			for j := 0; j < i; j++ {
				if positions[j] != positions[i] && (j == 0 || positions[j-1] != positions[i]) && (j == len(positions)-1 || j+1 > i || positions[j+1] != positions[i]) {
					swap = j
					break
				}
			}
			if swap < 0 {
				return
			}
			group[i].Choices, group[swap].Choices = group[swap].Choices, group[i].Choices
			positions[i], positions[swap] = positions[swap], positions[i]
			fixed = false
		}
		if fixed {
			return
		}
	}
}

// balanceBooleans flips answers until true and false counts differ by at
// most one. Flip candidates are drawn from the majority side at random.
func balanceBooleans(q *quiz.Quiz, opts Options) int {
	var items []*quiz.BooleanItem
	trues := 0
	for _, it := range q.Items {
		if b, ok := it.(*quiz.BooleanItem); ok {
			items = append(items, b)
			if b.AnswerTrue {
				trues++
			}
		}
	}
	falses := len(items) - trues
	diff := trues - falses
	if diff < 0 {
		diff = -diff
	}
	if diff <= 1 {
		return 0
	}

	flips := diff / 2
	majority := trues > falses
	var pool []*quiz.BooleanItem
	for _, b := range items {
		if b.AnswerTrue == majority {
			pool = append(pool, b)
		}
	}
	opts.Source.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	for _, b := range pool[:flips] {
		b.AnswerTrue = !b.AnswerTrue
	}
	return flips
}

// balanceMultis reshuffles a multi-select item's choices when its correct
// choices sit in a contiguous prefix, the usual authoring pattern. The new
// arrangement is guaranteed not to be a prefix again, so a second pass
// leaves it alone.
func balanceMultis(q *quiz.Quiz, opts Options) int {
	changed := 0
	for _, it := range q.Items {
		ms, ok := it.(*quiz.MultiSelectItem)
		if !ok || !correctPrefix(ms.Choices) {
			continue
		}
		var correct, incorrect []quiz.Choice
		for _, c := range ms.Choices {
			if c.Correct {
				correct = append(correct, c)
			} else {
				incorrect = append(incorrect, c)
			}
		}
		opts.Source.Shuffle(len(correct), func(i, j int) { correct[i], correct[j] = correct[j], correct[i] })
		opts.Source.Shuffle(len(incorrect), func(i, j int) { incorrect[i], incorrect[j] = incorrect[j], incorrect[i] })

		total := len(ms.Choices)
		arranged := make([]quiz.Choice, 0, total)
		for {
			arranged = arranged[:0]
			positions := opts.Source.Perm(total)[:len(correct)]
			used := map[int]bool{}
			for _, p := range positions {
				used[p] = true
			}
			arranged = arranged[:total]
			ci, ii := 0, 0
			for i := 0; i < total; i++ {
				if used[i] {
					arranged[i] = correct[ci]
					ci++
				} else {
					arranged[i] = incorrect[ii]
					ii++
				}
			}
			if !correctPrefix(arranged) {
				break
			}
		}
		copy(ms.Choices, arranged)
		changed++
	}
	return changed
}

func correctPrefix(choices []quiz.Choice) bool {
	correct := 0
	for _, c := range choices {
		if c.Correct {
			correct++
		}
	}
	if correct == 0 || correct == len(choices) {
		return false
	}
	for i := 0; i < correct; i++ {
		if !choices[i].Correct {
			return false
		}
	}
	return true
}
