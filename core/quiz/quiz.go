// Package quiz defines the typed assessment model every pipeline stage
// operates on. A Quiz is an ordered list of items; order is authored
// meaning and no stage may reorder it.
package quiz

import "math"

// Quiz is one parsed assessment.
type Quiz struct {
	Title string
	// TotalPoints is the authored pool for point allocation; zero means
	// the configured default applies.
	TotalPoints float64
	// KeepPoints disables point reallocation when true.
	KeepPoints bool
	Items      []Item
	// Rationales maps 1-based item positions to explanation text shown in
	// the review outline, never in the deliverable.
	Rationales map[int]string
}

// Clone returns a deep copy of the quiz.
func (q *Quiz) Clone() *Quiz {
	c := &Quiz{
		Title:       q.Title,
		TotalPoints: q.TotalPoints,
		KeepPoints:  q.KeepPoints,
	}
	if q.Items != nil {
		c.Items = make([]Item, len(q.Items))
		for i, it := range q.Items {
			c.Items[i] = it.Clone()
		}
	}
	if q.Rationales != nil {
		c.Rationales = make(map[int]string, len(q.Rationales))
		for k, v := range q.Rationales {
			c.Rationales[k] = v
		}
	}
	return c
}

// Scorable returns the items that carry points, in quiz order.
func (q *Quiz) Scorable() []Item {
	var out []Item
	for _, it := range q.Items {
		if it.Kind().Scorable() {
			out = append(out, it)
		}
	}
	return out
}

// PointSum returns the current sum of points over scorable items, rounded
// to one decimal place to absorb float accumulation noise.
func (q *Quiz) PointSum() float64 {
	var sum float64
	for _, it := range q.Items {
		if it.Kind().Scorable() {
			sum += it.Core().Points
		}
	}
	return math.Round(sum*10) / 10
}
