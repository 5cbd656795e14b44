package models

import "sort"

// Tally counts issues per category for one analysis run.
type Tally map[Category]int

// NewTally returns a tally with every budget category present at zero.
func NewTally() Tally {
	t := make(Tally, len(BudgetCategories))
	for _, c := range BudgetCategories {
		t[c] = 0
	}
	return t
}

// Inc adds one to category c.
func (t Tally) Inc(c Category) {
	t[c]++
}

// Total returns the sum of all counts.
func (t Tally) Total() int {
	n := 0
	for _, v := range t {
		n += v
	}
	return n
}

// Categories returns the tally keys: budget categories first in their fixed
// order, then any others sorted by name.
func (t Tally) Categories() []Category {
	out := make([]Category, 0, len(t))
	for _, c := range BudgetCategories {
		if _, ok := t[c]; ok {
			out = append(out, c)
		}
	}
	var extra []Category
	for c := range t {
		if !c.IsBudget() {
			extra = append(extra, c)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

// CategoryScores holds a 0-100 score per category.
type CategoryScores map[Category]int

// Score is the overall weighted score with its per-category breakdown.
type Score struct {
	Overall    int            `json:"overall"`
	Categories CategoryScores `json:"categories"`
}
