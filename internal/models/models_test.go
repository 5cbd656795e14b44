package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerFileIssues_PreservesDiscoveryOrder(t *testing.T) {
	p := NewPerFileIssues()
	p.Append("b.py", NewIssue(CategoryStyle, "E501: line too long", 3))
	p.Ensure("a.py")
	p.Append("b.py", NewIssue(CategoryBug, "Hardcoded token", 1))
	p.Ensure("b.py")

	assert.Equal(t, []string{"b.py", "a.py"}, p.Paths())
	assert.Len(t, p.Get("b.py"), 2)
	assert.Empty(t, p.Get("a.py"))
	assert.Equal(t, 2, p.Count())
}

func TestPerFileIssues_AbsentPathReadsEmpty(t *testing.T) {
	p := NewPerFileIssues()
	assert.Nil(t, p.Get("missing.py"))
	assert.False(t, p.Has("missing.py"))

	var nilMap *PerFileIssues
	assert.Nil(t, nilMap.Get("x"))
	assert.Equal(t, 0, nilMap.Len())
}

func TestNewIssue_ClampsLine(t *testing.T) {
	assert.Equal(t, 1, NewIssue(CategoryBug, "x", 0).Line)
	assert.Equal(t, 1, NewIssue(CategoryBug, "x", -4).Line)
	assert.Equal(t, 7, NewIssue(CategoryBug, "x", 7).Line)
}

func TestNewTally_HasBudgetCategories(t *testing.T) {
	tally := NewTally()
	assert.Len(t, tally, 6)
	for _, c := range BudgetCategories {
		v, ok := tally[c]
		assert.True(t, ok, "missing %s", c)
		assert.Zero(t, v)
	}
}

func TestTally_Categories(t *testing.T) {
	tally := NewTally()
	tally["zeta"] = 1
	tally["alpha"] = 2

	cats := tally.Categories()
	assert.Equal(t, BudgetCategories, cats[:6])
	assert.Equal(t, []Category{"alpha", "zeta"}, cats[6:])
	assert.Equal(t, 3, tally.Total())
}

func TestJobStatus_IsTerminal(t *testing.T) {
	assert.False(t, JobStatusPending.IsTerminal())
	assert.True(t, JobStatusCompleted.IsTerminal())
	assert.True(t, JobStatusFailed.IsTerminal())
}
