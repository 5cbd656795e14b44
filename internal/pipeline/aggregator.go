package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joescharf/prscore/internal/checks"
	"github.com/joescharf/prscore/internal/models"
)

// DefaultMaxParallelCheckers bounds how many checkers run at once.
const DefaultMaxParallelCheckers = 4

// EnabledChecks selects which check categories run. Absent keys are enabled.
type EnabledChecks map[string]bool

// On reports whether the category key is enabled.
func (e EnabledChecks) On(key models.Category) bool {
	v, ok := e[string(key)]
	return !ok || v
}

// stage pairs a checker with its enablement rule and tally classification.
type stage struct {
	checker  checks.Checker
	enabled  func(EnabledChecks) bool
	classify func(models.Issue) models.Category
}

// Aggregator runs the enabled checkers and merges their findings.
type Aggregator struct {
	stages      []stage
	maxParallel int
}

// NewAggregator builds an aggregator over the four checkers. Nil checkers are
// skipped. Merge order is always style, complexity, unsafe, AI.
func NewAggregator(style, complexity, unsafe, ai checks.Checker) *Aggregator {
	a := &Aggregator{maxParallel: DefaultMaxParallelCheckers}
	add := func(c checks.Checker, enabled func(EnabledChecks) bool, classify func(models.Issue) models.Category) {
		if c != nil {
			a.stages = append(a.stages, stage{checker: c, enabled: enabled, classify: classify})
		}
	}
	add(style,
		func(e EnabledChecks) bool { return e.On(models.CategoryStyle) },
		func(models.Issue) models.Category { return models.CategoryStyle })
	add(complexity,
		func(e EnabledChecks) bool { return e.On(models.CategoryComplexity) },
		func(models.Issue) models.Category { return models.CategoryComplexity })
	add(unsafe,
		func(e EnabledChecks) bool { return e.On(models.CategorySecurity) || e.On(models.CategoryPerformance) },
		ClassifyUnsafe)
	add(ai,
		func(e EnabledChecks) bool { return e.On(models.CategoryBestPractices) || e.On(models.CategoryDocumentation) },
		ClassifyAI)
	return a
}

// WithMaxParallel sets the checker concurrency limit. Values below 1 mean 1.
func (a *Aggregator) WithMaxParallel(n int) *Aggregator {
	if n < 1 {
		n = 1
	}
	a.maxParallel = n
	return a
}

// ClassifyUnsafe tallies unsafe-checker findings mentioning "security" as
// security and everything else as performance.
func ClassifyUnsafe(is models.Issue) models.Category {
	if strings.Contains(strings.ToLower(is.Message), "security") {
		return models.CategorySecurity
	}
	return models.CategoryPerformance
}

// ClassifyAI tallies AI suggestions mentioning "documentation" as
// documentation and everything else as best practices.
func ClassifyAI(is models.Issue) models.Category {
	if strings.Contains(strings.ToLower(is.Message), "documentation") {
		return models.CategoryDocumentation
	}
	return models.CategoryBestPractices
}

// Aggregate runs each enabled checker once over files and returns the merged
// per-file findings plus the category tally. Every input path is present in
// the result, in input order.
func (a *Aggregator) Aggregate(ctx context.Context, files []models.SourceFile, enabled EnabledChecks) (*models.PerFileIssues, models.Tally) {
	var active []stage
	for _, st := range a.stages {
		if st.enabled(enabled) {
			active = append(active, st)
		}
	}

	results := make([]*models.PerFileIssues, len(active))
	var g errgroup.Group
	g.SetLimit(a.maxParallel)
	for i, st := range active {
		g.Go(func() error {
			start := time.Now()
			results[i] = st.checker.Check(ctx, files)
			slog.Debug("checker finished",
				"checker", st.checker.Name(),
				"issues", results[i].Count(),
				"duration", time.Since(start))
			return nil
		})
	}
	_ = g.Wait()

	merged := models.NewPerFileIssues()
	for _, f := range files {
		merged.Ensure(f.Path)
	}
	tally := models.NewTally()
	for i, st := range active {
		r := results[i]
		for _, path := range r.Paths() {
			issues := r.Get(path)
			merged.Append(path, issues...)
			for _, is := range issues {
				tally.Inc(st.classify(is))
			}
		}
	}
	return merged, tally
}
