package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joescharf/prscore/internal/models"
	"github.com/joescharf/prscore/internal/store"
)

// DefaultMaxConcurrent bounds how many analyses run at once.
const DefaultMaxConcurrent = 4

// Analyzer produces a report for a request.
type Analyzer interface {
	Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.Report, error)
}

// Runner executes analysis jobs in the background and records their outcome.
type Runner struct {
	store    store.Store
	analyzer Analyzer
	sem      chan struct{}
	wg       sync.WaitGroup
}

// NewRunner creates a runner that allows at most maxConcurrent analyses in flight.
func NewRunner(s store.Store, a Analyzer, maxConcurrent int) *Runner {
	if maxConcurrent < 1 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Runner{store: s, analyzer: a, sem: make(chan struct{}, maxConcurrent)}
}

// Submit records a pending job and starts the analysis without waiting for
// it. The analysis outlives ctx.
func (r *Runner) Submit(ctx context.Context, req models.AnalyzeRequest) (*models.Job, error) {
	job := &models.Job{Request: req}
	if err := r.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("submit job: %w", err)
	}

	r.wg.Add(1)
	go r.run(context.WithoutCancel(ctx), job.ID, req)

	slog.Info("job submitted", "job_id", job.ID)
	return job, nil
}

// Wait blocks until every submitted job has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context, id string, req models.AnalyzeRequest) {
	defer r.wg.Done()

	r.sem <- struct{}{}
	defer func() { <-r.sem }()

	start := time.Now()
	report, err := r.analyze(ctx, req)
	if err != nil {
		slog.Error("job failed", "job_id", id, "error", err, "duration", time.Since(start))
		if ferr := r.store.FailJob(ctx, id, err.Error()); ferr != nil {
			slog.Error("recording job failure", "job_id", id, "error", ferr)
		}
		return
	}

	if cerr := r.store.CompleteJob(ctx, id, report); cerr != nil {
		slog.Error("recording job result", "job_id", id, "error", cerr)
		return
	}
	slog.Info("job completed", "job_id", id, "score", report.Score.Overall, "duration", time.Since(start))
}

// analyze converts a panic in the pipeline into an error.
func (r *Runner) analyze(ctx context.Context, req models.AnalyzeRequest) (report *models.Report, err error) {
	defer func() {
		if p := recover(); p != nil {
			report, err = nil, fmt.Errorf("panic: %v", p)
		}
	}()
	return r.analyzer.Analyze(ctx, req)
}
