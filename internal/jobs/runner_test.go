package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/prscore/internal/models"
	"github.com/joescharf/prscore/internal/store"
)

type analyzerFunc func(ctx context.Context, req models.AnalyzeRequest) (*models.Report, error)

func (f analyzerFunc) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.Report, error) {
	return f(ctx, req)
}

func okReport(req models.AnalyzeRequest) *models.Report {
	return &models.Report{Repo: req.Repo, PRNumber: 1, Server: "github", Feedback: []models.FileIssues{}, Score: models.Score{Overall: 100}}
}

func TestSubmit_ReturnsPendingThenCompletes(t *testing.T) {
	s := store.NewMemoryStore()
	release := make(chan struct{})
	r := NewRunner(s, analyzerFunc(func(_ context.Context, req models.AnalyzeRequest) (*models.Report, error) {
		<-release
		return okReport(req), nil
	}), 1)

	job, err := r.Submit(context.Background(), models.AnalyzeRequest{Repo: "acme/widgets"})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.NotEmpty(t, job.ID)

	got, err := s.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, got.Status)

	close(release)
	r.Wait()

	got, err = s.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, "acme/widgets", got.Result.Repo)
}

func TestSubmit_ErrorMarksFailed(t *testing.T) {
	s := store.NewMemoryStore()
	r := NewRunner(s, analyzerFunc(func(context.Context, models.AnalyzeRequest) (*models.Report, error) {
		return nil, errors.New("invalid github PR URL format")
	}), 2)

	job, err := r.Submit(context.Background(), models.AnalyzeRequest{})
	require.NoError(t, err)
	r.Wait()

	got, err := s.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, got.Status)
	assert.Equal(t, "invalid github PR URL format", got.Error)
	assert.Nil(t, got.Result)
}

func TestSubmit_PanicMarksFailed(t *testing.T) {
	s := store.NewMemoryStore()
	r := NewRunner(s, analyzerFunc(func(context.Context, models.AnalyzeRequest) (*models.Report, error) {
		panic("checker exploded")
	}), 1)

	job, err := r.Submit(context.Background(), models.AnalyzeRequest{})
	require.NoError(t, err)
	r.Wait()

	got, err := s.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, got.Status)
	assert.Contains(t, got.Error, "checker exploded")
}

func TestSubmit_OutlivesRequestContext(t *testing.T) {
	s := store.NewMemoryStore()
	var sawCancel atomic.Bool
	r := NewRunner(s, analyzerFunc(func(ctx context.Context, req models.AnalyzeRequest) (*models.Report, error) {
		time.Sleep(20 * time.Millisecond)
		sawCancel.Store(ctx.Err() != nil)
		return okReport(req), nil
	}), 1)

	ctx, cancel := context.WithCancel(context.Background())
	job, err := r.Submit(ctx, models.AnalyzeRequest{})
	require.NoError(t, err)
	cancel()
	r.Wait()

	assert.False(t, sawCancel.Load())
	got, err := s.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
}

func TestRunner_BoundsConcurrency(t *testing.T) {
	s := store.NewMemoryStore()
	var inFlight, peak atomic.Int32
	r := NewRunner(s, analyzerFunc(func(_ context.Context, req models.AnalyzeRequest) (*models.Report, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return okReport(req), nil
	}), 2)

	for i := 0; i < 6; i++ {
		_, err := r.Submit(context.Background(), models.AnalyzeRequest{})
		require.NoError(t, err)
	}
	r.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(2))
	all, err := s.ListJobs(context.Background(), 0)
	require.NoError(t, err)
	for _, j := range all {
		assert.Equal(t, models.JobStatusCompleted, j.Status)
	}
}

func TestSubmit_UniqueIDs(t *testing.T) {
	s := store.NewMemoryStore()
	r := NewRunner(s, analyzerFunc(func(_ context.Context, req models.AnalyzeRequest) (*models.Report, error) {
		return okReport(req), nil
	}), 0)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		job, err := r.Submit(context.Background(), models.AnalyzeRequest{})
		require.NoError(t, err)
		assert.False(t, seen[job.ID])
		seen[job.ID] = true
	}
	r.Wait()
}
