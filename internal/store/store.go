package store

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/joescharf/prscore/internal/models"
)

var (
	// ErrNotFound is returned for an unknown job ID.
	ErrNotFound = errors.New("job not found")
	// ErrTerminal is returned when transitioning a job that already completed or failed.
	ErrTerminal = errors.New("job already finished")
)

// Store defines job persistence for prscore. Jobs move from pending to
// exactly one of completed or failed; terminal jobs never change again.
type Store interface {
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id string) (*models.Job, error)
	ListJobs(ctx context.Context, limit int) ([]*models.Job, error)
	CompleteJob(ctx context.Context, id string, report *models.Report) error
	FailJob(ctx context.Context, id string, msg string) error

	// Lifecycle
	Close() error
}

// newULID generates a new ULID string. IDs minted in the same millisecond
// stay ordered.
func newULID() string {
	return ulid.Make().String()
}

// prepareJob fills in the ID, status and timestamps of a new job.
func prepareJob(job *models.Job) {
	if job.ID == "" {
		job.ID = newULID()
	}
	now := time.Now().UTC()
	job.Status = models.JobStatusPending
	job.Result = nil
	job.Error = ""
	job.CreatedAt = now
	job.UpdatedAt = now
}
