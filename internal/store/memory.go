package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/joescharf/prscore/internal/models"
)

// MemoryStore keeps jobs in process memory. Jobs are lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	jobs  map[string]*models.Job
	order []string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*models.Job)}
}

func (s *MemoryStore) CreateJob(_ context.Context, job *models.Job) error {
	prepareJob(job)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("create job: duplicate id %s", job.ID)
	}
	stored := *job
	s.jobs[job.ID] = &stored
	s.order = append(s.order, job.ID)
	return nil
}

func (s *MemoryStore) GetJob(_ context.Context, id string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *j
	return &out, nil
}

// ListJobs returns jobs newest first. A limit of zero or less returns all.
func (s *MemoryStore) ListJobs(_ context.Context, limit int) ([]*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Job, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		j := *s.jobs[s.order[i]]
		out = append(out, &j)
	}
	return out, nil
}

func (s *MemoryStore) CompleteJob(_ context.Context, id string, report *models.Report) error {
	return s.finish(id, func(j *models.Job) {
		j.Status = models.JobStatusCompleted
		j.Result = report
	})
}

func (s *MemoryStore) FailJob(_ context.Context, id string, msg string) error {
	return s.finish(id, func(j *models.Job) {
		j.Status = models.JobStatusFailed
		j.Error = msg
	})
}

func (s *MemoryStore) finish(id string, apply func(*models.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if j.Status.IsTerminal() {
		return fmt.Errorf("%w: %s is %s", ErrTerminal, id, j.Status)
	}
	apply(j)
	j.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
