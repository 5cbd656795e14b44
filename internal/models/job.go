package models

import "time"

// JobStatus represents the lifecycle state of an analysis job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// AnalyzeRequest describes which PR/MR to analyze and which checks to run.
// Either PRURL or Repo/PRNumber/Server identify the target.
type AnalyzeRequest struct {
	Server        string          `json:"server,omitempty"`
	Repo          string          `json:"repo,omitempty"`
	PRNumber      *int            `json:"pr_number,omitempty"`
	PRURL         string          `json:"pr_url,omitempty"`
	EnabledChecks map[string]bool `json:"enabled_checks,omitempty"`
}

// Job is one asynchronous execution of the analysis pipeline.
type Job struct {
	ID        string         `json:"id"`
	Status    JobStatus      `json:"status"`
	Request   AnalyzeRequest `json:"request"`
	Result    *Report        `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
