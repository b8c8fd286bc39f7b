package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Processing job statuses.
const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// ProcessingJob is the externally visible record of a background job.
type ProcessingJob struct {
	ID           uuid.UUID       `json:"id"`
	JobType      string          `json:"job_type"`
	ProjectID    string          `json:"project_id"`
	Status       string          `json:"status"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	Result       json.RawMessage `json:"result,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

// Done reports whether the job reached a terminal status.
func (j ProcessingJob) Done() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
