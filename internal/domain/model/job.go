// Package model defines the core data types shared across the promptline job system.
package model

import (
	"encoding/json"
	"errors"
	"time"
)

// JobStatus represents the current status of a job record.
type JobStatus string

const (
	// JobStatusPending indicates a job has been accepted but the executor has not reported progress.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the executor has started processing the job.
	JobStatusRunning JobStatus = "running"
	// JobStatusSucceeded indicates the job finished successfully; Result is populated.
	JobStatusSucceeded JobStatus = "succeeded"
	// JobStatusFailed indicates the job failed; Error is populated.
	JobStatusFailed JobStatus = "failed"
)

// Valid returns true if the JobStatus is one of the known states.
func (s JobStatus) Valid() bool {
	return s == JobStatusPending || s == JobStatusRunning || s == JobStatusSucceeded ||
		s == JobStatusFailed
}

// Terminal returns true for states with no outgoing transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// Job is the durable record of one unit of submitted asynchronous work.
//
// ID and OwnerID are immutable once assigned; ownership is never transferred.
// Exactly one of Result/Error is populated, and only in a terminal status.
type Job struct {
	ID        string          `json:"id"                  db:"id"`
	OwnerID   string          `json:"owner_id"            db:"owner_id"`
	Status    JobStatus       `json:"status"              db:"status"`
	Payload   json.RawMessage `json:"payload"             db:"payload"`
	NativeID  *string         `json:"native_id,omitempty" db:"native_id"`
	Result    json.RawMessage `json:"result,omitempty"    db:"result"`
	Error     *string         `json:"error,omitempty"     db:"error"`
	CreatedAt time.Time       `json:"created_at"          db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"          db:"updated_at"`
}

// CreateJobRequest represents a request to create a new job record.
type CreateJobRequest struct {
	ID      string          `json:"id"`
	OwnerID string          `json:"owner_id"`
	Payload json.RawMessage `json:"payload"`
}

// Validate validates the CreateJobRequest fields.
func (r *CreateJobRequest) Validate() error {
	if r.ID == "" {
		return errors.New("job id is required")
	}
	if r.OwnerID == "" {
		return errors.New("owner id is required")
	}
	if len(r.Payload) == 0 {
		return errors.New("payload is required")
	}
	return nil
}

// JobStatusView is the caller-facing merged view of a job, produced by
// reconciling the persisted record with live executor state.
type JobStatusView struct {
	JobID  string          `json:"job_id"`
	Status JobStatus       `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *string         `json:"error,omitempty"`
}

// StatusView projects the record into its caller-facing view.
func (j *Job) StatusView() JobStatusView {
	return JobStatusView{
		JobID:  j.ID,
		Status: j.Status,
		Result: j.Result,
		Error:  j.Error,
	}
}

// JobStats represents counts of jobs per state.
type JobStats struct {
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}
