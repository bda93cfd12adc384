package models

import "time"

// JobStatus is the job coordinator's state machine (C10). A job moves
// Pending -> Claimed -> (Succeeded | Failed), and a stale Claimed job (its
// RuntimeInstanceID's holder is gone past the lease) is swept back to
// Pending for re-offering with no session affinity (see SPEC_FULL decided
// open question).
type JobStatus string

const (
	JobStatusPending   JobStatus = "Pending"
	JobStatusClaimed   JobStatus = "Claimed"
	JobStatusSucceeded JobStatus = "Succeeded"
	JobStatusFailed    JobStatus = "Failed"
)

// Job is one unit of asynchronous work (currently only the storage purge
// enqueued by file deletion). Pickup claims a batch of Pending rows with
// `SELECT ... FOR UPDATE SKIP LOCKED` so concurrent workers never contend
// on the same row.
type Job struct {
	ID                JobID     `gorm:"primaryKey;type:uuid" json:"id"`
	Kind              string    `json:"kind"`
	Status            JobStatus `json:"status"`
	Payload           map[string]any `gorm:"serializer:json" json:"payload,omitempty"`
	RuntimeInstanceID *string   `json:"runtime_instance_id,omitempty"`
	Attempts          int       `json:"attempts"`
	LastError         *string   `json:"last_error,omitempty"`
	ClaimedAt         *time.Time `json:"claimed_at,omitempty"`
	CreatedTime       time.Time `json:"created_time"`
	ModifiedTime      time.Time `json:"modified_time"`
}

func (Job) TableName() string { return "jobs" }
