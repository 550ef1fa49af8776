// Package model defines the core data types exchanged with the evaluation service.
package model

import (
	"fmt"
	"strings"
)

// JobStatus represents the lifecycle status of a remote evaluation job.
type JobStatus string

const (
	// JobStatusPending indicates a job is queued but not yet started.
	JobStatusPending JobStatus = "pending"
	// JobStatusProcessing indicates a job is currently being processed.
	JobStatusProcessing JobStatus = "processing"
	// JobStatusCompleted indicates a job has finished successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates a job has failed to complete.
	JobStatusFailed JobStatus = "failed"
)

// UnmarshalText implements encoding.TextUnmarshaler for JobStatus.
// "running" is accepted as an alias of processing.
func (s *JobStatus) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	if v == "running" {
		v = string(JobStatusProcessing)
	}
	st := JobStatus(v)
	if !st.Valid() {
		return fmt.Errorf("invalid JobStatus: %q", v)
	}
	*s = st
	return nil
}

// Valid returns true if the JobStatus is valid.
func (s JobStatus) Valid() bool {
	return s == JobStatusPending || s == JobStatusProcessing || s == JobStatusCompleted ||
		s == JobStatusFailed
}

// Terminal reports whether no further updates are expected for the job.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// JobHandle identifies an asynchronous evaluation job.
type JobHandle struct {
	ID string `json:"job_id"`
}
