package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// JobType identifies what a generation job produces.
type JobType string

// Supported generation job types
const (
	JobTypeCampaign        JobType = "campaign"
	JobTypeKeywords        JobType = "keywords"
	JobTypeRecommendations JobType = "recommendations"
)

// JobStatus represents the processing state of a generation job. The four
// terminal statuses mirror the operation tracker's terminal phases.
type JobStatus string

// Possible job status values
const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
	JobStatusTimedOut  JobStatus = "timed_out"
	JobStatusCancelled JobStatus = "cancelled"
)

// Common validation errors for GenerationJob
var (
	ErrEmptyJobID           = errors.New("job ID cannot be empty")
	ErrEmptyJobUserID       = errors.New("job user ID cannot be empty")
	ErrInvalidJobType       = errors.New("invalid job type")
	ErrInvalidJobStatus     = errors.New("invalid job status")
	ErrEmptyJobPayload      = errors.New("job payload cannot be empty")
	ErrInvalidJobTransition = errors.New("invalid job status transition")
)

// GenerationJob tracks one AI generation request through its lifecycle.
// Payload carries the request the user submitted; Result carries the
// generated content once the job succeeds.
type GenerationJob struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	CampaignID   *uuid.UUID      `json:"campaign_id,omitempty"`
	Type         JobType         `json:"type"`
	Status       JobStatus       `json:"status"`
	Payload      json.RawMessage `json:"payload"`
	Result       json.RawMessage `json:"result,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Attempts     int             `json:"attempts"`
	Progress     int             `json:"progress"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewGenerationJob creates a pending job for the given user and request
// payload. Returns an error if validation fails.
func NewGenerationJob(userID uuid.UUID, jobType JobType, payload json.RawMessage) (*GenerationJob, error) {
	job := &GenerationJob{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      jobType,
		Status:    JobStatusPending,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// Validate checks if the GenerationJob has valid data.
// Returns an error if any field fails validation.
func (j *GenerationJob) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyJobID
	}

	if j.UserID == uuid.Nil {
		return ErrEmptyJobUserID
	}

	if !isValidJobType(j.Type) {
		return ErrInvalidJobType
	}

	if !isValidJobStatus(j.Status) {
		return ErrInvalidJobStatus
	}

	if len(j.Payload) == 0 {
		return ErrEmptyJobPayload
	}

	return nil
}

// Terminal reports whether the job has finished processing.
func (j *GenerationJob) Terminal() bool {
	switch j.Status {
	case JobStatusSucceeded, JobStatusFailed, JobStatusTimedOut, JobStatusCancelled:
		return true
	}
	return false
}

// UpdateStatus moves the job to a new status. Terminal statuses accept no
// further transitions; pending may only start running or be cancelled.
func (j *GenerationJob) UpdateStatus(status JobStatus) error {
	if !isValidJobStatus(status) {
		return ErrInvalidJobStatus
	}

	if !jobTransitionAllowed(j.Status, status) {
		return ErrInvalidJobTransition
	}

	j.Status = status
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// jobTransitionAllowed reports whether moving from one status to another is
// legal.
func jobTransitionAllowed(from, to JobStatus) bool {
	if from == to {
		return true
	}

	switch from {
	case JobStatusPending:
		return to == JobStatusRunning || to == JobStatusCancelled
	case JobStatusRunning:
		return to == JobStatusSucceeded || to == JobStatusFailed ||
			to == JobStatusTimedOut || to == JobStatusCancelled
	}
	return false
}

// isValidJobType checks if the given type is a supported JobType.
func isValidJobType(jobType JobType) bool {
	switch jobType {
	case JobTypeCampaign, JobTypeKeywords, JobTypeRecommendations:
		return true
	}
	return false
}

// isValidJobStatus checks if the given status is a valid JobStatus.
func isValidJobStatus(status JobStatus) bool {
	switch status {
	case JobStatusPending, JobStatusRunning, JobStatusSucceeded,
		JobStatusFailed, JobStatusTimedOut, JobStatusCancelled:
		return true
	}
	return false
}
