package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/monngon/bep/internal/cache"
	apperrors "github.com/monngon/bep/internal/errors"
)

// JobTTL keeps finished jobs pollable for a week.
const JobTTL = 7 * 24 * time.Hour

// JobState is the lifecycle state of a generation job. Jobs move from
// pending through processing to exactly one terminal state and are
// never re-opened.
type JobState string

const (
	JobPending    JobState = "pending"
	JobProcessing JobState = "processing"
	JobCompleted  JobState = "completed"
	JobFailed     JobState = "failed"
)

// JobResult is the payload of a completed job.
type JobResult struct {
	CacheKey    string             `json:"cache_key"`
	Suggestions []cache.Suggestion `json:"suggestions"`
}

// Job is the client-observable record of one generation request.
type Job struct {
	JobID              string     `json:"job_id"`
	UserID             string     `json:"user_id"`
	Status             JobState   `json:"status"`
	Result             *JobResult `json:"result,omitempty"`
	Warning            string     `json:"warning,omitempty"`
	CompatibilityNotes string     `json:"compatibility_notes,omitempty"`
	Error              string     `json:"error,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

// JobStore persists job records in Redis with a fixed TTL.
type JobStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewJobStore creates a job store with the given Redis client.
func NewJobStore(client *redis.Client) *JobStore {
	return &JobStore{client: client, now: time.Now}
}

func jobKey(jobID string) string { return "job:" + jobID }

func (s *JobStore) write(ctx context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal job record", err)
	}
	if err := s.client.Set(ctx, jobKey(job.JobID), data, JobTTL).Err(); err != nil {
		return apperrors.NewStoreUnavailableError(
			fmt.Sprintf("failed to write job %s", job.JobID), err)
	}
	return nil
}

// Create records a new pending job.
func (s *JobStore) Create(ctx context.Context, jobID, userID string) (*Job, error) {
	job := &Job{
		JobID:     jobID,
		UserID:    userID,
		Status:    JobPending,
		CreatedAt: s.now().UTC(),
	}
	if err := s.write(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Get fetches a job record; nil means unknown or expired.
func (s *JobStore) Get(ctx context.Context, jobID string) (*Job, error) {
	data, err := s.client.Get(ctx, jobKey(jobID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError(
			fmt.Sprintf("failed to read job %s", jobID), err)
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, apperrors.NewInternalError(
			fmt.Sprintf("failed to decode job %s", jobID), err)
	}
	return &job, nil
}

// MarkProcessing moves a pending job to processing. A job already in a
// terminal state is left untouched so re-delivered messages cannot
// resurrect it.
func (s *JobStore) MarkProcessing(ctx context.Context, jobID string) error {
	job, err := s.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return apperrors.NewNotFoundError(
			fmt.Sprintf("job %s not found", jobID), "JOB_NOT_FOUND", "")
	}
	if job.Status == JobCompleted || job.Status == JobFailed {
		return nil
	}
	job.Status = JobProcessing
	return s.write(ctx, job)
}

// Complete writes the job's terminal success state. Warning and
// compatibility notes are optional and non-fatal.
func (s *JobStore) Complete(ctx context.Context, jobID string, result *JobResult, warning, compatibilityNotes string) error {
	job, err := s.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return apperrors.NewNotFoundError(
			fmt.Sprintf("job %s not found", jobID), "JOB_NOT_FOUND", "")
	}
	now := s.now().UTC()
	job.Status = JobCompleted
	job.Result = result
	job.Warning = warning
	job.CompatibilityNotes = compatibilityNotes
	job.Error = ""
	job.CompletedAt = &now
	return s.write(ctx, job)
}

// Fail writes the job's terminal failure state.
func (s *JobStore) Fail(ctx context.Context, jobID string, cause string) error {
	job, err := s.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return apperrors.NewNotFoundError(
			fmt.Sprintf("job %s not found", jobID), "JOB_NOT_FOUND", "")
	}
	now := s.now().UTC()
	job.Status = JobFailed
	job.Error = cause
	job.CompletedAt = &now
	return s.write(ctx, job)
}
