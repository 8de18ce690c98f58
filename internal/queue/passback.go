// Package queue schedules grade-passback delivery jobs for the external sync
// worker. The queue client is injected as an interface so grading never
// depends on process-global state.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Retry defaults for passback delivery.
const (
	DefaultMaxAttempts   = 3
	DefaultBackoffDelay  = 2 * time.Second
	DefaultKeepCompleted = 100
	DefaultKeepFailed    = 1000
)

// RetryPolicy mirrors the worker queue's bounded retry and retention settings.
type RetryPolicy struct {
	MaxAttempts    int    `json:"max_attempts"`
	Backoff        string `json:"backoff"`
	BackoffDelayMS int64  `json:"backoff_delay_ms"`
	KeepCompleted  int    `json:"keep_completed"`
	KeepFailed     int    `json:"keep_failed"`
}

// DefaultRetryPolicy returns the delivery retry settings: three attempts with
// exponential backoff starting at two seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    DefaultMaxAttempts,
		Backoff:        "exponential",
		BackoffDelayMS: DefaultBackoffDelay.Milliseconds(),
		KeepCompleted:  DefaultKeepCompleted,
		KeepFailed:     DefaultKeepFailed,
	}
}

// Job is the payload handed to the sync worker for one graded attempt.
type Job struct {
	ID         string      `json:"id"`
	AttemptID  uint        `json:"attempt_id"`
	EnqueuedAt time.Time   `json:"enqueued_at"`
	Retry      RetryPolicy `json:"retry"`
}

// NewJob builds a delivery job for a graded attempt with the default retry
// policy.
func NewJob(attemptID uint) Job {
	return Job{
		ID:         uuid.NewString(),
		AttemptID:  attemptID,
		EnqueuedAt: time.Now().UTC(),
		Retry:      DefaultRetryPolicy(),
	}
}

// PassbackQueue submits delivery jobs. Implementations must be safe for
// concurrent use.
type PassbackQueue interface {
	Enqueue(ctx context.Context, job Job) error
}

// NATSQueue publishes passback jobs to a NATS subject consumed by the sync
// worker.
type NATSQueue struct {
	conn    *nats.Conn
	subject string
}

// NewNATSQueue builds a NATS-backed passback queue.
func NewNATSQueue(conn *nats.Conn, subject string) *NATSQueue {
	return &NATSQueue{conn: conn, subject: subject}
}

// Enqueue publishes the job payload. Delivery to the grade book happens
// asynchronously; this returns as soon as the broker accepts the message.
func (q *NATSQueue) Enqueue(_ context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal passback job: %w", err)
	}
	if err := q.conn.Publish(q.subject, payload); err != nil {
		return fmt.Errorf("publish passback job: %w", err)
	}
	return nil
}

// NoopQueue discards jobs. Used when no broker is configured; grading still
// succeeds and delivery is simply not scheduled.
type NoopQueue struct{}

// Enqueue drops the job.
func (NoopQueue) Enqueue(context.Context, Job) error {
	return nil
}
