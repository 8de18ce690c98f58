package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewJobCarriesRetryDefaults(t *testing.T) {
	job := NewJob(42)

	require.NotEmpty(t, job.ID)
	require.Equal(t, uint(42), job.AttemptID)
	require.WithinDuration(t, time.Now().UTC(), job.EnqueuedAt, time.Second)
	require.Equal(t, 3, job.Retry.MaxAttempts)
	require.Equal(t, "exponential", job.Retry.Backoff)
	require.Equal(t, int64(2000), job.Retry.BackoffDelayMS)
	require.Equal(t, 100, job.Retry.KeepCompleted)
	require.Equal(t, 1000, job.Retry.KeepFailed)
}

func TestNewJobIDsAreUnique(t *testing.T) {
	require.NotEqual(t, NewJob(1).ID, NewJob(1).ID)
}

func TestNoopQueueAcceptsJobs(t *testing.T) {
	require.NoError(t, NoopQueue{}.Enqueue(context.Background(), NewJob(7)))
}
