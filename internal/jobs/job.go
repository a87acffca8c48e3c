package jobs

import (
	"context"

	"github.com/google/uuid"
)

// Job is a unit of background work.
type Job interface {
	// ID returns the job's unique identifier
	ID() uuid.UUID

	// Type returns the job type identifier, used for logging
	Type() string

	// Execute runs the job. The context is cancelled when the pool is
	// forced to stop.
	Execute(ctx context.Context) error
}

// QueueReader provides read-only access to the job channel so workers can
// consume jobs without being able to enqueue.
type QueueReader interface {
	// GetChannel returns a read-only channel for consuming jobs
	GetChannel() <-chan Job
}

// QueueWriter lets services submit jobs.
type QueueWriter interface {
	// Enqueue adds a job without blocking.
	// Returns ErrQueueFull or ErrQueueClosed when the job was not accepted.
	Enqueue(job Job) error
}
