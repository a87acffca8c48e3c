package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/jobs"
)

// JobTypeEmail identifies email delivery jobs in logs.
const JobTypeEmail = "email"

// emailJob delivers one message through a Mailer on the worker pool.
type emailJob struct {
	id      uuid.UUID
	msg     Message
	mailer  Mailer
	timeout time.Duration
}

var _ jobs.Job = (*emailJob)(nil)

func (j *emailJob) ID() uuid.UUID { return j.id }

func (j *emailJob) Type() string { return JobTypeEmail }

func (j *emailJob) Execute(ctx context.Context) error {
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}
	if err := j.mailer.Send(ctx, j.msg); err != nil {
		return fmt.Errorf("failed to send %q email: %w", j.msg.Subject, err)
	}
	return nil
}
