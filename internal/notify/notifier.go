package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/config"
	"github.com/phrazzld/taskmanager-api/internal/jobs"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/redact"
)

// Notifier sends account lifecycle emails.
type Notifier interface {
	SendWelcomeEmail(ctx context.Context, email, name string)
	SendCancelationEmail(ctx context.Context, email, name string)
}

// EmailNotifier renders lifecycle emails and hands them to the job queue.
// Calls return as soon as the job is queued; delivery errors are only logged.
type EmailNotifier struct {
	queue       jobs.QueueWriter
	mailer      Mailer
	from        Address
	sendTimeout time.Duration
	logger      *slog.Logger
}

var _ Notifier = (*EmailNotifier)(nil)

// NewEmailNotifier creates an EmailNotifier sending as cfg.FromAddress.
func NewEmailNotifier(queue jobs.QueueWriter, mailer Mailer, cfg config.EmailConfig, logger *slog.Logger) *EmailNotifier {
	if queue == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("queue cannot be nil")
	}
	if mailer == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("mailer cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &EmailNotifier{
		queue:       queue,
		mailer:      mailer,
		from:        Address{Name: cfg.FromName, Email: cfg.FromAddress},
		sendTimeout: time.Duration(cfg.SendTimeoutSeconds) * time.Second,
		logger:      logger.With(slog.String("component", "email_notifier")),
	}
}

// SendWelcomeEmail queues the welcome email for a new account.
func (n *EmailNotifier) SendWelcomeEmail(ctx context.Context, email, name string) {
	n.enqueue(ctx, welcomeTemplate, Address{Name: name, Email: email})
}

// SendCancelationEmail queues the goodbye email for a deleted account.
func (n *EmailNotifier) SendCancelationEmail(ctx context.Context, email, name string) {
	n.enqueue(ctx, cancellationTemplate, Address{Name: name, Email: email})
}

func (n *EmailNotifier) enqueue(ctx context.Context, tmpl emailTemplate, to Address) {
	log := logger.FromContextOrDefault(ctx, n.logger).With(
		slog.String("subject", tmpl.subject),
		slog.String("to", redact.String(to.Email)))

	msg, err := tmpl.render(n.from, to)
	if err != nil {
		log.Error("failed to render email", slog.String("error", err.Error()))
		return
	}

	job := &emailJob{
		id:      uuid.New(),
		msg:     msg,
		mailer:  n.mailer,
		timeout: n.sendTimeout,
	}

	if err := n.queue.Enqueue(job); err != nil {
		if errors.Is(err, jobs.ErrQueueFull) || errors.Is(err, jobs.ErrQueueClosed) {
			log.Warn("dropping email", slog.String("reason", err.Error()))
			return
		}
		log.Error("failed to queue email", slog.String("error", err.Error()))
		return
	}

	log.Debug("email queued", slog.String("job_id", job.ID().String()))
}
