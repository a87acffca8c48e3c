package sendgrid

import (
	"context"
	"log/slog"

	"github.com/phrazzld/taskmanager-api/internal/config"
	"github.com/phrazzld/taskmanager-api/internal/notify"
	"github.com/phrazzld/taskmanager-api/internal/redact"
)

// LogMailer writes messages to the log instead of delivering them.
// It stands in for Client when no API key is configured.
type LogMailer struct {
	logger *slog.Logger
}

var _ notify.Mailer = (*LogMailer)(nil)

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger.With(slog.String("component", "log_mailer"))}
}

// Send implements notify.Mailer. It never fails.
func (m *LogMailer) Send(ctx context.Context, msg notify.Message) error {
	m.logger.InfoContext(ctx, "email not delivered, no provider configured",
		slog.String("subject", msg.Subject),
		slog.String("to", redact.String(msg.To.Email)),
		slog.Int("body_length", len(msg.PlainText)))
	return nil
}

// NewMailer returns a SendGrid client when an API key is configured and a
// LogMailer otherwise.
func NewMailer(cfg config.EmailConfig, logger *slog.Logger) notify.Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SendGridAPIKey == "" {
		logger.Warn("no sendgrid API key configured, emails will only be logged")
		return NewLogMailer(logger)
	}

	client, err := NewClient(cfg, logger)
	if err != nil {
		logger.Warn("failed to create sendgrid client, emails will only be logged",
			slog.String("error", err.Error()))
		return NewLogMailer(logger)
	}
	return client
}
