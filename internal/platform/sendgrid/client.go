package sendgrid

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskmanager-api/internal/config"
	"github.com/phrazzld/taskmanager-api/internal/notify"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/redact"
	"github.com/sendgrid/rest"
	sg "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// sender is the subset of the SendGrid client used here.
type sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// Client implements notify.Mailer using the SendGrid v3 mail send API.
type Client struct {
	sender sender
	logger *slog.Logger
}

var _ notify.Mailer = (*Client)(nil)

// NewClient creates a SendGrid-backed mailer.
func NewClient(cfg config.EmailConfig, logger *slog.Logger) (*Client, error) {
	if cfg.SendGridAPIKey == "" {
		return nil, fmt.Errorf("%w: sendgrid API key cannot be empty", notify.ErrInvalidConfig)
	}
	return newClient(sg.NewSendClient(cfg.SendGridAPIKey), logger), nil
}

func newClient(s sender, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		sender: s,
		logger: logger.With(slog.String("component", "sendgrid_client")),
	}
}

// buildMail converts a notify.Message into a SendGrid v3 payload.
func buildMail(msg notify.Message) *mail.SGMailV3 {
	from := mail.NewEmail(msg.From.Name, msg.From.Email)
	to := mail.NewEmail(msg.To.Name, msg.To.Email)
	return mail.NewSingleEmail(from, msg.Subject, to, msg.PlainText, msg.HTML)
}

// Send implements notify.Mailer. Any non-2xx response is reported as
// notify.ErrDeliveryFailed.
func (c *Client) Send(ctx context.Context, msg notify.Message) error {
	log := logger.FromContextOrDefault(ctx, c.logger).With(
		slog.String("subject", msg.Subject),
		slog.String("to", redact.String(msg.To.Email)))

	resp, err := c.sender.SendWithContext(ctx, buildMail(msg))
	if err != nil {
		log.Error("sendgrid request failed", slog.String("error", redact.Error(err)))
		return fmt.Errorf("sendgrid request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error("sendgrid rejected message",
			slog.Int("status_code", resp.StatusCode),
			slog.String("body", redact.String(resp.Body)))
		return fmt.Errorf("%w: sendgrid responded with status %d", notify.ErrDeliveryFailed, resp.StatusCode)
	}

	log.Info("email sent", slog.Int("status_code", resp.StatusCode))
	return nil
}
