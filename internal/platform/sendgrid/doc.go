// Package sendgrid implements notify.Mailer on top of the SendGrid v3 API,
// with a log-only fallback for environments without credentials.
package sendgrid
