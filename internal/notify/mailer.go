package notify

import (
	"context"
	"errors"
)

// Errors reported by Mailer implementations.
var (
	// ErrInvalidConfig is returned when a mailer cannot be built from its configuration.
	ErrInvalidConfig = errors.New("invalid mailer configuration")

	// ErrDeliveryFailed is returned when the provider rejected a message.
	ErrDeliveryFailed = errors.New("email delivery failed")
)

// Address is an email recipient or sender.
type Address struct {
	Name  string
	Email string
}

// Message is a single transactional email.
type Message struct {
	From      Address
	To        Address
	Subject   string
	PlainText string
	HTML      string
}

// Mailer delivers a message synchronously.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
