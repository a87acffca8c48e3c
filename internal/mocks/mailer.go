package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/taskmanager-api/internal/notify"
)

// MockMailer records messages instead of sending them.
type MockMailer struct {
	SendFn func(ctx context.Context, msg notify.Message) error

	mu   sync.Mutex
	sent []notify.Message
}

var _ notify.Mailer = (*MockMailer)(nil)

// Send implements notify.Mailer
func (m *MockMailer) Send(ctx context.Context, msg notify.Message) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()

	if m.SendFn != nil {
		return m.SendFn(ctx, msg)
	}
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *MockMailer) Sent() []notify.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Message(nil), m.sent...)
}
