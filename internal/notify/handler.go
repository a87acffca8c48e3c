package notify

import (
	"context"
	"fmt"

	"github.com/phrazzld/taskmanager-api/internal/events"
)

// EventHandler sends lifecycle emails in response to user events.
type EventHandler struct {
	notifier Notifier
}

var _ events.EventHandler = (*EventHandler)(nil)

// NewEventHandler creates an EventHandler backed by notifier.
func NewEventHandler(notifier Notifier) *EventHandler {
	return &EventHandler{notifier: notifier}
}

// HandleEvent implements events.EventHandler. Unrelated event types are ignored.
func (h *EventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	switch event.Type {
	case events.UserCreated, events.UserDeleted:
	default:
		return nil
	}

	var payload events.UserPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", event.Type, err)
	}

	if event.Type == events.UserCreated {
		h.notifier.SendWelcomeEmail(ctx, payload.Email, payload.Name)
	} else {
		h.notifier.SendCancelationEmail(ctx, payload.Email, payload.Name)
	}
	return nil
}
