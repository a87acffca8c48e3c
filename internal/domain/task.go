package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task validation errors. All of them wrap ErrValidation.
var (
	ErrEmptyTaskID      = fmt.Errorf("%w: task ID cannot be empty", ErrValidation)
	ErrEmptyOwnerID     = fmt.Errorf("%w: owner ID cannot be empty", ErrValidation)
	ErrEmptyDescription = fmt.Errorf("%w: description cannot be empty", ErrValidation)
)

// Task is a unit of work owned by exactly one user. The owner never changes
// after creation.
type Task struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Description string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTask creates a Task for ownerID with a fresh ID and timestamps.
func NewTask(ownerID uuid.UUID, description string, completed bool) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Description: strings.TrimSpace(description),
		Completed:   completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.OwnerID == uuid.Nil {
		return ErrEmptyOwnerID
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

// TaskPatch is a partial task update restricted to the mutable fields.
type TaskPatch struct {
	Description *string
	Completed   *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Description == nil && p.Completed == nil
}

// Apply copies the patch onto t and re-validates. On error t is left unchanged.
func (t *Task) Apply(p TaskPatch) error {
	updated := *t
	if p.Description != nil {
		updated.Description = strings.TrimSpace(*p.Description)
	}
	if p.Completed != nil {
		updated.Completed = *p.Completed
	}

	if err := updated.Validate(); err != nil {
		return err
	}

	updated.UpdatedAt = time.Now().UTC()
	*t = updated
	return nil
}
