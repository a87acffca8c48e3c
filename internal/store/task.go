package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
)

// TaskStore defines the interface for task persistence.
//
// Every read and write except Create is filtered by owner: a task that exists
// but belongs to someone else behaves exactly like a task that does not exist.
type TaskStore interface {
	// Create saves a new task.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves the task with the given ID owned by ownerID.
	// Returns ErrTaskNotFound if there is no such task.
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	// ListByOwner returns ownerID's tasks filtered, sorted and paged by opts.
	// Returns an empty slice when nothing matches.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, opts domain.TaskListOptions) ([]*domain.Task, error)

	// Update persists description, completed and updated_at of a task,
	// matching on both ID and OwnerID.
	// Returns ErrTaskNotFound if there is no such task.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes the task with the given ID owned by ownerID and returns it.
	// Returns ErrTaskNotFound if there is no such task.
	Delete(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
