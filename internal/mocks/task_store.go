package mocks

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing.
//
// The default implementation keeps tasks in memory and mirrors the
// PostgreSQL store: owner scoping, completed filter, single-field sort with
// creation order as tie-break, then skip and limit.
type MockTaskStore struct {
	CreateFn      func(ctx context.Context, task *domain.Task) error
	GetByIDFn     func(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)
	ListByOwnerFn func(ctx context.Context, ownerID uuid.UUID, opts domain.TaskListOptions) ([]*domain.Task, error)
	UpdateFn      func(ctx context.Context, task *domain.Task) error
	DeleteFn      func(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	mu    sync.Mutex
	tasks []*domain.Task // creation order
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates an empty MockTaskStore.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{}
}

func copyTask(t *domain.Task) *domain.Task {
	c := *t
	return &c
}

// Create implements store.TaskStore
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, copyTask(task))
	return nil
}

func (m *MockTaskStore) find(id, ownerID uuid.UUID) int {
	for i, t := range m.tasks {
		if t.ID == id && t.OwnerID == ownerID {
			return i
		}
	}
	return -1
}

// GetByID implements store.TaskStore
func (m *MockTaskStore) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id, ownerID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.find(id, ownerID)
	if i < 0 {
		return nil, store.ErrTaskNotFound
	}
	return copyTask(m.tasks[i]), nil
}

func lessBy(field domain.SortField, a, b *domain.Task) int {
	switch field {
	case domain.SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case domain.SortByDescription:
		return strings.Compare(a.Description, b.Description)
	case domain.SortByCompleted:
		switch {
		case a.Completed == b.Completed:
			return 0
		case !a.Completed:
			return -1
		default:
			return 1
		}
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// ListByOwner implements store.TaskStore
func (m *MockTaskStore) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	opts domain.TaskListOptions,
) ([]*domain.Task, error) {
	if m.ListByOwnerFn != nil {
		return m.ListByOwnerFn(ctx, ownerID, opts)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	result := make([]*domain.Task, 0)
	for _, t := range m.tasks {
		if t.OwnerID != ownerID {
			continue
		}
		if opts.Completed != nil && t.Completed != *opts.Completed {
			continue
		}
		result = append(result, copyTask(t))
	}
	m.mu.Unlock()

	if opts.Sort != nil {
		field, desc := opts.Sort.Field, opts.Sort.Descending
		sort.SliceStable(result, func(i, j int) bool {
			c := lessBy(field, result[i], result[j])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	if opts.Skip >= len(result) {
		return []*domain.Task{}, nil
	}
	result = result[opts.Skip:]
	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}
	return result, nil
}

// Update implements store.TaskStore
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.find(task.ID, task.OwnerID)
	if i < 0 {
		return store.ErrTaskNotFound
	}
	m.tasks[i] = copyTask(task)
	return nil
}

// Delete implements store.TaskStore
func (m *MockTaskStore) Delete(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id, ownerID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.find(id, ownerID)
	if i < 0 {
		return nil, store.ErrTaskNotFound
	}
	deleted := m.tasks[i]
	m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	return deleted, nil
}

// DeleteByOwner removes every task of ownerID, mirroring ON DELETE CASCADE.
// Wire it to MockUserStore.OnDelete.
func (m *MockTaskStore) DeleteByOwner(ownerID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.tasks[:0]
	for _, t := range m.tasks {
		if t.OwnerID != ownerID {
			kept = append(kept, t)
		}
	}
	m.tasks = kept
}

// Count returns the number of stored tasks across all owners.
func (m *MockTaskStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// WithTx returns the same mock; transactions are not simulated.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}
