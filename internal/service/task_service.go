package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// TaskService provides task operations scoped to a single owner.
// A task owned by someone else is indistinguishable from a missing one:
// both report store.ErrTaskNotFound.
type TaskService interface {
	// CreateTask stores a new task owned by ownerID.
	CreateTask(ctx context.Context, ownerID uuid.UUID, description string, completed bool) (*domain.Task, error)

	// ListTasks returns the owner's tasks filtered, sorted and paged by opts.
	ListTasks(ctx context.Context, ownerID uuid.UUID, opts domain.TaskListOptions) ([]*domain.Task, error)

	// GetTask returns one of the owner's tasks.
	GetTask(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	// UpdateTask applies a partial update to one of the owner's tasks.
	// An empty patch returns the task unchanged.
	UpdateTask(ctx context.Context, id, ownerID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// DeleteTask removes one of the owner's tasks and returns it.
	DeleteTask(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)
}

type taskServiceImpl struct {
	taskStore store.TaskStore
	logger    *slog.Logger
}

var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a new TaskService.
func NewTaskService(taskStore store.TaskStore, logger *slog.Logger) TaskService {
	if taskStore == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("taskStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		taskStore: taskStore,
		logger:    logger.With(slog.String("component", "task_service")),
	}
}

// CreateTask implements TaskService.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	ownerID uuid.UUID,
	description string,
	completed bool,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(ownerID, description, completed)
	if err != nil {
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		log.Error("failed to create task",
			slog.String("owner_id", ownerID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("owner_id", ownerID.String()))
	return task, nil
}

// ListTasks implements TaskService.
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	ownerID uuid.UUID,
	opts domain.TaskListOptions,
) ([]*domain.Task, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	tasks, err := s.taskStore.ListByOwner(ctx, ownerID, opts)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			slog.String("owner_id", ownerID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetTask implements TaskService.
func (s *taskServiceImpl) GetTask(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, id, ownerID)
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve task",
				slog.String("task_id", id.String()),
				slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}
	return task, nil
}

// UpdateTask implements TaskService.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	id, ownerID uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.GetTask(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return task, nil
	}

	if err := task.Apply(patch); err != nil {
		return nil, err
	}

	if err := s.taskStore.Update(ctx, task); err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			log.Error("failed to update task",
				slog.String("task_id", id.String()),
				slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	log.Debug("task updated", slog.String("task_id", id.String()))
	return task, nil
}

// DeleteTask implements TaskService.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.Delete(ctx, id, ownerID)
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete task",
				slog.String("task_id", id.String()),
				slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("task deleted", slog.String("task_id", id.String()))
	return task, nil
}
