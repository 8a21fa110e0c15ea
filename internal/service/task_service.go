package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/repository"

	"go.uber.org/zap"
)

// Every read and write here is scoped to the owner. A task owned by
// someone else is reported exactly like a missing one.

type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo: repo,
	}
}

// CreateTaskInput is the validated body of a create request.
type CreateTaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("service health check: %w", err)
	}
	return nil
}

func (s *TaskService) ListTasks(ctx context.Context, owner *user.User, filter task.Filter) ([]*task.Task, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, NewValidationError("status", "must be one of OPEN, IN_PROGRESS, DONE")
	}

	tasks, err := s.repo.ListTasks(ctx, owner.ID, filter)
	if err != nil {
		logger.Error("Service: failed to list tasks", err,
			zap.String("username", owner.Username),
			zap.Any("filter", filter))
		return nil, NewInternal(fmt.Errorf("list tasks: %w", err))
	}
	return tasks, nil
}

func (s *TaskService) GetTask(ctx context.Context, id int64, owner *user.User) (*task.Task, error) {
	t, err := s.repo.GetTask(ctx, id, owner.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Info("Service: task not found",
				zap.Int64("task_id", id),
				zap.String("username", owner.Username))
			return nil, NewNotFound("task", id)
		}
		logger.Error("Service: failed to get task", err,
			zap.Int64("task_id", id),
			zap.String("username", owner.Username))
		return nil, NewInternal(fmt.Errorf("get task: %w", err))
	}
	return t, nil
}

// CreateTask always stores the task as OPEN, whatever the caller asked for.
func (s *TaskService) CreateTask(ctx context.Context, in CreateTaskInput, owner *user.User) (*task.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, NewValidationError("title", "must not be empty")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, NewValidationError("description", "must not be empty")
	}

	t := &task.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      task.StatusOpen,
		UserID:      owner.ID,
	}

	if err := s.repo.CreateTask(ctx, t); err != nil {
		logger.Error("Service: failed to create task", err,
			zap.String("username", owner.Username),
			zap.Any("data", in))
		return nil, NewInternal(fmt.Errorf("create task: %w", err))
	}
	return t, nil
}

func (s *TaskService) UpdateTaskStatus(ctx context.Context, id int64, status task.Status, owner *user.User) (*task.Task, error) {
	if !status.Valid() {
		return nil, NewValidationError("status", "must be one of OPEN, IN_PROGRESS, DONE")
	}

	t, err := s.GetTask(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	t.Apply(task.WithStatus(status))

	if err := s.repo.UpdateTaskStatus(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// deleted between the read and the update
			return nil, NewNotFound("task", id)
		}
		logger.Error("Service: failed to update task status", err,
			zap.Int64("task_id", id),
			zap.String("status", string(status)),
			zap.String("username", owner.Username))
		return nil, NewInternal(fmt.Errorf("update task status: %w", err))
	}
	return t, nil
}

// DeleteTask issues a single owner-scoped delete and reports NotFound when nothing matched.
func (s *TaskService) DeleteTask(ctx context.Context, id int64, owner *user.User) error {
	affected, err := s.repo.DeleteTask(ctx, id, owner.ID)
	if err != nil {
		logger.Error("Service: failed to delete task", err,
			zap.Int64("task_id", id),
			zap.String("username", owner.Username))
		return NewInternal(fmt.Errorf("delete task: %w", err))
	}
	if affected == 0 {
		return NewNotFound("task", id)
	}
	return nil
}
