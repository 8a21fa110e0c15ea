package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/repository"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const taskColumns = `id, title, description, status, user_id, created_at, updated_at`

// ListTasks returns the owner's tasks matching filter in ascending id order.
func (s *Storage) ListTasks(ctx context.Context, ownerID int64, filter task.Filter) ([]*task.Task, error) {
	start := time.Now()

	var query strings.Builder
	query.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`)
	args := []any{ownerID}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query.WriteString(` AND status = $` + strconv.Itoa(len(args)))
	}
	if filter.Search != nil {
		// strpos keeps the match literal and case-sensitive, unlike LIKE/ILIKE.
		args = append(args, *filter.Search)
		n := strconv.Itoa(len(args))
		query.WriteString(` AND (strpos(title, $` + n + `) > 0 OR strpos(description, $` + n + `) > 0)`)
	}
	query.WriteString(` ORDER BY id`)

	rows, err := s.pool.Query(ctx, query.String(), args...)
	if err != nil {
		logger.Error("Repository: failed to list tasks", err, zap.Int64("user_id", ownerID))
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[task.Task])
	if err != nil {
		logger.Error("Repository: failed to scan tasks", err, zap.Int64("user_id", ownerID))
		return nil, fmt.Errorf("scan tasks: %w", err)
	}

	warnIfSlow("list_tasks", start, 100*time.Millisecond)
	return tasks, nil
}

func (s *Storage) GetTask(ctx context.Context, id, ownerID int64) (*task.Task, error) {
	start := time.Now()

	query := `SELECT ` + taskColumns + `
			FROM tasks
			WHERE id = $1 AND user_id = $2`

	rows, err := s.pool.Query(ctx, query, id, ownerID)
	if err != nil {
		logger.Error("Repository: failed to get task", err, zap.Int64("task_id", id))
		return nil, fmt.Errorf("get task: %w", err)
	}

	t, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[task.Task])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		logger.Error("Repository: failed to scan task", err, zap.Int64("task_id", id))
		return nil, fmt.Errorf("get task: %w", err)
	}

	warnIfSlow("get_task", start, 50*time.Millisecond)
	return t, nil
}

// CreateTask inserts t and fills its ID and CreatedAt.
func (s *Storage) CreateTask(ctx context.Context, t *task.Task) error {
	start := time.Now()

	query := `INSERT INTO tasks
				(title, description, status, user_id)
				VALUES ($1, $2, $3, $4)
				RETURNING id, created_at`

	err := s.pool.QueryRow(ctx, query,
		t.Title,
		t.Description,
		string(t.Status),
		t.UserID,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		logger.Error("Repository: failed to insert task", err, zap.Int64("user_id", t.UserID))
		return fmt.Errorf("insert task: %w", err)
	}

	warnIfSlow("create_task", start, 50*time.Millisecond)
	return nil
}

// UpdateTaskStatus persists t.Status for the row matching both id and owner.
func (s *Storage) UpdateTaskStatus(ctx context.Context, t *task.Task) error {
	start := time.Now()

	query := `UPDATE tasks
			SET status = $1,
				updated_at = NOW()
			WHERE id = $2 AND user_id = $3
			RETURNING updated_at`

	err := s.pool.QueryRow(ctx, query, string(t.Status), t.ID, t.UserID).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		logger.Error("Repository: failed to update task", err, zap.Int64("task_id", t.ID))
		return fmt.Errorf("update task: %w", err)
	}

	warnIfSlow("update_task_status", start, 50*time.Millisecond)
	return nil
}

// DeleteTask removes the row matching both id and owner and reports how many rows went away.
func (s *Storage) DeleteTask(ctx context.Context, id, ownerID int64) (int64, error) {
	start := time.Now()

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		logger.Error("Repository: failed to delete task", err, zap.Int64("task_id", id))
		return 0, fmt.Errorf("delete task: %w", err)
	}

	warnIfSlow("delete_task", start, 50*time.Millisecond)
	return tag.RowsAffected(), nil
}
