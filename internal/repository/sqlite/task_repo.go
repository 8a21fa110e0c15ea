package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/repository"

	"go.uber.org/zap"
)

const taskColumns = `id, title, description, status, user_id, created_at, updated_at`

// taskRow mirrors the tasks table; timestamps are unix milliseconds.
type taskRow struct {
	ID          int64         `db:"id"`
	Title       string        `db:"title"`
	Description string        `db:"description"`
	Status      string        `db:"status"`
	UserID      int64         `db:"user_id"`
	CreatedAt   int64         `db:"created_at"`
	UpdatedAt   sql.NullInt64 `db:"updated_at"`
}

func (r taskRow) toTask() *task.Task {
	t := &task.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      task.Status(r.Status),
		UserID:      r.UserID,
		CreatedAt:   fromMillis(r.CreatedAt),
	}
	if r.UpdatedAt.Valid {
		at := fromMillis(r.UpdatedAt.Int64)
		t.UpdatedAt = &at
	}
	return t
}

func (s *Storage) ListTasks(ctx context.Context, ownerID int64, filter task.Filter) ([]*task.Task, error) {
	var query strings.Builder
	query.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`)
	args := []any{ownerID}

	if filter.Status != nil {
		query.WriteString(` AND status = ?`)
		args = append(args, string(*filter.Status))
	}
	if filter.Search != nil {
		// instr is case-sensitive; LIKE is not for ASCII in SQLite.
		query.WriteString(` AND (instr(title, ?) > 0 OR instr(description, ?) > 0)`)
		args = append(args, *filter.Search, *filter.Search)
	}
	query.WriteString(` ORDER BY id`)

	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, query.String(), args...); err != nil {
		logger.Error("Repository: failed to list tasks", err, zap.Int64("user_id", ownerID))
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]*task.Task, len(rows))
	for i, row := range rows {
		tasks[i] = row.toTask()
	}
	return tasks, nil
}

func (s *Storage) GetTask(ctx context.Context, id, ownerID int64) (*task.Task, error) {
	var row taskRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		logger.Error("Repository: failed to get task", err, zap.Int64("task_id", id))
		return nil, fmt.Errorf("get task: %w", err)
	}
	return row.toTask(), nil
}

func (s *Storage) CreateTask(ctx context.Context, t *task.Task) error {
	row := taskRow{
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		UserID:      t.UserID,
		CreatedAt:   toMillis(time.Now()),
	}

	res, err := s.db.NamedExecContext(ctx,
		`INSERT INTO tasks (title, description, status, user_id, created_at)
		VALUES (:title, :description, :status, :user_id, :created_at)`, row)
	if err != nil {
		logger.Error("Repository: failed to insert task", err, zap.Int64("user_id", t.UserID))
		return fmt.Errorf("insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert task id: %w", err)
	}
	t.ID = id
	t.CreatedAt = fromMillis(row.CreatedAt)
	return nil
}

func (s *Storage) UpdateTaskStatus(ctx context.Context, t *task.Task) error {
	now := toMillis(time.Now())
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		string(t.Status), now, t.ID, t.UserID)
	if err != nil {
		logger.Error("Repository: failed to update task", err, zap.Int64("task_id", t.ID))
		return fmt.Errorf("update task: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task rows: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	t.Apply(task.WithUpdatedAt(fromMillis(now)))
	return nil
}

func (s *Storage) DeleteTask(ctx context.Context, id, ownerID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		logger.Error("Repository: failed to delete task", err, zap.Int64("task_id", id))
		return 0, fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete task rows: %w", err)
	}
	return affected, nil
}
