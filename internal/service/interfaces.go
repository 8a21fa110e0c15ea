package service

import (
	"context"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	ListTasks(ctx context.Context, ownerID int64, filter task.Filter) ([]*task.Task, error)
	GetTask(ctx context.Context, id, ownerID int64) (*task.Task, error)
	CreateTask(context.Context, *task.Task) error
	UpdateTaskStatus(context.Context, *task.Task) error
	DeleteTask(ctx context.Context, id, ownerID int64) (int64, error)
}

type UserRepository interface {
	CreateUser(context.Context, *user.User) error
	GetUserByUsername(ctx context.Context, username string) (*user.User, error)
}

type PasswordHasher interface {
	NewSalt() (string, error)
	Hash(plaintext, salt string) string
	Verify(plaintext, salt, digest string) bool
}

type TokenManager interface {
	Issue(username string) (string, error)
	Verify(token string) (string, error)
}
