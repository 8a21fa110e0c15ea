package handlers

import (
	"context"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/service"
)

type TaskService interface {
	HealthCheck(ctx context.Context) error
	ListTasks(ctx context.Context, owner *user.User, filter task.Filter) ([]*task.Task, error)
	GetTask(ctx context.Context, id int64, owner *user.User) (*task.Task, error)
	CreateTask(ctx context.Context, in service.CreateTaskInput, owner *user.User) (*task.Task, error)
	UpdateTaskStatus(ctx context.Context, id int64, status task.Status, owner *user.User) (*task.Task, error)
	DeleteTask(ctx context.Context, id int64, owner *user.User) error
}

type UserService interface {
	SignUp(ctx context.Context, creds service.Credentials) (*user.User, error)
	SignIn(ctx context.Context, creds service.Credentials) (string, error)
}
