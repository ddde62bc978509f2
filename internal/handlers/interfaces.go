package handlers

import (
	"context"

	"taskBoard/internal/models/task"
	"taskBoard/internal/models/user"
	"taskBoard/internal/service"
)

type TaskService interface {
	HealthCheck(ctx context.Context) error
	CreateTask(ctx context.Context, userID int64, in service.CreateTaskInput) (*task.Task, error)
	ListTasks(ctx context.Context, userID int64) ([]*task.Task, error)
	GetTask(ctx context.Context, userID, id int64) (*task.Task, error)
	UpdateTask(ctx context.Context, userID, id int64, options ...task.TaskOption) (*task.Task, error)
	DeleteTask(ctx context.Context, userID, id int64) error
}

type AuthService interface {
	Register(ctx context.Context, username, password string) (*user.User, error)
	Login(ctx context.Context, username, password string) (*user.User, error)
}
