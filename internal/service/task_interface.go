package service

import (
	"context"
	"io"

	"taskBoard/internal/models/task"
	"taskBoard/internal/models/user"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	Update(context.Context, *task.Task) error
	GetByID(ctx context.Context, userID, id int64) (*task.Task, error)
	ListByUser(ctx context.Context, userID int64) ([]*task.Task, error)
	ListWithAlarms(context.Context) ([]*task.Task, error)
	Delete(ctx context.Context, userID, id int64) error
}

type UserRepository interface {
	CreateUser(context.Context, *user.User) error
	GetUserByUsername(context.Context, string) (*user.User, error)
	GetUserByID(context.Context, int64) (*user.User, error)
}

// PhotoStore keeps uploaded task photos; Save returns the stored name.
type PhotoStore interface {
	Save(ctx context.Context, filename string, content io.Reader) (string, error)
	Delete(ctx context.Context, name string) error
}
