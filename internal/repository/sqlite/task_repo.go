package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"
	"taskBoard/internal/models/user"
	repo "taskBoard/internal/repository"

	"gorm.io/gorm"
)

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	rec := toTaskRecord(taskToCreate)
	now := time.Now().UTC()
	rec.ID = 0
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err)
		return fmt.Errorf("добавление задачи: %w", err)
	}
	taskToCreate.ID = rec.ID
	taskToCreate.CreatedAt = rec.CreatedAt
	taskToCreate.UpdatedAt = rec.UpdatedAt
	return nil
}

func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	var existing taskRecord
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskToUpdate.ID, taskToUpdate.UserID).
		First(&existing).Error
	if err != nil {
		return notFoundOr(err, "обновление задачи")
	}

	rec := toTaskRecord(taskToUpdate)
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = time.Now().UTC()
	if rec.UpdatedAt.Before(rec.CreatedAt) {
		rec.UpdatedAt = rec.CreatedAt
	}

	// Save writes zero values and NULLs too, which is what clearing a field needs.
	if err := s.db.WithContext(ctx).Save(rec).Error; err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}
	taskToUpdate.CreatedAt = rec.CreatedAt.UTC()
	taskToUpdate.UpdatedAt = rec.UpdatedAt
	return nil
}

func (s *Storage) GetByID(ctx context.Context, userID, id int64) (*task.Task, error) {
	var rec taskRecord
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&rec).Error
	if err != nil {
		return nil, notFoundOr(err, "получение задачи")
	}
	return rec.toTask(), nil
}

// ListByUser returns the user's tasks newest first.
func (s *Storage) ListByUser(ctx context.Context, userID int64) ([]*task.Task, error) {
	var recs []taskRecord
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&recs).Error; err != nil {
		logger.Error("Repository: Не удалось получить задачи", err)
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return toTasks(recs), nil
}

// ListWithAlarms returns every open task that has an alarm set.
func (s *Storage) ListWithAlarms(ctx context.Context) ([]*task.Task, error) {
	var recs []taskRecord
	err := s.db.WithContext(ctx).
		Where("alarm_time IS NOT NULL AND alarm_time <> '' AND is_completed = ?", false).
		Order("id").
		Find(&recs).Error
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err)
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return toTasks(recs), nil
}

func (s *Storage) Delete(ctx context.Context, userID, id int64) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&taskRecord{})
	if res.Error != nil {
		logger.Error("Repository: Удаление задачи", res.Error)
		return fmt.Errorf("удаление задачи: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) CreateUser(ctx context.Context, u *user.User) error {
	rec := &userRecord{Username: u.Username, PasswordHash: u.PasswordHash, CreatedAt: time.Now().UTC()}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repo.ErrAlreadyExists
		}
		logger.Error("Repository: Не удалось создать пользователя", err)
		return fmt.Errorf("создание пользователя: %w", err)
	}
	u.ID = rec.ID
	u.CreatedAt = rec.CreatedAt
	return nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	var rec userRecord
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&rec).Error; err != nil {
		return nil, notFoundOr(err, "получение пользователя")
	}
	return rec.toUser(), nil
}

func (s *Storage) GetUserByID(ctx context.Context, id int64) (*user.User, error) {
	var rec userRecord
	if err := s.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, notFoundOr(err, "получение пользователя")
	}
	return rec.toUser(), nil
}

func toTasks(recs []taskRecord) []*task.Task {
	tasks := make([]*task.Task, 0, len(recs))
	for i := range recs {
		tasks = append(tasks, recs[i].toTask())
	}
	return tasks
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.ErrNotFound
	}
	logger.Error("Repository: "+op, err)
	return fmt.Errorf("%s: %w", op, err)
}
