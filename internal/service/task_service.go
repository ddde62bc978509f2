package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"
	repo "taskBoard/internal/repository"
	"taskBoard/internal/storage/photo"

	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type TaskService struct {
	repo   TaskRepository
	photos PhotoStore
}

func NewTaskService(repo TaskRepository, photos PhotoStore) *TaskService {
	return &TaskService{
		repo:   repo,
		photos: photos,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка репозитория: %w", err)
	}
	return nil
}

func (s *TaskService) CreateTask(ctx context.Context, userID int64, in CreateTaskInput) (*task.Task, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}

	newTask := &task.Task{
		UserID:     userID,
		Title:      title,
		Details:    in.Details,
		RepeatDays: []task.Weekday{},
	}

	alarm, err := parseAlarm(in.AlarmTime)
	if err != nil {
		return nil, err
	}
	newTask.AlarmTime = alarm

	if len(in.RepeatDays) > 0 {
		days, err := task.ParseWeekdays(in.RepeatDays)
		if err != nil {
			return nil, NewValidationError("repeat_days", err.Error())
		}
		newTask.RepeatDays = days
	}

	if in.DueDate != "" {
		due, err := task.ParseDueDate(in.DueDate)
		if err != nil {
			return nil, NewValidationError("due_date", "expected YYYY-MM-DD")
		}
		newTask.DueDate = &due
	}

	if in.Photo != nil {
		if s.photos == nil {
			return nil, NewValidationError("photo", "photo uploads are disabled")
		}
		name, err := s.photos.Save(ctx, in.Photo.Filename, in.Photo.Content)
		if err != nil {
			if errors.Is(err, photo.ErrNotImage) || errors.Is(err, photo.ErrTooLarge) {
				return nil, NewValidationError("photo", err.Error())
			}
			return nil, fmt.Errorf("сохранение фото: %w", err)
		}
		newTask.Photo = name
	}

	if err := s.repo.Create(ctx, newTask); err != nil {
		if newTask.Photo != "" {
			s.removePhoto(ctx, newTask.Photo)
		}
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана",
		zap.Int64("task_id", newTask.ID),
		zap.Int64("user_id", userID))
	return newTask, nil
}

func (s *TaskService) ListTasks(ctx context.Context, userID int64) ([]*task.Task, error) {
	tasks, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) GetTask(ctx context.Context, userID, id int64) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, s.lookupError(err, id)
	}
	return t, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, userID, id int64, options ...task.TaskOption) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, s.lookupError(err, id)
	}

	task.Apply(t, options...)

	if err := s.repo.Update(ctx, t); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("task", id)
		}
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}
	return t, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, userID, id int64) error {
	t, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return s.lookupError(err, id)
	}

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound("task", id)
		}
		return fmt.Errorf("удаление задачи: %w", err)
	}

	if t.Photo != "" {
		s.removePhoto(ctx, t.Photo)
	}
	return nil
}

func (s *TaskService) lookupError(err error, id int64) error {
	if errors.Is(err, repo.ErrNotFound) {
		logger.Info("Service: Задача не найдена", zap.String("target_id", strconv.FormatInt(id, 10)))
		return NewNotFound("task", id)
	}
	return fmt.Errorf("получение задачи: %w", err)
}

func (s *TaskService) removePhoto(ctx context.Context, name string) {
	if s.photos == nil {
		return
	}
	if err := s.photos.Delete(ctx, name); err != nil {
		logger.Warn("Service: Не удалось удалить фото", zap.String("photo", name), zap.Error(err))
	}
}
