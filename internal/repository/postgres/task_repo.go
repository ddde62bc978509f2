package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"
	repo "taskBoard/internal/repository"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const taskColumns = `id, user_id, title, details, photo, is_completed, alarm_time, repeat_days, due_date, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	t := &task.Task{}
	var days []string
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Details,
		&t.Photo,
		&t.IsCompleted,
		&t.AlarmTime,
		&days,
		&t.DueDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.RepeatDays = make([]task.Weekday, 0, len(days))
	for _, d := range days {
		t.RepeatDays = append(t.RepeatDays, task.Weekday(d))
	}
	task.SortWeekdays(t.RepeatDays)
	return t, nil
}

func repeatDays(t *task.Task) []string {
	return task.WeekdayStrings(t.RepeatDays)
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()
	defer warnIfSlow("create", start)

	query := `INSERT INTO tasks
				(user_id, title, details, photo, is_completed, alarm_time, repeat_days, due_date)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING id, created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.UserID,
		taskToCreate.Title,
		taskToCreate.Details,
		taskToCreate.Photo,
		taskToCreate.IsCompleted,
		taskToCreate.AlarmTime,
		repeatDays(taskToCreate),
		taskToCreate.DueDate,
	).Scan(&taskToCreate.ID, &taskToCreate.CreatedAt, &taskToCreate.UpdatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}
	return nil
}

func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()
	defer warnIfSlow("update", start)

	query := `UPDATE tasks
			SET title = $1,
				details = $2,
				photo = $3,
				is_completed = $4,
				alarm_time = $5,
				repeat_days = $6,
				due_date = $7,
				updated_at = GREATEST(NOW(), created_at)
			WHERE id = $8 AND user_id = $9
			RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		taskToUpdate.Title,
		taskToUpdate.Details,
		taskToUpdate.Photo,
		taskToUpdate.IsCompleted,
		taskToUpdate.AlarmTime,
		repeatDays(taskToUpdate),
		taskToUpdate.DueDate,
		taskToUpdate.ID,
		taskToUpdate.UserID,
	).Scan(&taskToUpdate.CreatedAt, &taskToUpdate.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Warn("Repository: Задача для обновления не найдена",
				zap.Int64("task_id", taskToUpdate.ID),
				zap.Int64("user_id", taskToUpdate.UserID))
			return repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, userID, id int64) (*task.Task, error) {
	start := time.Now()
	defer warnIfSlow("get", start)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`

	found, err := scanTask(s.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return found, nil
}

// ListByUser returns the user's tasks newest first.
func (s *Storage) ListByUser(ctx context.Context, userID int64) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY id DESC`
	return s.list(ctx, "list", query, userID)
}

// ListWithAlarms returns every open task that has an alarm set.
func (s *Storage) ListWithAlarms(ctx context.Context) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
				WHERE alarm_time IS NOT NULL AND alarm_time <> '' AND is_completed = FALSE
				ORDER BY id`
	return s.list(ctx, "list_alarms", query)
}

func (s *Storage) list(ctx context.Context, op, query string, args ...any) ([]*task.Task, error) {
	start := time.Now()
	defer warnIfSlow(op, start)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return tasks, nil
}

func (s *Storage) Delete(ctx context.Context, userID, id int64) error {
	start := time.Now()
	defer warnIfSlow("delete", start)

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		logger.Error("Repository: Удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}
