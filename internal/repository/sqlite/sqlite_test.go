package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"taskBoard/internal/models/task"
	"taskBoard/internal/models/user"
	"taskBoard/internal/repository"
	"taskBoard/internal/repository/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) *sqlite.Storage {
	t.Helper()
	storage, err := sqlite.New(filepath.Join(t.TempDir(), "data", "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(storage.Close)
	return storage
}

// TestStorage_CreateAndGet тестирует сохранение всех полей задачи
func TestStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	storage := newStorage(t)
	require.NoError(t, storage.HealthCheck(ctx))

	alarm := "12:56"
	due := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	taskToCreate := &task.Task{
		UserID:     7,
		Title:      "Leap day",
		Details:    "once in four years",
		AlarmTime:  &alarm,
		RepeatDays: []task.Weekday{task.Fri, task.Mon},
		DueDate:    &due,
	}
	require.NoError(t, storage.Create(ctx, taskToCreate))
	assert.NotZero(t, taskToCreate.ID)
	assert.Equal(t, taskToCreate.CreatedAt, taskToCreate.UpdatedAt)

	got, err := storage.GetByID(ctx, 7, taskToCreate.ID)
	require.NoError(t, err)
	assert.Equal(t, "Leap day", got.Title)
	assert.Equal(t, "once in four years", got.Details)
	require.NotNil(t, got.AlarmTime)
	assert.Equal(t, "12:56", *got.AlarmTime)
	assert.Equal(t, []task.Weekday{task.Mon, task.Fri}, got.RepeatDays)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(due))

	_, err = storage.GetByID(ctx, 8, taskToCreate.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestStorage_Update тестирует очистку полей и порядок временных меток
func TestStorage_Update(t *testing.T) {
	ctx := context.Background()
	storage := newStorage(t)

	alarm := "08:00"
	due := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)
	tk := &task.Task{UserID: 1, Title: "Original", AlarmTime: &alarm, DueDate: &due, RepeatDays: []task.Weekday{task.Sun}}
	require.NoError(t, storage.Create(ctx, tk))

	tk.Title = "Changed"
	tk.IsCompleted = true
	tk.AlarmTime = nil
	tk.DueDate = nil
	tk.RepeatDays = []task.Weekday{}
	require.NoError(t, storage.Update(ctx, tk))

	got, err := storage.GetByID(ctx, 1, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Changed", got.Title)
	assert.True(t, got.IsCompleted)
	assert.Nil(t, got.AlarmTime)
	assert.Nil(t, got.DueDate)
	assert.Empty(t, got.RepeatDays)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	err = storage.Update(ctx, &task.Task{ID: tk.ID, UserID: 2, Title: "foreign"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestStorage_Lists тестирует выборки списков
func TestStorage_Lists(t *testing.T) {
	ctx := context.Background()
	storage := newStorage(t)

	alarm := "06:15"
	for i := 1; i <= 3; i++ {
		require.NoError(t, storage.Create(ctx, &task.Task{UserID: 1, Title: fmt.Sprintf("Task %d", i)}))
	}
	require.NoError(t, storage.Create(ctx, &task.Task{UserID: 2, Title: "alarm", AlarmTime: &alarm}))
	require.NoError(t, storage.Create(ctx, &task.Task{UserID: 2, Title: "done", AlarmTime: &alarm, IsCompleted: true}))

	tasks, err := storage.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "Task 3", tasks[0].Title)

	empty, err := storage.ListByUser(ctx, 99)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	alarms, err := storage.ListWithAlarms(ctx)
	require.NoError(t, err)
	require.Len(t, alarms, 1)
	assert.Equal(t, "alarm", alarms[0].Title)
}

// TestStorage_Delete тестирует удаление
func TestStorage_Delete(t *testing.T) {
	ctx := context.Background()
	storage := newStorage(t)

	tk := &task.Task{UserID: 1, Title: "bye"}
	require.NoError(t, storage.Create(ctx, tk))

	assert.ErrorIs(t, storage.Delete(ctx, 2, tk.ID), repository.ErrNotFound)
	require.NoError(t, storage.Delete(ctx, 1, tk.ID))
	assert.ErrorIs(t, storage.Delete(ctx, 1, tk.ID), repository.ErrNotFound)
}

// TestStorage_Users тестирует уникальность имени пользователя
func TestStorage_Users(t *testing.T) {
	ctx := context.Background()
	storage := newStorage(t)

	u := &user.User{Username: "alice", PasswordHash: "hash"}
	require.NoError(t, storage.CreateUser(ctx, u))
	assert.NotZero(t, u.ID)

	err := storage.CreateUser(ctx, &user.User{Username: "alice", PasswordHash: "again"})
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)

	byName, err := storage.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byID, err := storage.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", byID.PasswordHash)

	_, err = storage.GetUserByID(ctx, 404)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
