package inmemory

import (
	"context"
	"sync"
	"time"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"
	"taskBoard/internal/models/user"
	repo "taskBoard/internal/repository"
)

// Storage keeps tasks and users in process memory. Values are cloned on the
// way in and out so callers never share state with the store.
type Storage struct {
	mtx    *sync.RWMutex
	tasks  map[int64]*task.Task
	ids    []int64
	nextID int64

	users      map[int64]*user.User
	byUsername map[string]int64
	nextUserID int64

	now func() time.Time
}

func NewStorage() *Storage {
	return &Storage{
		mtx:        &sync.RWMutex{},
		tasks:      make(map[int64]*task.Task),
		ids:        []int64{},
		users:      make(map[int64]*user.User),
		byUsername: make(map[string]int64),
		now:        time.Now,
	}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: Соединение стабильно")
	return nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.nextID++
	now := s.now().UTC()
	taskToCreate.ID = s.nextID
	taskToCreate.CreatedAt = now
	taskToCreate.UpdatedAt = now

	s.tasks[taskToCreate.ID] = taskToCreate.Clone()
	s.ids = append(s.ids, taskToCreate.ID)
	return nil
}

func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.tasks[taskToUpdate.ID]
	if !ok || existing.UserID != taskToUpdate.UserID {
		return repo.ErrNotFound
	}

	now := s.now().UTC()
	if now.Before(existing.CreatedAt) {
		now = existing.CreatedAt
	}
	taskToUpdate.CreatedAt = existing.CreatedAt
	taskToUpdate.UpdatedAt = now
	s.tasks[taskToUpdate.ID] = taskToUpdate.Clone()
	return nil
}

func (s *Storage) GetByID(ctx context.Context, userID, id int64) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.tasks[id]
	if !ok || taskToGet.UserID != userID {
		return nil, repo.ErrNotFound
	}
	return taskToGet.Clone(), nil
}

// ListByUser returns the user's tasks newest first.
func (s *Storage) ListByUser(ctx context.Context, userID int64) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for i := len(s.ids) - 1; i >= 0; i-- {
		t := s.tasks[s.ids[i]]
		if t.UserID != userID {
			continue
		}
		res = append(res, t.Clone())
	}
	return res, nil
}

// ListWithAlarms returns every open task that has an alarm set.
func (s *Storage) ListWithAlarms(ctx context.Context) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var res []*task.Task
	for _, id := range s.ids {
		t := s.tasks[id]
		if t.IsCompleted || !t.HasAlarm() {
			continue
		}
		res = append(res, t.Clone())
	}
	return res, nil
}

func (s *Storage) Delete(ctx context.Context, userID, id int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.tasks[id]
	if !ok || existing.UserID != userID {
		return repo.ErrNotFound
	}

	delete(s.tasks, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}
