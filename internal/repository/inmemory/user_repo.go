package inmemory

import (
	"context"

	"taskBoard/internal/models/user"
	repo "taskBoard/internal/repository"
)

func (s *Storage) CreateUser(ctx context.Context, u *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, exists := s.byUsername[u.Username]; exists {
		return repo.ErrAlreadyExists
	}

	s.nextUserID++
	u.ID = s.nextUserID
	u.CreatedAt = s.now().UTC()

	stored := *u
	s.users[u.ID] = &stored
	s.byUsername[u.Username] = u.ID
	return nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, repo.ErrNotFound
	}
	found := *s.users[id]
	return &found, nil
}

func (s *Storage) GetUserByID(ctx context.Context, id int64) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	found := *u
	return &found, nil
}
