package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/user"
	repo "taskBoard/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

func (s *Storage) CreateUser(ctx context.Context, u *user.User) error {
	defer warnIfSlow("create_user", time.Now())

	query := `INSERT INTO users (username, password_hash)
				VALUES ($1, $2)
				RETURNING id, created_at`

	err := s.pool.QueryRow(ctx, query, u.Username, u.PasswordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repo.ErrAlreadyExists
		}
		logger.Error("Repository: Не удалось создать пользователя", err)
		return fmt.Errorf("создание пользователя: %w", err)
	}
	return nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.getUser(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`, username)
}

func (s *Storage) GetUserByID(ctx context.Context, id int64) (*user.User, error) {
	return s.getUser(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE id = $1`, id)
}

func (s *Storage) getUser(ctx context.Context, query string, arg any) (*user.User, error) {
	defer warnIfSlow("get_user", time.Now())

	u := &user.User{}
	err := s.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить пользователя", err)
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u, nil
}
