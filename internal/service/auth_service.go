package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/user"
	repo "taskBoard/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 4
	maxUsernameLength = 50
)

type AuthService struct {
	users UserRepository
	cost  int
}

func NewAuthService(users UserRepository, cost int) *AuthService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{
		users: users,
		cost:  cost,
	}
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*user.User, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("хеширование пароля: %w", err)
	}

	u := &user.User{
		Username:     username,
		PasswordHash: string(hash),
	}

	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return nil, NewConflict("username already taken")
		}
		return nil, fmt.Errorf("создание пользователя: %w", err)
	}

	logger.Info("Service: Пользователь зарегистрирован",
		zap.Int64("user_id", u.ID),
		zap.String("username", u.Username))
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*user.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, NewValidationError("credentials", "username and password are required")
	}

	u, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewUnauthorized("invalid username or password")
		}
		return nil, fmt.Errorf("поиск пользователя: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		logger.Warn("Service: Неверный пароль", zap.String("username", username))
		return nil, NewUnauthorized("invalid username or password")
	}

	return u, nil
}

// Authenticate resolves the caller of a task request.
func (s *AuthService) Authenticate(ctx context.Context, userID int64) (*user.User, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewUnauthorized("unknown user")
		}
		return nil, fmt.Errorf("поиск пользователя: %w", err)
	}
	return u, nil
}

func validateCredentials(username, password string) error {
	if username == "" {
		return NewValidationError("username", "must not be empty")
	}
	if len([]rune(username)) > maxUsernameLength {
		return NewValidationError("username", "must be at most 50 characters")
	}
	if len(password) < MinPasswordLength {
		return NewValidationError("password", "must be at least 4 characters")
	}
	return nil
}
