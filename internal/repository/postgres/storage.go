package postgres

import (
	"context"
	"fmt"
	"time"

	"taskBoard/internal/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// slowQuery is the threshold above which a single statement is reported.
const slowQuery = 100 * time.Millisecond

type Storage struct {
	pool *pgxpool.Pool
}

type Options struct {
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
	// ConnectTimeout bounds the whole retry loop of the initial ping.
	ConnectTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxConns:        10,
		MinConns:        2,
		MaxConnIdleTime: 5 * time.Minute,
		ConnectTimeout:  30 * time.Second,
	}
}

func New(ctx context.Context, connString string, opts Options) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}
	if opts.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = opts.ConnectTimeout
	if policy.MaxElapsedTime <= 0 {
		policy.MaxElapsedTime = DefaultOptions().ConnectTimeout
	}

	attempt := 0
	ping := func() error {
		attempt++
		if err := pool.Ping(ctx); err != nil {
			logger.Warn("Repository: PostgreSQL недоступен", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		return nil
	}
	if err := backoff.Retry(ping, backoff.WithContext(policy, ctx)); err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL", zap.Int("attempts", attempt))
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	if s.pool == nil {
		return
	}
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	logger.Debug("Repository: Соединение стабильно")
	return nil
}

func warnIfSlow(op string, start time.Time) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.String("op", op), zap.Duration("ms", elapsed))
	}
}
