package migrations

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"taskBoard/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed *.sql
var files embed.FS

// Up applies every pending migration to the database at connString.
func Up(connString string) error {
	m, err := newMigrate(connString)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	logger.Info("Migrations: Применение миграций")
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("Migrations: Схема актуальна")
			return nil
		}
		return fmt.Errorf("применение миграций: %w", err)
	}

	version, _, _ := m.Version()
	logger.Info("Migrations: Миграции применены", zap.Uint("version", version))
	return nil
}

// Down rolls every migration back.
func Down(connString string) error {
	m, err := newMigrate(connString)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	logger.Info("Migrations: Откат миграций")
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("откат миграций: %w", err)
	}
	return nil
}

func newMigrate(connString string) (*migrate.Migrate, error) {
	dbURL, err := driverURL(connString)
	if err != nil {
		return nil, err
	}

	source, err := iofs.New(files, ".")
	if err != nil {
		return nil, fmt.Errorf("источник миграций: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return nil, fmt.Errorf("инициализация миграций: %w", err)
	}
	return m, nil
}

func closeMigrate(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil || dbErr != nil {
		logger.Warn("Migrations: Ошибка закрытия", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
	}
}

// driverURL rewrites a postgres URL to the scheme registered by the pgx/v5 driver.
func driverURL(connString string) (string, error) {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(connString, prefix) {
			return "pgx5://" + strings.TrimPrefix(connString, prefix), nil
		}
	}
	if strings.HasPrefix(connString, "pgx5://") {
		return connString, nil
	}
	return "", fmt.Errorf("неподдерживаемая строка подключения для миграций: ожидается postgres://")
}
