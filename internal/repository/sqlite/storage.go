package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"taskBoard/internal/logger"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Storage is the single-file SQL backend built on gorm.
type Storage struct {
	db *gorm.DB
}

// zapWriter routes gorm's own log lines into the application logger.
type zapWriter struct{}

func (zapWriter) Printf(format string, args ...interface{}) {
	logger.Warn("Repository: gorm", zap.String("message", fmt.Sprintf(format, args...)))
}

func New(dsn string) (*Storage, error) {
	if dsn == "" {
		dsn = "taskboard.db"
	}
	if err := ensureDir(dsn); err != nil {
		return nil, err
	}

	dbLogger := gormlogger.New(zapWriter{}, gormlogger.Config{
		SlowThreshold:             100 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         dbLogger,
		TranslateError: true,
	})
	if err != nil {
		logger.Error("Repository: Не удалось открыть SQLite", err)
		return nil, fmt.Errorf("открытие sqlite: %w", err)
	}

	if err := db.AutoMigrate(&userRecord{}, &taskRecord{}); err != nil {
		logger.Error("Repository: Ошибка миграции SQLite", err)
		return nil, fmt.Errorf("миграция sqlite: %w", err)
	}

	logger.Info("Repository: SQLite готов", zap.String("dsn", dsn))
	return &Storage{db: db}, nil
}

func (s *Storage) Close() {
	sqlDB, err := s.db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("Repository: Ошибка закрытия SQLite", zap.Error(err))
		return
	}
	logger.Info("Repository: SQLite закрыт")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("получение соединения: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func ensureDir(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("создание каталога %q: %w", dir, err)
	}
	return nil
}
