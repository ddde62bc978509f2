package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"taskBoard/internal/config"
	"taskBoard/internal/handlers"
	"taskBoard/internal/logger"
	"taskBoard/internal/middleware"
	"taskBoard/internal/migrations"
	"taskBoard/internal/repository/inmemory"
	"taskBoard/internal/repository/postgres"
	"taskBoard/internal/repository/sqlite"
	"taskBoard/internal/service"
	"taskBoard/internal/storage/photo"
	"taskBoard/internal/tracing"
	"taskBoard/internal/worker"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/afero"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// MediaPrefix is where uploaded photos are served from.
const MediaPrefix = "/media/photos"

const serviceName = "taskboard-api"

// Storage is what every repository backend provides.
type Storage interface {
	service.TaskRepository
	service.UserRepository
}

type App struct {
	config    *config.Config
	fs        afero.Fs
	server    *http.Server
	handler   http.Handler
	storage   Storage
	tasks     *service.TaskService
	auth      *service.AuthService
	worker    *worker.AlarmWorker
	shutdowns []func() // функции для graceful shutdown
}

type Option func(*App)

// WithFs replaces the filesystem used for uploaded photos.
func WithFs(fs afero.Fs) Option {
	return func(a *App) {
		a.fs = fs
	}
}

func New(cfg *config.Config, opts ...Option) *App {
	a := &App{
		config:    cfg,
		fs:        afero.NewOsFs(),
		shutdowns: make([]func(), 0),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	stopTracing := tracing.Setup(serviceName)
	a.shutdowns = append(a.shutdowns, func() {
		if err := stopTracing(context.Background()); err != nil {
			logger.Warn("App: Ошибка остановки трассировки", zap.Error(err))
		}
	})

	if err := a.initStorage(ctx); err != nil {
		a.Shutdown()
		return nil, err
	}

	photos, err := photo.NewStore(a.fs, a.config.Storage.PhotoDir, a.config.Storage.MaxPhotoSize)
	if err != nil {
		a.Shutdown()
		return nil, fmt.Errorf("инициализация хранилища фото: %w", err)
	}

	a.tasks = service.NewTaskService(a.storage, photos)
	a.auth = service.NewAuthService(a.storage, a.config.Auth.BcryptCost)

	a.initRouter(photos)

	if a.config.Worker.Enabled {
		loc, err := time.LoadLocation(a.config.Worker.Timezone)
		if err != nil {
			logger.Warn("App: Неизвестная временная зона, используется локальная", zap.String("timezone", a.config.Worker.Timezone))
			loc = time.Local
		}
		a.worker = worker.NewAlarmWorker(a.storage, worker.LogNotifier{}, a.config.Worker.Schedule, loc)
	}

	logger.Info("App: Инициализация завершена",
		zap.String("repository", a.config.Repository.Type),
		zap.String("addr", a.config.GetServerAddr()))
	return a, nil
}

func (a *App) initStorage(ctx context.Context) error {
	switch a.config.Repository.Type {
	case config.RepoPostgres:
		if a.config.Database.Migrate {
			if err := migrations.Up(a.config.Database.URL); err != nil {
				return fmt.Errorf("миграции: %w", err)
			}
		}
		opts := postgres.Options{
			MaxConns:        a.config.Database.MaxConnections,
			MinConns:        a.config.Database.MinConnections,
			MaxConnIdleTime: a.config.Database.IdleTimeout,
			ConnectTimeout:  a.config.Database.ConnectTimeout,
		}
		storage, err := postgres.New(ctx, a.config.Database.URL, opts)
		if err != nil {
			return fmt.Errorf("подключение к postgres: %w", err)
		}
		a.storage = storage
		a.shutdowns = append(a.shutdowns, storage.Close)
	case config.RepoSQLite:
		storage, err := sqlite.New(a.config.SQLite.Path)
		if err != nil {
			return fmt.Errorf("подключение к sqlite: %w", err)
		}
		a.storage = storage
		a.shutdowns = append(a.shutdowns, storage.Close)
	default:
		a.storage = inmemory.NewStorage()
	}
	return nil
}

func (a *App) initRouter(photos *photo.Store) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.config.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.UserIDHeader, "X-Request-ID", "traceparent", "tracestate"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(middleware.RateLimit(a.config.Server.RateLimit))
	if a.config.Server.WriteTimeout > 0 {
		r.Use(chimw.Timeout(a.config.Server.WriteTimeout))
	}

	taskHandler := handlers.NewTaskHandler(a.tasks, MediaPrefix, a.config.Storage.MaxPhotoSize+1<<20)
	authHandler := handlers.NewAuthHandler(a.auth)
	handlers.Mount(r, taskHandler, authHandler, a.auth, photos.Handler())

	a.handler = otelhttp.NewHandler(r, serviceName)
}

// Router exposes the fully wired http handler.
func (a *App) Router() http.Handler {
	return a.handler
}

// Run serves http and the alarm worker until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.worker != nil {
		if err := a.worker.Start(ctx); err != nil {
			return err
		}
		a.shutdowns = append(a.shutdowns, a.worker.Stop)
	}

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.handler,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http сервер: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Server: Остановка...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("остановка сервера: %w", err)
	}
	return nil
}

// Shutdown releases resources in reverse order of acquisition.
func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
