package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tasklist/internal/models"
)

// Store is the task persistence gateway. Every mutating call commits before
// it returns; implementations serialise all calls against their handle.
type Store interface {
	CreateTask(ctx context.Context, title string) (*models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	// ListTasks returns every task in insertion order.
	ListTasks(ctx context.Context) ([]models.Task, error)
	FindTasksByTitle(ctx context.Context, title string) ([]models.Task, error)
	CountTasks(ctx context.Context) (int, error)
	// UpdateTask replaces the title of the task identified by task.ID and
	// refreshes task from the stored row.
	UpdateTask(ctx context.Context, task *models.Task, title string) error
	DeleteTask(ctx context.Context, id string) error

	// Lifecycle
	Close() error
}

// Supported drivers.
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// IsSupportedDriver reports whether Open accepts name. An empty name and
// "sqlite" both select SQLite.
func IsSupportedDriver(name string) bool {
	switch name {
	case DriverSQLite, "sqlite", "", DriverMySQL, DriverMemory:
		return true
	default:
		return false
	}
}

// Config selects and tunes a Store backend.
type Config struct {
	Driver string
	// Path is the SQLite database file, or ":memory:".
	Path string
	// DSN is the MySQL data source name.
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open opens the backend named by cfg.Driver and brings its schema up to
// date. Failures are StoreUnavailable or SchemaMismatch errors.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		s   *SQLStore
		err error
	)
	switch cfg.Driver {
	case DriverSQLite, "sqlite", "":
		s, err = OpenSQLite(ctx, cfg.Path, logger)
	case DriverMySQL:
		s, err = OpenMySQL(ctx, cfg, logger)
	case DriverMemory:
		return NewMemoryStore(logger), nil
	default:
		return nil, newError(KindStoreUnavailable, "open store", fmt.Errorf("unsupported driver %q", cfg.Driver))
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func validateTitle(op, title string) (string, error) {
	if err := models.ValidateTitle(title); err != nil {
		return "", newError(KindInvalidTitle, op, err)
	}
	return models.NormalizeTitle(title), nil
}
