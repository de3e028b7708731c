package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const memoryPath = ":memory:"

// NewSQLiteStore creates a new SQLite store with the given database path.
func NewSQLiteStore(dbPath string) (*SQLStore, error) {
	return OpenSQLite(context.Background(), dbPath, slog.Default())
}

// OpenSQLite opens (creating if needed) the SQLite database at dbPath.
func OpenSQLite(ctx context.Context, dbPath string, logger *slog.Logger) (*SQLStore, error) {
	if dbPath == "" {
		dbPath = memoryPath
	}

	if dbPath != memoryPath && !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, newError(KindStoreUnavailable, "open store", fmt.Errorf("failed to create data directory: %w", err))
		}
	}

	db, err := sql.Open("sqlite3", sqliteDSN(dbPath))
	if err != nil {
		return nil, newError(KindStoreUnavailable, "open store", fmt.Errorf("failed to open database: %w", err))
	}

	// A single connection serialises writers at the driver level and keeps
	// an in-memory database alive for the life of the store.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return newSQLStore(ctx, db, sqliteDialect, logger)
}

func sqliteDSN(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_foreign_keys=on&_busy_timeout=5000"
}
