package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// OpenMySQL connects to the MySQL server named by cfg.DSN.
func OpenMySQL(ctx context.Context, cfg Config, logger *slog.Logger) (*SQLStore, error) {
	dsn, err := mysqlDSN(cfg.DSN)
	if err != nil {
		return nil, newError(KindStoreUnavailable, "open store", err)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, newError(KindStoreUnavailable, "open store", fmt.Errorf("failed to open database: %w", err))
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	} else {
		db.SetMaxOpenConns(10)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	} else {
		db.SetMaxIdleConns(5)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	return newSQLStore(ctx, db, mysqlDialect, logger)
}

// mysqlDSN normalises a user-supplied DSN. Times are parsed into time.Time
// and UPDATE reports matched rather than changed rows, so renaming a task to
// its current title is not mistaken for a miss.
func mysqlDSN(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("mysql dsn is required")
	}

	cfg, err := mysql.ParseDSN(raw)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}

	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	cfg.Loc = time.UTC

	return cfg.FormatDSN(), nil
}
