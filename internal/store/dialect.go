package store

import (
	"context"
	"database/sql"
	"fmt"
)

// dialect captures what differs between the SQL backends. Data statements
// are shared: both drivers accept '?' placeholders.
type dialect struct {
	name            string
	migrationsTable string
	tableExists     func(ctx context.Context, q querier, table string) (bool, error)
	columns         func(ctx context.Context, q querier, table string) (map[string]bool, error)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

var sqliteDialect = dialect{
	name: "sqlite3",
	migrationsTable: `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	tableExists: func(ctx context.Context, q querier, table string) (bool, error) {
		var n int
		err := q.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
		if err != nil {
			return false, fmt.Errorf("failed to check table %s: %w", table, err)
		}
		return n > 0, nil
	},
	columns: func(ctx context.Context, q querier, table string) (map[string]bool, error) {
		rows, err := q.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, table))
		if err != nil {
			return nil, fmt.Errorf("failed to query table info for %s: %w", table, err)
		}
		defer rows.Close()

		cols := make(map[string]bool)
		for rows.Next() {
			var (
				cid        int
				name       string
				typeName   string
				notNull    int
				defaultV   any
				primaryKey int
			)
			if err := rows.Scan(&cid, &name, &typeName, &notNull, &defaultV, &primaryKey); err != nil {
				return nil, fmt.Errorf("failed to scan table info for %s: %w", table, err)
			}
			cols[name] = true
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed iterating table info for %s: %w", table, err)
		}
		return cols, nil
	},
}

var mysqlDialect = dialect{
	name: "mysql",
	migrationsTable: `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT NOT NULL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB`,
	tableExists: func(ctx context.Context, q querier, table string) (bool, error) {
		var n int
		err := q.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM information_schema.tables
			WHERE table_schema = DATABASE() AND table_name = ?`, table).Scan(&n)
		if err != nil {
			return false, fmt.Errorf("failed to check table %s: %w", table, err)
		}
		return n > 0, nil
	},
	columns: func(ctx context.Context, q querier, table string) (map[string]bool, error) {
		rows, err := q.QueryContext(ctx, `
			SELECT column_name FROM information_schema.columns
			WHERE table_schema = DATABASE() AND table_name = ?`, table)
		if err != nil {
			return nil, fmt.Errorf("failed to query columns for %s: %w", table, err)
		}
		defer rows.Close()

		cols := make(map[string]bool)
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return nil, fmt.Errorf("failed to scan column for %s: %w", table, err)
			}
			cols[name] = true
		}
		return cols, rows.Err()
	},
}
