package store

import (
	"context"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestMySQLDSN_SetsRequiredOptions(t *testing.T) {
	dsn, err := mysqlDSN("tasks:secret@tcp(127.0.0.1:3306)/tasklist")
	if err != nil {
		t.Fatalf("mysqlDSN failed: %v", err)
	}

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("normalised dsn does not parse: %v", err)
	}
	if !cfg.ParseTime {
		t.Error("expected parseTime to be enabled")
	}
	if !cfg.ClientFoundRows {
		t.Error("expected clientFoundRows to be enabled")
	}
	if cfg.DBName != "tasklist" {
		t.Errorf("expected database tasklist, got %q", cfg.DBName)
	}
	if cfg.Addr != "127.0.0.1:3306" {
		t.Errorf("expected address to be preserved, got %q", cfg.Addr)
	}
}

func TestMySQLDSN_Invalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "tasks@tcp(127.0.0.1:3306"} {
		if _, err := mysqlDSN(raw); err == nil {
			t.Errorf("mysqlDSN(%q): expected error", raw)
		}
	}
}

func TestOpenMySQL_MissingDSNIsUnavailable(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: DriverMySQL}, nil)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestMySQLMigrations_AreSingleStatements(t *testing.T) {
	migrations, err := loadMigrations(mysqlDialect.name)
	if err != nil {
		t.Fatalf("loadMigrations failed: %v", err)
	}

	for _, m := range migrations {
		if n := len(splitStatements(m.sql)); n == 0 {
			t.Errorf("migration %d_%s has no statements", m.version, m.name)
		}
	}
}
