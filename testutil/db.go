// Package testutil provides shared helpers for integration tests.
// Helpers skip the calling test when TEST_DATABASE_URL or TEST_REDIS_URL is
// not set, so unit tests run without any backing services.
package testutil

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql

	"github.com/moonwavetravel/backend/internal/db"
)

// DatabaseURL returns TEST_DATABASE_URL, or "" when integration tests are off.
func DatabaseURL() string {
	return os.Getenv("TEST_DATABASE_URL")
}

// NewPool opens the same tuned pool the server uses, against TEST_DATABASE_URL.
// The pool is closed when the test finishes.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := db.Open(context.Background(), requireDSN(t), quietLogger())
	if err != nil {
		t.Fatalf("testutil.NewPool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// NewSQLDB opens a *sql.DB over the pgx stdlib driver, for tests that drive
// goose directly.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	sqlDB, err := sql.Open("pgx", requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: open: %v", err)
	}
	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		t.Fatalf("testutil.NewSQLDB: ping: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

// MustMigrate brings the schema at dsn up to date and panics on failure.
// Meant for TestMain, where no *testing.T exists.
func MustMigrate(dsn string) {
	if err := db.Migrate(context.Background(), dsn, quietLogger()); err != nil {
		panic("testutil.MustMigrate: " + err.Error())
	}
}

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := DatabaseURL()
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}
	return dsn
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
