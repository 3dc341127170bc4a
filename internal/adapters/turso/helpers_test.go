package turso_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/emiliopalmerini/punchclock/internal/infrastructure/database"
	"github.com/emiliopalmerini/punchclock/internal/migrate"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	client, err := database.New(database.Options{Driver: database.DriverSQLite, Ping: true})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	ctx := context.Background()
	if err := migrate.RunAll(ctx, client.DB); err != nil {
		_ = client.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() { _ = client.Close() })
	return client.DB
}
