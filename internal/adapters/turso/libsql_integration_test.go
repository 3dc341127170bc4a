package turso_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/emiliopalmerini/punchclock/internal/adapters/turso"
	"github.com/emiliopalmerini/punchclock/internal/domain"
	"github.com/emiliopalmerini/punchclock/internal/infrastructure/database"
	"github.com/emiliopalmerini/punchclock/internal/migrate"
)

// testLibSQLDB starts a libsql-server container and connects through the
// libsql driver. It needs Docker, so it only runs when
// PUNCHCLOCK_TEST_LIBSQL=1.
func testLibSQLDB(t *testing.T) *database.Client {
	t.Helper()
	if os.Getenv("PUNCHCLOCK_TEST_LIBSQL") != "1" {
		t.Skip("set PUNCHCLOCK_TEST_LIBSQL=1 to run libsql-server integration tests")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "ghcr.io/tursodatabase/libsql-server:latest",
		ExposedPorts: []string{"8080/tcp"},
		WaitingFor:   wait.ForHTTP("/health").WithPort("8080/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start libsql-server container: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	mappedPort, err := container.MappedPort(ctx, "8080")
	if err != nil {
		t.Fatalf("Failed to get mapped port: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	client, err := database.New(database.Options{
		Driver: database.DriverLibSQL,
		URL:    fmt.Sprintf("http://%s:%s", host, mappedPort.Port()),
		Ping:   true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to libsql-server: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := migrate.RunAll(ctx, client.DB); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return client
}

func TestTrackerRepository_LibSQLServer(t *testing.T) {
	client := testLibSQLDB(t)
	repo := turso.NewTrackerRepository(client.DB)
	ctx := context.Background()

	tr := newActiveTracker(t, "emp-remote")
	if err := repo.Save(ctx, tr); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := tr.PunchOut(t0.Add(8*time.Hour), domain.Rules{}); err != nil {
		t.Fatalf("PunchOut: %v", err)
	}
	if err := repo.Save(ctx, tr); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, err := repo.GetBySessionID(ctx, tr.Sessions[0].ID)
	if err != nil {
		t.Fatalf("GetBySessionID failed: %v", err)
	}
	if got == nil || got.EmployeeID != "emp-remote" || got.Version != 2 {
		t.Fatalf("got %+v", got)
	}
	if got.Sessions[0].Duration != 480 {
		t.Errorf("archived duration = %v, want 480", got.Sessions[0].Duration)
	}
}
