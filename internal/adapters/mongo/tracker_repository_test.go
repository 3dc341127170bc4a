package mongo_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/emiliopalmerini/punchclock/internal/adapters/mongo"
	"github.com/emiliopalmerini/punchclock/internal/domain"
	"github.com/emiliopalmerini/punchclock/internal/ports"
)

var t0 = time.Date(2026, time.March, 2, 3, 30, 0, 0, time.UTC)

// testRepository starts a throwaway MongoDB container. It needs Docker,
// so it only runs when PUNCHCLOCK_TEST_MONGO=1.
func testRepository(t *testing.T) *mongo.TrackerRepository {
	t.Helper()
	if os.Getenv("PUNCHCLOCK_TEST_MONGO") != "1" {
		t.Skip("set PUNCHCLOCK_TEST_MONGO=1 to run MongoDB integration tests")
	}

	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("Failed to start mongo container: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}
	client, err := mongo.Connect(ctx, uri)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	repo := mongo.NewTrackerRepository(client.Database("punchclock_test"))
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}
	return repo
}

func TestMongoTrackerRepository(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	got, err := repo.Get(ctx, "emp-1")
	if err != nil || got != nil {
		t.Fatalf("Get missing = %+v, %v", got, err)
	}

	tr := domain.NewTracker("emp-1", t0)
	if _, err := tr.PunchIn(t0, domain.Rules{}); err != nil {
		t.Fatalf("PunchIn: %v", err)
	}
	if err := repo.Save(ctx, tr); err != nil {
		t.Fatalf("Save: %v", err)
	}

	stale, err := repo.GetBySessionID(ctx, tr.CurrentSession.ID)
	if err != nil || stale == nil {
		t.Fatalf("GetBySessionID = %+v, %v", stale, err)
	}

	if _, err := tr.PunchOut(t0.Add(time.Hour), domain.Rules{}); err != nil {
		t.Fatalf("PunchOut: %v", err)
	}
	if err := repo.Save(ctx, tr); err != nil {
		t.Fatalf("Save after punch-out: %v", err)
	}
	if err := repo.Save(ctx, stale); !errors.Is(err, ports.ErrVersionConflict) {
		t.Fatalf("stale save error = %v, want ErrVersionConflict", err)
	}

	dup := domain.NewTracker("emp-1", t0)
	if err := repo.Save(ctx, dup); !errors.Is(err, ports.ErrVersionConflict) {
		t.Fatalf("duplicate insert error = %v, want ErrVersionConflict", err)
	}

	got, err = repo.Get(ctx, "emp-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Version != 2 || got.IsActive || len(got.Sessions) != 1 {
		t.Errorf("stored tracker = version %d active %v sessions %d", got.Version, got.IsActive, len(got.Sessions))
	}
	if !got.Sessions[0].StartTime.Equal(t0) {
		t.Errorf("start = %v, want %v", got.Sessions[0].StartTime, t0)
	}

	archived, err := repo.GetBySessionID(ctx, got.Sessions[0].ID)
	if err != nil || archived == nil {
		t.Fatalf("archived session lookup = %+v, %v", archived, err)
	}

	ids, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ListActive = %v, want none", ids)
	}

	if err := repo.Delete(ctx, "emp-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := repo.Get(ctx, "emp-1"); got != nil {
		t.Error("tracker still present after delete")
	}
}
