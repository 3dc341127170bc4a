package tracking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/emiliopalmerini/punchclock/internal/adapters/turso"
	"github.com/emiliopalmerini/punchclock/internal/domain"
	"github.com/emiliopalmerini/punchclock/internal/infrastructure/database"
	"github.com/emiliopalmerini/punchclock/internal/migrate"
	"github.com/emiliopalmerini/punchclock/internal/ports"
)

var testLoc = time.FixedZone("IST", 5*3600+30*60)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(hh, mm int) *fakeClock {
	return &fakeClock{now: time.Date(2026, time.March, 2, hh, mm, 0, 0, testLoc)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordedEvents struct {
	mu     sync.Mutex
	events []ports.TrackerEvent
}

func (r *recordedEvents) RecordEvent(_ context.Context, e *ports.TrackerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *e)
	return nil
}

func (r *recordedEvents) Close(context.Context) error { return nil }

func (r *recordedEvents) kinds() []ports.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ports.EventKind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

// conflictingRepo reports a version conflict for the first failures saves.
type conflictingRepo struct {
	ports.TrackerRepository
	mu       sync.Mutex
	failures int
	saves    int
}

func (r *conflictingRepo) Save(ctx context.Context, t *domain.Tracker) error {
	r.mu.Lock()
	r.saves++
	fail := r.saves <= r.failures
	r.mu.Unlock()
	if fail {
		return ports.ErrVersionConflict
	}
	return r.TrackerRepository.Save(ctx, t)
}

func testRepo(t *testing.T) *turso.TrackerRepository {
	t.Helper()

	client, err := database.New(database.Options{Driver: database.DriverSQLite, Ping: true})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	if err := migrate.RunAll(context.Background(), client.DB); err != nil {
		_ = client.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return turso.NewTrackerRepository(client.DB)
}

type fixture struct {
	svc    *Service
	clock  *fakeClock
	events *recordedEvents
	repo   ports.TrackerRepository
}

func newFixture(t *testing.T, policy domain.BreakPolicy) *fixture {
	t.Helper()
	return newFixtureWithRepo(t, policy, testRepo(t))
}

func newFixtureWithRepo(t *testing.T, policy domain.BreakPolicy, repo ports.TrackerRepository) *fixture {
	t.Helper()
	f := &fixture{clock: newFakeClock(9, 0), events: &recordedEvents{}, repo: repo}
	f.svc = NewService(Options{
		Repo:    repo,
		Metrics: f.events,
		Clock:   f.clock,
		Rules:   domain.Rules{Policy: policy, Location: testLoc},
		BackOff: func() backoff.BackOff { return &backoff.ZeroBackOff{} },
	})
	return f
}

func simplePolicy() domain.BreakPolicy {
	return domain.SimplePolicy{Catalog: domain.DefaultBreakCatalog()}
}

func gracePolicy() domain.BreakPolicy {
	return domain.GracePolicy{Catalog: domain.DefaultBreakCatalog()}
}
