package migrate

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/hashicorp/go-hclog"
	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&count)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	return count == 1
}

func TestLoadOrdersByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"002_second.up.sql":  {Data: []byte("CREATE TABLE b (id INTEGER)")},
		"001_first.up.sql":   {Data: []byte("CREATE TABLE a (id INTEGER)")},
		"001_first.down.sql": {Data: []byte("DROP TABLE a")},
		"README.md":          {Data: []byte("ignored")},
		"003_third.down.sql": {Data: []byte("orphan down is ignored")},
	}

	got, err := load(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(got))
	}
	if got[0].Version != 1 || got[0].Name != "first" || got[0].DownSQL == "" {
		t.Errorf("first migration = %+v", got[0])
	}
	if got[1].Version != 2 || got[1].DownSQL != "" {
		t.Errorf("second migration = %+v", got[1])
	}
}

func TestRunAllCreatesSchema(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	if err := RunAll(ctx, db); err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	for _, table := range []string{"trackers", "tracker_sessions", "schema_migrations"} {
		if !tableExists(t, db, table) {
			t.Errorf("table %s missing", table)
		}
	}

	all, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	version, dirty, err := New(db, nil).CurrentVersion(ctx)
	if err != nil {
		t.Fatalf("CurrentVersion: %v", err)
	}
	if dirty || version != all[len(all)-1].Version {
		t.Errorf("version = %d dirty = %v", version, dirty)
	}

	// A second run is a no-op.
	if err := RunAll(ctx, db); err != nil {
		t.Fatalf("second RunAll: %v", err)
	}
}

func TestMigrateDownAndUp(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	m := New(db, hclog.NewNullLogger())

	if err := m.To(ctx, -1); err != nil {
		t.Fatalf("up: %v", err)
	}
	if err := m.To(ctx, 1); err != nil {
		t.Fatalf("down to 1: %v", err)
	}
	if tableExists(t, db, "tracker_sessions") {
		t.Error("tracker_sessions should be dropped")
	}
	if !tableExists(t, db, "trackers") {
		t.Error("trackers should remain")
	}

	if err := m.To(ctx, 0); err != nil {
		t.Fatalf("down to 0: %v", err)
	}
	if tableExists(t, db, "trackers") {
		t.Error("trackers should be dropped")
	}
	version, _, err := m.CurrentVersion(ctx)
	if err != nil {
		t.Fatalf("CurrentVersion: %v", err)
	}
	if version != 0 {
		t.Errorf("version = %d, want 0", version)
	}

	if err := m.To(ctx, 2); err != nil {
		t.Fatalf("up to 2: %v", err)
	}
	if !tableExists(t, db, "tracker_sessions") {
		t.Error("tracker_sessions missing after re-applying")
	}
}

func TestDirtyDatabaseRefused(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	m := New(db, nil)

	if err := m.EnsureMigrationsTable(ctx); err != nil {
		t.Fatalf("EnsureMigrationsTable: %v", err)
	}
	if err := m.setVersion(ctx, 1, true); err != nil {
		t.Fatalf("setVersion: %v", err)
	}
	if err := m.To(ctx, -1); err == nil {
		t.Fatal("expected dirty state error")
	}
}
