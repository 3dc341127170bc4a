package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/emiliopalmerini/punchclock/migrations"
)

// Migration represents a single database migration with up and down SQL.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// Migrator applies the embedded migrations to a SQL store.
type Migrator struct {
	db  *sql.DB
	log hclog.Logger
}

// New returns a Migrator for db. A nil logger discards output.
func New(db *sql.DB, log hclog.Logger) *Migrator {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Migrator{db: db, log: log.Named("migrate")}
}

// EnsureMigrationsTable creates the schema_migrations table if it doesn't exist.
func (m *Migrator) EnsureMigrationsTable(ctx context.Context) error {
	var count int
	err := m.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pragma_table_info('schema_migrations') WHERE name = 'dirty'
	`).Scan(&count)

	if err != nil || count == 0 {
		if _, err := m.db.ExecContext(ctx, `DROP TABLE IF EXISTS schema_migrations`); err != nil {
			return err
		}
		_, err = m.db.ExecContext(ctx, `
			CREATE TABLE schema_migrations (
				version INTEGER PRIMARY KEY,
				dirty INTEGER NOT NULL DEFAULT 0
			)
		`)
		return err
	}

	return nil
}

// CurrentVersion returns the current migration version and dirty state.
func (m *Migrator) CurrentVersion(ctx context.Context) (int, bool, error) {
	var version int
	var dirty int

	err := m.db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	return version, dirty == 1, nil
}

func (m *Migrator) setVersion(ctx context.Context, version int, dirty bool) error {
	dirtyInt := 0
	if dirty {
		dirtyInt = 1
	}

	if _, err := m.db.ExecContext(ctx, `DELETE FROM schema_migrations`); err != nil {
		return err
	}

	if version > 0 {
		_, err := m.db.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES (?, ?)`, version, dirtyInt)
		return err
	}
	return nil
}

var upPattern = regexp.MustCompile(`^(\d+)_(.+)\.up\.sql$`)

// Load reads all embedded migration files and returns them sorted by version.
func Load() ([]Migration, error) {
	return load(migrations.FS)
}

func load(fsys fs.FS) ([]Migration, error) {
	var result []Migration

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		matches := upPattern.FindStringSubmatch(filepath.Base(path))
		if matches == nil {
			return nil
		}

		version, _ := strconv.Atoi(matches[1])
		name := matches[2]

		upSQL, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		downPath := fmt.Sprintf("%03d_%s.down.sql", version, name)
		downSQL, err := fs.ReadFile(fsys, downPath)
		if err != nil {
			downSQL = nil
		}

		result = append(result, Migration{
			Version: version,
			Name:    name,
			UpSQL:   string(upSQL),
			DownSQL: string(downSQL),
		})

		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Version < result[j].Version
	})

	return result, nil
}

func (m *Migrator) run(ctx context.Context, mig Migration, up bool) error {
	direction := "up"
	sqlContent := mig.UpSQL
	if !up {
		direction = "down"
		sqlContent = mig.DownSQL
	}

	m.log.Info("applying migration", "direction", direction, "version", mig.Version, "name", mig.Name)

	targetVersion := mig.Version
	if !up {
		targetVersion = mig.Version - 1
	}
	if err := m.setVersion(ctx, mig.Version, true); err != nil {
		return fmt.Errorf("failed to set dirty flag: %w", err)
	}

	for _, stmt := range SplitSQL(sqlContent) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration %d %s: %w\nSQL: %s", mig.Version, direction, err, stmt)
		}
	}

	if err := m.setVersion(ctx, targetVersion, false); err != nil {
		return fmt.Errorf("failed to clear dirty flag: %w", err)
	}

	return nil
}

// SplitSQL splits a SQL string by semicolons.
func SplitSQL(sql string) []string {
	return strings.Split(sql, ";")
}

// To migrates up or down to target. A negative target applies every
// pending migration.
func (m *Migrator) To(ctx context.Context, target int) error {
	if err := m.EnsureMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	current, dirty, err := m.CurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in dirty state at version %d, manual intervention required", current)
	}

	all, err := Load()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	switch {
	case target < 0:
		return m.up(ctx, all, current, int(^uint(0)>>1))
	case target > current:
		return m.up(ctx, all, current, target)
	case target < current:
		return m.down(ctx, all, current, target)
	default:
		m.log.Info("already at target version", "version", current)
		return nil
	}
}

func (m *Migrator) up(ctx context.Context, all []Migration, current, target int) error {
	count := 0
	for _, mig := range all {
		if mig.Version <= current {
			continue
		}
		if mig.Version > target {
			break
		}

		if err := m.run(ctx, mig, true); err != nil {
			return err
		}
		count++
	}

	if count == 0 {
		m.log.Info("no migrations to run", "version", current)
		return nil
	}
	version, _, _ := m.CurrentVersion(ctx)
	m.log.Info("migrated", "version", version, "applied", count)
	return nil
}

func (m *Migrator) down(ctx context.Context, all []Migration, current, target int) error {
	for i := len(all) - 1; i >= 0; i-- {
		mig := all[i]
		if mig.Version > current {
			continue
		}
		if mig.Version <= target {
			break
		}

		if mig.DownSQL == "" {
			return fmt.Errorf("no down migration for version %d", mig.Version)
		}

		if err := m.run(ctx, mig, false); err != nil {
			return err
		}
	}

	m.log.Info("migrated", "version", target)
	return nil
}

// RunAll runs all pending migrations on the provided database.
func RunAll(ctx context.Context, db *sql.DB) error {
	return New(db, nil).To(ctx, -1)
}
