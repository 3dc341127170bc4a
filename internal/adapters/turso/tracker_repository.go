package turso

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/emiliopalmerini/punchclock/internal/domain"
	"github.com/emiliopalmerini/punchclock/internal/infrastructure/database"
	"github.com/emiliopalmerini/punchclock/internal/ports"
)

const readRetries = 2

// TrackerRepository stores each tracker as a JSON document with a
// session-id index next to it.
type TrackerRepository struct {
	db *sql.DB
}

func NewTrackerRepository(db *sql.DB) *TrackerRepository {
	return &TrackerRepository{db: db}
}

func (r *TrackerRepository) Get(ctx context.Context, employeeID string) (*domain.Tracker, error) {
	return database.WithRetry(ctx, readRetries, func() (*domain.Tracker, error) {
		row := r.db.QueryRowContext(ctx,
			`SELECT version, document FROM trackers WHERE employee_id = ?`, employeeID)
		t, err := scanTracker(row)
		if err != nil {
			return nil, fmt.Errorf("failed to get tracker: %w", err)
		}
		return t, nil
	})
}

func (r *TrackerRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.Tracker, error) {
	return database.WithRetry(ctx, readRetries, func() (*domain.Tracker, error) {
		row := r.db.QueryRowContext(ctx, `
			SELECT t.version, t.document
			FROM trackers t
			JOIN tracker_sessions s ON s.employee_id = t.employee_id
			WHERE s.session_id = ?`, sessionID)
		t, err := scanTracker(row)
		if err != nil {
			return nil, fmt.Errorf("failed to get tracker by session: %w", err)
		}
		return t, nil
	})
}

func scanTracker(row *sql.Row) (*domain.Tracker, error) {
	var (
		version int64
		doc     string
	)
	if err := row.Scan(&version, &doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var t domain.Tracker
	if err := json.Unmarshal([]byte(doc), &t); err != nil {
		return nil, fmt.Errorf("decode tracker document: %w", err)
	}
	t.Version = version
	return &t, nil
}

// Save inserts or compare-and-swaps the tracker and indexes its sessions
// in one transaction.
func (r *TrackerRepository) Save(ctx context.Context, t *domain.Tracker) error {
	next := t.Version + 1
	stored := *t
	stored.Version = next
	doc, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("encode tracker document: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var res sql.Result
	if t.Version == 0 {
		res, err = tx.ExecContext(ctx, `
			INSERT INTO trackers (employee_id, version, is_active, document, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(employee_id) DO NOTHING`,
			t.EmployeeID, next, boolToInt(t.IsActive), string(doc),
			t.CreatedAt.UTC().Format(time.RFC3339), t.UpdatedAt.UTC().Format(time.RFC3339))
	} else {
		res, err = tx.ExecContext(ctx, `
			UPDATE trackers
			SET version = ?, is_active = ?, document = ?, updated_at = ?
			WHERE employee_id = ? AND version = ?`,
			next, boolToInt(t.IsActive), string(doc), t.UpdatedAt.UTC().Format(time.RFC3339),
			t.EmployeeID, t.Version)
	}
	if err != nil {
		return fmt.Errorf("failed to save tracker: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save tracker: %w", err)
	}
	if n == 0 {
		return ports.ErrVersionConflict
	}

	if err := indexSessions(ctx, tx, t); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tracker: %w", err)
	}
	t.Version = next
	return nil
}

func indexSessions(ctx context.Context, tx *sql.Tx, t *domain.Tracker) error {
	sessions := make([]domain.WorkSession, 0, len(t.Sessions)+1)
	sessions = append(sessions, t.Sessions...)
	if t.CurrentSession != nil {
		sessions = append(sessions, *t.CurrentSession)
	}

	for _, s := range sessions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tracker_sessions (session_id, employee_id, started_at)
			VALUES (?, ?, ?)
			ON CONFLICT(session_id) DO NOTHING`,
			s.ID, t.EmployeeID, s.StartTime.UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("failed to index session %s: %w", s.ID, err)
		}
	}
	return nil
}

func (r *TrackerRepository) Delete(ctx context.Context, employeeID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tracker_sessions WHERE employee_id = ?`, employeeID); err != nil {
		return fmt.Errorf("failed to delete tracker sessions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM trackers WHERE employee_id = ?`, employeeID); err != nil {
		return fmt.Errorf("failed to delete tracker: %w", err)
	}
	return tx.Commit()
}

func (r *TrackerRepository) ListActive(ctx context.Context) ([]string, error) {
	return database.WithRetry(ctx, readRetries, func() ([]string, error) {
		rows, err := r.db.QueryContext(ctx,
			`SELECT employee_id FROM trackers WHERE is_active = 1 ORDER BY employee_id`)
		if err != nil {
			return nil, fmt.Errorf("failed to list active trackers: %w", err)
		}
		defer rows.Close()

		ids := []string{}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, rows.Err()
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
