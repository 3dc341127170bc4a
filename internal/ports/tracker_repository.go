package ports

import (
	"context"

	"github.com/emiliopalmerini/punchclock/internal/domain"
	apperrors "github.com/emiliopalmerini/punchclock/internal/shared/errors"
)

// ErrVersionConflict is returned by Save when the stored tracker changed
// since it was loaded.
var ErrVersionConflict = apperrors.Conflict("tracker was modified concurrently")

// TrackerRepository persists one tracker document per employee.
//
// Get and GetBySessionID return nil, nil when nothing matches. Save is a
// compare-and-swap on Tracker.Version: a tracker with version 0 is
// inserted, any other version must match the stored one. On success the
// tracker's Version is advanced to the stored value.
type TrackerRepository interface {
	Get(ctx context.Context, employeeID string) (*domain.Tracker, error)
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Tracker, error)
	Save(ctx context.Context, t *domain.Tracker) error
	Delete(ctx context.Context, employeeID string) error
	// ListActive returns the ids of employees with an open session.
	ListActive(ctx context.Context) ([]string, error)
}
