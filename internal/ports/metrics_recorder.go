package ports

import (
	"context"
	"time"
)

// EventKind names a tracker state change worth measuring.
type EventKind string

const (
	EventPunchIn    EventKind = "punch_in"
	EventPunchOut   EventKind = "punch_out"
	EventBreakStart EventKind = "break_start"
	EventBreakEnd   EventKind = "break_end"
	EventIdle       EventKind = "idle"
)

// TrackerEvent carries the measurements of one state change. Fields not
// relevant to Kind are left zero.
type TrackerEvent struct {
	Kind       EventKind
	EmployeeID string
	SessionID  string
	BreakType  string
	AutoEnded  bool

	IdleMs            int64
	WorkMinutes       float64
	ProductiveMinutes float64
	BreakMinutes      float64

	At time.Time
}

// MetricsRecorder exports tracker events to an external observability system.
type MetricsRecorder interface {
	// RecordEvent records the measurements of a single event.
	RecordEvent(ctx context.Context, e *TrackerEvent) error
	// Close shuts down the recorder and flushes any pending metrics.
	Close(ctx context.Context) error
}
