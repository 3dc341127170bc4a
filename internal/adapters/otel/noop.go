package otel

import (
	"context"

	"github.com/emiliopalmerini/punchclock/internal/ports"
)

// NoOpRecorder is a metrics recorder that does nothing.
type NoOpRecorder struct{}

// NewNoOpRecorder creates a new no-op recorder for graceful degradation.
func NewNoOpRecorder() *NoOpRecorder {
	return &NoOpRecorder{}
}

func (r *NoOpRecorder) RecordEvent(ctx context.Context, e *ports.TrackerEvent) error {
	return nil
}

func (r *NoOpRecorder) Close(ctx context.Context) error {
	return nil
}
