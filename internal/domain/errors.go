package domain

import apperrors "github.com/emiliopalmerini/punchclock/internal/shared/errors"

var (
	ErrAlreadyActive      = apperrors.Conflict("employee already has an active session")
	ErrNoActiveSession    = apperrors.Conflict("no active session")
	ErrSessionNotActive   = apperrors.Conflict("session is not active")
	ErrBreakAlreadyActive = apperrors.Conflict("a break is already active")
	ErrNoActiveBreak      = apperrors.Conflict("no active break")
	ErrIdleAlreadyStarted = apperrors.Conflict("an idle period is already open")
	ErrIdleNotStarted     = apperrors.Conflict("no idle period was started")
	ErrIdleDuringBreak    = apperrors.Conflict("idle time cannot be recorded during a break")

	ErrTrackerNotFound = apperrors.NotFound("tracker not found")
	ErrSessionNotFound = apperrors.NotFound("session not found")

	ErrUnknownBreakType = apperrors.Validation("unknown break type")
	ErrInvalidIdleTime  = apperrors.Validation("idle time must be positive")
	ErrNegativeCounter  = apperrors.Validation("activity counters must not be negative")
)
