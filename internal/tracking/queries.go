package tracking

import (
	"context"

	"github.com/emiliopalmerini/punchclock/internal/domain"
	apperrors "github.com/emiliopalmerini/punchclock/internal/shared/errors"
)

// Status projects the employee's tracker as of now. An employee who never
// punched in gets the empty projection.
func (s *Service) Status(ctx context.Context, employeeID string) (domain.Status, error) {
	t, err := s.load(ctx, employeeID)
	if err != nil {
		return domain.Status{}, err
	}
	if t == nil {
		return domain.EmptyStatus(), nil
	}
	return t.Status(s.clock.Now(), s.rules), nil
}

// DailySummary returns the summary for a YYYY-MM-DD date, or nil when
// nothing was worked that day. An open session counts up to now.
func (s *Service) DailySummary(ctx context.Context, employeeID, date string) (*domain.DailySummary, error) {
	if _, err := domain.ParseDate(date); err != nil {
		return nil, apperrors.Validationf("invalid date %q, want YYYY-MM-DD", date)
	}
	t, err := s.load(ctx, employeeID)
	if err != nil || t == nil {
		return nil, err
	}

	now := s.clock.Now()
	view := t.View(now, s.rules)
	view.RecomputeDay(date, now, s.rules)
	sum, ok := view.Summary(date)
	if !ok {
		return nil, nil
	}
	return &sum, nil
}

// DateRange returns the summaries between two YYYY-MM-DD dates inclusive,
// oldest first.
func (s *Service) DateRange(ctx context.Context, employeeID, from, to string) ([]domain.DailySummary, error) {
	if from == "" || to == "" {
		return nil, apperrors.Validation("startDate and endDate are required")
	}
	start, err := domain.ParseDate(from)
	if err != nil {
		return nil, apperrors.Validationf("invalid startDate %q, want YYYY-MM-DD", from)
	}
	end, err := domain.ParseDate(to)
	if err != nil {
		return nil, apperrors.Validationf("invalid endDate %q, want YYYY-MM-DD", to)
	}
	if end.Before(start) {
		return nil, apperrors.Validation("endDate is before startDate")
	}

	t, err := s.load(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return []domain.DailySummary{}, nil
	}
	return t.View(s.clock.Now(), s.rules).SummariesBetween(from, to), nil
}

// Sessions returns up to limit archived sessions, newest first.
func (s *Service) Sessions(ctx context.Context, employeeID string, limit int) ([]domain.WorkSession, error) {
	t, err := s.load(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return []domain.WorkSession{}, nil
	}
	return t.History(limit), nil
}

// Session returns one of the employee's sessions. The open session is
// measured up to now.
func (s *Service) Session(ctx context.Context, tg Target) (*domain.WorkSession, error) {
	t, err := s.load(ctx, tg.EmployeeID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrSessionNotFound
	}
	session, _ := t.FindSession(tg.SessionID)
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	return session.Snapshot(s.clock.Now()), nil
}

// LookupSession resolves a session id without knowing its employee.
func (s *Service) LookupSession(ctx context.Context, sessionID string) (string, *domain.WorkSession, error) {
	t, err := s.repo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return "", nil, err
	}
	if t == nil {
		return "", nil, domain.ErrSessionNotFound
	}
	session, _ := t.FindSession(sessionID)
	if session == nil {
		return "", nil, domain.ErrSessionNotFound
	}
	return t.EmployeeID, session.Snapshot(s.clock.Now()), nil
}
