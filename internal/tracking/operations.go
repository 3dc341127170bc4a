package tracking

import (
	"context"
	"time"

	"github.com/emiliopalmerini/punchclock/internal/domain"
	"github.com/emiliopalmerini/punchclock/internal/ports"
)

// Target names the session an operation applies to. An empty SessionID
// means the employee's open session. A non-empty one must be that open
// session.
type Target struct {
	EmployeeID string
	SessionID  string
}

// Employee targets the employee's open session.
func Employee(id string) Target {
	return Target{EmployeeID: id}
}

func (tg Target) check(t *domain.Tracker) error {
	if tg.SessionID == "" {
		return nil
	}
	s, current := t.FindSession(tg.SessionID)
	if s == nil {
		return domain.ErrSessionNotFound
	}
	if !current || !s.Active {
		return domain.ErrSessionNotActive
	}
	return nil
}

// PunchIn opens a session. A session id in tg is ignored.
func (s *Service) PunchIn(ctx context.Context, tg Target) (*domain.WorkSession, domain.Status, error) {
	var session *domain.WorkSession
	t, now, err := s.mutate(ctx, tg.EmployeeID, true, func(t *domain.Tracker, now time.Time) error {
		var err error
		session, err = t.PunchIn(now, s.rules)
		return err
	})
	if err != nil {
		return nil, domain.Status{}, err
	}

	s.log.Info("punched in", "employee", tg.EmployeeID, "session", session.ID)
	s.record(ctx, &ports.TrackerEvent{
		Kind:       ports.EventPunchIn,
		EmployeeID: tg.EmployeeID,
		SessionID:  session.ID,
		At:         now,
	})
	return session.Clone(), t.Status(now, s.rules), nil
}

// PunchOut closes the open session and returns it as archived.
func (s *Service) PunchOut(ctx context.Context, tg Target) (*domain.WorkSession, domain.Status, error) {
	var ended *domain.WorkSession
	t, now, err := s.mutate(ctx, tg.EmployeeID, false, func(t *domain.Tracker, now time.Time) error {
		if err := tg.check(t); err != nil {
			return err
		}
		var err error
		ended, err = t.PunchOut(now, s.rules)
		return err
	})
	if err != nil {
		return nil, domain.Status{}, err
	}

	s.log.Info("punched out", "employee", tg.EmployeeID, "session", ended.ID,
		"duration", ended.Duration, "productive", ended.ProductiveTime)
	s.record(ctx, &ports.TrackerEvent{
		Kind:              ports.EventPunchOut,
		EmployeeID:        tg.EmployeeID,
		SessionID:         ended.ID,
		WorkMinutes:       ended.Duration,
		ProductiveMinutes: ended.ProductiveTime,
		At:                now,
	})
	return ended, t.Status(now, s.rules), nil
}

// BreakRequest describes a break to start. Minutes is an optional
// client-chosen length used by policies that plan breaks.
type BreakRequest struct {
	Type    domain.BreakType
	Reason  string
	Minutes int
}

// StartBreak opens a break in the targeted session.
func (s *Service) StartBreak(ctx context.Context, tg Target, req BreakRequest) (*domain.Break, *domain.WorkSession, error) {
	var b *domain.Break
	t, now, err := s.mutate(ctx, tg.EmployeeID, false, func(t *domain.Tracker, now time.Time) error {
		if err := tg.check(t); err != nil {
			return err
		}
		var err error
		b, err = t.StartBreak(now, s.rules, req.Type, req.Reason, req.Minutes)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("break started", "employee", tg.EmployeeID, "type", b.Type, "planned", b.PlannedMinutes)
	s.record(ctx, &ports.TrackerEvent{
		Kind:       ports.EventBreakStart,
		EmployeeID: tg.EmployeeID,
		SessionID:  t.CurrentSession.ID,
		BreakType:  string(b.Type),
		At:         now,
	})
	return b, t.CurrentSession.Snapshot(now), nil
}

// EndBreak closes the active break.
func (s *Service) EndBreak(ctx context.Context, tg Target) (*domain.Break, *domain.WorkSession, error) {
	var b *domain.Break
	t, now, err := s.mutate(ctx, tg.EmployeeID, false, func(t *domain.Tracker, now time.Time) error {
		if err := tg.check(t); err != nil {
			return err
		}
		var err error
		b, err = t.EndBreak(now, s.rules)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.breakEnded(ctx, tg.EmployeeID, t.CurrentSession.ID, b, now)
	return b, t.CurrentSession.Snapshot(now), nil
}

// AutoEndBreak closes the active break if the break policy says it is
// due. It reports whether the break was closed.
func (s *Service) AutoEndBreak(ctx context.Context, tg Target) (*domain.Break, bool, error) {
	var (
		b     *domain.Break
		ended bool
	)
	t, now, err := s.mutate(ctx, tg.EmployeeID, false, func(t *domain.Tracker, now time.Time) error {
		if err := tg.check(t); err != nil {
			return err
		}
		var err error
		b, ended, err = t.AutoEndBreak(now, s.rules)
		if err == nil && !ended {
			return errNoChange
		}
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if ended {
		s.breakEnded(ctx, tg.EmployeeID, t.CurrentSession.ID, b, now)
	}
	return b, ended, nil
}

func (s *Service) breakEnded(ctx context.Context, employeeID, sessionID string, b *domain.Break, now time.Time) {
	s.log.Info("break ended", "employee", employeeID, "type", b.Type,
		"duration", b.Duration, "auto", b.AutoEnded, "grace_ms", b.GraceCreditMs)
	s.record(ctx, &ports.TrackerEvent{
		Kind:         ports.EventBreakEnd,
		EmployeeID:   employeeID,
		SessionID:    sessionID,
		BreakType:    string(b.Type),
		AutoEnded:    b.AutoEnded,
		BreakMinutes: b.Duration,
		At:           now,
	})
}

// AddIdleTime adds a client-measured idle span to the open session.
func (s *Service) AddIdleTime(ctx context.Context, tg Target, ms int64) (*domain.WorkSession, error) {
	var session *domain.WorkSession
	_, now, err := s.mutate(ctx, tg.EmployeeID, false, func(t *domain.Tracker, now time.Time) error {
		if err := tg.check(t); err != nil {
			return err
		}
		var err error
		session, err = t.AddIdleTime(now, s.rules, ms)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.idleRecorded(ctx, tg.EmployeeID, session.ID, ms, now)
	return session.Snapshot(now), nil
}

// StartIdle opens an idle period.
func (s *Service) StartIdle(ctx context.Context, tg Target) (*domain.IdlePeriod, error) {
	var p *domain.IdlePeriod
	_, _, err := s.mutate(ctx, tg.EmployeeID, false, func(t *domain.Tracker, now time.Time) error {
		if err := tg.check(t); err != nil {
			return err
		}
		var err error
		p, err = t.StartIdle(now, s.rules)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("idle started", "employee", tg.EmployeeID)
	return p, nil
}

// EndIdle closes the open idle period.
func (s *Service) EndIdle(ctx context.Context, tg Target) (*domain.IdlePeriod, *domain.WorkSession, error) {
	var p *domain.IdlePeriod
	t, now, err := s.mutate(ctx, tg.EmployeeID, false, func(t *domain.Tracker, now time.Time) error {
		if err := tg.check(t); err != nil {
			return err
		}
		var err error
		p, err = t.EndIdle(now, s.rules)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.idleRecorded(ctx, tg.EmployeeID, t.CurrentSession.ID, p.DurationMs, now)
	return p, t.CurrentSession.Snapshot(now), nil
}

// DetectIdle opens an auto-detected idle period when the employee has
// been inactive past their idle threshold.
func (s *Service) DetectIdle(ctx context.Context, tg Target) (*domain.IdlePeriod, bool, error) {
	var (
		p      *domain.IdlePeriod
		opened bool
	)
	_, _, err := s.mutate(ctx, tg.EmployeeID, false, func(t *domain.Tracker, now time.Time) error {
		if err := tg.check(t); err != nil {
			return err
		}
		var err error
		p, opened, err = t.DetectIdle(now, s.rules, s.thresholdFor(t))
		if err == nil && !opened {
			return errNoChange
		}
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if opened {
		s.log.Debug("idle detected", "employee", tg.EmployeeID, "since", p.StartTime)
	}
	return p, opened, nil
}

func (s *Service) thresholdFor(t *domain.Tracker) time.Duration {
	if secs := t.Settings.IdleThresholdSeconds; secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return s.idleThreshold
}

func (s *Service) idleRecorded(ctx context.Context, employeeID, sessionID string, ms int64, now time.Time) {
	s.log.Debug("idle recorded", "employee", employeeID, "ms", ms)
	s.record(ctx, &ports.TrackerEvent{
		Kind:       ports.EventIdle,
		EmployeeID: employeeID,
		SessionID:  sessionID,
		IdleMs:     ms,
		At:         now,
	})
}

// RecordActivity adds input counters and closes any open idle period.
func (s *Service) RecordActivity(ctx context.Context, tg Target, keystrokes, mouseClicks int64) (*domain.WorkSession, error) {
	var (
		session *domain.WorkSession
		closed  int64
	)
	_, now, err := s.mutate(ctx, tg.EmployeeID, false, func(t *domain.Tracker, now time.Time) error {
		if err := tg.check(t); err != nil {
			return err
		}
		before := int64(0)
		if cur, ok := t.Active(); ok {
			before = cur.IdleTimeMs
		}
		var err error
		session, err = t.RecordActivity(now, s.rules, keystrokes, mouseClicks)
		if err == nil {
			closed = session.IdleTimeMs - before
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if closed > 0 {
		s.idleRecorded(ctx, tg.EmployeeID, session.ID, closed, now)
	}
	return session.Snapshot(now), nil
}

// RecordScreenshot stores screenshot metadata for the open session.
func (s *Service) RecordScreenshot(ctx context.Context, tg Target, url string) (*domain.Screenshot, error) {
	var shot *domain.Screenshot
	_, _, err := s.mutate(ctx, tg.EmployeeID, false, func(t *domain.Tracker, now time.Time) error {
		if err := tg.check(t); err != nil {
			return err
		}
		var err error
		shot, err = t.RecordScreenshot(now, s.rules, url)
		return err
	})
	if err != nil {
		return nil, err
	}
	return shot, nil
}

// UpdateSettings applies a settings patch, creating the tracker if the
// employee has none yet.
func (s *Service) UpdateSettings(ctx context.Context, employeeID string, patch map[string]any) (domain.Settings, []string, error) {
	var applied []string
	t, _, err := s.mutate(ctx, employeeID, true, func(t *domain.Tracker, now time.Time) error {
		var err error
		applied, err = t.UpdateSettings(patch)
		if err != nil {
			return err
		}
		if len(applied) == 0 && t.Version > 0 {
			return errNoChange
		}
		t.UpdatedAt = now
		return nil
	})
	if err != nil {
		return domain.Settings{}, nil, err
	}
	if len(applied) > 0 {
		s.log.Info("settings updated", "employee", employeeID, "keys", applied)
	}
	return t.Settings, applied, nil
}
