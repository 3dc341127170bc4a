package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Tracker is the per-employee aggregate. It exclusively owns every
// session, break, idle period and summary recorded for the employee.
type Tracker struct {
	EmployeeID     string         `json:"employeeId" bson:"_id"`
	Version        int64          `json:"version" bson:"version"`
	IsActive       bool           `json:"isActive" bson:"isActive"`
	CurrentSession *WorkSession   `json:"currentSession" bson:"currentSession"`
	Sessions       []WorkSession  `json:"sessions" bson:"sessions"`
	DailySummaries []DailySummary `json:"dailySummaries" bson:"dailySummaries"`
	Overall        OverallStats   `json:"overallStats" bson:"overallStats"`
	Screenshots    []Screenshot   `json:"screenshots" bson:"screenshots"`
	Settings       Settings       `json:"settings" bson:"settings"`
	LastPunchIn    *time.Time     `json:"lastPunchIn" bson:"lastPunchIn,omitempty"`
	LastPunchOut   *time.Time     `json:"lastPunchOut" bson:"lastPunchOut,omitempty"`
	LastActivity   *time.Time     `json:"lastActivity" bson:"lastActivity,omitempty"`
	CreatedAt      time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// Screenshot is the metadata of an activity capture. The image itself
// lives elsewhere.
type Screenshot struct {
	ID        string    `json:"id" bson:"id"`
	SessionID string    `json:"sessionId" bson:"sessionId"`
	URL       string    `json:"url" bson:"url"`
	TakenAt   time.Time `json:"takenAt" bson:"takenAt"`
}

// Rules carries what state transitions need beyond the tracker itself.
type Rules struct {
	Policy   BreakPolicy
	Location *time.Location
}

func (r Rules) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

func (r Rules) policy() BreakPolicy {
	if r.Policy == nil {
		return SimplePolicy{Catalog: DefaultBreakCatalog()}
	}
	return r.Policy
}

// NewTracker returns an empty tracker for employeeID.
func NewTracker(employeeID string, now time.Time) *Tracker {
	return &Tracker{
		EmployeeID:     employeeID,
		Sessions:       []WorkSession{},
		DailySummaries: []DailySummary{},
		Screenshots:    []Screenshot{},
		Settings:       DefaultSettings(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Active returns the open session, if any.
func (t *Tracker) Active() (*WorkSession, bool) {
	if t.CurrentSession == nil || !t.CurrentSession.Active {
		return nil, false
	}
	return t.CurrentSession, true
}

func (t *Tracker) requireActive() (*WorkSession, error) {
	s, ok := t.Active()
	if !ok {
		return nil, ErrNoActiveSession
	}
	return s, nil
}

// FindSession looks a session up by id. current reports whether it is the
// open session.
func (t *Tracker) FindSession(id string) (s *WorkSession, current bool) {
	if t.CurrentSession != nil && t.CurrentSession.ID == id {
		return t.CurrentSession, true
	}
	for i := range t.Sessions {
		if t.Sessions[i].ID == id {
			return &t.Sessions[i], false
		}
	}
	return nil, false
}

// SessionIDs lists every session id the tracker owns.
func (t *Tracker) SessionIDs() []string {
	ids := make([]string, 0, len(t.Sessions)+1)
	for _, s := range t.Sessions {
		ids = append(ids, s.ID)
	}
	if t.CurrentSession != nil {
		ids = append(ids, t.CurrentSession.ID)
	}
	return ids
}

// History returns up to limit archived sessions, newest first. A limit of
// zero or less returns them all.
func (t *Tracker) History(limit int) []WorkSession {
	out := make([]WorkSession, len(t.Sessions))
	copy(out, t.Sessions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (t *Tracker) touch(now time.Time) {
	t.UpdatedAt = now
}

// PunchIn opens a new work session.
func (t *Tracker) PunchIn(now time.Time, r Rules) (*WorkSession, error) {
	if _, ok := t.Active(); ok {
		return nil, ErrAlreadyActive
	}
	s := newWorkSession(now)
	t.CurrentSession = s
	t.IsActive = true
	punchIn := now
	t.LastPunchIn = &punchIn
	t.LastActivity = &punchIn
	t.touch(now)
	t.recompute(now, r)
	return s, nil
}

// PunchOut closes the open session and archives it.
func (t *Tracker) PunchOut(now time.Time, r Rules) (*WorkSession, error) {
	s, err := t.requireActive()
	if err != nil {
		return nil, err
	}
	s.closeIdle(now)
	s.closeBreak(now, r.policy(), false)

	end := now
	s.EndTime = &end
	s.Active = false
	s.refresh(now)

	t.Sessions = append(t.Sessions, *s)
	t.CurrentSession = nil
	t.IsActive = false
	t.LastPunchOut = &end
	t.touch(now)
	t.recompute(now, r, DateKey(s.StartTime, r.location()))

	ended := t.Sessions[len(t.Sessions)-1]
	return &ended, nil
}

// StartBreak opens a break in the active session.
func (t *Tracker) StartBreak(now time.Time, r Rules, breakType BreakType, reason string, requestedMinutes int) (*Break, error) {
	s, err := t.requireActive()
	if err != nil {
		return nil, err
	}
	if s.ActiveBreak() != nil {
		return nil, ErrBreakAlreadyActive
	}
	breakType, plan, err := r.policy().Plan(breakType, requestedMinutes)
	if err != nil {
		return nil, err
	}
	s.closeIdle(now)

	s.Breaks = append(s.Breaks, Break{
		ID:             uuid.NewString(),
		Type:           breakType,
		Reason:         reason,
		StartTime:      now,
		PlannedMinutes: plan.Minutes,
		GraceMinutes:   plan.Grace,
		Active:         true,
	})
	t.touch(now)
	t.recompute(now, r)

	b := s.Breaks[len(s.Breaks)-1]
	return &b, nil
}

// EndBreak closes the active break.
func (t *Tracker) EndBreak(now time.Time, r Rules) (*Break, error) {
	s, err := t.requireActive()
	if err != nil {
		return nil, err
	}
	if s.ActiveBreak() == nil {
		return nil, ErrNoActiveBreak
	}
	b := *s.closeBreak(now, r.policy(), false)
	s.LastActivity = now
	last := now
	t.LastActivity = &last
	t.touch(now)
	t.recompute(now, r)
	return &b, nil
}

// AutoEndBreak closes the active break when the policy says it has run
// its course. It reports whether a break was closed.
func (t *Tracker) AutoEndBreak(now time.Time, r Rules) (*Break, bool, error) {
	s, err := t.requireActive()
	if err != nil {
		return nil, false, err
	}
	active := s.ActiveBreak()
	if active == nil {
		return nil, false, ErrNoActiveBreak
	}
	if !r.policy().AutoEndDue(*active, now) {
		return active, false, nil
	}
	b := *s.closeBreak(now, r.policy(), true)
	// Idle detection restarts from the end of the break.
	s.LastActivity = now
	last := now
	t.LastActivity = &last
	t.touch(now)
	t.recompute(now, r)
	return &b, true, nil
}

// AddIdleTime adds a client-measured idle span ending now. Break time is
// already deducted, so idle cannot be added while a break is open.
func (t *Tracker) AddIdleTime(now time.Time, r Rules, ms int64) (*WorkSession, error) {
	if ms <= 0 {
		return nil, ErrInvalidIdleTime
	}
	s, err := t.requireActive()
	if err != nil {
		return nil, err
	}
	if s.ActiveBreak() != nil {
		return nil, ErrIdleDuringBreak
	}
	end := now
	s.IdleTimeMs += ms
	s.IdlePeriods = append(s.IdlePeriods, IdlePeriod{
		StartTime:  now.Add(-time.Duration(ms) * time.Millisecond),
		EndTime:    &end,
		DurationMs: ms,
	})
	t.touch(now)
	t.recompute(now, r)
	return s, nil
}

// StartIdle opens an idle period at now.
func (t *Tracker) StartIdle(now time.Time, r Rules) (*IdlePeriod, error) {
	s, err := t.requireActive()
	if err != nil {
		return nil, err
	}
	if s.OpenIdle() != nil {
		return nil, ErrIdleAlreadyStarted
	}
	if s.ActiveBreak() != nil {
		return nil, ErrIdleDuringBreak
	}
	s.IdlePeriods = append(s.IdlePeriods, IdlePeriod{StartTime: now})
	t.touch(now)
	t.recompute(now, r)
	p := s.IdlePeriods[len(s.IdlePeriods)-1]
	return &p, nil
}

// EndIdle closes the open idle period and adds its length to the
// session's idle time. Ending an idle period that was never started is
// an error rather than a zero-length period.
func (t *Tracker) EndIdle(now time.Time, r Rules) (*IdlePeriod, error) {
	s, err := t.requireActive()
	if err != nil {
		return nil, err
	}
	if s.OpenIdle() == nil {
		return nil, ErrIdleNotStarted
	}
	p := *s.closeIdle(now)
	s.LastActivity = now
	last := now
	t.LastActivity = &last
	t.touch(now)
	t.recompute(now, r)
	return &p, nil
}

// DetectIdle opens an auto-detected idle period, backdated to the last
// activity, once more than threshold has passed without activity. Nothing
// is detected during a break or while an idle period is already open.
func (t *Tracker) DetectIdle(now time.Time, r Rules, threshold time.Duration) (*IdlePeriod, bool, error) {
	s, err := t.requireActive()
	if err != nil {
		return nil, false, err
	}
	if p := s.OpenIdle(); p != nil {
		return p, false, nil
	}
	if s.ActiveBreak() != nil {
		return nil, false, nil
	}
	if now.Sub(s.LastActivity) <= threshold {
		return nil, false, nil
	}
	s.IdlePeriods = append(s.IdlePeriods, IdlePeriod{StartTime: s.LastActivity, Auto: true})
	t.touch(now)
	t.recompute(now, r)
	p := s.IdlePeriods[len(s.IdlePeriods)-1]
	return &p, true, nil
}

// RecordActivity adds input counters and marks the employee as active,
// closing any open idle period.
func (t *Tracker) RecordActivity(now time.Time, r Rules, keystrokes, mouseClicks int64) (*WorkSession, error) {
	if keystrokes < 0 || mouseClicks < 0 {
		return nil, ErrNegativeCounter
	}
	s, err := t.requireActive()
	if err != nil {
		return nil, err
	}
	if t.Settings.TrackKeystrokes {
		s.Keystrokes += keystrokes
	}
	if t.Settings.TrackMouseClicks {
		s.MouseClicks += mouseClicks
	}
	s.closeIdle(now)
	s.LastActivity = now
	last := now
	t.LastActivity = &last
	t.touch(now)
	t.recompute(now, r)
	return s, nil
}

// RecordScreenshot stores screenshot metadata against the open session.
func (t *Tracker) RecordScreenshot(now time.Time, r Rules, url string) (*Screenshot, error) {
	s, err := t.requireActive()
	if err != nil {
		return nil, err
	}
	shot := Screenshot{
		ID:        uuid.NewString(),
		SessionID: s.ID,
		URL:       url,
		TakenAt:   now,
	}
	t.Screenshots = append(t.Screenshots, shot)
	s.Screenshots++
	t.touch(now)
	t.recompute(now, r)
	return &shot, nil
}
