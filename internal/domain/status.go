package domain

import "time"

// Status is the polling view of a tracker.
type Status struct {
	IsActive       bool          `json:"isActive"`
	CurrentSession *WorkSession  `json:"currentSession"`
	LastActivity   *time.Time    `json:"lastActivity"`
	TodaySummary   *DailySummary `json:"todaySummary"`
	OverallStats   OverallStats  `json:"overallStats"`
}

// Status projects the tracker as of now. The tracker is not modified.
func (t *Tracker) Status(now time.Time, r Rules) Status {
	view := t.View(now, r)

	st := Status{
		IsActive:     view.IsActive,
		LastActivity: view.LastActivity,
		OverallStats: view.Overall,
	}
	if s, ok := view.Active(); ok {
		st.CurrentSession = s
	}
	if today, ok := view.Summary(DateKey(now, r.location())); ok {
		st.TodaySummary = &today
	}
	return st
}

// View returns a copy of t with its derived fields measured up to now,
// including the day an overnight session started on.
func (t *Tracker) View(now time.Time, r Rules) *Tracker {
	view := t.Clone()
	var dates []string
	if s, ok := view.Active(); ok {
		dates = append(dates, DateKey(s.StartTime, r.location()))
	}
	view.recompute(now, r, dates...)
	return view
}

// EmptyStatus is the view of an employee who has never punched in.
func EmptyStatus() Status {
	return Status{}
}

// Snapshot returns a copy of the session with derived fields measured up
// to now.
func (s *WorkSession) Snapshot(now time.Time) *WorkSession {
	c := s.Clone()
	if c.Active {
		c.refresh(now)
	}
	return c
}

// Clone returns a copy of t that can be recomputed without touching t.
// Archived sessions are shared because recomputation never writes them.
func (t *Tracker) Clone() *Tracker {
	c := *t
	c.CurrentSession = t.CurrentSession.Clone()
	c.Sessions = append([]WorkSession(nil), t.Sessions...)
	c.DailySummaries = append([]DailySummary(nil), t.DailySummaries...)
	c.Screenshots = append([]Screenshot(nil), t.Screenshots...)
	return &c
}
