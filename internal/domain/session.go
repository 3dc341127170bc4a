package domain

import (
	"time"

	"github.com/google/uuid"
)

// WorkSession is one punch-in to punch-out span.
type WorkSession struct {
	ID                 string       `json:"sessionId" bson:"sessionId"`
	StartTime          time.Time    `json:"startTime" bson:"startTime"`
	EndTime            *time.Time   `json:"endTime" bson:"endTime,omitempty"`
	Duration           float64      `json:"duration" bson:"duration"`
	Active             bool         `json:"isActive" bson:"isActive"`
	IdleTimeMs         int64        `json:"idleTime" bson:"idleTime"`
	GraceTimeMs        int64        `json:"graceTimeMs" bson:"graceTimeMs"`
	Keystrokes         int64        `json:"keystrokes" bson:"keystrokes"`
	MouseClicks        int64        `json:"mouseClicks" bson:"mouseClicks"`
	Screenshots        int64        `json:"screenshots" bson:"screenshots"`
	LastActivity       time.Time    `json:"lastActivity" bson:"lastActivity"`
	Breaks             []Break      `json:"breaks" bson:"breaks"`
	IdlePeriods        []IdlePeriod `json:"idlePeriods" bson:"idlePeriods"`
	TotalBreakTime     float64      `json:"totalBreakTime" bson:"totalBreakTime"`
	ProductiveTime     float64      `json:"productiveTime" bson:"productiveTime"`
	ActivityPercentage float64      `json:"activityPercentage" bson:"activityPercentage"`
}

// Break is a pause inside a work session. Durations are minutes.
type Break struct {
	ID             string     `json:"id" bson:"id"`
	Type           BreakType  `json:"breakType" bson:"breakType"`
	Reason         string     `json:"reason" bson:"reason"`
	StartTime      time.Time  `json:"startTime" bson:"startTime"`
	EndTime        *time.Time `json:"endTime" bson:"endTime,omitempty"`
	Duration       float64    `json:"duration" bson:"duration"`
	PlannedMinutes int        `json:"plannedMinutes" bson:"plannedMinutes"`
	GraceMinutes   int        `json:"graceMinutes" bson:"graceMinutes"`
	Active         bool       `json:"isActive" bson:"isActive"`
	AutoEnded      bool       `json:"autoEnded" bson:"autoEnded"`
	GraceCreditMs  int64      `json:"graceCreditMs" bson:"graceCreditMs"`
}

// IdlePeriod is a span without user activity.
type IdlePeriod struct {
	StartTime  time.Time  `json:"startTime" bson:"startTime"`
	EndTime    *time.Time `json:"endTime" bson:"endTime,omitempty"`
	DurationMs int64      `json:"durationMs" bson:"durationMs"`
	Auto       bool       `json:"autoDetected" bson:"autoDetected"`
}

func newWorkSession(now time.Time) *WorkSession {
	return &WorkSession{
		ID:           uuid.NewString(),
		StartTime:    now,
		Active:       true,
		LastActivity: now,
		Breaks:       []Break{},
		IdlePeriods:  []IdlePeriod{},
	}
}

// ActiveBreak returns the open break, if any.
func (s *WorkSession) ActiveBreak() *Break {
	for i := range s.Breaks {
		if s.Breaks[i].Active {
			return &s.Breaks[i]
		}
	}
	return nil
}

// OpenIdle returns the open idle period, if any.
func (s *WorkSession) OpenIdle() *IdlePeriod {
	for i := range s.IdlePeriods {
		if s.IdlePeriods[i].EndTime == nil {
			return &s.IdlePeriods[i]
		}
	}
	return nil
}

func (s *WorkSession) closeIdle(now time.Time) *IdlePeriod {
	p := s.OpenIdle()
	if p == nil {
		return nil
	}
	end := now
	p.EndTime = &end
	if ms := now.Sub(p.StartTime).Milliseconds(); ms > 0 {
		p.DurationMs = ms
	}
	s.IdleTimeMs += p.DurationMs
	return p
}

// charged is the break time taken out of the session for a break that
// lasted taken minutes. A planned break that ended early is charged in
// full, since the unused part comes back as grace.
func (b Break) charged(taken float64) float64 {
	if !b.Active && b.GraceCreditMs > 0 && taken < float64(b.PlannedMinutes) {
		return float64(b.PlannedMinutes)
	}
	return taken
}

func (s *WorkSession) closeBreak(now time.Time, policy BreakPolicy, auto bool) *Break {
	b := s.ActiveBreak()
	if b == nil {
		return nil
	}
	end := now
	b.EndTime = &end
	b.Duration = minutesBetween(b.StartTime, now)
	b.Active = false
	b.AutoEnded = auto
	b.GraceCreditMs = policy.Credit(*b)
	s.GraceTimeMs += b.GraceCreditMs
	return b
}

// refresh recomputes the derived fields. An open session, break or idle
// period is measured up to now without being closed.
func (s *WorkSession) refresh(now time.Time) {
	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}
	s.Duration = minutesBetween(s.StartTime, end)

	var breakMinutes, chargedMinutes float64
	for _, b := range s.Breaks {
		taken := b.Duration
		if b.Active {
			taken = minutesBetween(b.StartTime, end)
		}
		breakMinutes += taken
		chargedMinutes += b.charged(taken)
	}
	s.TotalBreakTime = round2(breakMinutes)

	idleMs := s.IdleTimeMs
	if p := s.OpenIdle(); p != nil && end.After(p.StartTime) {
		idleMs += end.Sub(p.StartTime).Milliseconds()
	}

	productive := s.Duration - chargedMinutes - msToMinutes(idleMs) + msToMinutes(s.GraceTimeMs)
	if productive < 0 {
		productive = 0
	}
	if productive > s.Duration {
		productive = s.Duration
	}
	s.ProductiveTime = round2(productive)

	if s.Duration > 0 {
		s.ActivityPercentage = s.ProductiveTime / s.Duration * 100
	} else {
		s.ActivityPercentage = 0
	}
}

// idleMinutes is the idle time counted so far, open period included.
func (s *WorkSession) idleMinutes(now time.Time) float64 {
	ms := s.IdleTimeMs
	if p := s.OpenIdle(); p != nil && now.After(p.StartTime) {
		ms += now.Sub(p.StartTime).Milliseconds()
	}
	return msToMinutes(ms)
}

// Clone returns a deep copy of s.
func (s *WorkSession) Clone() *WorkSession {
	if s == nil {
		return nil
	}
	c := *s
	c.Breaks = make([]Break, len(s.Breaks))
	copy(c.Breaks, s.Breaks)
	c.IdlePeriods = make([]IdlePeriod, len(s.IdlePeriods))
	copy(c.IdlePeriods, s.IdlePeriods)
	return &c
}
