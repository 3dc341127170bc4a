package domain

import (
	"errors"
	"testing"
	"time"
)

func TestIdleStartEnd(t *testing.T) {
	r := simpleRules()
	tr := NewTracker("emp-1", at(9, 0, 0))
	s := mustPunchIn(t, tr, at(9, 0, 0), r)

	if _, err := tr.StartIdle(at(10, 0, 0), r); err != nil {
		t.Fatalf("StartIdle: %v", err)
	}
	if _, err := tr.StartIdle(at(10, 0, 10), r); !errors.Is(err, ErrIdleAlreadyStarted) {
		t.Fatalf("second StartIdle error = %v", err)
	}
	p, err := tr.EndIdle(at(10, 0, 45), r)
	if err != nil {
		t.Fatalf("EndIdle: %v", err)
	}
	if p.DurationMs != 45000 {
		t.Errorf("period duration = %d, want 45000", p.DurationMs)
	}
	if s.IdleTimeMs != 45000 {
		t.Errorf("session idle = %d, want 45000", s.IdleTimeMs)
	}
}

func TestIdleEndWithoutStartFails(t *testing.T) {
	r := simpleRules()
	tr := NewTracker("emp-1", at(9, 0, 0))
	mustPunchIn(t, tr, at(9, 0, 0), r)

	if _, err := tr.EndIdle(at(9, 30, 0), r); !errors.Is(err, ErrIdleNotStarted) {
		t.Fatalf("EndIdle error = %v, want ErrIdleNotStarted", err)
	}
}

func TestAddIdleTime(t *testing.T) {
	r := simpleRules()
	tr := NewTracker("emp-1", at(9, 0, 0))

	if _, err := tr.AddIdleTime(at(9, 0, 0), r, 20000); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("AddIdleTime without session error = %v", err)
	}

	s := mustPunchIn(t, tr, at(9, 0, 0), r)
	for _, ms := range []int64{0, -5} {
		if _, err := tr.AddIdleTime(at(9, 1, 0), r, ms); !errors.Is(err, ErrInvalidIdleTime) {
			t.Errorf("AddIdleTime(%d) error = %v", ms, err)
		}
	}

	// Explicit submissions below the detection threshold still count.
	if _, err := tr.AddIdleTime(at(9, 5, 0), r, 20000); err != nil {
		t.Fatalf("AddIdleTime: %v", err)
	}
	if s.IdleTimeMs != 20000 {
		t.Errorf("idle = %d, want 20000", s.IdleTimeMs)
	}
	if len(s.IdlePeriods) != 1 || s.IdlePeriods[0].EndTime == nil {
		t.Errorf("expected one closed idle period, got %+v", s.IdlePeriods)
	}
}

func TestIdleRejectedDuringBreak(t *testing.T) {
	r := simpleRules()
	tr := NewTracker("emp-1", at(9, 0, 0))
	s := mustPunchIn(t, tr, at(9, 0, 0), r)

	if _, err := tr.StartBreak(at(10, 0, 0), r, BreakManual, "", 0); err != nil {
		t.Fatalf("StartBreak: %v", err)
	}
	if _, err := tr.StartIdle(at(10, 1, 0), r); !errors.Is(err, ErrIdleDuringBreak) {
		t.Errorf("StartIdle during break error = %v, want ErrIdleDuringBreak", err)
	}
	if _, err := tr.AddIdleTime(at(10, 29, 0), r, (28 * time.Minute).Milliseconds()); !errors.Is(err, ErrIdleDuringBreak) {
		t.Errorf("AddIdleTime during break error = %v, want ErrIdleDuringBreak", err)
	}
	if _, err := tr.EndBreak(at(10, 30, 0), r); err != nil {
		t.Fatalf("EndBreak: %v", err)
	}

	ended, err := tr.PunchOut(at(11, 0, 0), r)
	if err != nil {
		t.Fatalf("PunchOut: %v", err)
	}
	if ended.IdleTimeMs != 0 || len(s.IdlePeriods) != 0 {
		t.Errorf("idle = %d ms over %d periods, want none", ended.IdleTimeMs, len(ended.IdlePeriods))
	}
	approx(t, "totalBreakTime", ended.TotalBreakTime, 30)
	approx(t, "productiveTime", ended.ProductiveTime, 90)
}

func TestDetectIdleThreshold(t *testing.T) {
	r := simpleRules()
	threshold := DefaultIdleThresholdSeconds * time.Second
	tr := NewTracker("emp-1", at(9, 0, 0))
	s := mustPunchIn(t, tr, at(9, 0, 0), r)

	if _, err := tr.RecordActivity(at(9, 0, 0), r, 10, 2); err != nil {
		t.Fatalf("RecordActivity: %v", err)
	}

	tests := []struct {
		name    string
		now     time.Time
		opened  bool
		periods int
	}{
		{"exactly 30s is active", at(9, 0, 30), false, 0},
		{"exactly 31s is still active", at(9, 0, 31), false, 0},
		{"past threshold opens idle", at(9, 0, 32), true, 1},
		{"already open is not reopened", at(9, 1, 0), false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, opened, err := tr.DetectIdle(tt.now, r, threshold)
			if err != nil {
				t.Fatalf("DetectIdle: %v", err)
			}
			if opened != tt.opened {
				t.Errorf("opened = %v, want %v", opened, tt.opened)
			}
			if len(s.IdlePeriods) != tt.periods {
				t.Errorf("periods = %d, want %d", len(s.IdlePeriods), tt.periods)
			}
		})
	}

	if !s.IdlePeriods[0].Auto || !s.IdlePeriods[0].StartTime.Equal(at(9, 0, 0)) {
		t.Errorf("detected period should be auto and start at last activity: %+v", s.IdlePeriods[0])
	}

	// Activity closes the detected period.
	if _, err := tr.RecordActivity(at(9, 2, 0), r, 1, 0); err != nil {
		t.Fatalf("RecordActivity: %v", err)
	}
	if s.OpenIdle() != nil {
		t.Fatal("activity should close the open idle period")
	}
	if s.IdleTimeMs != 120000 {
		t.Errorf("idle = %d, want 120000", s.IdleTimeMs)
	}
	if s.Keystrokes != 11 || s.MouseClicks != 2 {
		t.Errorf("counters = %d/%d, want 11/2", s.Keystrokes, s.MouseClicks)
	}
}

func TestDetectIdleSkippedDuringBreak(t *testing.T) {
	r := simpleRules()
	tr := NewTracker("emp-1", at(9, 0, 0))
	mustPunchIn(t, tr, at(9, 0, 0), r)
	if _, err := tr.StartBreak(at(9, 0, 0), r, BreakTea, "", 0); err != nil {
		t.Fatalf("StartBreak: %v", err)
	}

	_, opened, err := tr.DetectIdle(at(9, 10, 0), r, 31*time.Second)
	if err != nil {
		t.Fatalf("DetectIdle: %v", err)
	}
	if opened {
		t.Error("idle must not be detected during a break")
	}
}

func TestRecordActivityValidation(t *testing.T) {
	r := simpleRules()
	tr := NewTracker("emp-1", at(9, 0, 0))
	mustPunchIn(t, tr, at(9, 0, 0), r)

	if _, err := tr.RecordActivity(at(9, 1, 0), r, -1, 0); !errors.Is(err, ErrNegativeCounter) {
		t.Fatalf("error = %v, want ErrNegativeCounter", err)
	}
}

func TestRecordActivityRespectsSettings(t *testing.T) {
	r := simpleRules()
	tr := NewTracker("emp-1", at(9, 0, 0))
	s := mustPunchIn(t, tr, at(9, 0, 0), r)
	tr.Settings.TrackKeystrokes = false

	if _, err := tr.RecordActivity(at(9, 1, 0), r, 50, 5); err != nil {
		t.Fatalf("RecordActivity: %v", err)
	}
	if s.Keystrokes != 0 || s.MouseClicks != 5 {
		t.Errorf("counters = %d/%d, want 0/5", s.Keystrokes, s.MouseClicks)
	}
}

func TestIdleReducesProductiveTime(t *testing.T) {
	r := simpleRules()
	tr := NewTracker("emp-1", at(9, 0, 0))
	mustPunchIn(t, tr, at(9, 0, 0), r)
	if _, err := tr.StartIdle(at(9, 30, 0), r); err != nil {
		t.Fatalf("StartIdle: %v", err)
	}

	// Punching out closes the open idle period.
	ended, err := tr.PunchOut(at(10, 0, 0), r)
	if err != nil {
		t.Fatalf("PunchOut: %v", err)
	}
	if ended.IdleTimeMs != 30*60*1000 {
		t.Errorf("idle = %d", ended.IdleTimeMs)
	}
	approx(t, "productiveTime", ended.ProductiveTime, 30)
	approx(t, "activityPercentage", ended.ActivityPercentage, 50)
}

func TestRecordScreenshot(t *testing.T) {
	r := simpleRules()
	tr := NewTracker("emp-1", at(9, 0, 0))
	if _, err := tr.RecordScreenshot(at(9, 0, 0), r, "https://img/1.png"); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("error = %v", err)
	}

	s := mustPunchIn(t, tr, at(9, 0, 0), r)
	shot, err := tr.RecordScreenshot(at(9, 10, 0), r, "https://img/1.png")
	if err != nil {
		t.Fatalf("RecordScreenshot: %v", err)
	}
	if shot.SessionID != s.ID || s.Screenshots != 1 || len(tr.Screenshots) != 1 {
		t.Errorf("screenshot not recorded: %+v, session count %d", shot, s.Screenshots)
	}
	day, _ := tr.Summary("2026-03-02")
	if day.TotalScreenshots != 1 {
		t.Errorf("daily screenshots = %d", day.TotalScreenshots)
	}
}
