package domain

import (
	"sort"
	"time"
)

// DailySummary aggregates every session that started on Date. It is
// derived state and is rebuilt from the sessions after each mutation.
type DailySummary struct {
	Date                      string     `json:"date" bson:"date"`
	TotalWorkTime             float64    `json:"totalWorkTime" bson:"totalWorkTime"`
	TotalBreakTime            float64    `json:"totalBreakTime" bson:"totalBreakTime"`
	TotalIdleTime             float64    `json:"totalIdleTime" bson:"totalIdleTime"`
	TotalProductiveTime       float64    `json:"totalProductiveTime" bson:"totalProductiveTime"`
	TotalKeystrokes           int64      `json:"totalKeystrokes" bson:"totalKeystrokes"`
	TotalMouseClicks          int64      `json:"totalMouseClicks" bson:"totalMouseClicks"`
	TotalScreenshots          int64      `json:"totalScreenshots" bson:"totalScreenshots"`
	SessionsCount             int        `json:"sessionsCount" bson:"sessionsCount"`
	BreaksCount               int        `json:"breaksCount" bson:"breaksCount"`
	AverageActivityPercentage float64    `json:"averageActivityPercentage" bson:"averageActivityPercentage"`
	FirstPunchIn              *time.Time `json:"firstPunchIn" bson:"firstPunchIn,omitempty"`
	LastPunchOut              *time.Time `json:"lastPunchOut" bson:"lastPunchOut,omitempty"`
}

// OverallStats folds all daily summaries.
type OverallStats struct {
	TotalDaysWorked               int        `json:"totalDaysWorked" bson:"totalDaysWorked"`
	TotalWorkTime                 float64    `json:"totalWorkTime" bson:"totalWorkTime"`
	TotalBreakTime                float64    `json:"totalBreakTime" bson:"totalBreakTime"`
	TotalIdleTime                 float64    `json:"totalIdleTime" bson:"totalIdleTime"`
	TotalProductiveTime           float64    `json:"totalProductiveTime" bson:"totalProductiveTime"`
	TotalSessions                 int        `json:"totalSessions" bson:"totalSessions"`
	TotalBreaks                   int        `json:"totalBreaks" bson:"totalBreaks"`
	TotalKeystrokes               int64      `json:"totalKeystrokes" bson:"totalKeystrokes"`
	TotalMouseClicks              int64      `json:"totalMouseClicks" bson:"totalMouseClicks"`
	AverageWorkHoursPerDay        float64    `json:"averageWorkHoursPerDay" bson:"averageWorkHoursPerDay"`
	AverageProductivityPercentage float64    `json:"averageProductivityPercentage" bson:"averageProductivityPercentage"`
	LastUpdated                   *time.Time `json:"lastUpdated" bson:"lastUpdated,omitempty"`
}

// recompute rebuilds today's summary, the summaries of any extra dates,
// and the overall stats.
func (t *Tracker) recompute(now time.Time, r Rules, dates ...string) {
	loc := r.location()
	if s, ok := t.Active(); ok {
		s.refresh(now)
	}

	seen := map[string]bool{}
	for _, date := range append([]string{DateKey(now, loc)}, dates...) {
		if seen[date] {
			continue
		}
		seen[date] = true
		t.recomputeDay(date, now, loc)
	}
	t.recomputeOverall(now)
}

// RecomputeDay rebuilds the summary for date and then the overall stats.
func (t *Tracker) RecomputeDay(date string, now time.Time, r Rules) {
	if s, ok := t.Active(); ok {
		s.refresh(now)
	}
	t.recomputeDay(date, now, r.location())
	t.recomputeOverall(now)
}

func (t *Tracker) recomputeDay(date string, now time.Time, loc *time.Location) {
	var sessions []WorkSession
	for _, s := range t.Sessions {
		if DateKey(s.StartTime, loc) == date {
			sessions = append(sessions, s)
		}
	}
	if s, ok := t.Active(); ok && DateKey(s.StartTime, loc) == date {
		sessions = append(sessions, *s)
	}

	if len(sessions) == 0 {
		t.removeSummary(date)
		return
	}
	t.upsertSummary(summarizeDay(date, sessions, now))
}

func summarizeDay(date string, sessions []WorkSession, now time.Time) DailySummary {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartTime.Before(sessions[j].StartTime)
	})

	sum := DailySummary{Date: date, SessionsCount: len(sessions)}
	var activity float64
	var lastOut time.Time
	for _, s := range sessions {
		sum.TotalWorkTime += s.Duration
		sum.TotalBreakTime += s.TotalBreakTime
		sum.TotalIdleTime += s.idleMinutes(now)
		sum.TotalProductiveTime += s.ProductiveTime
		sum.TotalKeystrokes += s.Keystrokes
		sum.TotalMouseClicks += s.MouseClicks
		sum.TotalScreenshots += s.Screenshots
		sum.BreaksCount += len(s.Breaks)
		activity += s.ActivityPercentage

		out := now
		if s.EndTime != nil {
			out = *s.EndTime
		}
		if out.After(lastOut) {
			lastOut = out
		}
	}

	first := sessions[0].StartTime
	sum.FirstPunchIn = &first
	sum.LastPunchOut = &lastOut
	sum.TotalWorkTime = round2(sum.TotalWorkTime)
	sum.TotalBreakTime = round2(sum.TotalBreakTime)
	sum.TotalIdleTime = round2(sum.TotalIdleTime)
	sum.TotalProductiveTime = round2(sum.TotalProductiveTime)
	sum.AverageActivityPercentage = activity / float64(len(sessions))
	return sum
}

func (t *Tracker) upsertSummary(sum DailySummary) {
	for i := range t.DailySummaries {
		if t.DailySummaries[i].Date == sum.Date {
			t.DailySummaries[i] = sum
			return
		}
	}
	t.DailySummaries = append(t.DailySummaries, sum)
	sort.SliceStable(t.DailySummaries, func(i, j int) bool {
		return t.DailySummaries[i].Date < t.DailySummaries[j].Date
	})
}

func (t *Tracker) removeSummary(date string) {
	for i := range t.DailySummaries {
		if t.DailySummaries[i].Date == date {
			t.DailySummaries = append(t.DailySummaries[:i], t.DailySummaries[i+1:]...)
			return
		}
	}
}

func (t *Tracker) recomputeOverall(now time.Time) {
	var o OverallStats
	var productivity float64
	for _, d := range t.DailySummaries {
		o.TotalDaysWorked++
		o.TotalWorkTime += d.TotalWorkTime
		o.TotalBreakTime += d.TotalBreakTime
		o.TotalIdleTime += d.TotalIdleTime
		o.TotalProductiveTime += d.TotalProductiveTime
		o.TotalSessions += d.SessionsCount
		o.TotalBreaks += d.BreaksCount
		o.TotalKeystrokes += d.TotalKeystrokes
		o.TotalMouseClicks += d.TotalMouseClicks
		productivity += d.AverageActivityPercentage
	}
	o.TotalWorkTime = round2(o.TotalWorkTime)
	o.TotalBreakTime = round2(o.TotalBreakTime)
	o.TotalIdleTime = round2(o.TotalIdleTime)
	o.TotalProductiveTime = round2(o.TotalProductiveTime)
	if o.TotalDaysWorked > 0 {
		o.AverageWorkHoursPerDay = o.TotalWorkTime / 60 / float64(o.TotalDaysWorked)
		o.AverageProductivityPercentage = productivity / float64(o.TotalDaysWorked)
	}
	updated := now
	o.LastUpdated = &updated
	t.Overall = o
}

// Summary returns the stored summary for date.
func (t *Tracker) Summary(date string) (DailySummary, bool) {
	for _, d := range t.DailySummaries {
		if d.Date == date {
			return d, true
		}
	}
	return DailySummary{}, false
}

// SummariesBetween returns the summaries with from <= date <= to, oldest
// first.
func (t *Tracker) SummariesBetween(from, to string) []DailySummary {
	out := []DailySummary{}
	for _, d := range t.DailySummaries {
		if d.Date >= from && d.Date <= to {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
