package util

import (
	"fmt"
	"math"
	"time"
)

// FormatNumber formats an int64 with K/M suffix for readability.
// Examples: 500 -> "500", 1500 -> "1.5K", 1500000 -> "1.5M"
func FormatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// FormatMinutes renders a minute count as hours and minutes.
// Examples: 45 -> "45m", 465 -> "7h 45m", 0 -> "0m"
func FormatMinutes(minutes float64) string {
	if minutes < 0 {
		minutes = 0
	}
	total := int64(math.Round(minutes))
	h, m := total/60, total%60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}

// FormatMillis renders a millisecond count as minutes and seconds.
// Examples: 45000 -> "45s", 80000 -> "1m 20s"
func FormatMillis(ms int64) string {
	d := (time.Duration(ms) * time.Millisecond).Round(time.Second)
	m := int64(d / time.Minute)
	s := int64((d % time.Minute) / time.Second)
	if m == 0 {
		return fmt.Sprintf("%ds", s)
	}
	return fmt.Sprintf("%dm %02ds", m, s)
}

// FormatPercent renders a percentage with at most one decimal.
func FormatPercent(p float64) string {
	if p == math.Trunc(p) {
		return fmt.Sprintf("%.0f%%", p)
	}
	return fmt.Sprintf("%.1f%%", p)
}

// FormatClock formats t as 15:04 in loc.
func FormatClock(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("15:04")
}

// PeriodRange returns the first and last YYYY-MM-DD day of a period
// containing now. Supported periods: "today", "week" (from Monday),
// "month". Anything else is an error.
func PeriodRange(period string, now time.Time, loc *time.Location) (string, string, error) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	var start time.Time
	switch period {
	case "today":
		start = today
	case "week":
		weekday := int(today.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start = today.AddDate(0, 0, -weekday+1)
	case "month":
		start = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
	default:
		return "", "", fmt.Errorf("unknown period %q (want today, week or month)", period)
	}

	const layout = "2006-01-02"
	return start.Format(layout), today.Format(layout), nil
}
