package domain

import (
	"math"
	"time"
	_ "time/tzdata"
)

// DateLayout is the calendar-day key used by daily summaries.
const DateLayout = "2006-01-02"

// DefaultZone is the zone calendar days are cut in when none is configured.
const DefaultZone = "Asia/Kolkata"

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// LoadLocation resolves a zone name, falling back to a fixed +05:30 zone
// when the tz database has no entry for it.
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("IST", 5*3600+30*60)
	}
	return loc
}

// DateKey returns the calendar day of t in loc.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD key.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func minutesBetween(from, to time.Time) float64 {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	return round2(d.Minutes())
}

func msToMinutes(ms int64) float64 {
	return round2(float64(ms) / float64(time.Minute/time.Millisecond))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
