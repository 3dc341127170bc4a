package domain

import (
	"math"
	"testing"
	"time"
)

var testLoc = time.FixedZone("IST", 5*3600+30*60)

// at returns 2026-03-02 hh:mm:ss in the test zone.
func at(hh, mm, ss int) time.Time {
	return time.Date(2026, time.March, 2, hh, mm, ss, 0, testLoc)
}

func simpleRules() Rules {
	return Rules{Policy: SimplePolicy{Catalog: DefaultBreakCatalog()}, Location: testLoc}
}

func graceRules() Rules {
	return Rules{Policy: GracePolicy{Catalog: DefaultBreakCatalog()}, Location: testLoc}
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 0.01 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func mustPunchIn(t *testing.T, tr *Tracker, now time.Time, r Rules) *WorkSession {
	t.Helper()
	s, err := tr.PunchIn(now, r)
	if err != nil {
		t.Fatalf("PunchIn: %v", err)
	}
	return s
}
