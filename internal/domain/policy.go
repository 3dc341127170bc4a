package domain

import (
	"fmt"
	"time"
)

// BreakType classifies a break.
type BreakType string

const (
	BreakManual   BreakType = "manual"
	BreakAuto     BreakType = "auto"
	BreakLunch    BreakType = "lunch"
	BreakTea      BreakType = "tea"
	BreakMeeting  BreakType = "meeting"
	BreakPersonal BreakType = "personal"
)

// BreakPlan is the planned length of a break type and the grace allowed
// on top of it, both in minutes.
type BreakPlan struct {
	Minutes int `yaml:"minutes" json:"minutes"`
	Grace   int `yaml:"grace" json:"grace"`
}

// BreakCatalog lists the break types an employee may take.
type BreakCatalog map[BreakType]BreakPlan

// DefaultBreakCatalog returns the built-in break types.
func DefaultBreakCatalog() BreakCatalog {
	return BreakCatalog{
		BreakManual:   {},
		BreakAuto:     {},
		BreakTea:      {Minutes: 15, Grace: 5},
		BreakLunch:    {Minutes: 45, Grace: 10},
		BreakMeeting:  {Minutes: 30, Grace: 5},
		BreakPersonal: {Minutes: 10, Grace: 5},
	}
}

// Lookup resolves a break type. An empty type means manual.
func (c BreakCatalog) Lookup(t BreakType) (BreakType, BreakPlan, error) {
	if t == "" {
		t = BreakManual
	}
	plan, ok := c[t]
	if !ok {
		return "", BreakPlan{}, fmt.Errorf("%w: %q", ErrUnknownBreakType, t)
	}
	return t, plan, nil
}

// GraceFor returns the grace allowance for a client-chosen break length.
func GraceFor(minutes int) int {
	switch {
	case minutes <= 0:
		return 0
	case minutes >= 45:
		return 10
	default:
		return 5
	}
}

// BreakPolicy decides how breaks are planned, when they end on their own,
// and how much time a closed break gives back to the session.
type BreakPolicy interface {
	Name() string
	// Plan resolves the break type and returns planned and grace minutes.
	Plan(t BreakType, requestedMinutes int) (BreakType, BreakPlan, error)
	// AutoEndDue reports whether the heartbeat sweep should close b.
	AutoEndDue(b Break, now time.Time) bool
	// Credit returns the grace, in milliseconds, banked when b closes.
	Credit(b Break) int64
}

const (
	PolicySimple = "simple"
	PolicyGrace  = "grace"
)

// NewBreakPolicy builds the named policy over catalog.
func NewBreakPolicy(name string, catalog BreakCatalog) (BreakPolicy, error) {
	if catalog == nil {
		catalog = DefaultBreakCatalog()
	}
	switch name {
	case "", PolicySimple:
		return SimplePolicy{Catalog: catalog}, nil
	case PolicyGrace:
		return GracePolicy{Catalog: catalog}, nil
	default:
		return nil, fmt.Errorf("unknown break policy %q", name)
	}
}

// SimplePolicy records breaks as plain intervals: nothing is planned,
// nothing is credited and nothing ends on its own.
type SimplePolicy struct {
	Catalog BreakCatalog
}

func (SimplePolicy) Name() string { return PolicySimple }

func (p SimplePolicy) Plan(t BreakType, _ int) (BreakType, BreakPlan, error) {
	t, _, err := p.Catalog.Lookup(t)
	return t, BreakPlan{}, err
}

func (SimplePolicy) AutoEndDue(Break, time.Time) bool { return false }

func (SimplePolicy) Credit(Break) int64 { return 0 }

// GracePolicy plans breaks from the catalog and banks unused or grace
// time back into the session.
type GracePolicy struct {
	Catalog BreakCatalog
}

func (GracePolicy) Name() string { return PolicyGrace }

func (p GracePolicy) Plan(t BreakType, requestedMinutes int) (BreakType, BreakPlan, error) {
	t, plan, err := p.Catalog.Lookup(t)
	if err != nil {
		return "", BreakPlan{}, err
	}
	if requestedMinutes > 0 {
		plan = BreakPlan{Minutes: requestedMinutes, Grace: GraceFor(requestedMinutes)}
	}
	return t, plan, nil
}

func (GracePolicy) AutoEndDue(b Break, now time.Time) bool {
	if !b.Active || b.PlannedMinutes <= 0 {
		return false
	}
	return now.Sub(b.StartTime) > time.Duration(b.PlannedMinutes)*time.Minute
}

// Credit banks the unused part of the plan when a break ends early, and
// the overrun up to the grace allowance when it ends late.
func (GracePolicy) Credit(b Break) int64 {
	if b.PlannedMinutes <= 0 || b.EndTime == nil {
		return 0
	}
	elapsed := b.EndTime.Sub(b.StartTime)
	planned := time.Duration(b.PlannedMinutes) * time.Minute
	if elapsed < planned {
		return (planned - elapsed).Milliseconds()
	}
	overrun := elapsed - planned
	allowance := time.Duration(b.GraceMinutes) * time.Minute
	if overrun > allowance {
		overrun = allowance
	}
	return overrun.Milliseconds()
}
