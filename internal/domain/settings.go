package domain

import (
	"math"
	"sort"

	apperrors "github.com/emiliopalmerini/punchclock/internal/shared/errors"
)

// DefaultIdleThresholdSeconds is one second past the 30 s activity window,
// so an employee sitting exactly on the boundary does not flap.
const DefaultIdleThresholdSeconds = 31

// Settings are the per-employee tracker options a client may change.
type Settings struct {
	IdleThresholdSeconds      int  `json:"idleThresholdSeconds" bson:"idleThresholdSeconds"`
	ScreenshotIntervalMinutes int  `json:"screenshotIntervalMinutes" bson:"screenshotIntervalMinutes"`
	TrackKeystrokes           bool `json:"trackKeystrokes" bson:"trackKeystrokes"`
	TrackMouseClicks          bool `json:"trackMouseClicks" bson:"trackMouseClicks"`
	BreakReminderMinutes      int  `json:"breakReminderMinutes" bson:"breakReminderMinutes"`
}

func DefaultSettings() Settings {
	return Settings{
		IdleThresholdSeconds:      DefaultIdleThresholdSeconds,
		ScreenshotIntervalMinutes: 10,
		TrackKeystrokes:           true,
		TrackMouseClicks:          true,
		BreakReminderMinutes:      120,
	}
}

// UpdateSettings applies the whitelisted keys of patch and ignores the
// rest. It returns the keys that were applied. Nothing is applied if any
// whitelisted value has the wrong type.
func (t *Tracker) UpdateSettings(patch map[string]any) ([]string, error) {
	next := t.Settings
	var applied []string

	for key, raw := range patch {
		var err error
		switch key {
		case "idleThresholdSeconds":
			next.IdleThresholdSeconds, err = positiveInt(key, raw)
		case "screenshotIntervalMinutes":
			next.ScreenshotIntervalMinutes, err = positiveInt(key, raw)
		case "breakReminderMinutes":
			next.BreakReminderMinutes, err = positiveInt(key, raw)
		case "trackKeystrokes":
			next.TrackKeystrokes, err = boolValue(key, raw)
		case "trackMouseClicks":
			next.TrackMouseClicks, err = boolValue(key, raw)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		applied = append(applied, key)
	}

	sort.Strings(applied)
	t.Settings = next
	return applied, nil
}

func positiveInt(key string, raw any) (int, error) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return 0, apperrors.Validationf("%s must be a number", key)
	}
	if f < 1 || f != math.Trunc(f) {
		return 0, apperrors.Validationf("%s must be a positive whole number", key)
	}
	return int(f), nil
}

func boolValue(key string, raw any) (bool, error) {
	b, ok := raw.(bool)
	if !ok {
		return false, apperrors.Validationf("%s must be a boolean", key)
	}
	return b, nil
}
