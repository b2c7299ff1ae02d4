package alarm

import (
	"fmt"
	"strings"
	"time"
)

// MatchMode selects the due-detection rule used by the scheduler.
type MatchMode string

const (
	// MatchExact fires only when the tick lands in the trigger minute.
	// A delayed or skipped tick misses the alarm entirely.
	MatchExact MatchMode = "exact"
	// MatchCatchUp fires on the first tick at or after today's trigger
	// instant that is not already covered by LastFiredAt.
	MatchCatchUp MatchMode = "catch_up"
)

// ParseMatchMode converts a config value into a MatchMode.
func ParseMatchMode(s string) (MatchMode, error) {
	switch mode := MatchMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case MatchExact, MatchCatchUp:
		return mode, nil
	case "":
		return MatchExact, nil
	default:
		return "", fmt.Errorf("unknown match mode %q", s)
	}
}

// Due applies the rule selected by m.
func (m MatchMode) Due(a *Alarm, now time.Time) bool {
	if m == MatchCatchUp {
		return a.IsDueCatchUp(now)
	}

	return a.IsDue(now)
}

// IsDue reports whether the alarm is enabled, now's weekday is active and
// now's hour and minute equal the trigger.
func (a *Alarm) IsDue(now time.Time) bool {
	return a.Enabled &&
		a.Days.Contains(now.Weekday()) &&
		a.Trigger.Matches(now)
}

// IsDueCatchUp reports whether today's trigger instant has passed and has
// not fired yet. Instants before the alarm was created never fire.
func (a *Alarm) IsDueCatchUp(now time.Time) bool {
	if !a.Enabled || !a.Days.Contains(now.Weekday()) {
		return false
	}

	at := a.Trigger.On(now)

	switch {
	case at.After(now):
		return false
	case at.Before(a.CreatedAt.Truncate(time.Minute)):
		return false
	default:
		return a.LastFiredAt.Before(at)
	}
}
