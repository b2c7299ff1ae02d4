package alarm

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	hoursPerDay    = 24
	minutesPerHour = 60
	minutesPerDay  = hoursPerDay * minutesPerHour
)

// TimeOfDay is a wall-clock time with minute precision, not bound to a date.
type TimeOfDay struct {
	// Hour is in [0,23].
	Hour int
	// Minute is in [0,59].
	Minute int
}

// NewTimeOfDay validates hour and minute and returns the matching TimeOfDay.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour >= hoursPerDay {
		return TimeOfDay{}, fmt.Errorf("%w: hour %d is out of range [0,23]", ErrInvalidTime, hour)
	}

	if minute < 0 || minute >= minutesPerHour {
		return TimeOfDay{}, fmt.Errorf("%w: minute %d is out of range [0,59]", ErrInvalidTime, minute)
	}

	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// ParseTimeOfDay parses "HH:MM" (a single-digit hour is accepted).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hourPart, minutePart, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("%w: %q is not in HH:MM format", ErrInvalidTime, s)
	}

	hour, ok := parseDigits(hourPart, 1, 2) //nolint:mnd // "7" or "07".
	if !ok {
		return TimeOfDay{}, fmt.Errorf("%w: bad hour in %q", ErrInvalidTime, s)
	}

	minute, ok := parseDigits(minutePart, 2, 2) //nolint:mnd // Minutes are always two digits.
	if !ok {
		return TimeOfDay{}, fmt.Errorf("%w: bad minute in %q", ErrInvalidTime, s)
	}

	return NewTimeOfDay(hour, minute)
}

// parseDigits parses an unsigned decimal of minLen to maxLen ASCII digits.
// Signs, spaces and other characters strconv would accept are rejected.
func parseDigits(s string, minLen, maxLen int) (int, bool) {
	if len(s) < minLen || len(s) > maxLen {
		return 0, false
	}

	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}

	n, err := strconv.Atoi(s)

	return n, err == nil
}

// Add shifts the time by d, wrapping around midnight in both directions.
// Sub-minute parts of d are ignored.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	total := (t.minutes() + int(d/time.Minute)) % minutesPerDay
	if total < 0 {
		total += minutesPerDay
	}

	return TimeOfDay{
		Hour:   total / minutesPerHour,
		Minute: total % minutesPerHour,
	}
}

// Matches reports whether now falls into this hour and minute.
func (t TimeOfDay) Matches(now time.Time) bool {
	return now.Hour() == t.Hour && now.Minute() == t.Minute
}

// On returns the instant of this time of day on the calendar date of day, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	year, month, date := day.Date()

	return time.Date(year, month, date, t.Hour, t.Minute, 0, 0, day.Location())
}

// String renders the time as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) minutes() int {
	return t.Hour*minutesPerHour + t.Minute
}
