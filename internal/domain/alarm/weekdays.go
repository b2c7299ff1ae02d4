package alarm

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// daysPerWeek bounds weekday indices: 0=Sunday .. 6=Saturday.
const daysPerWeek = 7

// Weekdays is a set of weekdays stored as a bit mask, bit i is time.Weekday(i).
type Weekdays uint8

// NewWeekdays builds a set from weekday indices.
// The list must be non-empty, in [0,6] and free of duplicates.
func NewWeekdays(days ...int) (Weekdays, error) {
	if len(days) == 0 {
		return 0, fmt.Errorf("%w: at least one day is required", ErrInvalidDaySpec)
	}

	var set Weekdays

	for _, day := range days {
		if day < 0 || day >= daysPerWeek {
			return 0, fmt.Errorf("%w: day %d is out of range [0,6]", ErrInvalidDaySpec, day)
		}

		bit := Weekdays(1) << day
		if set&bit != 0 {
			return 0, fmt.Errorf("%w: day %d is listed twice", ErrInvalidDaySpec, day)
		}

		set |= bit
	}

	return set, nil
}

// ParseWeekdays parses a comma separated list such as "1, 2,5".
func ParseWeekdays(s string) (Weekdays, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: at least one day is required", ErrInvalidDaySpec)
	}

	parts := strings.Split(s, ",")
	days := make([]int, 0, len(parts))

	for _, part := range parts {
		day, ok := parseDigits(strings.TrimSpace(part), 1, 1)
		if !ok {
			return 0, fmt.Errorf("%w: %q is not a day number", ErrInvalidDaySpec, part)
		}

		days = append(days, day)
	}

	return NewWeekdays(days...)
}

// Contains reports whether d is in the set.
func (w Weekdays) Contains(d time.Weekday) bool {
	if d < time.Sunday || d > time.Saturday {
		return false
	}

	return w&(Weekdays(1)<<d) != 0
}

// Days returns the indices in ascending order.
func (w Weekdays) Days() []int {
	days := make([]int, 0, daysPerWeek)

	for day := range daysPerWeek {
		if w.Contains(time.Weekday(day)) {
			days = append(days, day)
		}
	}

	return days
}

// Len returns the number of days in the set.
func (w Weekdays) Len() int {
	return len(w.Days())
}

// String renders the set as "1, 2, 5".
func (w Weekdays) String() string {
	days := w.Days()
	parts := make([]string, len(days))

	for i, day := range days {
		parts[i] = strconv.Itoa(day)
	}

	return strings.Join(parts, ", ")
}

// Names renders the set with short weekday names, e.g. "Mon, Tue".
func (w Weekdays) Names() string {
	days := w.Days()
	names := make([]string, len(days))

	for i, day := range days {
		names[i] = time.Weekday(day).String()[:3]
	}

	return strings.Join(names, ", ")
}
