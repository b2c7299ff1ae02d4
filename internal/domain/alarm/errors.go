package alarm

import "errors"

var (
	// ErrInvalidTime is returned when an hour or minute is out of range or a time string is malformed.
	ErrInvalidTime = errors.New("invalid time")
	// ErrInvalidDaySpec is returned when a weekday set is empty, out of range or has duplicates.
	ErrInvalidDaySpec = errors.New("invalid day specification")
	// ErrNotFound is returned when no alarm exists with the requested ID.
	ErrNotFound = errors.New("alarm not found")
	// ErrSnoozeLimitExceeded is returned when an alarm was already snoozed MaxSnoozeCount times.
	ErrSnoozeLimitExceeded = errors.New("maximum snooze limit reached")
	// ErrInvalidResponse is returned for responses other than snooze and stop.
	ErrInvalidResponse = errors.New("invalid response")
)
