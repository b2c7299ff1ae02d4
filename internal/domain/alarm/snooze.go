package alarm

import (
	"fmt"
	"strings"
	"time"
)

const (
	// MaxSnoozeCount is how many consecutive snoozes an alarm accepts.
	MaxSnoozeCount = 3
	// SnoozeOffset is how far a snooze pushes the trigger.
	SnoozeOffset = 5 * time.Minute
)

// Response is the consumer's answer to a fired alarm.
type Response int

const (
	// ResponseUnknown is the zero value and is never a valid answer.
	ResponseUnknown Response = iota
	// ResponseSnooze defers the alarm by SnoozeOffset.
	ResponseSnooze
	// ResponseStop disables the alarm and clears its snooze count.
	ResponseStop
)

// String returns the lowercase name used in config files and on the wire.
func (r Response) String() string {
	switch r {
	case ResponseSnooze:
		return "snooze"
	case ResponseStop:
		return "stop"
	default:
		return "unknown"
	}
}

// ParseResponse accepts "snooze"/"s" and "stop"/"x".
func ParseResponse(s string) (Response, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "snooze", "s":
		return ResponseSnooze, nil
	case "stop", "x":
		return ResponseStop, nil
	default:
		return ResponseUnknown, fmt.Errorf("%w: %q", ErrInvalidResponse, s)
	}
}

// Snooze moves the trigger SnoozeOffset forward and counts the snooze.
// At MaxSnoozeCount it fails with ErrSnoozeLimitExceeded and changes nothing.
func (a *Alarm) Snooze() error {
	if a.SnoozeCount >= MaxSnoozeCount {
		return ErrSnoozeLimitExceeded
	}

	a.Trigger = a.Trigger.Add(SnoozeOffset)
	a.SnoozeCount++

	return nil
}

// ResetSnooze clears the snooze count.
func (a *Alarm) ResetSnooze() {
	a.SnoozeCount = 0
}

// Disable suppresses all further firing.
func (a *Alarm) Disable() {
	a.Enabled = false
}

// Respond applies a consumer response to a fired alarm.
func (a *Alarm) Respond(r Response) error {
	switch r {
	case ResponseSnooze:
		return a.Snooze()
	case ResponseStop:
		a.Disable()
		a.ResetSnooze()

		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidResponse, r)
	}
}
