package alarm

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ID is the stable identity of an alarm, assigned at creation.
type ID = uuid.UUID

// ParseID parses the textual form of an ID.
// A malformed ID cannot name any alarm, so it is reported as ErrNotFound.
func ParseID(s string) (ID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed id %q", ErrNotFound, s)
	}

	return id, nil
}

// Alarm is a recurring time-of-day trigger bound to a set of weekdays.
type Alarm struct {
	// ID identifies the alarm for its whole lifetime.
	ID ID
	// Trigger is the time of day the alarm fires at. Snoozing moves it.
	Trigger TimeOfDay
	// Days holds the weekdays the alarm is eligible to fire on.
	Days Weekdays
	// SnoozeCount counts consecutive snoozes since the last stop.
	SnoozeCount int
	// Enabled is false once the alarm was stopped; it then never fires.
	Enabled bool
	// CreatedAt is when the alarm was added.
	CreatedAt time.Time
	// LastFiredAt is when the alarm last fired, zero if never.
	LastFiredAt time.Time
}

// New validates the input and returns an enabled alarm with no snoozes.
func New(hour, minute int, days []int, now time.Time) (*Alarm, error) {
	trigger, err := NewTimeOfDay(hour, minute)
	if err != nil {
		return nil, err
	}

	weekdays, err := NewWeekdays(days...)
	if err != nil {
		return nil, err
	}

	return &Alarm{
		ID:        uuid.New(),
		Trigger:   trigger,
		Days:      weekdays,
		Enabled:   true,
		CreatedAt: now,
	}, nil
}

// Clone returns a snapshot that shares no state with a.
func (a *Alarm) Clone() Alarm {
	return *a
}

// String renders the alarm like "07:00 on days 1, 2".
func (a *Alarm) String() string {
	return fmt.Sprintf("%s on days %s", a.Trigger, a.Days)
}
