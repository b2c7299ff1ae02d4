// Package alarm contains the core domain model of the alarm clock.
//
// It defines the Alarm entity (a recurring time-of-day trigger bound to a set
// of weekdays), the pure due-detection functions deciding whether an alarm
// fires at a given instant, and the snooze state machine driven by consumer
// responses. Nothing in this package performs I/O or keeps global state.
package alarm
