// Package alarm implements the gRPC transport for the alarm clock.
//
// Server adapts the scheduler to the AlarmClock service, and Relay is the
// scheduler's consumer that hands fires to remote watchers and carries their
// answers back.
package alarm
