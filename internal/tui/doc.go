// Package tui is the interactive terminal front end of alarm-clock.
//
// Model renders the clock, the alarm table, an add form and a modal for fired
// alarms. Bridge is the scheduler's consumer: it forwards fires from the
// scheduler goroutine into the running program and waits for the answer.
package tui
