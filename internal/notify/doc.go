// Package notify implements the notification channel between the scheduler
// and the presentation layer.
//
// A Channel hands a fired alarm to exactly one Consumer, waits for exactly
// one response (snooze or stop), applies it through a caller-supplied
// function and reports the Outcome back to the consumer when it implements
// Reporter. Failed transitions, such as a snooze past the limit, are
// reported rather than propagated, so a round-trip always completes.
package notify
