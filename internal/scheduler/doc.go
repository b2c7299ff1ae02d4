// Package scheduler implements the alarm scheduling engine.
//
// A Scheduler owns the ordered alarm collection behind a single mutex,
// evaluates it on a fixed tick and hands every due alarm to the subscribed
// consumer through a notify.Channel. Only one tick is in flight at a time;
// a tick that overruns its interval causes the next one to be skipped.
package scheduler
