// Package client implements the alarm-ctl commands.
//
// Commander talks to alarm-server over gRPC: it adds, lists, removes, snoozes
// and stops alarms, and watches fires, answering each one from standard input.
package client
