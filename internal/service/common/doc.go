// Package common holds helpers shared by several services.
//
// It builds the scheduler from settings for alarm-server and alarm-clock,
// wraps the AlarmClock gRPC client with call timeouts and typed results, and
// detects the current system actor (hostname/username) sent with every call.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
