// Package version holds the build metadata shared by alarm-clock, alarm-server
// and alarm-ctl. Version, Commit and BuildTime are set with -ldflags -X.
package version
