// Package config defines settings used by the binaries and provides
// helpers to load, validate and save them in YAML format.
//
// The Config type holds the gRPC address, the scheduler tick interval and
// match mode, the alarm response timeout policy and logging options.
package config
