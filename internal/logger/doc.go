// Package logger wraps zap with a global sugared logger, file sinks for the
// terminal UI and context helpers.
//
// Code takes the logger from its context (FromContext, WithName, WithKV) so
// log lines carry the component name and the alarm they are about.
package logger
