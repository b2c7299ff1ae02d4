package logger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	for _, s := range []string{"unknown", "fatal", ""} {
		_, ok := ParseLogLevel(s)
		require.False(t, ok, s)
	}
}

// TestContextHelpers ensures loggers travel through contexts and pick up names and fields.
func TestContextHelpers(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))

	var buf bytes.Buffer

	l := NewWithSink(zapcore.AddSync(&buf), zapcore.DebugLevel)
	ctx := ToContext(context.Background(), l)
	require.Same(t, l, FromContext(ctx))

	ctx = WithName(ctx, "scheduler")
	ctx = WithKV(ctx, "alarm_id", "abc")

	InfoKV(ctx, "Alarm fired", "time", "07:00")
	require.NoError(t, FromContext(ctx).Sync())

	out := buf.String()
	require.Contains(t, out, "scheduler")
	require.Contains(t, out, "Alarm fired")
	require.Contains(t, out, "abc")
	require.Contains(t, out, "07:00")
}

// TestOpenFile checks that file loggers append to disk at their own level.
func TestOpenFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	quiet, closeQuiet, err := OpenFile(filepath.Join(dir, "quiet.log"), WithLevel(zapcore.ErrorLevel))
	require.NoError(t, err)

	quiet.Info("info is below the pinned level")
	quiet.With("alarm_id", "abc").Error("error passes")
	closeQuiet()

	contents, err := os.ReadFile(filepath.Join(dir, "quiet.log"))
	require.NoError(t, err)
	require.NotContains(t, string(contents), "info is below the pinned level")
	require.Contains(t, string(contents), "error passes")
	require.Contains(t, string(contents), "abc")

	// A pinned debug level logs below the global info level.
	verbose, closeVerbose, err := OpenFile(filepath.Join(dir, "verbose.log"), WithLevel(zapcore.DebugLevel))
	require.NoError(t, err)

	verbose.Debug("tick details")
	closeVerbose()

	contents, err = os.ReadFile(filepath.Join(dir, "verbose.log"))
	require.NoError(t, err)
	require.Contains(t, string(contents), "tick details")
}
