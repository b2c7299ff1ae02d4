package standalone

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/config"
)

// TestResolveLogFile prefers the override, then the configured path.
func TestResolveLogFile(t *testing.T) {
	t.Parallel()

	require.Equal(t, "override.log", resolveLogFile("configured.log", "override.log"))
	require.Equal(t, "configured.log", resolveLogFile("configured.log", ""))
	require.Equal(t, config.DefaultLogFilename, resolveLogFile("", ""))
}

// TestRun_InvalidSettings fails before the terminal is touched.
func TestRun_InvalidSettings(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tick_interval: -1m\n"), 0o600))

	err := Run(context.Background(), &Options{ConfigPath: path})
	require.Error(t, err)
	require.Contains(t, err.Error(), "load settings")
}
