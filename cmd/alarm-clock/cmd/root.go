package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/service/standalone"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logFile overrides log_file from the configuration file.
	logFile string

	// rootCmd runs the alarm engine with the terminal UI in one process.
	rootCmd = &cobra.Command{
		Use:   "alarm-clock",
		Short: "Run the alarm clock in the terminal.",
		Long: `Runs the alarm scheduler in-process with an interactive terminal UI.

Add alarms with 'a', move with the arrow keys, snooze with 's', stop with 'x',
delete with 'd' and quit with 'q'. When an alarm fires, press 's' to snooze it
for five minutes (at most three times in a row) or any other key to stop it.
Logs are written to log_file because the UI owns the terminal.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return standalone.Run(ctx, &standalone.Options{
				ConfigPath: configPath,
				LogFile:    logFile,
			})
		},
	}
)

// Execute runs the alarm-clock CLI and exits with non-zero status on error.
func Execute() {
	version.Attach(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&logFile, "log-file", "l", "", "log file path, overrides log_file")
}
