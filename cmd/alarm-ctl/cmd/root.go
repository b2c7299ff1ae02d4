package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/client"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides server_addr from the configuration file.
	serverAddress string

	// rootCmd represents the base command; it only groups subcommands.
	rootCmd = &cobra.Command{
		Use:   "alarm-ctl",
		Short: "Manage alarms on a running alarm-server.",
		Long: `Adds, lists, removes, snoozes and stops alarms on alarm-server, and watches
fired alarms so they can be answered from this terminal.

Days are comma-separated numbers, 0 is Sunday and 6 is Saturday.
Server address is taken from the configuration file unless --server is given.`,
		SilenceUsage: true,
	}

	addCmd = &cobra.Command{
		Use:     "add HH:MM DAYS",
		Short:   "Add an alarm, e.g. add 07:00 1,2,3,4,5",
		Args:    cobra.ExactArgs(2), //nolint:mnd // Time and days.
		Example: "  alarm-ctl add 07:30 \"1, 3, 5\"",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCommander(cmd, func(ctx context.Context, c *client.Commander) error {
				return c.Add(ctx, args[0], args[1])
			})
		},
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List all alarms.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCommander(cmd, func(ctx context.Context, c *client.Commander) error {
				return c.List(ctx)
			})
		},
	}

	removeCmd = &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"delete", "rm"},
		Short:   "Delete an alarm.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCommander(cmd, func(ctx context.Context, c *client.Commander) error {
				return c.Remove(ctx, args[0])
			})
		},
	}

	snoozeCmd = &cobra.Command{
		Use:   "snooze ID",
		Short: "Push an alarm five minutes later.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCommander(cmd, func(ctx context.Context, c *client.Commander) error {
				return c.Snooze(ctx, args[0])
			})
		},
	}

	stopCmd = &cobra.Command{
		Use:   "stop ID",
		Short: "Disable an alarm.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCommander(cmd, func(ctx context.Context, c *client.Commander) error {
				return c.Stop(ctx, args[0])
			})
		},
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Wait for alarms to fire and answer them.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCommander(cmd, func(ctx context.Context, c *client.Commander) error {
				return c.Watch(ctx)
			})
		},
	}
)

// withCommander connects to the server for the duration of fn.
func withCommander(cmd *cobra.Command, fn func(ctx context.Context, c *client.Commander) error) error {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	ctx = logger.WithName(ctx, "alarm-ctl")

	commander, err := client.Connect(ctx, &client.Options{
		ConfigPath:    cfgPath,
		ServerAddress: serverAddress,
		In:            cmd.InOrStdin(),
		Out:           cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	defer func() {
		_ = commander.Close()
	}()

	return fn(ctx, commander)
}

// Execute runs the alarm-ctl CLI and exits with non-zero status on error.
func Execute() {
	version.Attach(rootCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&serverAddress, "server", "s", "", "alarm-server address, overrides server_addr")

	rootCmd.AddCommand(addCmd, listCmd, removeCmd, snoozeCmd, stopCmd, watchCmd)
}
