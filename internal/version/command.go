package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Attach adds a `version` subcommand and the --version flag to root.
func Attach(root *cobra.Command) {
	info := Current(root.Name())

	root.Version = info.Version
	root.SetVersionTemplate(info.String() + "\n")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information.",
		Long:  "Print the version, commit and build time injected via ldflags.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), info)
		},
	})
}
