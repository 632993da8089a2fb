package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canopy-tools/geocrown/internal/version"
)

// versionCmd prints the build information stamped in via ldflags.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		ver, commit, date := version.Info()
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "geocrown version %s (commit: %s, built: %s)\n", ver, commit, date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
