package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Populated through -ldflags at release build time.
var (
	commit    = "unknown"
	buildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), versionString())
	},
}

// versionString renders the two-line version block: release identity first,
// toolchain and platform second.
func versionString() string {
	return fmt.Sprintf("buildlens %s (commit %s, built %s)\n%s %s/%s\n",
		version, commit, buildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
