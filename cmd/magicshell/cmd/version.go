package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version information, set with -ldflags at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "magicshell %s\n", Version)
			fmt.Fprintf(out, "  Git Commit: %s\n", GitCommit)
			fmt.Fprintf(out, "  Build Date: %s\n", BuildDate)
			fmt.Fprintf(out, "  Go Version: %s\n", runtime.Version())
		},
	}
}
