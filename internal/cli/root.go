// Package cli wires the solvewatch commands: the plaintext report loop, the
// interactive dashboard, config bootstrap, and the usual version/completion
// plumbing.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configFlag is the global --config override, shared by every command that
// reads the config file.
var configFlag string

var rootCmd = &cobra.Command{
	Use:   "solvewatch",
	Short: "Monitor solver progress across a fleet of instances",
	Long: `solvewatch polls remote compute instances running a long CFD solve
over SSH, extracts progress from each solver's output file, and reports a
stabilized time-to-completion estimate per instance.

Instances and SSH settings come from .solvewatch.yaml; run 'solvewatch init'
to create one.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file path (default: .solvewatch.yaml discovery)")
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
