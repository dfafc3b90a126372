package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/cfdtools/solvewatch/internal/watch"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Interactive fleet progress dashboard",
	Long: `Start an interactive dashboard showing the fleet progress table,
refreshed on the sampling interval with a spinner while a cycle is in flight.

Keyboard shortcuts:
  q / Ctrl+C  Quit
  r           Force a refresh

Examples:
  solvewatch watch
  solvewatch watch --interval 2m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(watchInterval)
		if err != nil {
			return err
		}
		defer rt.Close()

		return watch.Run(rt.runner, rt.provider, rt.history)
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "override the sampling interval (e.g. 2m, 6m)")
	rootCmd.AddCommand(watchCmd)
}
