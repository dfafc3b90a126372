package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cfdtools/solvewatch/internal/report"
)

var (
	reportOnce     bool
	reportInterval time.Duration
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the fleet progress table on an interval",
	Long: `Run sampling cycles and print the fleet progress table after each one.

Each cycle connects to every configured instance, reads the latest solver
progress, and prints one row per instance with its ETA, median ETA, raw
timestep, CSV count, free disk, and active pipeline process. Instances that
cannot be reached get an error row; the rest of the fleet is unaffected.

Ctrl-C stops the loop; a cycle already in flight finishes and prints first.

Examples:
  solvewatch report
  solvewatch report --once
  solvewatch report --interval 2m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(reportInterval)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		loop := &report.Loop{
			Runner:   rt.runner,
			Provider: rt.provider,
			History:  rt.history,
			Renderer: report.Renderer{},
			Out:      os.Stdout,
			Once:     reportOnce,
			Clear:    !reportOnce,
		}
		return loop.Run(ctx)
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportOnce, "once", false, "run a single cycle and exit")
	reportCmd.Flags().DurationVar(&reportInterval, "interval", 0, "override the sampling interval (e.g. 2m, 6m)")
	rootCmd.AddCommand(reportCmd)
}
