package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/muesli/termenv"

	"github.com/cfdtools/solvewatch/internal/cycle"
	"github.com/cfdtools/solvewatch/internal/inventory"
	"github.com/cfdtools/solvewatch/internal/logger"
	"github.com/cfdtools/solvewatch/internal/progress"
	"github.com/cfdtools/solvewatch/internal/ui"
)

// Loop reprints the fleet table on the runner's interval until the context is
// cancelled. Cancellation stops future cycles; a cycle already in flight runs
// to completion and its table is still printed.
type Loop struct {
	Runner   *cycle.Runner
	Provider inventory.Provider
	History  *progress.History
	Renderer Renderer
	Out      io.Writer
	Once     bool // render a single cycle and return
	Clear    bool // clear the screen before each table
	Log      logger.Logger
}

// Run executes sampling cycles until the context is cancelled or, with Once
// set, after the first cycle. The instance list is re-resolved each cycle.
func (l *Loop) Run(ctx context.Context) error {
	log := l.Log
	if log == nil {
		log = logger.Default()
	}
	output := termenv.NewOutput(l.Out)

	// Probes run detached from the loop context: cancelling the loop stops
	// future cycles but lets the one in flight finish and print.
	cycleCtx := context.WithoutCancel(ctx)

	for {
		instances, err := l.Provider.List(cycleCtx)
		if err != nil {
			return err
		}

		log.Debug("starting cycle over %d instances", len(instances))
		fmt.Fprintln(l.Out, ui.StyleMuted.Render(ui.SymbolProgress+" collecting..."))
		results := l.Runner.Run(cycleCtx, instances)

		if l.Clear {
			output.ClearScreen()
		}
		fmt.Fprint(l.Out, l.Renderer.Render(time.Now(), results, l.History))

		if l.Once {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fmt.Fprintf(l.Out, "\nNext update in %s (Ctrl-C to stop)\n", l.Runner.Interval())

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.Runner.Interval()):
		}
	}
}
