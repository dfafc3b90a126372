// Package probe implements the remote probing collaborator: the fixed command
// set run against each instance, the prober that executes it over a pooled SSH
// connection, and the typed errors a failed probe surfaces with.
package probe

import (
	"fmt"

	"github.com/cfdtools/solvewatch/internal/util"
)

// TimestepCommand fetches the latest progress line from the solver's output
// file. The instance name is also the remote job directory.
func TimestepCommand(name string) string {
	return fmt.Sprintf("grep TimeStep %s/solve.out | tail -n1", util.ShellQuote(name))
}

// CSVCountCommand counts the result files written so far.
func CSVCountCommand(name string) string {
	return fmt.Sprintf("ls %s/*.csv 2>/dev/null | wc -l", util.ShellQuote(name))
}

// FreeDiskCommand reports free space on the root filesystem.
func FreeDiskCommand() string {
	return `df -h / | tail -n1 | awk '{print $4}'`
}

// ProcessIdle is reported when none of the known pipeline stages is running.
const ProcessIdle = "none"

// processCheck pairs a pipeline-stage label with the command that detects it.
type processCheck struct {
	label string
	cmd   string
}

// processChecks lists the post-solve pipeline stages in priority order: a
// running upload outranks finalization, which outranks CSV extraction. The
// first stage with a matching process wins.
var processChecks = []processCheck{
	{"s3 sync", `ps aux | grep '[s]3 sync' | grep -v grep`},
	{"finalize", `ps aux | grep '[f]inalize' | grep -v grep`},
	{"zcsvs", `ps aux | grep '[z]csvs' | grep -v grep`},
}
