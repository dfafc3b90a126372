// Package report renders cycle results as a plaintext fleet summary and runs
// the interval loop that reprints it until cancelled.
package report

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/cfdtools/solvewatch/internal/cycle"
	"github.com/cfdtools/solvewatch/internal/probe"
	"github.com/cfdtools/solvewatch/internal/progress"
	"github.com/cfdtools/solvewatch/internal/ui"
	"github.com/cfdtools/solvewatch/internal/util"
)

// Column widths for the summary table. The name column stretches to the
// longest instance name; the rest are fixed.
const (
	minNameWidth    = 12
	medianWidth     = 12
	etaWidth        = 15
	timestepWidth   = 16
	csvWidth        = 6
	diskWidth       = 7
	displayNotAvail = "N/A"
)

// FallbackWidth is the assumed line width when stdout is not a terminal.
const FallbackWidth = 120

// Renderer renders one cycle's results as a table. Width caps the line length
// for error rows; zero means detect from the terminal, falling back to 120
// columns when stdout is not a terminal.
type Renderer struct {
	Width int
}

// Render produces the timestamped fleet table plus the summary line. Rows are
// sorted by instance name; an instance that failed renders a single error
// cell in place of its data columns.
func (r Renderer) Render(now time.Time, results []cycle.Result, history *progress.History) string {
	rows := make([]cycle.Result, len(results))
	copy(rows, results)
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Instance.Name < rows[j].Instance.Name
	})

	nameWidth := minNameWidth
	for _, row := range rows {
		if len(row.Instance.Name) > nameWidth {
			nameWidth = len(row.Instance.Name)
		}
	}

	width := r.Width
	if width <= 0 {
		width = detectWidth()
	}

	var b strings.Builder
	b.WriteString(ui.StyleHeader.Render(now.Format("2006-01-02 15:04:05")))
	b.WriteString("\n\n")

	b.WriteString(ui.StyleMuted.Render(fmt.Sprintf("  %-*s  %-*s  %-*s  %-*s  %*s  %-*s  %s",
		nameWidth, "INSTANCE",
		medianWidth, "MEDIAN",
		etaWidth, "ETA",
		timestepWidth, "TIMESTEP",
		csvWidth, "CSVS",
		diskWidth, "DISK",
		"PROCESS")))
	b.WriteString("\n")

	for _, row := range rows {
		if row.Err != nil {
			b.WriteString(errorRow(row, nameWidth, width))
		} else {
			b.WriteString(dataRow(row, history, nameWidth))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(summaryLine(rows))
	b.WriteString("\n")
	return b.String()
}

func dataRow(row cycle.Result, history *progress.History, nameWidth int) string {
	median, ok := history.Median(row.Instance.Name)
	if !ok {
		median = displayNotAvail
	}

	eta := row.Estimate.Display()
	process := row.Raw.Process

	line := fmt.Sprintf("%-*s  %-*s  %-*s  %-*s  %*d  %-*s  ",
		nameWidth, row.Instance.Name,
		medianWidth, median,
		etaWidth, eta,
		timestepWidth, timestepCell(row.State),
		csvWidth, row.Raw.CSVCount,
		diskWidth, row.Raw.FreeDisk)

	return ui.StyleSuccess.Render(ui.SymbolSuccess) + " " + line + processStyle(process).Render(process)
}

func errorRow(row cycle.Result, nameWidth, width int) string {
	msg := errorSummary(row.Err)
	// Leave room for the symbol, name column, and separators.
	avail := width - nameWidth - 4
	if avail < 10 {
		avail = 10
	}

	return ui.StyleError.Render(ui.SymbolFail) + " " +
		fmt.Sprintf("%-*s  ", nameWidth, row.Instance.Name) +
		ui.StyleError.Render(util.Truncate(msg, avail))
}

// timestepCell renders the raw progress cell: "(+delta)" once a prior sample
// exists, "(step)" on the first observation, both followed by the simulated
// time.
func timestepCell(state progress.State) string {
	if state.StepDelta != nil {
		return fmt.Sprintf("(+%d)%8.2f", *state.StepDelta, state.Latest.Elapsed)
	}
	return fmt.Sprintf("(%d)%8.2f", state.Latest.Step, state.Latest.Elapsed)
}

// summaryLine renders the per-cycle fleet statistics: reachable counts and
// how many instances are in each pipeline stage.
func summaryLine(rows []cycle.Result) string {
	counts := make(map[string]int)
	ok := 0
	for _, row := range rows {
		if row.Err != nil {
			continue
		}
		ok++
		counts[row.Raw.Process]++
	}

	stats := fmt.Sprintf("%d %s, %d reachable",
		len(rows), util.Pluralize(len(rows), "instance", "instances"), ok)
	stages := fmt.Sprintf("zcsvs: %d  finalize: %d  s3 sync: %d  idle: %d",
		counts["zcsvs"], counts["finalize"], counts["s3 sync"], counts[probe.ProcessIdle])

	return ui.StyleMuted.Render(stats + " | " + stages)
}

func processStyle(process string) lipgloss.Style {
	switch process {
	case "s3 sync":
		return ui.StyleSuccess
	case "finalize":
		return ui.StyleInfo
	case "zcsvs":
		return ui.StyleWarning
	default:
		return ui.StyleMuted
	}
}

func errorSummary(err error) string {
	type summarizer interface {
		Summary() string
	}
	if s, ok := err.(summarizer); ok {
		return s.Summary()
	}
	return err.Error()
}

func detectWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return FallbackWidth
}
