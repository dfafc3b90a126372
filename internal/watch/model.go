// Package watch implements the interactive dashboard: the same sampling
// cycles as the report loop, rendered live in a Bubble Tea program with a
// spinner while a cycle is in flight.
package watch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cfdtools/solvewatch/internal/cycle"
	"github.com/cfdtools/solvewatch/internal/inventory"
	"github.com/cfdtools/solvewatch/internal/progress"
	"github.com/cfdtools/solvewatch/internal/report"
	"github.com/cfdtools/solvewatch/internal/ui"
)

// tickMsg signals that the next sampling cycle is due.
type tickMsg time.Time

// resultsMsg carries a completed cycle's results.
type resultsMsg struct {
	results []cycle.Result
	at      time.Time
}

// listErrMsg carries an inventory resolution failure.
type listErrMsg struct {
	err error
}

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	runner   *cycle.Runner
	provider inventory.Provider
	history  *progress.History
	renderer report.Renderer
	spin     spinner.Model

	results    []cycle.Result
	lastUpdate time.Time
	listErr    error

	width      int
	height     int
	collecting bool
	quitting   bool
}

// NewModel creates a dashboard model over the given cycle runner.
func NewModel(runner *cycle.Runner, provider inventory.Provider, history *progress.History) Model {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(ui.StyleInfo),
	)
	return Model{
		runner:   runner,
		provider: provider,
		history:  history,
		renderer: report.Renderer{Width: report.FallbackWidth},
		spin:     sp,
	}
}

// Init starts the spinner and kicks off the first cycle immediately.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.collectCmd())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if !m.collecting {
				m.collecting = true
				return m, m.collectCmd()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.renderer.Width = msg.Width

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tickMsg:
		if m.collecting {
			return m, nil
		}
		m.collecting = true
		return m, m.collectCmd()

	case resultsMsg:
		m.collecting = false
		m.results = msg.results
		m.lastUpdate = msg.at
		m.listErr = nil
		return m, m.tickCmd()

	case listErrMsg:
		m.collecting = false
		m.listErr = msg.err
		return m, m.tickCmd()
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(ui.StyleHeader.Render("solvewatch"))
	if m.collecting {
		b.WriteString("  " + m.spin.View() + ui.StyleMuted.Render("collecting..."))
	} else if !m.lastUpdate.IsZero() {
		b.WriteString("  " + ui.StyleMuted.Render("updated "+m.lastUpdate.Format("15:04:05")))
	}
	b.WriteString("\n\n")

	switch {
	case m.listErr != nil:
		b.WriteString(ui.StyleError.Render(fmt.Sprintf("%s could not resolve instances: %v", ui.SymbolFail, m.listErr)))
		b.WriteString("\n")
	case m.results == nil:
		b.WriteString(ui.StyleMuted.Render(ui.SymbolPending + " waiting for first cycle..."))
		b.WriteString("\n")
	default:
		b.WriteString(m.renderer.Render(m.lastUpdate, m.results, m.history))
	}

	b.WriteString("\n")
	b.WriteString(ui.StyleMuted.Render(fmt.Sprintf("q quit • r refresh • interval %s", m.runner.Interval())))
	b.WriteString("\n")
	return b.String()
}

// tickCmd schedules the next cycle after the sampling interval.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.runner.Interval(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// collectCmd runs one sampling cycle off the UI goroutine.
func (m Model) collectCmd() tea.Cmd {
	runner, provider := m.runner, m.provider
	return func() tea.Msg {
		ctx := context.Background()
		instances, err := provider.List(ctx)
		if err != nil {
			return listErrMsg{err: err}
		}
		return resultsMsg{
			results: runner.Run(ctx, instances),
			at:      time.Now(),
		}
	}
}

// Run starts the dashboard program and blocks until it exits.
func Run(runner *cycle.Runner, provider inventory.Provider, history *progress.History) error {
	p := tea.NewProgram(NewModel(runner, provider, history), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
