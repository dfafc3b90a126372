package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfdtools/solvewatch/internal/cycle"
	"github.com/cfdtools/solvewatch/internal/inventory"
	"github.com/cfdtools/solvewatch/internal/logger"
	"github.com/cfdtools/solvewatch/internal/probe"
	"github.com/cfdtools/solvewatch/internal/progress"
)

type staticProber struct {
	raw probe.Raw
}

func (s *staticProber) Probe(_ context.Context, _ inventory.Identity) (*probe.Raw, error) {
	raw := s.raw
	return &raw, nil
}

func newTestLoop(out *bytes.Buffer, once bool) *Loop {
	history := progress.NewHistory()
	runner := cycle.NewRunner(
		&staticProber{raw: probe.Raw{
			TimestepLine: "TimeStep     500: Time  42.00",
			CSVCount:     2,
			FreeDisk:     "100G",
			Process:      "none",
		}},
		progress.NewStore(),
		history,
		10*time.Millisecond,
	)
	runner.SetLogger(logger.Noop())

	return &Loop{
		Runner: runner,
		Provider: inventory.NewStatic([]inventory.Identity{
			{Name: "alpha_7ms", Address: "10.0.0.1"},
		}),
		History:  history,
		Renderer: Renderer{Width: 120},
		Out:      out,
		Once:     once,
		Log:      logger.Noop(),
	}
}

func TestLoopOnce(t *testing.T) {
	var out bytes.Buffer
	loop := newTestLoop(&out, true)

	err := loop.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, out.String(), "alpha_7ms")
	assert.Contains(t, out.String(), "(500)   42.00")
	assert.NotContains(t, out.String(), "Next update")
}

func TestLoopStopsOnCancel(t *testing.T) {
	var out bytes.Buffer
	loop := newTestLoop(&out, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancellation")
	}

	assert.Contains(t, out.String(), "Next update")
}
