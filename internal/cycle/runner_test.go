package cycle

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfdtools/solvewatch/internal/errors"
	"github.com/cfdtools/solvewatch/internal/inventory"
	"github.com/cfdtools/solvewatch/internal/logger"
	"github.com/cfdtools/solvewatch/internal/probe"
	"github.com/cfdtools/solvewatch/internal/progress"
)

// fakeProber answers probes from a per-instance script.
type fakeProber struct {
	responses map[string]func() (*probe.Raw, error)
}

func (f *fakeProber) Probe(_ context.Context, inst inventory.Identity) (*probe.Raw, error) {
	fn, ok := f.responses[inst.Name]
	if !ok {
		return nil, errors.New(errors.ErrSSH, "no script for "+inst.Name, "")
	}
	return fn()
}

func rawAt(step int) func() (*probe.Raw, error) {
	line := progressLine(step)
	return func() (*probe.Raw, error) {
		return &probe.Raw{
			TimestepLine: line,
			CSVCount:     3,
			FreeDisk:     "200G",
			Process:      "none",
		}, nil
	}
}

func progressLine(step int) string {
	// Matches the solver's output format, label widths included.
	return fmt.Sprintf("TimeStep  %6d: Time  %.2f", step, float64(step)*0.5)
}

func newTestRunner(p Prober) (*Runner, *progress.Store, *progress.History) {
	store := progress.NewStore()
	history := progress.NewHistory()
	r := NewRunner(p, store, history, 6*time.Minute)
	r.SetLogger(logger.Noop())
	return r, store, history
}

func instance(name string) inventory.Identity {
	return inventory.Identity{Name: name, Address: "10.0.0.1"}
}

func TestRunFirstCycleIsCalculating(t *testing.T) {
	p := &fakeProber{responses: map[string]func() (*probe.Raw, error){
		"alpha_7ms": rawAt(100),
	}}
	r, _, _ := newTestRunner(p)

	results := r.Run(context.Background(), []inventory.Identity{instance("alpha_7ms")})
	require.Len(t, results, 1)

	res := results[0]
	require.NoError(t, res.Err)
	assert.Equal(t, progress.KindCalculating, res.Estimate.Kind)
	assert.Equal(t, uint64(100), res.State.Latest.Step)
	assert.Nil(t, res.State.StepDelta)
}

func TestRunSecondCycleEstimatesAndRecordsHistory(t *testing.T) {
	p := &fakeProber{responses: map[string]func() (*probe.Raw, error){
		"alpha_7ms": rawAt(100),
	}}
	r, _, history := newTestRunner(p)
	fleet := []inventory.Identity{instance("alpha_7ms")}

	r.Run(context.Background(), fleet)

	p.responses["alpha_7ms"] = rawAt(160)
	results := r.Run(context.Background(), fleet)

	res := results[0]
	require.NoError(t, res.Err)
	require.Equal(t, progress.KindEstimated, res.Estimate.Kind)

	// 60 steps over 6 minutes, 17840 steps remaining.
	assert.InDelta(t, 17840.0*6.0/60.0, res.Estimate.Minutes, 0.001)
	assert.Equal(t, 1, history.Count("alpha_7ms"))
}

func TestRunStalledInstanceNotRecorded(t *testing.T) {
	p := &fakeProber{responses: map[string]func() (*probe.Raw, error){
		"alpha_7ms": rawAt(100),
	}}
	r, _, history := newTestRunner(p)
	fleet := []inventory.Identity{instance("alpha_7ms")}

	r.Run(context.Background(), fleet)
	results := r.Run(context.Background(), fleet)

	res := results[0]
	require.NoError(t, res.Err)
	assert.Equal(t, progress.KindStalled, res.Estimate.Kind)
	assert.Equal(t, 0, history.Count("alpha_7ms"))
}

func TestRunFailureIsolation(t *testing.T) {
	p := &fakeProber{responses: map[string]func() (*probe.Raw, error){
		"ok_7ms": rawAt(500),
		"dial_fail_2ms": func() (*probe.Raw, error) {
			return nil, errors.New(errors.ErrSSH, "Connection refused", "")
		},
		"auth_fail_12ms": func() (*probe.Raw, error) {
			return nil, errors.New(errors.ErrAuth, "All authentication methods failed", "")
		},
		"bad_line_17ms": func() (*probe.Raw, error) {
			return &probe.Raw{TimestepLine: "garbage without marker"}, nil
		},
		"panics_2ms": func() (*probe.Raw, error) {
			panic("boom")
		},
	}}
	r, _, _ := newTestRunner(p)

	fleet := []inventory.Identity{
		instance("ok_7ms"),
		instance("dial_fail_2ms"),
		instance("auth_fail_12ms"),
		instance("bad_line_17ms"),
		instance("panics_2ms"),
	}
	results := r.Run(context.Background(), fleet)
	require.Len(t, results, len(fleet))

	// Results come back in input order, one per instance.
	for i, res := range results {
		assert.Equal(t, fleet[i].Name, res.Instance.Name)
	}

	assert.NoError(t, results[0].Err)
	assert.NotNil(t, results[0].Raw)
	for _, res := range results[1:] {
		assert.Nil(t, res.Raw, "an error result carries no probe data")
	}
	assert.True(t, errors.IsCode(results[1].Err, errors.ErrSSH))
	assert.True(t, errors.IsCode(results[2].Err, errors.ErrAuth))
	assert.True(t, errors.IsCode(results[3].Err, errors.ErrParse))
	assert.True(t, errors.IsCode(results[4].Err, errors.ErrTask))
}

func TestRunUnknownCategoryIsParseError(t *testing.T) {
	p := &fakeProber{responses: map[string]func() (*probe.Raw, error){
		"alpha_99ms": rawAt(100),
	}}
	r, store, _ := newTestRunner(p)

	results := r.Run(context.Background(), []inventory.Identity{instance("alpha_99ms")})
	require.Len(t, results, 1)
	assert.True(t, errors.IsCode(results[0].Err, errors.ErrParse))

	// A failed parse must not leave tracked state behind.
	_, ok := store.Get("alpha_99ms")
	assert.False(t, ok)
}

func TestRunCompletion(t *testing.T) {
	p := &fakeProber{responses: map[string]func() (*probe.Raw, error){
		"alpha_7ms": rawAt(17900),
	}}
	r, _, _ := newTestRunner(p)
	fleet := []inventory.Identity{instance("alpha_7ms")}

	r.Run(context.Background(), fleet)

	p.responses["alpha_7ms"] = rawAt(18000)
	results := r.Run(context.Background(), fleet)

	require.NoError(t, results[0].Err)
	assert.Equal(t, progress.KindComplete, results[0].Estimate.Kind)
}
