// Package cycle runs one sampling pass over the fleet: probe every instance
// concurrently, parse and track progress, and produce one result per instance
// with failures isolated to the instance they occurred on.
package cycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cfdtools/solvewatch/internal/errors"
	"github.com/cfdtools/solvewatch/internal/inventory"
	"github.com/cfdtools/solvewatch/internal/logger"
	"github.com/cfdtools/solvewatch/internal/probe"
	"github.com/cfdtools/solvewatch/internal/progress"
)

// Prober is the remote probing capability the runner fans out over. The
// concrete implementation lives in internal/probe; tests substitute a fake.
type Prober interface {
	Probe(ctx context.Context, inst inventory.Identity) (*probe.Raw, error)
}

// Result is the outcome of probing one instance in one cycle. Exactly one of
// the two shapes holds: Err is nil and Raw/State/Estimate are populated, or
// Err carries the single failure that aborted this instance's probe.
type Result struct {
	Instance inventory.Identity
	Raw      *probe.Raw
	State    progress.State
	Estimate progress.Classification
	Err      error
}

// OK reports whether the instance was probed successfully.
func (r Result) OK() bool {
	return r.Err == nil
}

// Runner orchestrates sampling cycles. The progress store and estimate
// history are owned by the caller and shared across cycles; the runner only
// reads the interval once at construction so every delta is divided by the
// same period it was measured over.
type Runner struct {
	prober   Prober
	store    *progress.Store
	history  *progress.History
	interval time.Duration
	log      logger.Logger
}

// NewRunner creates a cycle runner over the given prober and shared state.
func NewRunner(prober Prober, store *progress.Store, history *progress.History, interval time.Duration) *Runner {
	return &Runner{
		prober:   prober,
		store:    store,
		history:  history,
		interval: interval,
		log:      logger.NewEnvLogger("[cycle]"),
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(log logger.Logger) {
	r.log = log
}

// Interval returns the sampling interval the runner estimates against.
func (r *Runner) Interval() time.Duration {
	return r.interval
}

// Run probes every instance concurrently and returns one Result per input
// instance, in input order. Run itself never fails: every per-instance
// failure, including a panicking worker, lands in that instance's Result and
// nowhere else.
func (r *Runner) Run(ctx context.Context, instances []inventory.Identity) []Result {
	results := make([]Result, len(instances))

	var wg sync.WaitGroup
	for i, inst := range instances {
		wg.Add(1)
		go func(i int, inst inventory.Identity) {
			defer wg.Done()
			results[i] = r.probeOne(ctx, inst)
		}(i, inst)
	}
	wg.Wait()

	r.log.Debug("cycle complete: %d instances, %d ok", len(results), countOK(results))
	return results
}

func (r *Runner) probeOne(ctx context.Context, inst inventory.Identity) (res Result) {
	res.Instance = inst
	defer func() {
		if p := recover(); p != nil {
			res = Result{
				Instance: inst,
				Err: errors.New(errors.ErrTask,
					fmt.Sprintf("Probe worker panicked: %v", p),
					"This is a bug; run with SOLVEWATCH_DEBUG=1 and report it"),
			}
		}
	}()

	raw, err := r.prober.Probe(ctx, inst)
	if err != nil {
		r.log.Debug("%s: probe failed: %v", inst.Name, err)
		res.Err = err
		return res
	}

	sample, err := progress.ParseSample(inst.Name, raw.TimestepLine)
	if err != nil {
		// A result carries either full probe data or one error, never both.
		res.Err = err
		return res
	}
	res.Raw = raw

	res.State = r.store.Advance(inst.Name, sample)
	res.Estimate = progress.Estimate(res.State, r.interval.Minutes())
	if res.Estimate.Kind == progress.KindEstimated {
		r.history.Record(inst.Name, res.Estimate.Minutes)
	}
	return res
}

func countOK(results []Result) int {
	n := 0
	for _, res := range results {
		if res.OK() {
			n++
		}
	}
	return n
}
