package cli

import (
	"time"

	"github.com/cfdtools/solvewatch/internal/config"
	"github.com/cfdtools/solvewatch/internal/cycle"
	"github.com/cfdtools/solvewatch/internal/errors"
	"github.com/cfdtools/solvewatch/internal/inventory"
	"github.com/cfdtools/solvewatch/internal/probe"
	"github.com/cfdtools/solvewatch/internal/progress"
	"github.com/cfdtools/solvewatch/pkg/sshutil"
)

// runtime bundles everything a monitoring command needs for its lifetime:
// the cycle runner, the instance provider, and the shared estimate history.
// Close releases the pooled SSH connections.
type runtime struct {
	runner   *cycle.Runner
	provider inventory.Provider
	history  *progress.History
	prober   *probe.Prober
	cfg      *config.Config
}

func (r *runtime) Close() {
	r.prober.Close()
}

// newRuntime loads the config and assembles the monitoring pipeline.
// intervalOverride, when non-zero, replaces the configured sampling interval
// and is validated against the same floor.
func newRuntime(intervalOverride time.Duration) (*runtime, error) {
	cfg, err := config.LoadFound(configFlag)
	if err != nil {
		return nil, err
	}

	interval := cfg.Interval
	if intervalOverride > 0 {
		if intervalOverride < config.MinInterval {
			return nil, errors.New(errors.ErrConfig,
				"Interval too short",
				"Sampling more often than every "+config.MinInterval.String()+" hammers the fleet for no better estimates")
		}
		interval = intervalOverride
	}

	prober := probe.NewProber(sshutil.Options{
		User:          cfg.SSH.User,
		IdentityFile:  cfg.SSH.IdentityFile,
		DialTimeout:   cfg.SSH.DialTimeout,
		StrictHostKey: cfg.SSH.StrictHostKey,
	})

	history := progress.NewHistory()
	runner := cycle.NewRunner(prober, progress.NewStore(), history, interval)

	return &runtime{
		runner:   runner,
		provider: inventory.FromConfig(cfg),
		history:  history,
		prober:   prober,
		cfg:      cfg,
	}, nil
}
