package config

import (
	"fmt"
	"time"

	"github.com/cfdtools/solvewatch/internal/errors"
)

// MinInterval is the shortest allowed sampling interval. Probing a fleet more
// often than this yields deltas too small for meaningful rate estimation.
const MinInterval = 30 * time.Second

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but solvewatch only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Update solvewatch or lower the config version")
	}

	if cfg.Interval <= 0 {
		return errors.New(errors.ErrConfig,
			"Sampling interval must be positive",
			"Set interval to a duration like 6m")
	}
	if cfg.Interval < MinInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Sampling interval %s is too short", cfg.Interval),
			fmt.Sprintf("Use at least %s between cycles", MinInterval))
	}

	if len(cfg.Instances) == 0 {
		return errors.New(errors.ErrConfig,
			"No instances configured",
			"Add instances to the config, or run 'solvewatch init'")
	}

	seen := make(map[string]bool, len(cfg.Instances))
	for i, inst := range cfg.Instances {
		if inst.Name == "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Instance %d has no name", i),
				"Every instance needs a name; it selects the remote job directory")
		}
		if seen[inst.Name] {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Duplicate instance name '%s'", inst.Name),
				"Instance names key the progress tracking state and must be unique")
		}
		seen[inst.Name] = true
	}

	if cfg.SSH.User == "" {
		return errors.New(errors.ErrConfig,
			"SSH user is empty",
			"Set ssh.user (the default is ubuntu)")
	}

	return nil
}
