package inventory

import "github.com/cfdtools/solvewatch/internal/config"

// FromConfig builds a static provider from the configured instance list.
func FromConfig(cfg *config.Config) *Static {
	instances := make([]Identity, 0, len(cfg.Instances))
	for _, inst := range cfg.Instances {
		instances = append(instances, Identity{
			ID:      inst.ID,
			Name:    inst.Name,
			Address: inst.Address,
			Class:   inst.Class,
		})
	}
	return NewStatic(instances)
}
