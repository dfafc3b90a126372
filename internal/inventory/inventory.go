// Package inventory defines the fleet identity model and the provider seam
// through which target instances are discovered. The core only ever consumes
// a []Identity; where that list comes from (static config today, a cloud
// inventory API eventually) is a provider concern.
package inventory

import "context"

// Identity describes one remote compute node for a single cycle. Identities
// are read-only to the rest of the system and rebuilt from the provider on
// demand.
type Identity struct {
	// ID is the opaque provider identifier.
	ID string

	// Name is the display name. It keys all per-instance state and carries
	// the category label as its last underscore-delimited token.
	Name string

	// Address is the reachable network endpoint. Empty is a valid,
	// reportable state meaning the instance cannot be probed.
	Address string

	// Class is the resource class label, informational only.
	Class string
}

// HasAddress reports whether the instance can be dialed at all.
func (id Identity) HasAddress() bool {
	return id.Address != ""
}

// Provider yields the set of instances to probe. Implementations may hit a
// network (a cloud API) and must honor the context.
type Provider interface {
	List(ctx context.Context) ([]Identity, error)
}

// Static is a Provider over a fixed list, used for config-declared fleets.
type Static struct {
	instances []Identity
}

// NewStatic creates a provider that always returns the given instances.
func NewStatic(instances []Identity) *Static {
	return &Static{instances: instances}
}

// List returns a copy of the configured instances.
func (s *Static) List(_ context.Context) ([]Identity, error) {
	out := make([]Identity, len(s.instances))
	copy(out, s.instances)
	return out, nil
}
