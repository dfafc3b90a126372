package progress

import "sync"

// State is the tracked progress for one instance: its most recent sample and
// the step delta observed over the last sampling interval. StepDelta is nil
// until a second sample arrives, which signals "first observation, not yet
// rate-capable" to the estimator.
type State struct {
	Latest    Sample
	StepDelta *uint64
}

// Store holds per-instance progress state across cycles, keyed by instance
// display name. It is the only cross-cycle memory in the system: entries are
// created on first sample, overwritten every cycle that yields a new sample,
// and never deleted. Callers own the Store's lifetime and pass it into the
// cycle runner; all access is serialized by an internal mutex.
type Store struct {
	mu     sync.Mutex
	states map[string]State
}

// NewStore creates an empty progress store.
func NewStore() *Store {
	return &Store{states: make(map[string]State)}
}

// Advance records a new sample for the instance and returns the resulting
// state. The step delta is clamped at zero: a step counter that appears to
// regress (a restarted solver, a stale output file) reads as no progress,
// never as negative progress. The delta is a single-interval quantity and is
// recomputed from scratch each cycle.
func (s *Store) Advance(key string, sample Sample) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := State{Latest: sample}
	if prev, ok := s.states[key]; ok {
		var delta uint64
		if sample.Step > prev.Latest.Step {
			delta = sample.Step - prev.Latest.Step
		}
		state.StepDelta = &delta
	}

	s.states[key] = state
	return state
}

// Get returns the current state for an instance, if one exists.
func (s *Store) Get(key string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[key]
	return state, ok
}

// Len returns the number of instances with tracked state.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}
