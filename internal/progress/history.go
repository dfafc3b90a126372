package progress

import (
	"sort"
	"strconv"
	"strings"
	"sync"
)

// History accumulates per-instance ETA estimates (in minutes) across cycles
// so the report can show a median-smoothed value instead of a jittery
// per-cycle one. Entries are append-only and unbounded; like the Store, the
// caller owns the History and passes it into the cycle runner.
type History struct {
	mu   sync.Mutex
	etas map[string][]float64
}

// NewHistory creates an empty ETA history.
func NewHistory() *History {
	return &History{etas: make(map[string][]float64)}
}

// Record appends an estimate for the instance.
func (h *History) Record(key string, minutes float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.etas[key] = append(h.etas[key], minutes)
}

// Count returns the number of recorded estimates for the instance.
func (h *History) Count(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.etas[key])
}

// Median returns the median of the recorded estimates rendered as a duration
// string. The second return is false when no history exists for the instance;
// an empty history never reads as zero. Odd counts take the middle value,
// even counts the mean of the two middle values.
func (h *History) Median(key string) (string, bool) {
	h.mu.Lock()
	values := h.etas[key]
	sorted := make([]float64, len(values))
	copy(sorted, values)
	h.mu.Unlock()

	if len(sorted) == 0 {
		return "", false
	}

	sort.Float64s(sorted)

	var median float64
	if len(sorted)%2 == 0 {
		mid := len(sorted) / 2
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[len(sorted)/2]
	}

	return FormatMinutes(median), true
}

// ParseMinutes recovers a minute count from a rendered duration string like
// "2d 5h 30m". The sentinel strings are rejected. Tokens without a d/h/m
// suffix are skipped rather than rejected: this is a best-effort display
// re-derivation, not a validating parser. Returns false when nothing usable
// was found.
func ParseMinutes(s string) (float64, bool) {
	switch s {
	case DisplayComplete, DisplayStalled, DisplayCalculating:
		return 0, false
	}

	total := 0.0
	for _, part := range strings.Fields(s) {
		switch {
		case strings.HasSuffix(part, "d"):
			if days, err := strconv.ParseFloat(strings.TrimSuffix(part, "d"), 64); err == nil {
				total += days * 24 * 60
			}
		case strings.HasSuffix(part, "h"):
			if hours, err := strconv.ParseFloat(strings.TrimSuffix(part, "h"), 64); err == nil {
				total += hours * 60
			}
		case strings.HasSuffix(part, "m"):
			if minutes, err := strconv.ParseFloat(strings.TrimSuffix(part, "m"), 64); err == nil {
				total += minutes
			}
		}
	}

	if total > 0 {
		return total, true
	}
	return 0, false
}
