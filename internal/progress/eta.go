package progress

import (
	"fmt"
	"math"
)

// Kind classifies an ETA estimate.
type Kind int

const (
	// KindCalculating means no prior sample exists yet; no rate is available.
	KindCalculating Kind = iota
	// KindStalled means the step counter did not advance over the interval.
	KindStalled
	// KindComplete means no steps remain.
	KindComplete
	// KindEstimated carries a numeric estimate in minutes.
	KindEstimated
)

// Classification is the outcome of estimating one instance's ETA. Minutes is
// meaningful only for KindEstimated. Sentinel display strings exist only at
// the reporting boundary; internal logic switches on Kind.
type Classification struct {
	Kind    Kind
	Minutes float64
}

// Display sentinels for the non-numeric classifications.
const (
	DisplayCalculating = "Calculating..."
	DisplayStalled     = "Stalled"
	DisplayComplete    = "Complete"
)

// Estimate converts a tracked state into an ETA classification. The
// intervalMinutes divisor must be the same interval the state's step delta
// was measured over, or the projected rate is wrong.
func Estimate(state State, intervalMinutes float64) Classification {
	if state.StepDelta == nil {
		return Classification{Kind: KindCalculating}
	}
	if *state.StepDelta == 0 {
		return Classification{Kind: KindStalled}
	}

	remaining := state.Latest.Remaining()
	if remaining == 0 {
		return Classification{Kind: KindComplete}
	}

	minutesPerStep := intervalMinutes / float64(*state.StepDelta)
	return Classification{
		Kind:    KindEstimated,
		Minutes: float64(remaining) * minutesPerStep,
	}
}

// Display renders the classification for reporting.
func (c Classification) Display() string {
	switch c.Kind {
	case KindStalled:
		return DisplayStalled
	case KindComplete:
		return DisplayComplete
	case KindEstimated:
		return FormatMinutes(c.Minutes)
	default:
		return DisplayCalculating
	}
}

// FormatMinutes renders a minute count as a "2d 5h 30m" style duration.
// Minutes decompose into whole days, whole remaining hours, and rounded
// remaining minutes; leading zero-valued units are dropped entirely, but the
// minute field always appears ("1d 0m", "2h 0m", "45m").
func FormatMinutes(totalMinutes float64) string {
	totalHours := totalMinutes / 60
	days := uint64(math.Floor(totalHours / 24))
	hours := uint64(math.Floor(math.Mod(totalHours, 24)))
	minutes := uint64(math.Round(math.Mod(totalMinutes, 60)))

	if days > 0 {
		if hours > 0 {
			return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
		}
		return fmt.Sprintf("%dd %dm", days, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
