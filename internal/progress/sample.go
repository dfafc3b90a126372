// Package progress implements the per-instance progress pipeline: parsing raw
// solver progress lines into samples, tracking step deltas across cycles,
// turning deltas into completion estimates, and smoothing estimates via median.
package progress

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cfdtools/solvewatch/internal/errors"
)

// Sample is a single progress observation from a solver's output file.
type Sample struct {
	Step       uint64  // monotonic step counter reported by the solver
	Elapsed    float64 // simulated time at that step
	TotalSteps uint64  // expected total steps, derived from the instance category
}

// Remaining returns the steps left until completion, clamped at zero.
func (s Sample) Remaining() uint64 {
	if s.Step >= s.TotalSteps {
		return 0
	}
	return s.TotalSteps - s.Step
}

// Label widths in the raw progress line "TimeStep  <n>: Time  <t>".
// The step field sits between the "TimeStep" label and the first colon,
// the elapsed-time field follows the ": Time" label.
const (
	stepLabelWidth = 8 // len("TimeStep")
	timeLabelWidth = 6 // len(": Time")
)

// categoryTotals maps the wind-speed suffix of an instance name to the total
// step count its simulation runs for.
var categoryTotals = map[string]uint64{
	"2ms":  24_000,
	"7ms":  18_000,
	"12ms": 18_000,
	"17ms": 18_000,
}

// ParseSample parses one raw progress line into a Sample. The category label
// (the instance display name) determines the total step count; it is validated
// before any field extraction so an unknown category never yields a partially
// populated sample.
func ParseSample(category, line string) (Sample, error) {
	total, err := TotalSteps(category)
	if err != nil {
		return Sample{}, err
	}

	colon := strings.IndexByte(line, ':')
	if colon < 0 {
		return Sample{}, errors.New(errors.ErrParse,
			fmt.Sprintf("No step marker in progress line %q", line),
			"Expected a line like 'TimeStep  123: Time  45.6' from solve.out")
	}
	if colon < stepLabelWidth || len(line) < colon+timeLabelWidth {
		return Sample{}, errors.New(errors.ErrParse,
			fmt.Sprintf("Progress line too short: %q", line),
			"Expected a line like 'TimeStep  123: Time  45.6' from solve.out")
	}

	stepField := strings.TrimSpace(line[stepLabelWidth:colon])
	step, err := strconv.ParseUint(stepField, 10, 64)
	if err != nil {
		return Sample{}, errors.WrapWithCode(err, errors.ErrParse,
			fmt.Sprintf("Bad step field %q in progress line", stepField),
			"The step field must be a non-negative integer")
	}

	timeField := strings.TrimSpace(line[colon+timeLabelWidth:])
	elapsed, err := strconv.ParseFloat(timeField, 64)
	if err != nil {
		return Sample{}, errors.WrapWithCode(err, errors.ErrParse,
			fmt.Sprintf("Bad time field %q in progress line", timeField),
			"The time field must be a number")
	}

	return Sample{
		Step:       step,
		Elapsed:    elapsed,
		TotalSteps: total,
	}, nil
}

// TotalSteps resolves the total step count for a category label. The category
// is the last underscore-delimited token of the instance name (a wind-speed
// tag like "7ms"). Unknown tokens are a hard error, never a default.
func TotalSteps(category string) (uint64, error) {
	token := category
	if i := strings.LastIndexByte(category, '_'); i >= 0 {
		token = category[i+1:]
	}

	total, ok := categoryTotals[token]
	if !ok {
		return 0, errors.New(errors.ErrParse,
			fmt.Sprintf("Unknown category %q in instance name %q", token, category),
			"Instance names must end in _2ms, _7ms, _12ms, or _17ms")
	}
	return total, nil
}
