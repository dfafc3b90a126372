package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfdtools/solvewatch/internal/errors"
)

func TestParseSample(t *testing.T) {
	tests := []struct {
		name        string
		category    string
		line        string
		wantStep    uint64
		wantElapsed float64
		wantTotal   uint64
		wantErr     bool
	}{
		{
			name:        "typical line",
			category:    "run42_7ms",
			line:        "TimeStep     9000: Time    54.321",
			wantStep:    9000,
			wantElapsed: 54.321,
			wantTotal:   18000,
		},
		{
			name:        "2ms category has larger total",
			category:    "baseline_2ms",
			line:        "TimeStep      100: Time     0.25",
			wantStep:    100,
			wantElapsed: 0.25,
			wantTotal:   24000,
		},
		{
			name:        "minimal spacing",
			category:    "x_12ms",
			line:        "TimeStep 1: Time 2",
			wantStep:    1,
			wantElapsed: 2,
			wantTotal:   18000,
		},
		{
			name:     "missing colon",
			category: "run42_7ms",
			line:     "TimeStep 9000 Time 54.321",
			wantErr:  true,
		},
		{
			name:     "empty line",
			category: "run42_7ms",
			line:     "",
			wantErr:  true,
		},
		{
			name:     "non-numeric step",
			category: "run42_7ms",
			line:     "TimeStep      abc: Time    54.321",
			wantErr:  true,
		},
		{
			name:     "non-numeric time",
			category: "run42_7ms",
			line:     "TimeStep     9000: Time    fast",
			wantErr:  true,
		},
		{
			name:     "negative step rejected",
			category: "run42_7ms",
			line:     "TimeStep     -100: Time    54.321",
			wantErr:  true,
		},
		{
			name:     "unknown category fails before field extraction",
			category: "run42_99ms",
			line:     "TimeStep     9000: Time    54.321",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample, err := ParseSample(tt.category, tt.line)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrParse))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStep, sample.Step)
			assert.InDelta(t, tt.wantElapsed, sample.Elapsed, 1e-9)
			assert.Equal(t, tt.wantTotal, sample.TotalSteps)
		})
	}
}

func TestTotalSteps(t *testing.T) {
	tests := []struct {
		category string
		want     uint64
		wantErr  bool
	}{
		{"run42_2ms", 24000, false},
		{"run42_7ms", 18000, false},
		{"run42_12ms", 18000, false},
		{"deep_nested_name_17ms", 18000, false},
		{"2ms", 24000, false},
		{"run42_5ms", 0, true},
		{"run42", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			total, err := TotalSteps(tt.category)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrParse))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)
		})
	}
}

func TestSampleRemaining(t *testing.T) {
	assert.Equal(t, uint64(9000), Sample{Step: 9000, TotalSteps: 18000}.Remaining())
	assert.Equal(t, uint64(0), Sample{Step: 18000, TotalSteps: 18000}.Remaining())
	// Overshoot clamps at zero instead of wrapping.
	assert.Equal(t, uint64(0), Sample{Step: 18500, TotalSteps: 18000}.Remaining())
}
