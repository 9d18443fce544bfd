package analysis

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/sissim/internal/dynamo"
	"github.com/san-kum/sissim/internal/epidemic"
)

func defaultSweep() SweepConfig {
	return SweepConfig{
		Params:  epidemic.DefaultParams(),
		Min:     0,
		Max:     0.5,
		Steps:   11,
		Horizon: 1000,
		Sim:     dynamo.DefaultConfig(),
		Workers: 4,
	}
}

func TestSweep(t *testing.T) {
	sc := defaultSweep()
	points, err := Sweep(context.Background(), sc)
	require.NoError(t, err)
	require.Len(t, points, sc.Steps)

	n := sc.Params.Population
	for i, p := range points {
		assert.InDelta(t, 0.05*float64(i), p.GrowthRate, 1e-12)
		assert.GreaterOrEqual(t, p.Final, 0.0)
		assert.LessOrEqual(t, p.Final, n)

		// Runs close to R0 = 1 converge too slowly to compare.
		if math.Abs(p.ReproductionNumber-1) > 0.5 {
			assert.InDelta(t, p.Equilibrium, p.Final, 1e-3*n, "growth rate %g", p.GrowthRate)
		}
	}

	assert.Equal(t, 0.0, points[0].Equilibrium)
	assert.Less(t, points[0].Final, 1e-3)

	threshold := Threshold(points, n)
	assert.GreaterOrEqual(t, threshold, sc.Params.RecoveryRate)
	assert.LessOrEqual(t, threshold, 0.1)
}

func TestSweep_DoesNotMutateParams(t *testing.T) {
	sc := defaultSweep()
	_, err := Sweep(context.Background(), sc)
	require.NoError(t, err)
	assert.Equal(t, epidemic.DefaultParams(), sc.Params)
}

func TestSweep_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SweepConfig)
	}{
		{"one step", func(sc *SweepConfig) { sc.Steps = 1 }},
		{"empty range", func(sc *SweepConfig) { sc.Max = sc.Min }},
		{"negative rate", func(sc *SweepConfig) { sc.Min = -0.1 }},
		{"zero horizon", func(sc *SweepConfig) { sc.Horizon = 0 }},
		{"bad params", func(sc *SweepConfig) { sc.Params.Population = 0 }},
		{"unknown integrator", func(sc *SweepConfig) { sc.Integrator = "leapfrog" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := defaultSweep()
			tt.mutate(&sc)
			_, err := Sweep(context.Background(), sc)
			assert.Error(t, err)
		})
	}
}

func TestSweep_Integrator(t *testing.T) {
	sc := defaultSweep()
	sc.Horizon = 60

	adaptive, err := Sweep(context.Background(), sc)
	require.NoError(t, err)

	sc.Integrator = "euler"
	euler, err := Sweep(context.Background(), sc)
	require.NoError(t, err)
	require.Len(t, euler, len(adaptive))

	// Same rates, different method: the endemic runs must not agree to rounding.
	last := len(adaptive) - 1
	assert.Equal(t, adaptive[last].GrowthRate, euler[last].GrowthRate)
	assert.NotEqual(t, adaptive[last].Final, euler[last].Final)
	assert.InDelta(t, adaptive[last].Final, euler[last].Final, 1e-2*sc.Params.Population)
}

func TestSweep_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Sweep(ctx, defaultSweep())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestThreshold_AllDieOut(t *testing.T) {
	points := []SweepPoint{{GrowthRate: 0.01, Final: 0}, {GrowthRate: 0.02, Final: 1e-9}}
	assert.True(t, math.IsNaN(Threshold(points, 1000)))
}

func TestSweepOutput(t *testing.T) {
	points := []SweepPoint{
		{GrowthRate: 0, ReproductionNumber: 0, Final: 0, Equilibrium: 0},
		{GrowthRate: 0.1, ReproductionNumber: 2, Final: 499, Equilibrium: 500},
		{GrowthRate: 0.2, ReproductionNumber: 4, Final: 750, Equilibrium: 750},
	}

	chart := SweepToASCII(points, 40, 8)
	assert.Contains(t, chart, "simulated")
	assert.Contains(t, chart, "equilibrium")
	assert.Empty(t, SweepToASCII(nil, 40, 8))

	var buf bytes.Buffer
	require.NoError(t, WriteSweep(&buf, points))
	assert.Contains(t, buf.String(), "growth rate")
	assert.Contains(t, buf.String(), "0.1000")
}
