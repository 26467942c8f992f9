package summary

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mcwalk/internal/model"
	"github.com/roach88/mcwalk/internal/sampler"
)

// demoTarget is the two-coin posterior: 5/7 and 2/7 heads, Beta(3,3) priors.
func demoTarget(t *testing.T) *model.BetaBernoulli {
	t.Helper()
	m, err := model.NewBetaBernoulli(
		[]model.Experiment{{Successes: 5, Trials: 7}, {Successes: 2, Trials: 7}},
		[]model.BetaPrior{{Alpha: 3, Beta: 3}, {Alpha: 3, Beta: 3}},
	)
	require.NoError(t, err)
	return m
}

// demoTrajectory runs a seeded chain against demoTarget and returns the
// trimmed trajectory.
func demoTrajectory(t *testing.T, steps int) ([][]float64, *model.BetaBernoulli) {
	t.Helper()
	target := demoTarget(t)
	chain, err := sampler.New(sampler.Config{
		Steps:          steps,
		Start:          []float64{0.5, 0.5},
		BurnInFraction: 0.1,
		StepSD:         []float64{0.2, 0.2},
		Seed:           47405,
		CredMass:       0.95,
	}, target)
	require.NoError(t, err)
	result, err := chain.Run(context.Background())
	require.NoError(t, err)
	return Trim(result.Trajectory, result.Boundary), target
}

func TestTrim(t *testing.T) {
	trajectory := [][]float64{{0}, {1}, {2}, {3}, {4}}

	tests := []struct {
		name     string
		boundary int
		want     [][]float64
	}{
		{"zero boundary keeps everything", 0, trajectory},
		{"mid boundary drops prefix", 2, [][]float64{{2}, {3}, {4}}},
		{"boundary at last element", 4, [][]float64{{4}}},
		{"boundary at length", 5, nil},
		{"boundary past length", 10, nil},
		{"negative boundary keeps everything", -1, trajectory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Trim(trajectory, tt.boundary))
		})
	}
}

func TestMoments_HandComputed(t *testing.T) {
	trimmed := [][]float64{
		{0, 2},
		{2, 4},
		{4, 6},
	}

	mean, std, err := Moments(trimmed)
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 4}, mean)
	// Population standard deviation, divisor n: var = (4+0+4)/3.
	want := math.Sqrt(8.0 / 3.0)
	assert.InDelta(t, want, std[0], 1e-12)
	assert.InDelta(t, want, std[1], 1e-12)
}

func TestMoments_ConstantSample(t *testing.T) {
	trimmed := [][]float64{{0.5}, {0.5}, {0.5}}

	mean, std, err := Moments(trimmed)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, mean)
	assert.Equal(t, []float64{0}, std)
}

func TestMoments_Empty(t *testing.T) {
	_, _, err := Moments(nil)
	assert.Error(t, err)
}

func TestCompute_FullSummary(t *testing.T) {
	trimmed, target := demoTrajectory(t, 20000)

	s, err := Compute(trimmed, target, 0.95)
	require.NoError(t, err)

	// Posterior means are exact per conjugacy: 8/13 and 5/13.
	require.Len(t, s.Mean, 2)
	assert.InDelta(t, 8.0/13.0, s.Mean[0], 0.03)
	assert.InDelta(t, 5.0/13.0, s.Mean[1], 0.03)

	// Exact posterior SD for Beta(8,5) and Beta(5,8) is ~0.13.
	assert.InDelta(t, 0.13, s.Std[0], 0.04)
	assert.InDelta(t, 0.13, s.Std[1], 0.04)

	require.True(t, s.EvidenceOK)
	exact := target.MarginalLikelihood()
	assert.InDelta(t, exact, s.Evidence, 0.25*exact)

	assert.Equal(t, 0.95, s.CredMass)
	assert.Greater(t, s.Waterline, 0.0)
	assert.NotEmpty(t, s.HDIPoints)
	assert.Less(t, len(s.HDIPoints), len(trimmed))
}

func TestCompute_ProportionalTargetSkipsEvidence(t *testing.T) {
	// lineTarget is proportional-only (no Normalized marker); Compute must
	// not attempt the evidence estimate.
	trimmed := [][]float64{{0.2}, {0.4}, {0.6}, {0.8}}

	s, err := Compute(trimmed, lineTarget{}, 0.5)
	require.NoError(t, err)
	assert.False(t, s.EvidenceOK)
	assert.Equal(t, 0.0, s.Evidence)
	assert.NotNil(t, s.Mean)
}

func TestCompute_DegenerateSampleKeepsMomentsAndHDI(t *testing.T) {
	target := demoTarget(t)
	trimmed := [][]float64{{0.5, 0.5}, {0.5, 0.5}, {0.5, 0.5}}

	s, err := Compute(trimmed, target, 0.95)
	require.NoError(t, err)

	// Zero variance disables the evidence estimate but nothing else.
	assert.False(t, s.EvidenceOK)
	assert.Equal(t, []float64{0.5, 0.5}, s.Mean)
	assert.Equal(t, []float64{0, 0}, s.Std)
	// All densities are equal, so no point strictly exceeds the waterline.
	assert.Empty(t, s.HDIPoints)
}

func TestCompute_Empty(t *testing.T) {
	_, err := Compute(nil, demoTarget(t), 0.95)
	assert.Error(t, err)
}
