package censored

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/lejarx/ncov-incubation/common"
	"github.com/lejarx/ncov-incubation/model"
)

func fitSynthetic(t *testing.T, seed uint64) (*model.Dataset, *model.FitResult) {
	t.Helper()
	ds := syntheticDataset(60, 1.6, 0.4, seed)
	fit, err := Fit(context.Background(), ds, LogNormalFamily{})
	require.NoError(t, err)
	return ds, fit
}

func TestReportBootstrapIntervals(t *testing.T) {
	t.Parallel()

	ds, fit := fitSynthetic(t, 31)
	boot, err := Bootstrap(context.Background(), ds, LogNormalFamily{}, 60,
		rand.New(rand.NewSource(8)))
	require.NoError(t, err)
	require.True(t, boot.Reliable)

	report, err := Report(fit, LogNormalFamily{}, boot, DefaultPercentiles, 0.90, ds.Name)
	require.NoError(t, err)

	assert.Equal(t, model.IntervalBootstrap, report.Method)
	require.Len(t, report.Quantiles, len(DefaultPercentiles))

	prev := 0.0
	for _, q := range report.Quantiles {
		// Bounds bracket the point estimate.
		assert.LessOrEqual(t, q.Lower, q.Value, "p=%v", q.Probability)
		assert.GreaterOrEqual(t, q.Upper, q.Value, "p=%v", q.Probability)
		// Point estimates increase with the probability level.
		assert.Greater(t, q.Value, prev)
		prev = q.Value
	}
}

func TestReportUnreliableBootstrapUndefinedBounds(t *testing.T) {
	t.Parallel()

	_, fit := fitSynthetic(t, 37)
	boot := &model.BootstrapResult{Attempted: 100, Failed: 95, Reliable: false}

	report, err := Report(fit, LogNormalFamily{}, boot, DefaultPercentiles, 0.95, "x")
	require.NoError(t, err)

	for _, q := range report.Quantiles {
		assert.False(t, math.IsNaN(q.Value))
		assert.True(t, math.IsNaN(q.Lower))
		assert.True(t, math.IsNaN(q.Upper))
	}
}

func TestReportAsymptoticIntervals(t *testing.T) {
	t.Parallel()

	ds, fit := fitSynthetic(t, 41)
	require.NotNil(t, fit.Covariance)

	report, err := Report(fit, LogNormalFamily{}, nil, DefaultPercentiles, 0.95, ds.Name)
	require.NoError(t, err)

	assert.Equal(t, model.IntervalAsymptotic, report.Method)
	for _, q := range report.Quantiles {
		require.False(t, math.IsNaN(q.Lower), "p=%v", q.Probability)
		assert.Less(t, q.Lower, q.Value)
		assert.Greater(t, q.Upper, q.Value)
		assert.GreaterOrEqual(t, q.Lower, 0.0)
	}
}

func TestReportAsymptoticNeedsCovariance(t *testing.T) {
	t.Parallel()

	fit := &model.FitResult{Family: "lognormal", Params: []float64{1.6, math.Log(0.4)}}
	_, err := Report(fit, LogNormalFamily{}, nil, DefaultPercentiles, 0.95, "x")
	assert.ErrorIs(t, err, common.ErrorNoCovariance)
}

func TestReportRejectsBadProbabilities(t *testing.T) {
	t.Parallel()

	_, fit := fitSynthetic(t, 43)

	_, err := Report(fit, LogNormalFamily{}, nil, []float64{0.5, 1.2}, 0.95, "x")
	assert.ErrorIs(t, err, common.ErrorInvalidProbability)

	_, err = Report(fit, LogNormalFamily{}, nil, DefaultPercentiles, 1.5, "x")
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
}

func TestReportBoundsContainTruthOnCalibratedData(t *testing.T) {
	t.Parallel()

	// With a healthy synthetic dataset the 90% bootstrap interval for the
	// median should contain the true median exp(1.6).
	ds := syntheticDataset(50, 1.6, 0.4, 53)
	fit, err := Fit(context.Background(), ds, LogNormalFamily{})
	require.NoError(t, err)
	boot, err := Bootstrap(context.Background(), ds, LogNormalFamily{}, 100,
		rand.New(rand.NewSource(6)))
	require.NoError(t, err)

	report, err := Report(fit, LogNormalFamily{}, boot, []float64{0.5}, 0.90, ds.Name)
	require.NoError(t, err)

	truth := math.Exp(1.6)
	q := report.Quantiles[0]
	assert.Less(t, q.Lower, truth)
	assert.Greater(t, q.Upper, truth)
}
