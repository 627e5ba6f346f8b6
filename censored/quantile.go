package censored

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lejarx/ncov-incubation/common"
	"github.com/lejarx/ncov-incubation/model"
)

// Report builds the quantile table for a fit. With a bootstrap result the
// bounds are empirical quantiles across replicates; without one they come
// from the delta method on the working-parameter covariance. An
// unreliable bootstrap yields NaN bounds rather than bounds computed from
// too few replicates.
func Report(fit *model.FitResult, family Family, boot *model.BootstrapResult,
	probs []float64, level float64, datasetName string) (*model.QuantileReport, error) {

	if len(probs) == 0 {
		probs = DefaultPercentiles
	}
	for _, p := range probs {
		if p <= 0 || p >= 1 {
			return nil, common.ErrorInvalidProbability
		}
	}
	if level <= 0 || level >= 1 {
		return nil, common.ErrorInvalidValue
	}

	report := &model.QuantileReport{
		Dataset: datasetName,
		Family:  fit.Family,
		Level:   level,
	}

	dist := family.Dist(fit.Params)

	if boot != nil {
		report.Method = model.IntervalBootstrap
		for _, p := range probs {
			qv := model.QuantileValue{
				Probability: p,
				Value:       dist.Quantile(p),
			}
			qv.Lower, qv.Upper = bootstrapBounds(family, boot, p, level)
			report.Quantiles = append(report.Quantiles, qv)
		}
		return report, nil
	}

	if fit.Covariance == nil {
		return nil, common.ErrorNoCovariance
	}

	report.Method = model.IntervalAsymptotic
	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile((1 + level) / 2)
	for _, p := range probs {
		point := dist.Quantile(p)
		se := deltaMethodSE(fit, family, p)
		qv := model.QuantileValue{
			Probability: p,
			Value:       point,
			Lower:       math.Max(point-z*se, 0),
			Upper:       point + z*se,
		}
		if math.IsNaN(se) {
			qv.Lower, qv.Upper = math.NaN(), math.NaN()
		}
		report.Quantiles = append(report.Quantiles, qv)
	}
	return report, nil
}

// bootstrapBounds takes the empirical (1-level)/2 and (1+level)/2
// quantiles of the replicates' p-th incubation quantile.
func bootstrapBounds(family Family, boot *model.BootstrapResult, p, level float64) (float64, float64) {
	if !boot.Reliable {
		return math.NaN(), math.NaN()
	}

	values := make([]float64, 0, boot.Succeeded())
	for _, params := range boot.Replicates {
		v := family.Dist(params).Quantile(p)
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			values = append(values, v)
		}
	}
	if len(values) < MinReliableReplicates {
		return math.NaN(), math.NaN()
	}
	sort.Float64s(values)

	alpha := (1 - level) / 2
	lower := stat.Quantile(alpha, stat.Empirical, values, nil)
	upper := stat.Quantile(1-alpha, stat.Empirical, values, nil)
	return lower, upper
}

// deltaMethodSE propagates the working-parameter covariance through the
// quantile function: se^2 = g' Sigma g with g the numerical gradient of
// the quantile at the optimum.
func deltaMethodSE(fit *model.FitResult, family Family, p float64) float64 {
	q := func(params []float64) float64 {
		return family.Dist(params).Quantile(p)
	}
	grad := fd.Gradient(nil, q, fit.Params, nil)

	var variance float64
	for i := range grad {
		for j := range grad {
			variance += grad[i] * fit.Covariance[i][j] * grad[j]
		}
	}
	if variance < 0 {
		return math.NaN()
	}
	return math.Sqrt(variance)
}
