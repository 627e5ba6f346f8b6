package censored

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/lejarx/ncov-incubation/model"
)

// LogLikelihood computes the total doubly-interval-censored log-likelihood
// of dist over the dataset. Each observation contributes
//
//	m = (1 / (ER-EL)) * integral_EL^ER [F(SR-e) - F(SL-e)] de
//
// the probability that the incubation time lands inside the onset window
// averaged over a uniform exposure time. The result is always finite:
// each mass term is floored before the log.
func LogLikelihood(ds *model.Dataset, dist Distribution) float64 {
	var sum float64
	for i := range ds.Observations {
		sum += ObservationLogProb(&ds.Observations[i], dist)
	}
	return sum
}

// ObservationLogProb is the log probability mass of one observation.
// Zero-width windows degenerate to point evaluations instead of dividing
// by the window width.
func ObservationLogProb(o *model.Observation, dist Distribution) float64 {
	expWidth := o.ExposureWidth()
	onsetWidth := o.OnsetWidth()

	var mass float64
	switch {
	case expWidth <= DegenerateWindowEps && onsetWidth <= DegenerateWindowEps:
		// Fully precise record: a point-mass density term. Incubation
		// times of exactly zero are nudged off the density's boundary.
		t := o.SL - o.EL
		if t < DegenerateWindowEps {
			t = DegenerateWindowEps
		}
		mass = prob(dist, t)

	case expWidth <= DegenerateWindowEps:
		// Exact exposure, censored onset.
		mass = cdf(dist, o.SR-o.EL) - cdf(dist, o.SL-o.EL)

	case onsetWidth <= DegenerateWindowEps:
		// Censored exposure, exact onset: the inner integral collapses
		// to the density, whose exposure integral is a CDF difference.
		mass = (cdf(dist, o.SL-o.EL) - cdf(dist, o.SL-o.ER)) / expWidth

	default:
		f := func(e float64) float64 {
			return cdf(dist, o.SR-e) - cdf(dist, o.SL-e)
		}
		mass = quad.Fixed(f, o.EL, o.ER, QuadratureNodes, nil, 0) / expWidth
	}

	// The comparison is written so NaN also takes the floor.
	if !(mass > MinLikelihoodMass) {
		mass = MinLikelihoodMass
	}
	return math.Log(mass)
}

// cdf guards the support boundary: incubation times are nonnegative, and
// distuv.LogNormal's CDF is NaN for negative arguments.
func cdf(dist Distribution, x float64) float64 {
	if x <= 0 {
		return 0
	}
	return dist.CDF(x)
}

func prob(dist Distribution, x float64) float64 {
	if x <= 0 {
		return 0
	}
	return dist.Prob(x)
}
