package censored

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lejarx/ncov-incubation/common"
	"github.com/lejarx/ncov-incubation/model"
)

// Distribution is the surface the likelihood and the reporter need from a
// parametric incubation-time distribution. distuv.LogNormal and
// distuv.Weibull satisfy it directly.
type Distribution interface {
	CDF(x float64) float64
	Prob(x float64) float64
	Quantile(p float64) float64
	Mean() float64
}

// Family maps an unconstrained working parameter vector to a
// Distribution, so the optimizer never has to handle positivity
// constraints itself.
type Family interface {
	Name() string
	NumParams() int
	// InitialParams seeds the optimizer from the midpoint incubation
	// times of the dataset.
	InitialParams(ds *model.Dataset) []float64
	// Dist builds the distribution for a working parameter vector.
	Dist(params []float64) Distribution
	// Natural converts working parameters to distribution-space ones.
	Natural(params []float64) []float64
}

// FamilyByName resolves the family names accepted in config files.
func FamilyByName(name string) (Family, error) {
	switch name {
	case "lognormal", "log-normal":
		return LogNormalFamily{}, nil
	case "weibull":
		return WeibullFamily{}, nil
	}
	return nil, common.ErrorUnsupportedFamily
}

// LogNormalFamily works over (mu, log sigma).
type LogNormalFamily struct{}

func (LogNormalFamily) Name() string   { return "lognormal" }
func (LogNormalFamily) NumParams() int { return 2 }

func (LogNormalFamily) InitialParams(ds *model.Dataset) []float64 {
	logs := midpointLogs(ds)
	mu := stat.Mean(logs, nil)
	sigma := stat.StdDev(logs, nil)
	if !(sigma > 0) || math.IsNaN(sigma) {
		sigma = 0.5
	}
	return []float64{mu, math.Log(sigma)}
}

func (LogNormalFamily) Dist(params []float64) Distribution {
	return distuv.LogNormal{Mu: params[0], Sigma: math.Exp(params[1])}
}

func (LogNormalFamily) Natural(params []float64) []float64 {
	return []float64{params[0], math.Exp(params[1])}
}

// WeibullFamily works over (log k, log lambda).
type WeibullFamily struct{}

func (WeibullFamily) Name() string   { return "weibull" }
func (WeibullFamily) NumParams() int { return 2 }

func (WeibullFamily) InitialParams(ds *model.Dataset) []float64 {
	logs := midpointLogs(ds)
	mean := 0.0
	for _, v := range logs {
		mean += math.Exp(v)
	}
	mean /= float64(len(logs))
	return []float64{math.Log(1.5), math.Log(mean)}
}

func (WeibullFamily) Dist(params []float64) Distribution {
	return distuv.Weibull{K: math.Exp(params[0]), Lambda: math.Exp(params[1])}
}

func (WeibullFamily) Natural(params []float64) []float64 {
	return []float64{math.Exp(params[0]), math.Exp(params[1])}
}

// midpointLogs returns log of the midpoint incubation times, clamped away
// from zero so fully precise zero-length records cannot poison the seed.
func midpointLogs(ds *model.Dataset) []float64 {
	logs := make([]float64, 0, ds.Size())
	for i := range ds.Observations {
		t := ds.Observations[i].MidpointIncubation()
		if t < 0.5 {
			t = 0.5
		}
		logs = append(logs, math.Log(t))
	}
	return logs
}
