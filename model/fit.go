package model

import "fmt"

// FitResult is an immutable fitted parametric distribution.
type FitResult struct {
	Family string
	// Params is the unconstrained working parameter vector the optimizer
	// ran over; Natural holds the distribution-space parameters
	// (mu/sigma for log-normal, k/lambda for Weibull).
	Params  []float64
	Natural []float64

	LogLikelihood float64
	Converged     bool
	DatasetSize   int

	// Covariance of the working parameters from the inverse observed
	// information. Nil when the Hessian was singular.
	Covariance [][]float64
}

func (f *FitResult) DebugString() string {
	return fmt.Sprintf("family: %v, params: %+v, loglik: %v, converged: %v",
		f.Family, f.Natural, f.LogLikelihood, f.Converged)
}

// BootstrapResult collects replicate parameter vectors from the
// resampler. Failed counts replicates whose refit did not converge.
type BootstrapResult struct {
	Replicates [][]float64
	Attempted  int
	Failed     int

	// Reliable is false when too many replicates failed for the
	// empirical quantile bounds to mean anything.
	Reliable bool
}

func (b *BootstrapResult) Succeeded() int {
	if b == nil {
		return 0
	}
	return len(b.Replicates)
}

// QuantileValue is one requested incubation-time quantile with its
// uncertainty band. Lower and Upper are NaN when no interval could be
// derived.
type QuantileValue struct {
	Probability float64 `json:"q"`
	Value       float64 `json:"v"`
	Lower       float64 `json:"l"`
	Upper       float64 `json:"u"`
}

// IntervalMethod tags how the bounds of a QuantileReport were obtained.
type IntervalMethod string

const (
	IntervalBootstrap  IntervalMethod = "bootstrap"
	IntervalAsymptotic IntervalMethod = "asymptotic"
	IntervalPosterior  IntervalMethod = "posterior"
)

// QuantileReport maps requested probability levels to point estimates
// and interval bounds for one fitted model.
type QuantileReport struct {
	Dataset   string
	Family    string
	Method    IntervalMethod
	Level     float64
	Quantiles []QuantileValue
}
