package censored

const (
	// DegenerateWindowEps is the width below which a censoring window is
	// treated as a point mass instead of an interval.
	DegenerateWindowEps = 1e-9

	// QuadratureNodes is the fixed Gauss-Legendre order used for the
	// exposure integral.
	QuadratureNodes = 40

	// MinLikelihoodMass floors each observation's probability mass before
	// taking the log, so the total log-likelihood stays finite.
	MinLikelihoodMass = 1e-300

	// MinReliableFraction and MinReliableReplicates gate whether bootstrap
	// quantile bounds are reported at all.
	MinReliableFraction   = 0.5
	MinReliableReplicates = 20
)

var DefaultPercentiles = []float64{0.05, 0.25, 0.5, 0.75, 0.95}
