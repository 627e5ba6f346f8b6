package common

import "errors"

var (
	ErrorInvalidValue       = errors.New("invalid value")
	ErrorEmptyDataset       = errors.New("empty dataset")
	ErrorFitNotConverged    = errors.New("fit did not converge")
	ErrorNoCovariance       = errors.New("covariance unavailable")
	ErrorTooFewReplicates   = errors.New("too few successful bootstrap replicates")
	ErrorUnsupportedFamily  = errors.New("unsupported distribution family")
	ErrorMalformedRecord    = errors.New("malformed record")
	ErrorMissingReportDate  = errors.New("missing report date fallback")
	ErrorInvalidProbability = errors.New("probability must be in (0, 1)")
)
