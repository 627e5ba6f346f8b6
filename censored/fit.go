package censored

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/lejarx/ncov-incubation/common"
	"github.com/lejarx/ncov-incubation/model"
	"github.com/lejarx/ncov-incubation/utils"
)

// Fit maximizes the censored log-likelihood of family over ds with
// Nelder-Mead, starting from the family's midpoint-based seed. The
// returned fit carries the working-parameter covariance from the inverse
// observed information when the Hessian is invertible.
func Fit(ctx context.Context, ds *model.Dataset, family Family) (*model.FitResult, error) {
	logger := utils.GetLogger(ctx)

	if ds.IsEmpty() {
		return nil, common.ErrorEmptyDataset
	}

	negLogLik := func(params []float64) float64 {
		return -LogLikelihood(ds, family.Dist(params))
	}

	problem := optimize.Problem{Func: negLogLik}
	x0 := family.InitialParams(ds)

	result, err := optimize.Minimize(problem, x0, nil, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorFitNotConverged, err)
	}
	if err := result.Status.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorFitNotConverged, err)
	}
	if !utils.Finite(result.F) {
		return nil, fmt.Errorf("%w: non-finite optimum", common.ErrorFitNotConverged)
	}

	fit := &model.FitResult{
		Family:        family.Name(),
		Params:        append([]float64(nil), result.X...),
		Natural:       family.Natural(result.X),
		LogLikelihood: -result.F,
		Converged:     true,
		DatasetSize:   ds.Size(),
		Covariance:    covariance(negLogLik, result.X),
	}

	if fit.Covariance == nil {
		logger.Warn("observed information singular, asymptotic intervals unavailable",
			zap.String("family", family.Name()), zap.String("dataset", ds.Name))
	}

	logger.Debug("fit finished",
		zap.String("dataset", ds.Name), zap.String("fit", fit.DebugString()))

	return fit, nil
}

// covariance inverts the numerical Hessian of the negative log-likelihood
// at the optimum. Returns nil when the Hessian is not positive definite.
func covariance(negLogLik func([]float64) float64, x []float64) [][]float64 {
	n := len(x)
	hess := mat.NewSymDense(n, nil)
	fd.Hessian(hess, negLogLik, x, nil)

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if !utils.Finite(hess.At(i, j)) {
				return nil
			}
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(hess); !ok {
		return nil
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil
	}

	cov := make([][]float64, n)
	for i := 0; i < n; i++ {
		cov[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			cov[i][j] = inv.At(i, j)
		}
	}
	return cov
}
