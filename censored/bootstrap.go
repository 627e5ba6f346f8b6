package censored

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"

	"github.com/lejarx/ncov-incubation/common"
	"github.com/lejarx/ncov-incubation/model"
	"github.com/lejarx/ncov-incubation/utils"
)

// Bootstrap refits family on b resamples-with-replacement of ds, each
// the same size as the original, and collects the working parameter
// vectors. Replicates whose refit fails are skipped and counted, never
// fatal. The rng is the only source of randomness, so a fixed seed makes
// the whole run reproducible.
func Bootstrap(ctx context.Context, ds *model.Dataset, family Family, b int, rng *rand.Rand) (*model.BootstrapResult, error) {
	logger := utils.GetLogger(ctx)

	if ds.IsEmpty() {
		return nil, common.ErrorEmptyDataset
	}
	if b <= 0 {
		return nil, common.ErrorInvalidValue
	}

	n := ds.Size()
	res := &model.BootstrapResult{Attempted: b}

	for rep := 0; rep < b; rep++ {
		resample := &model.Dataset{
			Name:         ds.Name,
			Epoch:        ds.Epoch,
			Observations: make([]model.Observation, 0, n),
		}
		for i := 0; i < n; i++ {
			resample.Observations = append(resample.Observations, ds.Observations[rng.Intn(n)])
		}

		fit, err := fitReplicate(ctx, resample, family)
		if err != nil {
			res.Failed++
			logger.Debug("bootstrap replicate failed",
				zap.Int("replicate", rep), zap.Error(err))
			continue
		}
		res.Replicates = append(res.Replicates, fit.Params)
	}

	res.Reliable = res.Succeeded() >= MinReliableReplicates &&
		float64(res.Succeeded()) >= MinReliableFraction*float64(b)

	logger.Info("bootstrap finished",
		zap.String("dataset", ds.Name), zap.String("family", family.Name()),
		zap.Int("attempted", res.Attempted), zap.Int("failed", res.Failed),
		zap.Bool("reliable", res.Reliable))

	return res, nil
}

// fitReplicate turns an optimizer panic on a pathological resample into a
// replicate failure instead of taking down the whole run.
func fitReplicate(ctx context.Context, ds *model.Dataset, family Family) (fit *model.FitResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			utils.GetLogger(ctx).Error("replicate fit panicked", zap.Any("err", r),
				zap.String("panic info", utils.GetPanicInfo()))
			fit, err = nil, common.ErrorFitNotConverged
		}
	}()
	return Fit(ctx, ds, family)
}
