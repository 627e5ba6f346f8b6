package report

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/lejarx/ncov-incubation/common"
)

// gaussianKDE is a small Gaussian-kernel density estimate used to smooth
// bootstrap replicate medians for the diagnostic plots.
type gaussianKDE struct {
	xs []float64
	bw float64
}

func newGaussianKDE(xs []float64) (*gaussianKDE, error) {
	if len(xs) < 2 {
		return nil, common.ErrorInvalidValue
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	bw := normalReferenceBandwidth(sorted)
	if !(bw > 0) {
		return nil, common.ErrorInvalidValue
	}
	return &gaussianKDE{xs: sorted, bw: bw}, nil
}

// normalReferenceBandwidth is Silverman's rule of thumb with the robust
// spread estimate min(stddev, IQR/1.349).
func normalReferenceBandwidth(sorted []float64) float64 {
	q75 := stat.Quantile(0.75, stat.Empirical, sorted, nil)
	q25 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
	iqr := (q75 - q25) / 1.349

	sigma := stat.StdDev(sorted, nil)
	if iqr > 0 && iqr < sigma {
		sigma = iqr
	}
	return 0.9 * sigma * math.Pow(float64(len(sorted)), -0.2)
}

func gaussShape(u float64) float64 {
	return 0.3989422804014327 * math.Exp(-u*u/2.0)
}

func (k *gaussianKDE) Density(x float64) float64 {
	var sum float64
	for _, xi := range k.xs {
		sum += gaussShape((xi - x) / k.bw)
	}
	return sum / (k.bw * float64(len(k.xs)))
}

// Support returns the plotting range: the data range padded by cut
// bandwidths on each side, floored at zero.
func (k *gaussianKDE) Support(cut float64) (float64, float64) {
	lo := math.Max(k.xs[0]-cut*k.bw, 0)
	hi := k.xs[len(k.xs)-1] + cut*k.bw
	return lo, hi
}
