package report

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/lejarx/ncov-incubation/censored"
	"github.com/lejarx/ncov-incubation/common"
	"github.com/lejarx/ncov-incubation/model"
)

const densityGridSize = 200

// PlotDensity saves a PNG of the fitted incubation density with one
// horizontal segment per observation spanning its admissible incubation
// range, so the fit can be eyeballed against the raw censored intervals.
func PlotDensity(path string, ds *model.Dataset, fit *model.FitResult, family censored.Family) error {
	if ds.IsEmpty() {
		return common.ErrorEmptyDataset
	}

	dist := family.Dist(fit.Params)

	maxT := 0.0
	for i := range ds.Observations {
		_, hi := ds.Observations[i].IncubationRange()
		maxT = math.Max(maxT, hi)
	}
	maxT = math.Max(maxT, dist.Quantile(0.99))

	curve := make(plotter.XYs, densityGridSize)
	peak := 0.0
	for i := range curve {
		x := float64(i) * maxT / float64(densityGridSize-1)
		y := 0.0
		if x > 0 {
			y = dist.Prob(x)
		}
		curve[i].X, curve[i].Y = x, y
		peak = math.Max(peak, y)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: fitted %s incubation density", ds.Name, fit.Family)
	p.X.Label.Text = "incubation time (days)"
	p.Y.Label.Text = "density"

	line, err := plotter.NewLine(curve)
	if err != nil {
		return fmt.Errorf("density line: %w", err)
	}
	line.Color = color.RGBA{R: 0xd6, G: 0x2e, B: 0x2e, A: 0xff}
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add(fit.Family, line)

	// Stack the censored intervals beneath the curve.
	step := peak / float64(ds.Size()+1)
	for i := range ds.Observations {
		lo, hi := ds.Observations[i].IncubationRange()
		y := step * float64(i+1)
		seg, err := plotter.NewLine(plotter.XYs{{X: lo, Y: y}, {X: hi, Y: y}})
		if err != nil {
			return fmt.Errorf("interval segment: %w", err)
		}
		seg.Color = color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 0x80}
		p.Add(seg)
	}

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

// PlotBootstrapMedians saves a PNG of the smoothed density of the
// bootstrap replicates' median incubation times.
func PlotBootstrapMedians(path string, boot *model.BootstrapResult, family censored.Family) error {
	medians := make([]float64, 0, boot.Succeeded())
	for _, params := range boot.Replicates {
		m := family.Dist(params).Quantile(0.5)
		if !math.IsNaN(m) && !math.IsInf(m, 0) {
			medians = append(medians, m)
		}
	}

	kde, err := newGaussianKDE(medians)
	if err != nil {
		return fmt.Errorf("median density: %w", err)
	}

	lo, hi := kde.Support(3)
	curve := make(plotter.XYs, densityGridSize)
	for i := range curve {
		x := lo + float64(i)*(hi-lo)/float64(densityGridSize-1)
		curve[i].X, curve[i].Y = x, kde.Density(x)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("bootstrap medians: %s", family.Name())
	p.X.Label.Text = "median incubation time (days)"
	p.Y.Label.Text = "density"

	line, err := plotter.NewLine(curve)
	if err != nil {
		return fmt.Errorf("median line: %w", err)
	}
	line.Color = color.RGBA{R: 0x2e, G: 0x6e, B: 0xd6, A: 0xff}
	line.Width = vg.Points(1.5)
	p.Add(line)

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
