// Command incubation runs the full incubation-period analysis once:
// load and clean the traveler dataset, fit the censored-likelihood models
// per dataset variant, and write the quantile tables and diagnostic plots.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"

	"github.com/lejarx/ncov-incubation/censored"
	"github.com/lejarx/ncov-incubation/config"
	"github.com/lejarx/ncov-incubation/dataset"
	"github.com/lejarx/ncov-incubation/mcmc"
	"github.com/lejarx/ncov-incubation/model"
	"github.com/lejarx/ncov-incubation/report"
	"github.com/lejarx/ncov-incubation/utils"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file; defaults apply when absent")
		inputPath  = flag.String("input", "", "override input CSV path")
		outputDir  = flag.String("out", "", "override output directory")
		replicates = flag.Int("b", -1, "override bootstrap replicate count")
		seed       = flag.Uint64("seed", 0, "override random seed (nonzero)")
		withMCMC   = flag.Bool("mcmc", false, "also run the Metropolis sampler on the full dataset")
	)
	flag.Parse()

	ctx := context.Background()
	logger := utils.GetLogger(ctx)
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}
	if *inputPath != "" {
		cfg.InputPath = *inputPath
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *replicates >= 0 {
		cfg.Replicates = *replicates
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *withMCMC {
		cfg.MCMC.Enabled = true
	}

	if err := run(ctx, cfg); err != nil {
		logger.Fatal("analysis failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := utils.GetLogger(ctx)

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	full, err := dataset.Load(ctx, cfg.InputPath)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	// One RNG stream for the whole run keeps results reproducible for a
	// fixed seed.
	rng := rand.New(rand.NewSource(cfg.Seed))

	var reports []*model.QuantileReport

	for _, variant := range cfg.Variants {
		ds := selectVariant(full, variant)
		if ds.IsEmpty() {
			logger.Warn("variant has no observations, skipping",
				zap.String("variant", variant))
			continue
		}

		for _, name := range cfg.Families {
			family, err := censored.FamilyByName(name)
			if err != nil {
				logger.Error("unknown family, skipping",
					zap.String("family", name), zap.Error(err))
				continue
			}

			fit, err := censored.Fit(ctx, ds, family)
			if err != nil {
				logger.Error("fit failed, skipping combination",
					zap.String("dataset", ds.Name), zap.String("family", name),
					zap.Error(err))
				continue
			}

			if cfg.Replicates > 0 {
				if r := runBootstrap(ctx, cfg, ds, family, fit, rng); r != nil {
					reports = append(reports, r)
				}
			}

			asymReport, err := censored.Report(fit, family, nil,
				cfg.Percentiles, cfg.ConfidenceLevel, ds.Name)
			if err != nil {
				logger.Error("asymptotic report failed",
					zap.String("dataset", ds.Name), zap.String("family", name),
					zap.Error(err))
			} else {
				reports = append(reports, asymReport)
			}

			plotPath := filepath.Join(cfg.OutputDir,
				fmt.Sprintf("%s-%s-density.png", ds.Name, name))
			if err := report.PlotDensity(plotPath, ds, fit, family); err != nil {
				logger.Error("density plot failed", zap.Error(err))
			}
		}
	}

	if cfg.MCMC.Enabled {
		if r, err := runMCMC(ctx, cfg, full, rng); err != nil {
			logger.Error("mcmc run failed", zap.Error(err))
		} else {
			reports = append(reports, r)
		}
	}

	out, err := os.Create(filepath.Join(cfg.OutputDir, "report.txt"))
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer out.Close()

	if err := report.RenderTables(out, reports); err != nil {
		return fmt.Errorf("render tables: %w", err)
	}

	logger.Info("analysis finished",
		zap.Int("tables", len(reports)), zap.String("output", cfg.OutputDir))
	return nil
}

// runBootstrap produces the bootstrap quantile table and median plot for
// one dataset/family combination, returning nil when anything failed.
func runBootstrap(ctx context.Context, cfg *config.Config, ds *model.Dataset,
	family censored.Family, fit *model.FitResult, rng *rand.Rand) *model.QuantileReport {

	logger := utils.GetLogger(ctx)

	boot, err := censored.Bootstrap(ctx, ds, family, cfg.Replicates, rng)
	if err != nil {
		logger.Error("bootstrap failed",
			zap.String("dataset", ds.Name), zap.String("family", family.Name()),
			zap.Error(err))
		return nil
	}

	plotPath := filepath.Join(cfg.OutputDir,
		fmt.Sprintf("%s-%s-bootstrap-medians.png", ds.Name, family.Name()))
	if err := report.PlotBootstrapMedians(plotPath, boot, family); err != nil {
		logger.Error("bootstrap median plot failed", zap.Error(err))
	}

	bootReport, err := censored.Report(fit, family, boot,
		cfg.Percentiles, cfg.ConfidenceLevel, ds.Name)
	if err != nil {
		logger.Error("bootstrap report failed",
			zap.String("dataset", ds.Name), zap.String("family", family.Name()),
			zap.Error(err))
		return nil
	}
	return bootReport
}

func runMCMC(ctx context.Context, cfg *config.Config, ds *model.Dataset,
	rng *rand.Rand) (*model.QuantileReport, error) {

	family := censored.LogNormalFamily{}
	sampler, err := mcmc.NewSampler(ds, family,
		cfg.MCMC.Iterations, cfg.MCMC.BurnIn, cfg.MCMC.Thin, cfg.MCMC.StepSizes)
	if err != nil {
		return nil, err
	}
	post, err := sampler.Run(ctx, rng)
	if err != nil {
		return nil, err
	}
	return post.QuantileReport(family, cfg.Percentiles, cfg.ConfidenceLevel, ds.Name)
}

func selectVariant(full *model.Dataset, variant string) *model.Dataset {
	switch variant {
	case "fever":
		return full.FeverOnly()
	case "foreign":
		return full.ForeignOnly()
	default:
		return full
	}
}
