// Package planner turns a loaded configuration into a ladder report by
// running one of the ladder, optimize, bound or stop modes.
package planner

import (
	"context"
	"errors"
	"fmt"

	"github.com/iwvelando/risk-ladder/internal/config"
	"github.com/iwvelando/risk-ladder/internal/ladder"
	"github.com/iwvelando/risk-ladder/internal/optimizer"
	"github.com/iwvelando/risk-ladder/internal/zone"
	"github.com/iwvelando/risk-ladder/pkg/constants"
	"github.com/iwvelando/risk-ladder/pkg/margin"
	"github.com/iwvelando/risk-ladder/pkg/output"
	"go.uber.org/zap"
)

// ErrUnknownMode is returned for run modes other than ladder, optimize, bound
// and stop.
var ErrUnknownMode = errors.New("unknown run mode")

// Plan runs mode against conf and returns the resulting report. The
// configuration must already be normalized. observer may be nil.
func Plan(ctx context.Context, logger *zap.Logger, conf config.Configuration, mode string, observer optimizer.Observer) (*output.Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	risk, err := conf.Risk.RiskConfig()
	if err != nil {
		return nil, err
	}

	var (
		rungs   []ladder.AveragedRung
		summary *searchResult
	)
	switch mode {
	case constants.RunModeLadder:
		rungs, err = buildLadder(logger, conf, risk)
	case constants.RunModeOptimize, constants.RunModeBound, constants.RunModeStop:
		summary, err = search(ctx, logger, conf, risk, mode, observer)
		if summary != nil {
			rungs = summary.candidate.Ladder
		}
	default:
		return nil, fmt.Errorf("%w %q: must be %q, %q, %q or %q", ErrUnknownMode, mode,
			constants.RunModeLadder, constants.RunModeOptimize, constants.RunModeBound, constants.RunModeStop)
	}
	if err != nil {
		return nil, err
	}

	report := output.NewReport(mode, rungs, risk.PricePlaces, risk.DecimalPlaces)
	if summary != nil {
		strategy := conf.Search.Strategy
		if mode == constants.RunModeStop {
			strategy = constants.StrategyEntry
		}
		s := summary.candidate.Summary(strategy)
		s.Stop = summary.stop
		if summary.derived {
			s.Notes = append(s.Notes, fmt.Sprintf("zone derived from current price %.8g: [%.8g, %.8g]",
				conf.CurrentPrice, summary.zone.Support, summary.zone.Resistance))
		}
		report.Summary = &s
	}
	report.Warnings = conf.ValidateConfiguration()

	if conf.CurrentPrice > 0 {
		if len(rungs) > 0 {
			report.Orders = output.NewOrders(ladder.SplitOrders(rungs, conf.CurrentPrice), conf.CurrentPrice, risk.DecimalPlaces)
		}
		if conf.Zone.Validate() == nil {
			zones, err := zone.MarginZones(conf.Zone, conf.CurrentPrice, risk.Kind, risk.PricePlaces)
			if err != nil {
				logger.Warn("margin zones skipped",
					zap.String("op", "planner.Plan"),
					zap.Error(err),
				)
			}
			report.MarginZones = zones
		}
	}

	if conf.Margin.Enabled() {
		estimate, err := margin.CheckLadder(margin.FlatRate{MaintenanceRate: conf.Margin.MaintenanceRate},
			conf.Margin.Balance, margin.Position{}, rungs)
		switch {
		case errors.Is(err, margin.ErrLiquidationBeforeStop):
			report.Margin = &estimate
			report.Warnings = append(report.Warnings, err.Error())
		case err != nil:
			logger.Warn("margin check skipped",
				zap.String("op", "planner.Plan"),
				zap.Error(err),
			)
		default:
			report.Margin = &estimate
		}
	}

	logger.Debug("plan complete",
		zap.String("op", "planner.Plan"),
		zap.String("mode", mode),
		zap.Int("rungs", len(rungs)),
		zap.Float64("total_quantity", report.TotalQuantity),
	)
	return &report, nil
}

type searchResult struct {
	candidate *optimizer.Candidate
	zone      zone.PriceZone
	derived   bool
	stop      float64
}

// buildLadder builds the configured entry/stop ladder. Without an explicit
// entry the zone edges are used.
func buildLadder(logger *zap.Logger, conf config.Configuration, risk ladder.RiskConfig) ([]ladder.AveragedRung, error) {
	entry, stop := conf.Risk.Entry, conf.Risk.Stop
	if entry <= 0 {
		entry, stop = conf.Zone.Edges(risk.Kind)
	}
	return ladder.BuildLadder(logger, risk, ladder.ParamsFrom(risk, entry, stop))
}

func search(ctx context.Context, logger *zap.Logger, conf config.Configuration, risk ladder.RiskConfig, mode string, observer optimizer.Observer) (*searchResult, error) {
	z, derived := conf.Zone, false
	if conf.CurrentPrice > 0 {
		d, err := zone.Derive(z, conf.CurrentPrice, constants.DefaultZoneDivisions, risk.PricePlaces)
		if err != nil {
			return nil, err
		}
		z, derived = d, true
	}

	runner, err := optimizer.NewRunner(logger, conf.Search, optimizer.WithObserver(observer))
	if err != nil {
		return nil, err
	}

	var best *optimizer.Candidate
	switch mode {
	case constants.RunModeBound:
		gap := conf.Bound.Gap
		if gap <= 0 {
			gap = optimizer.SuggestGap(conf.Bound.MaxSize)
		}
		best, err = runner.BoundByMaxSize(ctx, z, risk, conf.Bound.MaxSize, gap, conf.Bound.BatchSize)
	case constants.RunModeStop:
		var choice *optimizer.StopChoice
		choice, err = runner.OptimizeStop(ctx, z, risk, conf.StopScan.Target, conf.StopScan.Gap)
		if err != nil {
			return nil, err
		}
		return &searchResult{candidate: choice.Candidate, zone: choice.Zone, derived: derived, stop: choice.Stop}, nil
	default:
		best, err = runner.Optimize(ctx, z, risk)
	}
	if err != nil {
		return nil, err
	}
	return &searchResult{candidate: best, zone: z, derived: derived}, nil
}
