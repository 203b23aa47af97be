package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/iwvelando/risk-ladder/internal/ladder"
	"github.com/iwvelando/risk-ladder/internal/zone"
	"github.com/iwvelando/risk-ladder/pkg/constants"
	"github.com/iwvelando/risk-ladder/pkg/mathutil"
	"github.com/iwvelando/risk-ladder/pkg/parallel"
	"github.com/iwvelando/risk-ladder/pkg/trade"
	"go.uber.org/zap"
)

// StopChoice is the stop selected by OptimizeStop together with the zone and
// the winning ladder built for it.
type StopChoice struct {
	Stop      float64
	Zone      zone.PriceZone
	Candidate *Candidate
}

// StopPrices lists the stops scanned between the zone's stop edge and
// target, spaced by gap and rounded to places. The larger of the two prices
// is excluded.
func StopPrices(edge, target, gap float64, places int) ([]float64, error) {
	if gap <= 0 {
		return nil, fmt.Errorf("%w: stop gap must be positive, got %.8g", ladder.ErrInvalidRiskConfig, gap)
	}
	low, high := math.Min(edge, target), math.Max(edge, target)
	count := int(math.Ceil((high - low) / gap))
	if count > constants.MaxStopPrices {
		return nil, fmt.Errorf("%w: %d stops between %.8g and %.8g exceed the limit of %d",
			ladder.ErrInvalidRiskConfig, count, low, high, constants.MaxStopPrices)
	}

	stops := make([]float64, 0, count)
	for k := 0; ; k++ {
		s := mathutil.ToFixed(low+float64(k)*gap, places)
		if s >= high {
			break
		}
		if len(stops) > 0 && stops[len(stops)-1] == s {
			continue
		}
		stops = append(stops, s)
	}
	return stops, nil
}

// withStop returns z with the edge a kind ladder stops at moved to stop.
func withStop(z zone.PriceZone, kind trade.Kind, stop float64) zone.PriceZone {
	if kind == trade.Short {
		z.Resistance = stop
	} else {
		z.Support = stop
	}
	return z
}

// OptimizeStop scans stop prices between the zone's stop edge and target and
// runs the entry strategy for each. Among the ladders whose blended entry
// after a full fill has not crossed target (at or below it for long, at or
// above it for short) it returns the one closest to target. Ties keep the
// first stop scanned.
func (r *Runner) OptimizeStop(ctx context.Context, z zone.PriceZone, risk ladder.RiskConfig, target, gap float64) (*StopChoice, error) {
	if err := z.Validate(); err != nil {
		return nil, err
	}
	if target <= 0 {
		return nil, fmt.Errorf("%w: stop target must be positive, got %.8g", ladder.ErrInvalidRiskConfig, target)
	}
	checked := risk
	checked.RiskRewardCount = r.conf.LowerBound
	if err := checked.Validate(); err != nil {
		return nil, err
	}

	_, edge := z.Edges(risk.Kind)
	stops, err := StopPrices(edge, target, gap, risk.PricePlaces)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := r.logger.With(
		zap.String("op", "optimizer.OptimizeStop"),
		zap.String("run_id", runID),
	)

	entryRunner := *r
	entryRunner.conf.Strategy = constants.StrategyEntry

	choices, err := parallel.Map(ctx, r.dispatcher, stops, func(ctx context.Context, stop float64) (*StopChoice, error) {
		trial := withStop(z, risk.Kind, stop)
		if trial.Validate() != nil {
			return nil, nil
		}
		c, err := entryRunner.optimize(ctx, trial, risk, parallel.Sequential{})
		if err == nil {
			return &StopChoice{Stop: stop, Zone: trial, Candidate: c}, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !errors.Is(err, ErrNoOptimumFound) {
			logger.Debug("stop trial failed", zap.Float64("stop", stop), zap.Error(err))
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	var best *StopChoice
	valid := 0
	for _, choice := range choices {
		if choice == nil {
			continue
		}
		valid++
		avg := choice.Candidate.Deepest().AvgEntry
		if risk.Kind.Further(avg, target) {
			continue
		}
		if best == nil || risk.Kind.Further(avg, best.Candidate.Deepest().AvgEntry) {
			best = choice
		}
	}

	if best == nil {
		return nil, &NoOptimumFoundError{
			RiskPerTrade: risk.RiskPerTrade,
			Lower:        r.conf.LowerBound,
			Upper:        r.conf.UpperBound,
			Zone:         z,
			Strategy:     constants.StrategyEntry,
			Evaluated:    len(stops),
			Valid:        valid,
		}
	}

	logger.Info("stop scan selected stop",
		zap.Float64("target", target),
		zap.Float64("stop", best.Stop),
		zap.Float64("avg_entry", best.Candidate.Deepest().AvgEntry),
		zap.Int("risk_reward", best.Candidate.RiskRewardValue),
		zap.Int("stops", len(stops)),
	)
	return best, nil
}
