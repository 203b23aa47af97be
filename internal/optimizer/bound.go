package optimizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/iwvelando/risk-ladder/internal/ladder"
	"github.com/iwvelando/risk-ladder/internal/zone"
	"github.com/iwvelando/risk-ladder/pkg/constants"
	"github.com/iwvelando/risk-ladder/pkg/parallel"
	"go.uber.org/zap"
)

// SuggestGap returns the risk step used by BoundByMaxSize when none is given.
func SuggestGap(maxSize float64) float64 {
	if maxSize < constants.SmallSizeThreshold {
		return constants.SmallSizeGap
	}
	return constants.DefaultGap
}

// BoundByMaxSize raises the risk budget from risk.RiskPerTrade in batches of
// batchSize trials spaced by gap, running a full optimization per trial. It
// stops at the first batch whose results exceed maxSize and returns the
// largest-size result seen at or under the cap.
//
// If the very first batch has no result under the cap, the first tried
// result is returned even though it exceeds maxSize.
func (r *Runner) BoundByMaxSize(ctx context.Context, z zone.PriceZone, risk ladder.RiskConfig, maxSize, gap float64, batchSize int) (*Candidate, error) {
	if maxSize <= 0 || gap <= 0 || batchSize < 1 {
		return nil, fmt.Errorf("%w: maxSize and gap must be positive and batchSize at least 1, got %.8g, %.8g, %d",
			ladder.ErrInvalidRiskConfig, maxSize, gap, batchSize)
	}
	if err := z.Validate(); err != nil {
		return nil, err
	}
	checked := risk
	checked.RiskRewardCount = r.conf.LowerBound
	if err := checked.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := r.logger.With(
		zap.String("op", "optimizer.BoundByMaxSize"),
		zap.String("run_id", runID),
	)

	var best *Candidate
	for batch := 0; batch < r.conf.MaxBatches; batch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		trials := make([]float64, batchSize)
		for k := range trials {
			trials[k] = risk.RiskPerTrade + float64(batch*batchSize+k)*gap
		}

		results, err := parallel.Map(ctx, r.dispatcher, trials, func(ctx context.Context, value float64) (*Candidate, error) {
			trial := risk
			trial.RiskPerTrade = value
			c, err := r.optimize(ctx, z, trial, parallel.Sequential{})
			if err == nil {
				return c, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if !errors.Is(err, ErrNoOptimumFound) {
				logger.Debug("trial failed", zap.Float64("risk_per_trade", value), zap.Error(err))
			}
			return nil, nil
		})
		if err != nil {
			return nil, err
		}

		present := make([]*Candidate, 0, len(results))
		for _, c := range results {
			if c != nil {
				present = append(present, c)
			}
		}
		if len(present) == 0 {
			logger.Debug("every trial in batch failed", zap.Int("batch", batch))
			break
		}

		var under []*Candidate
		for _, c := range present {
			if c.TotalQuantity <= maxSize {
				under = append(under, c)
			}
		}

		withinCap := len(under) == len(present)
		r.observer.BatchTried(len(trials), withinCap)
		if withinCap {
			best = larger(best, largest(under))
			continue
		}

		if len(under) > 0 {
			best = larger(best, largest(under))
		} else if batch == 0 {
			best = present[0]
		}
		logger.Debug("batch exceeded max size",
			zap.Int("batch", batch),
			zap.Float64("max_size", maxSize),
			zap.Int("under_cap", len(under)),
		)
		break
	}

	if best == nil {
		return nil, &NoOptimumFoundError{
			RiskPerTrade: risk.RiskPerTrade,
			Lower:        r.conf.LowerBound,
			Upper:        r.conf.UpperBound,
			Zone:         z,
			Strategy:     r.conf.Strategy,
		}
	}

	logger.Info("bound search selected risk budget",
		zap.Float64("max_size", maxSize),
		zap.Float64("risk_per_trade", best.RiskPerTrade),
		zap.Int("risk_reward", best.RiskRewardValue),
		zap.Float64("total_quantity", best.TotalQuantity),
	)
	return best, nil
}

// largest returns the first candidate with the highest total quantity.
func largest(cands []*Candidate) *Candidate {
	var out *Candidate
	for _, c := range cands {
		out = larger(out, c)
	}
	return out
}

func larger(current, c *Candidate) *Candidate {
	if current == nil || (c != nil && c.TotalQuantity > current.TotalQuantity) {
		return c
	}
	return current
}
