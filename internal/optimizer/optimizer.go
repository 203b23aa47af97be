package optimizer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/risk-ladder/internal/ladder"
	"github.com/iwvelando/risk-ladder/internal/zone"
	"github.com/iwvelando/risk-ladder/pkg/parallel"
	"go.uber.org/zap"
)

// Evaluate builds one candidate per risk-reward value in the configured
// bounds. Invalid values yield nil entries; the slice is in bound order.
//
// A candidate with risk-reward value rr spreads risk.RiskPerTrade over its
// rr rungs, every rung sized against the zone's far edge, so a fully filled
// ladder stopped out at that edge loses at most risk.RiskPerTrade.
func (r *Runner) Evaluate(ctx context.Context, z zone.PriceZone, risk ladder.RiskConfig) ([]*Candidate, error) {
	return r.evaluate(ctx, z, risk, r.dispatcher)
}

func (r *Runner) evaluate(ctx context.Context, z zone.PriceZone, risk ladder.RiskConfig, d parallel.Dispatcher) ([]*Candidate, error) {
	if err := z.Validate(); err != nil {
		return nil, err
	}
	checked := risk
	checked.RiskRewardCount = r.conf.LowerBound
	if err := checked.Validate(); err != nil {
		return nil, err
	}

	entry, stop := z.Edges(risk.Kind)
	takeProfit := risk.TakeProfit
	if takeProfit <= 0 {
		takeProfit = entry
	}

	values := make([]int, 0, r.conf.UpperBound-r.conf.LowerBound)
	for rr := r.conf.LowerBound; rr < r.conf.UpperBound; rr++ {
		values = append(values, rr)
	}

	return parallel.Map(ctx, d, values, func(_ context.Context, rr int) (*Candidate, error) {
		p := ladder.ParamsFrom(risk, entry, stop)
		p.RungCount = rr
		p.RiskPerTrade = risk.RiskPerTrade / float64(rr)
		p.TakeProfit = takeProfit
		p.SharedStop = true

		rungs, err := ladder.BuildLadder(r.logger, risk, p)
		if err != nil {
			r.logger.Debug("candidate rejected",
				zap.String("op", "optimizer.Evaluate"),
				zap.Int("risk_reward", rr),
				zap.Error(err),
			)
			return nil, nil
		}
		return newCandidate(rr, risk.RiskPerTrade, risk.Kind, rungs), nil
	})
}

// Optimize evaluates every risk-reward value in the configured bounds and
// returns the winning candidate. It returns a *NoOptimumFoundError when no
// candidate survives.
func (r *Runner) Optimize(ctx context.Context, z zone.PriceZone, risk ladder.RiskConfig) (*Candidate, error) {
	runID := uuid.NewString()
	started := time.Now()

	best, err := r.optimize(ctx, z, risk, r.dispatcher)
	r.observer.SearchFinished(r.conf.Strategy, time.Since(started), best != nil)
	if err != nil {
		r.logger.Warn("optimization failed",
			zap.String("op", "optimizer.Optimize"),
			zap.String("run_id", runID),
			zap.Error(err),
		)
		return nil, err
	}

	r.logger.Info("optimizer selected risk-reward value",
		zap.String("op", "optimizer.Optimize"),
		zap.String("run_id", runID),
		zap.String("strategy", r.conf.Strategy),
		zap.String("kind", string(risk.Kind)),
		zap.Float64("risk_per_trade", risk.RiskPerTrade),
		zap.Int("risk_reward", best.RiskRewardValue),
		zap.Float64("total_quantity", best.TotalQuantity),
		zap.Float64("net_diff", best.NetDiff()),
		zap.Duration("elapsed", time.Since(started)),
	)
	return best, nil
}

func (r *Runner) optimize(ctx context.Context, z zone.PriceZone, risk ladder.RiskConfig, d parallel.Dispatcher) (*Candidate, error) {
	cands, err := r.evaluate(ctx, z, risk, d)
	if err != nil {
		return nil, err
	}

	accepted := make([]*Candidate, 0, len(cands))
	valid := 0
	for _, c := range cands {
		if c == nil {
			continue
		}
		valid++
		if PassCriterion(c, r.conf.Strategy) {
			accepted = append(accepted, c)
		}
	}
	r.observer.CandidatesEvaluated(r.conf.Strategy, valid, len(cands)-valid)

	idx := SelectBest(accepted, r.conf.Strategy, r.conf.Loss, risk.Kind)
	if idx < 0 {
		return nil, &NoOptimumFoundError{
			RiskPerTrade: risk.RiskPerTrade,
			Lower:        r.conf.LowerBound,
			Upper:        r.conf.UpperBound,
			Zone:         z,
			Strategy:     r.conf.Strategy,
			Evaluated:    len(cands),
			Valid:        valid,
		}
	}
	return accepted[idx], nil
}
