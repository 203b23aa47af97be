package ladder

import (
	"fmt"
	"math"

	"github.com/iwvelando/risk-ladder/internal/zone"
	"github.com/iwvelando/risk-ladder/pkg/constants"
	"github.com/iwvelando/risk-ladder/pkg/mathutil"
	"github.com/iwvelando/risk-ladder/pkg/trade"
	"go.uber.org/zap"
)

// Builder constructs ladders for a fixed set of risk settings.
type Builder struct {
	logger *zap.Logger
	conf   RiskConfig
}

// NewBuilder returns a Builder for conf. Per-call values (risk per trade,
// rung count, kind) come from Params, so conf only needs the sizing fields.
func NewBuilder(logger *zap.Logger, conf RiskConfig) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger, conf: conf}
}

// Config returns the builder's risk settings.
func (b *Builder) Config() RiskConfig {
	return b.conf
}

// Build returns the rungs between p.Entry and p.Stop, rung 0 at the entry
// and the deepest rung last. Each rung risks p.RiskPerTrade against the next
// rung toward the stop, or against p.Stop itself when p.SharedStop is set.
func (b *Builder) Build(p Params) ([]Rung, error) {
	if err := validateParams(p); err != nil {
		return nil, err
	}

	stop := p.Stop
	if stop == 0 {
		stop = mathutil.ToFixed(defaultStop(p.Entry, b.conf.percentChange(), p.Kind), b.conf.PricePlaces)
	}
	if p.Entry == stop {
		return nil, fmt.Errorf("%w: entry equals stop at %.8g", ErrDegenerateZone, stop)
	}
	if p.Kind.Further(stop, p.Entry) {
		return nil, fmt.Errorf("%w: stop %.8g is on the wrong side of entry %.8g for a %s ladder",
			ErrInvalidRiskConfig, stop, p.Entry, p.Kind)
	}
	if math.Max(p.Entry, stop)/math.Min(p.Entry, stop)-1 <= 0 {
		return nil, fmt.Errorf("%w: zero percent change", ErrDegenerateZone)
	}

	n := p.RungCount
	steps := zone.GeometricSteps(p.Entry, stop, n, b.conf.PricePlaces)
	if len(steps) != n+1 {
		return nil, fmt.Errorf("%w: cannot step from %.8g to %.8g", ErrDegenerateZone, p.Entry, stop)
	}

	rungs := make([]Rung, 0, n)
	var incurred float64
	for i := 0; i < n; i++ {
		entry, rungStop := steps[i], steps[i+1]
		if entry == rungStop {
			return nil, fmt.Errorf("%w: %d rungs do not fit between %.8g and %.8g at this price precision",
				ErrDegenerateZone, n, p.Entry, stop)
		}

		var qty float64
		if p.SharedStop {
			rungStop = stop
			qty = trade.PositionSizeWithin(entry, rungStop, p.RiskPerTrade, b.conf.DecimalPlaces)
		} else {
			qty = trade.PositionSize(entry, rungStop, p.RiskPerTrade, b.conf.DecimalPlaces)
			if b.conf.IncreasePosition {
				// Rung i of n carries i+1 units of risk, the deepest rung n.
				qty = mathutil.ToFixed(qty*float64(i+1), b.conf.DecimalPlaces)
			}
		}
		if qty <= 0 {
			b.logger.Debug("dropping rung with zero quantity",
				zap.String("op", "ladder.Build"),
				zap.Int("index", i),
				zap.Float64("entry", entry),
			)
			continue
		}

		rung := b.newRung(entry, rungStop, qty, n, i, p)
		if incurred > 0 {
			rung.Incurred = mathutil.ToFixed(incurred, constants.AmountPlaces)
			rung.IncurredSell = mathutil.ToFixed(
				trade.ClosePrice(entry, incurred+rung.Fee, qty, p.Kind), b.conf.PricePlaces)
		}
		incurred += rung.Fee + rung.Risk
		rungs = append(rungs, rung)
	}

	if len(rungs) == 0 {
		return nil, fmt.Errorf("%w: every rung rounded to zero quantity", ErrDegenerateZone)
	}

	rungs = b.consolidate(rungs)
	for i := range rungs {
		rungs[i].Index = i
	}
	return rungs, nil
}

func (b *Builder) newRung(entry, stop, qty float64, rr, distance int, p Params) Rung {
	risk := mathutil.ToFixed(math.Abs(trade.PnL(entry, stop, qty, p.Kind)), constants.AmountPlaces)
	fee := mathutil.ToFixed(b.conf.FeeRate*qty*entry, constants.AmountPlaces)

	pnl := risk * float64(rr+distance)
	if p.TakeProfit > 0 {
		pnl = trade.PnL(entry, p.TakeProfit, qty, p.Kind) + fee
	}
	pnl = mathutil.ToFixed(pnl, constants.AmountPlaces)
	sell := mathutil.ToFixed(trade.ClosePrice(entry, pnl, qty, p.Kind), b.conf.PricePlaces)

	return Rung{
		Kind:         p.Kind,
		Entry:        entry,
		Stop:         stop,
		Quantity:     qty,
		Risk:         risk,
		Fee:          fee,
		PnL:          pnl,
		SellPrice:    sell,
		IncurredSell: sell,
		Net:          mathutil.ToFixed(pnl-fee, constants.AmountPlaces),
		StopPercent:  mathutil.ToFixed(math.Abs(entry-stop)/entry, constants.AmountPlaces),
		RR:           rr,
		Constituents: 1,
	}
}

func validateParams(p Params) error {
	if p.RiskPerTrade <= 0 {
		return fmt.Errorf("%w: riskPerTrade must be positive, got %.8g", ErrInvalidRiskConfig, p.RiskPerTrade)
	}
	if p.RungCount < 1 {
		return fmt.Errorf("%w: rungCount must be at least 1, got %d", ErrInvalidRiskConfig, p.RungCount)
	}
	if p.Kind != trade.Long && p.Kind != trade.Short {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRiskConfig, p.Kind)
	}
	if p.Entry <= 0 || p.Stop < 0 {
		return fmt.Errorf("%w: prices must be positive", ErrInvalidRiskConfig)
	}
	return nil
}

func defaultStop(entry, percentChange float64, kind trade.Kind) float64 {
	if kind == trade.Short {
		return entry * (1 + percentChange)
	}
	return entry / (1 + percentChange)
}

// BuildLadder builds the ladder for p and projects it from its own entry.
func BuildLadder(logger *zap.Logger, conf RiskConfig, p Params) ([]AveragedRung, error) {
	rungs, err := NewBuilder(logger, conf).Build(p)
	if err != nil {
		return nil, err
	}
	return Project(rungs, ProjectParams{
		CurrentEntry:     p.Entry,
		TakeProfit:       p.TakeProfit,
		RewardMultiplier: conf.rewardMultiplier(),
		FeeRate:          conf.FeeRate,
		PricePlaces:      conf.PricePlaces,
		DecimalPlaces:    conf.DecimalPlaces,
	}), nil
}
