// Package margin estimates cross-margin liquidation prices for linear
// contracts and checks ladders against them.
package margin

import (
	"errors"
	"fmt"

	"github.com/iwvelando/risk-ladder/internal/ladder"
	"github.com/iwvelando/risk-ladder/pkg/trade"
)

// ErrLiquidationBeforeStop is returned when the blended position would be
// liquidated before the ladder stop is reached.
var ErrLiquidationBeforeStop = errors.New("liquidation before stop")

// blendPlaces keeps the blended position effectively unrounded.
const blendPlaces = 8

// Position is one side of an account's exposure.
type Position struct {
	Entry float64 `json:"entry"`
	Size  float64 `json:"size"`
}

// Estimate is a liquidation estimate for an account.
type Estimate struct {
	LiquidationPrice float64 `json:"liquidationPrice" yaml:"liquidationPrice"`
	Maintenance      float64 `json:"maintenance" yaml:"maintenance"`
}

// Estimator computes the liquidation price of a hedged account.
type Estimator interface {
	EstimateLiquidation(balance float64, long, short Position) (Estimate, error)
}

// FlatRate applies a single maintenance-margin rate to the whole notional.
type FlatRate struct {
	MaintenanceRate float64
}

// EstimateLiquidation implements Estimator.
func (f FlatRate) EstimateLiquidation(balance float64, long, short Position) (Estimate, error) {
	if f.MaintenanceRate < 0 || f.MaintenanceRate >= 1 {
		return Estimate{}, fmt.Errorf("maintenance rate %.4f must be within [0, 1)", f.MaintenanceRate)
	}
	if long.Size < 0 || short.Size < 0 {
		return Estimate{}, fmt.Errorf("position sizes cannot be negative")
	}

	exposure := long.Size*long.Entry - short.Size*short.Entry
	denominator := (long.Size+short.Size)*f.MaintenanceRate - (long.Size - short.Size)

	est := Estimate{
		Maintenance: f.MaintenanceRate * (long.Size*long.Entry + short.Size*short.Entry),
	}
	if denominator == 0 {
		return est, nil
	}
	price := (balance - exposure) / denominator
	if price > 0 {
		est.LiquidationPrice = price
	}
	return est, nil
}

// CheckLadder blends the deepest projected rung of rungs into the existing
// position and estimates the liquidation price of the result. It returns
// ErrLiquidationBeforeStop, together with the estimate, when liquidation
// would trigger before the ladder stop.
func CheckLadder(est Estimator, balance float64, existing Position, rungs []ladder.AveragedRung) (Estimate, error) {
	deepest := -1
	for i := range rungs {
		if rungs[i].Projected {
			deepest = i
		}
	}
	if deepest < 0 {
		return Estimate{}, fmt.Errorf("ladder has no projected rung")
	}
	r := rungs[deepest]
	kind := r.Kind

	blended := trade.Average([]trade.Order{
		{Price: existing.Entry, Quantity: existing.Size},
		{Price: r.AvgEntry, Quantity: r.AvgSize},
	}, blendPlaces, blendPlaces)

	var long, short Position
	if kind == trade.Short {
		short = Position{Entry: blended.Price, Size: blended.Quantity}
	} else {
		long = Position{Entry: blended.Price, Size: blended.Quantity}
	}

	estimate, err := est.EstimateLiquidation(balance, long, short)
	if err != nil {
		return Estimate{}, err
	}
	if estimate.LiquidationPrice > 0 && !kind.Further(r.Stop, estimate.LiquidationPrice) {
		return estimate, fmt.Errorf("%w: liquidation at %.8g, stop at %.8g",
			ErrLiquidationBeforeStop, estimate.LiquidationPrice, r.Stop)
	}
	return estimate, nil
}
