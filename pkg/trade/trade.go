// Package trade holds the position-direction type and the closed-form PnL,
// close price and sizing formulas shared by the ladder engine.
package trade

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/risk-ladder/pkg/mathutil"
)

// Kind is the direction of a position.
type Kind string

const (
	Long  Kind = "long"
	Short Kind = "short"
)

// ParseKind parses a position direction, case-insensitively.
func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case Long:
		return Long, nil
	case Short:
		return Short, nil
	default:
		return "", fmt.Errorf("invalid position kind %q: must be %q or %q", value, Long, Short)
	}
}

// Sign is +1 for long positions and -1 for short positions.
func (k Kind) Sign() float64 {
	if k == Short {
		return -1
	}
	return 1
}

// Further reports whether price a is farther than b in the trade direction,
// i.e. higher for long positions and lower for short positions.
func (k Kind) Further(a, b float64) bool {
	if k == Short {
		return a < b
	}
	return a > b
}

// PnL returns the profit of closing qty units opened at entry at close.
func PnL(entry, close, qty float64, kind Kind) float64 {
	return (close - entry) * qty * kind.Sign()
}

// ClosePrice returns the price at which qty units opened at entry realise pnl.
func ClosePrice(entry, pnl, qty float64, kind Kind) float64 {
	if mathutil.IsZero(qty) {
		return 0
	}
	return entry + kind.Sign()*pnl/qty
}

// PositionSize returns the quantity that loses exactly budget between entry
// and stop, rounded to places.
func PositionSize(entry, stop, budget float64, places int) float64 {
	if entry == 0 || entry == stop {
		return 0
	}
	stopPercent := math.Abs(entry-stop) / entry
	return mathutil.ToFixed(budget/stopPercent/entry, places)
}

// PositionSizeWithin is PositionSize rounded down, so the loss between entry
// and stop never exceeds budget.
func PositionSizeWithin(entry, stop, budget float64, places int) float64 {
	if entry == 0 || entry == stop {
		return 0
	}
	stopPercent := math.Abs(entry-stop) / entry
	return mathutil.Truncate(budget/stopPercent/entry, places)
}

// Order is a price/quantity pair used for averaging.
type Order struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// Average returns the volume-weighted price and the total quantity of orders.
func Average(orders []Order, pricePlaces, qtyPlaces int) Order {
	var notional, total float64
	for _, o := range orders {
		notional += o.Price * o.Quantity
		total += o.Quantity
	}
	if mathutil.IsZero(total) {
		return Order{}
	}
	return Order{
		Price:    mathutil.ToFixed(notional/total, pricePlaces),
		Quantity: mathutil.ToFixed(total, qtyPlaces),
	}
}
