package ladder

// OrderSplit separates a ladder into the rungs that rest as limit orders and
// the rungs the current price has already passed, which fill at market.
type OrderSplit struct {
	Limit  []AveragedRung `json:"limit"`
	Market []AveragedRung `json:"market"`
}

// SplitOrders partitions rungs around currentPrice. A long rung priced above
// currentPrice (a short rung priced below it) is a market order; the rest
// are limit orders. Ladder order is kept within each side.
func SplitOrders(rungs []AveragedRung, currentPrice float64) OrderSplit {
	var split OrderSplit
	for _, r := range rungs {
		if r.Kind.Further(r.Entry, currentPrice) {
			split.Market = append(split.Market, r)
		} else {
			split.Limit = append(split.Limit, r)
		}
	}
	return split
}

// Quantity sums the rung quantities of rungs.
func Quantity(rungs []AveragedRung) float64 {
	var total float64
	for _, r := range rungs {
		total += r.Quantity
	}
	return total
}
