package ladder

import (
	"math"

	"github.com/iwvelando/risk-ladder/pkg/constants"
	"github.com/iwvelando/risk-ladder/pkg/mathutil"
	"github.com/iwvelando/risk-ladder/pkg/trade"
)

// ProjectParams describe the position a ladder is projected from.
type ProjectParams struct {
	CurrentEntry     float64
	CurrentQuantity  float64
	TakeProfit       float64
	RewardMultiplier float64
	FeeRate          float64
	PricePlaces      int
	DecimalPlaces    int
}

// Project annotates every rung with the blended position held once all
// committed rungs from the entry side down to it have filled, together with
// an existing CurrentQuantity at CurrentEntry.
//
// Rungs priced better than CurrentEntry are treated as not yet committed and
// fold into the blend at the most extreme committed price.
func Project(rungs []Rung, p ProjectParams) []AveragedRung {
	out := make([]AveragedRung, len(rungs))
	if len(rungs) == 0 {
		return out
	}
	kind := rungs[0].Kind

	multiplier := p.RewardMultiplier
	if multiplier <= 0 {
		multiplier = constants.DefaultRewardMultiplier
	}

	var considered, committed []Rung
	for _, r := range rungs {
		if kind.Further(r.Entry, p.CurrentEntry) {
			considered = append(considered, r)
		} else {
			committed = append(committed, r)
		}
	}

	for i, x := range rungs {
		out[i] = AveragedRung{Rung: x, StartEntry: p.CurrentEntry}

		var remaining []Rung
		for _, r := range committed {
			if mathutil.SamePrice(r.Entry, x.Entry, p.PricePlaces) || kind.Further(r.Entry, x.Entry) {
				remaining = append(remaining, r)
			}
		}
		if len(remaining) == 0 {
			continue
		}

		anchor := remaining[0].Entry
		for _, r := range remaining[1:] {
			if kind.Further(r.Entry, anchor) {
				anchor = r.Entry
			}
		}

		orders := make([]trade.Order, 0, len(considered)+len(remaining)+1)
		for _, r := range considered {
			orders = append(orders, trade.Order{Price: anchor, Quantity: r.Quantity})
		}
		for _, r := range remaining {
			orders = append(orders, trade.Order{Price: r.Entry, Quantity: r.Quantity})
		}
		orders = append(orders, trade.Order{Price: p.CurrentEntry, Quantity: p.CurrentQuantity})

		avg := trade.Average(orders, p.PricePlaces, p.DecimalPlaces)
		pnl, entryPnL := x.PnL, x.PnL
		if p.TakeProfit > 0 {
			pnl = trade.PnL(avg.Price, p.TakeProfit, avg.Quantity, kind)
			entryPnL = trade.PnL(x.Entry, p.TakeProfit, avg.Quantity, kind)
		}
		entryLoss := trade.PnL(x.Entry, x.Stop, avg.Quantity, kind)
		xFee := p.FeeRate * x.Stop * avg.Quantity

		out[i].AvgEntry = avg.Price
		out[i].AvgSize = avg.Quantity
		avgPnL := mathutil.ToFixed(pnl, constants.AmountPlaces)
		out[i].AvgPnL = &avgPnL
		out[i].EntryPnL = mathutil.ToFixed(entryPnL, constants.AmountPlaces)
		out[i].NegPnL = mathutil.ToFixed(trade.PnL(avg.Price, x.Stop, avg.Quantity, kind), constants.AmountPlaces)
		out[i].EntryLoss = mathutil.ToFixed(entryLoss, constants.AmountPlaces)
		out[i].XFee = mathutil.ToFixed(xFee, constants.AmountPlaces)
		out[i].CloseP = mathutil.ToFixed(
			trade.ClosePrice(x.Entry, math.Abs(entryLoss)*multiplier+xFee, avg.Quantity, kind), p.PricePlaces)
		out[i].Projected = true
	}
	return out
}
