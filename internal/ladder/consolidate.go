package ladder

import (
	"math"

	"github.com/iwvelando/risk-ladder/pkg/constants"
	"github.com/iwvelando/risk-ladder/pkg/mathutil"
	"github.com/iwvelando/risk-ladder/pkg/trade"
	"go.uber.org/zap"
)

// consolidate merges contiguous runs of rungs below the minimum size into
// synthetic rungs that meet it. Runs that cannot reach the minimum are kept
// as they are.
func (b *Builder) consolidate(rungs []Rung) []Rung {
	minimum := b.conf.MinimumSize
	if minimum <= 0 {
		return rungs
	}

	out := make([]Rung, 0, len(rungs))
	merged := false
	for i := 0; i < len(rungs); {
		if rungs[i].Quantity >= minimum {
			out = append(out, rungs[i])
			i++
			continue
		}

		j := i
		for j < len(rungs) && rungs[j].Quantity < minimum {
			j++
		}

		groups := GroupByMinimum(rungs[i:j], minimum)
		if groups == nil {
			out = append(out, rungs[i:j]...)
		} else {
			for _, group := range groups {
				out = append(out, b.merge(group))
			}
			merged = true
		}
		i = j
	}

	if !merged {
		b.logger.Debug("no rung group reached the minimum size, keeping ladder as built",
			zap.String("op", "ladder.consolidate"),
			zap.Float64("minimum_size", minimum),
			zap.Int("rungs", len(rungs)),
		)
		return rungs
	}
	return out
}

// GroupByMinimum splits rungs into consecutive groups whose quantity sums
// reach minimum. A trailing remainder joins the last group. It returns nil
// when no group reaches minimum.
func GroupByMinimum(rungs []Rung, minimum float64) [][]Rung {
	var groups [][]Rung
	var current []Rung
	var sum float64
	for _, r := range rungs {
		current = append(current, r)
		sum += r.Quantity
		if sum >= minimum {
			groups = append(groups, current)
			current = nil
			sum = 0
		}
	}

	if len(groups) == 0 {
		return nil
	}
	if len(current) > 0 {
		last := len(groups) - 1
		groups[last] = append(groups[last], current...)
	}
	return groups
}

func (b *Builder) merge(group []Rung) Rung {
	if len(group) == 1 {
		return group[0]
	}

	orders := make([]trade.Order, len(group))
	var risk float64
	constituents := 0
	for i, r := range group {
		orders[i] = trade.Order{Price: r.Entry, Quantity: r.Quantity}
		risk += r.Risk
		constituents += r.Constituents
	}
	avg := trade.Average(orders, b.conf.PricePlaces, b.conf.DecimalPlaces)

	first := group[0]
	m := first
	m.Entry = avg.Price
	m.Quantity = avg.Quantity
	m.Stop = group[len(group)-1].Stop
	m.Risk = mathutil.ToFixed(risk, constants.AmountPlaces)
	m.Fee = mathutil.ToFixed(b.conf.FeeRate*m.Quantity*m.Entry, constants.AmountPlaces)
	m.PnL = mathutil.ToFixed(trade.PnL(m.Entry, first.SellPrice, m.Quantity, m.Kind), constants.AmountPlaces)
	m.Net = mathutil.ToFixed(m.PnL-m.Fee, constants.AmountPlaces)
	m.StopPercent = mathutil.ToFixed(math.Abs(m.Entry-m.Stop)/m.Entry, constants.AmountPlaces)
	m.IncurredSell = m.SellPrice
	if m.Incurred > 0 {
		m.IncurredSell = mathutil.ToFixed(
			trade.ClosePrice(m.Entry, m.Incurred+m.Fee, m.Quantity, m.Kind), b.conf.PricePlaces)
	}
	m.Constituents = constituents
	return m
}
