package optimizer

import (
	"github.com/iwvelando/risk-ladder/internal/ladder"
	"github.com/iwvelando/risk-ladder/pkg/constants"
	"github.com/iwvelando/risk-ladder/pkg/mathutil"
	"github.com/iwvelando/risk-ladder/pkg/optimization"
	"github.com/iwvelando/risk-ladder/pkg/trade"
)

// Candidate is the ladder built for one risk-reward value.
type Candidate struct {
	RiskRewardValue int                   `json:"riskRewardValue"`
	RiskPerTrade    float64               `json:"riskPerTrade"`
	Kind            trade.Kind            `json:"kind"`
	Ladder          []ladder.AveragedRung `json:"ladder"`
	TotalQuantity   float64               `json:"totalQuantity"`
	MaxRungQuantity float64               `json:"maxRungQuantity"`
	MaxRungIndex    int                   `json:"maxRungIndex"`
	EntryExtreme    float64               `json:"entryExtreme"`
	DeepestIndex    int                   `json:"deepestIndex"`
	DeepestNegPnL   float64               `json:"deepestNegPnl"`
}

// NetDiff is the part of the risk budget left over when the whole ladder has
// filled and the deepest rung is stopped out. Candidates with a non-positive
// net diff lose more than the budget.
func (c *Candidate) NetDiff() float64 {
	return c.DeepestNegPnL + c.RiskPerTrade
}

// Deepest returns the rung whose projection blends the whole ladder.
func (c *Candidate) Deepest() ladder.AveragedRung {
	return c.Ladder[c.DeepestIndex]
}

// Summary returns the serializable summary of c.
func (c *Candidate) Summary(strategy string) optimization.Summary {
	return optimization.Summary{
		Strategy:        strategy,
		Kind:            string(c.Kind),
		RiskRewardValue: c.RiskRewardValue,
		RiskPerTrade:    c.RiskPerTrade,
		RiskPerRung:     mathutil.ToFixed(c.RiskPerTrade/float64(c.RiskRewardValue), constants.AmountPlaces),
		Rungs:           len(c.Ladder),
		TotalQuantity:   c.TotalQuantity,
		MaxRungQuantity: c.MaxRungQuantity,
		MaxRungIndex:    c.MaxRungIndex,
		EntryExtreme:    c.EntryExtreme,
		DeepestIndex:    c.DeepestIndex,
		DeepestNegPnL:   c.DeepestNegPnL,
		AvgEntry:        c.Deepest().AvgEntry,
		NetDiff:         mathutil.ToFixed(c.NetDiff(), constants.AmountPlaces),
	}
}

// newCandidate derives the selection statistics of a built ladder. It
// returns nil for an empty ladder. Ties for the largest rung resolve to the
// rung nearest the stop.
func newCandidate(rr int, risk float64, kind trade.Kind, rungs []ladder.AveragedRung) *Candidate {
	deepest := ladder.Deepest(rungs)
	if deepest < 0 {
		return nil
	}
	c := &Candidate{
		RiskRewardValue: rr,
		RiskPerTrade:    risk,
		Kind:            kind,
		Ladder:          rungs,
		MaxRungQuantity: rungs[0].Quantity,
		EntryExtreme:    rungs[0].Entry,
		DeepestIndex:    deepest,
		DeepestNegPnL:   rungs[deepest].NegPnL,
	}
	for i, r := range rungs {
		c.TotalQuantity += r.Quantity
		if r.Quantity >= c.MaxRungQuantity {
			c.MaxRungQuantity = r.Quantity
			c.MaxRungIndex = i
		}
		if kind.Further(r.Entry, c.EntryExtreme) {
			c.EntryExtreme = r.Entry
		}
	}
	return c
}
