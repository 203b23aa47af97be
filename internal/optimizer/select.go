package optimizer

import (
	"math"
	"sort"

	"github.com/iwvelando/risk-ladder/pkg/constants"
	"github.com/iwvelando/risk-ladder/pkg/trade"
)

// PassCriterion reports whether c is eligible under strategy. The quantity
// strategy only accepts ladders whose largest order is the deepest rung.
func PassCriterion(c *Candidate, strategy string) bool {
	if c == nil {
		return false
	}
	if strategy == constants.StrategyQuantity {
		return c.MaxRungIndex == c.DeepestIndex
	}
	return true
}

// Better reports whether a should replace winner: a tighter positive net
// diff at an entry farther in the trade direction.
func Better(a, winner *Candidate, kind trade.Kind) bool {
	return a.NetDiff() < winner.NetDiff() && kind.Further(a.EntryExtreme, winner.EntryExtreme)
}

// SelectBest returns the index of the winning candidate in cands, or -1.
// Candidates are expected to have passed PassCriterion already.
func SelectBest(cands []*Candidate, strategy string, loss float64, kind trade.Kind) int {
	var survivors []int
	for i, c := range cands {
		if c != nil && c.NetDiff() > 0 {
			survivors = append(survivors, i)
		}
	}
	if len(survivors) == 0 {
		return -1
	}

	if strategy == constants.StrategyQuantity && loss > 0 {
		sort.SliceStable(survivors, func(i, j int) bool {
			a, b := cands[survivors[i]], cands[survivors[j]]
			if a.TotalQuantity != b.TotalQuantity {
				return a.TotalQuantity > b.TotalQuantity
			}
			return a.NetDiff() > b.NetDiff()
		})
		for _, i := range survivors {
			if math.Abs(cands[i].DeepestNegPnL) >= loss {
				return i
			}
		}
		return -1
	}

	winner := survivors[0]
	for _, i := range survivors[1:] {
		if Better(cands[i], cands[winner], kind) {
			winner = i
		}
	}
	return winner
}
