// Package ladder builds fixed-risk order ladders between an entry and a stop
// price and projects blended-position outcomes across their rungs.
package ladder

import (
	"errors"
	"fmt"

	"github.com/iwvelando/risk-ladder/pkg/constants"
	"github.com/iwvelando/risk-ladder/pkg/trade"
)

var (
	// ErrDegenerateZone is returned when a ladder cannot hold a single
	// risk-bounded order, e.g. entry equals stop. The ladder is empty.
	ErrDegenerateZone = errors.New("degenerate zone")

	// ErrInvalidRiskConfig is returned for risk settings rejected before building.
	ErrInvalidRiskConfig = errors.New("invalid risk configuration")
)

// RiskConfig describes how ladder rungs are sized and rounded.
type RiskConfig struct {
	FeeRate              float64    `json:"feeRate" yaml:"feeRate"`
	RiskPerTrade         float64    `json:"riskPerTrade" yaml:"riskPerTrade"`
	RiskRewardCount      int        `json:"riskRewardCount" yaml:"riskRewardCount"`
	DecimalPlaces        int        `json:"decimalPlaces" yaml:"decimalPlaces"`
	PricePlaces          int        `json:"pricePlaces" yaml:"pricePlaces"`
	MinimumSize          float64    `json:"minimumSize" yaml:"minimumSize"`
	IncreasePosition     bool       `json:"increasePosition" yaml:"increasePosition"`
	Kind                 trade.Kind `json:"kind" yaml:"kind"`
	TakeProfit           float64    `json:"takeProfit,omitempty" yaml:"takeProfit,omitempty"`
	RewardMultiplier     float64    `json:"rewardMultiplier,omitempty" yaml:"rewardMultiplier,omitempty"`
	DefaultPercentChange float64    `json:"defaultPercentChange,omitempty" yaml:"defaultPercentChange,omitempty"`
}

// Validate rejects risk settings that cannot produce a ladder.
func (c RiskConfig) Validate() error {
	if c.RiskPerTrade <= 0 {
		return fmt.Errorf("%w: riskPerTrade must be positive, got %.8g", ErrInvalidRiskConfig, c.RiskPerTrade)
	}
	if c.RiskRewardCount < 1 {
		return fmt.Errorf("%w: riskRewardCount must be at least 1, got %d", ErrInvalidRiskConfig, c.RiskRewardCount)
	}
	if c.Kind != trade.Long && c.Kind != trade.Short {
		return fmt.Errorf("%w: kind must be %q or %q", ErrInvalidRiskConfig, trade.Long, trade.Short)
	}
	if c.FeeRate < 0 {
		return fmt.Errorf("%w: feeRate cannot be negative", ErrInvalidRiskConfig)
	}
	if c.MinimumSize < 0 {
		return fmt.Errorf("%w: minimumSize cannot be negative", ErrInvalidRiskConfig)
	}
	if c.DecimalPlaces < 0 || c.PricePlaces < 0 {
		return fmt.Errorf("%w: precision cannot be negative", ErrInvalidRiskConfig)
	}
	return nil
}

func (c RiskConfig) rewardMultiplier() float64 {
	if c.RewardMultiplier <= 0 {
		return constants.DefaultRewardMultiplier
	}
	return c.RewardMultiplier
}

func (c RiskConfig) percentChange() float64 {
	if c.DefaultPercentChange <= 0 {
		return constants.DefaultPercentChange
	}
	return c.DefaultPercentChange
}

// Params are the per-call inputs of a ladder build.
type Params struct {
	Entry        float64    `json:"entry"`
	Stop         float64    `json:"stop"`
	RiskPerTrade float64    `json:"riskPerTrade"`
	RungCount    int        `json:"rungCount"`
	Kind         trade.Kind `json:"kind"`
	TakeProfit   float64    `json:"takeProfit,omitempty"`
	// SharedStop sizes every rung against Stop instead of the next rung,
	// rounding quantities down so the filled ladder stays within budget.
	SharedStop bool `json:"sharedStop,omitempty"`
}

// ParamsFrom fills build parameters from the risk settings.
func ParamsFrom(conf RiskConfig, entry, stop float64) Params {
	return Params{
		Entry:        entry,
		Stop:         stop,
		RiskPerTrade: conf.RiskPerTrade,
		RungCount:    conf.RiskRewardCount,
		Kind:         conf.Kind,
		TakeProfit:   conf.TakeProfit,
	}
}

// Rung is a single ladder order.
type Rung struct {
	Index        int        `json:"index"`
	Kind         trade.Kind `json:"kind"`
	Entry        float64    `json:"entry"`
	Stop         float64    `json:"stop"`
	Quantity     float64    `json:"quantity"`
	Risk         float64    `json:"risk"`
	Fee          float64    `json:"fee"`
	PnL          float64    `json:"pnl"`
	SellPrice    float64    `json:"sellPrice"`
	IncurredSell float64    `json:"incurredSell"`
	Net          float64    `json:"net"`
	Incurred     float64    `json:"incurred"`
	StopPercent  float64    `json:"stopPercent"`
	RR           int        `json:"rr"`
	Constituents int        `json:"constituents"`
}

// AveragedRung is a rung annotated with the blended position that results
// once every committed rung up to it has filled. AvgPnL is nil when no
// committed rung lies at or beyond the rung.
type AveragedRung struct {
	Rung
	AvgEntry   float64  `json:"avgEntry"`
	AvgSize    float64  `json:"avgSize"`
	AvgPnL     *float64 `json:"avgPnl,omitempty"`
	NegPnL     float64  `json:"negPnl"`
	StartEntry float64  `json:"startEntry"`
	CloseP     float64  `json:"closeP"`
	EntryPnL   float64  `json:"entryPnl"`
	EntryLoss  float64  `json:"entryLoss"`
	XFee       float64  `json:"xFee"`
	Projected  bool     `json:"projected"`
}

// Deepest returns the index of the rung closest to the stop, or -1 for an
// empty ladder. Its projection blends the whole committed ladder.
func Deepest(rungs []AveragedRung) int {
	if len(rungs) == 0 {
		return -1
	}
	deepest := 0
	for i, r := range rungs {
		if r.Kind.Further(rungs[deepest].Entry, r.Entry) {
			deepest = i
		}
	}
	return deepest
}

// TotalQuantity sums the rung quantities.
func TotalQuantity(rungs []Rung) float64 {
	var total float64
	for _, r := range rungs {
		total += r.Quantity
	}
	return total
}
