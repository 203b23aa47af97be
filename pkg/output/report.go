// Package output provides utilities for formatting and displaying ladder
// and optimization results.
package output

import (
	"github.com/iwvelando/risk-ladder/internal/ladder"
	"github.com/iwvelando/risk-ladder/internal/zone"
	"github.com/iwvelando/risk-ladder/pkg/margin"
	"github.com/iwvelando/risk-ladder/pkg/mathutil"
	"github.com/iwvelando/risk-ladder/pkg/optimization"
)

// Row is the flat, serializable form of a projected rung.
type Row struct {
	Index        int      `json:"index" yaml:"index"`
	Entry        float64  `json:"entry" yaml:"entry"`
	Stop         float64  `json:"stop" yaml:"stop"`
	Quantity     float64  `json:"quantity" yaml:"quantity"`
	Risk         float64  `json:"risk" yaml:"risk"`
	Fee          float64  `json:"fee" yaml:"fee"`
	PnL          float64  `json:"pnl" yaml:"pnl"`
	Net          float64  `json:"net" yaml:"net"`
	SellPrice    float64  `json:"sellPrice" yaml:"sellPrice"`
	IncurredSell float64  `json:"incurredSell" yaml:"incurredSell"`
	Incurred     float64  `json:"incurred" yaml:"incurred"`
	AvgEntry     float64  `json:"avgEntry" yaml:"avgEntry"`
	AvgSize      float64  `json:"avgSize" yaml:"avgSize"`
	AvgPnL       *float64 `json:"avgPnl,omitempty" yaml:"avgPnl,omitempty"`
	NegPnL       float64  `json:"negPnl" yaml:"negPnl"`
	CloseP       float64  `json:"closeP" yaml:"closeP"`
	Constituents int      `json:"constituents" yaml:"constituents"`
}

// Rows flattens projected rungs.
func Rows(rungs []ladder.AveragedRung) []Row {
	rows := make([]Row, len(rungs))
	for i, r := range rungs {
		rows[i] = Row{
			Index:        r.Index,
			Entry:        r.Entry,
			Stop:         r.Stop,
			Quantity:     r.Quantity,
			Risk:         r.Risk,
			Fee:          r.Fee,
			PnL:          r.Rung.PnL,
			Net:          r.Net,
			SellPrice:    r.SellPrice,
			IncurredSell: r.IncurredSell,
			Incurred:     r.Incurred,
			AvgEntry:     r.AvgEntry,
			AvgSize:      r.AvgSize,
			AvgPnL:       r.AvgPnL,
			NegPnL:       r.NegPnL,
			CloseP:       r.CloseP,
			Constituents: r.Constituents,
		}
	}
	return rows
}

// Report is everything a single CLI or API run produces.
type Report struct {
	Mode          string                `json:"mode" yaml:"mode"`
	Kind          string                `json:"kind" yaml:"kind"`
	Summary       *optimization.Summary `json:"summary,omitempty" yaml:"summary,omitempty"`
	Ladder        []Row                 `json:"ladder" yaml:"ladder"`
	TotalQuantity float64               `json:"totalQuantity" yaml:"totalQuantity"`
	Margin        *margin.Estimate      `json:"margin,omitempty" yaml:"margin,omitempty"`
	Orders        *Orders               `json:"orders,omitempty" yaml:"orders,omitempty"`
	MarginZones   []zone.Range          `json:"marginZones,omitempty" yaml:"marginZones,omitempty"`
	Warnings      []string              `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	PricePlaces   int `json:"-" yaml:"-"`
	DecimalPlaces int `json:"-" yaml:"-"`
}

// NewReport builds a report for a projected ladder.
func NewReport(mode string, rungs []ladder.AveragedRung, pricePlaces, decimalPlaces int) Report {
	r := Report{
		Mode:          mode,
		Ladder:        Rows(rungs),
		PricePlaces:   pricePlaces,
		DecimalPlaces: decimalPlaces,
	}
	if len(rungs) > 0 {
		r.Kind = string(rungs[0].Kind)
	}
	for _, rung := range rungs {
		r.TotalQuantity += rung.Quantity
	}
	return r
}

// Orders is how a ladder would be placed at a given price: rungs the price
// has not reached rest as limit orders, the others fill at market.
type Orders struct {
	CurrentPrice   float64 `json:"currentPrice" yaml:"currentPrice"`
	Limit          []int   `json:"limit" yaml:"limit"`
	Market         []int   `json:"market" yaml:"market"`
	LimitQuantity  float64 `json:"limitQuantity" yaml:"limitQuantity"`
	MarketQuantity float64 `json:"marketQuantity" yaml:"marketQuantity"`
}

// NewOrders summarizes split by rung index and quantity, rounded to
// decimalPlaces.
func NewOrders(split ladder.OrderSplit, currentPrice float64, decimalPlaces int) *Orders {
	indices := func(rungs []ladder.AveragedRung) []int {
		out := make([]int, len(rungs))
		for i, r := range rungs {
			out[i] = r.Index
		}
		return out
	}
	return &Orders{
		CurrentPrice:   currentPrice,
		Limit:          indices(split.Limit),
		Market:         indices(split.Market),
		LimitQuantity:  mathutil.ToFixed(ladder.Quantity(split.Limit), decimalPlaces),
		MarketQuantity: mathutil.ToFixed(ladder.Quantity(split.Market), decimalPlaces),
	}
}
