// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/risk-ladder/internal/ladder"
	"github.com/iwvelando/risk-ladder/internal/zone"
	"github.com/iwvelando/risk-ladder/pkg/trade"
)

// FindRung finds the rung priced at entry in the rungs slice.
// Returns a pointer to the rung if found, nil otherwise.
func FindRung(rungs []ladder.AveragedRung, entry float64) *ladder.AveragedRung {
	for i := range rungs {
		if rungs[i].Entry == entry {
			return &rungs[i]
		}
	}
	return nil
}

// SampleZone is a 100-110 zone with a 10% walk step.
func SampleZone() zone.PriceZone {
	return zone.PriceZone{Focus: 105, Support: 100, Resistance: 110, PercentChange: 0.1}
}

// SampleRiskConfig risks 100 per ladder with cent quantities and cent prices.
func SampleRiskConfig(kind trade.Kind) ladder.RiskConfig {
	return ladder.RiskConfig{
		FeeRate:         0.0002,
		RiskPerTrade:    100,
		RiskRewardCount: 30,
		DecimalPlaces:   2,
		PricePlaces:     2,
		Kind:            kind,
	}
}
