package validation

import (
	"fmt"

	"github.com/iwvelando/risk-ladder/pkg/constants"
)

// RiskSummary carries the configuration values that are checked for
// suspicious but runnable combinations.
type RiskSummary struct {
	RiskPerTrade    float64
	FeeRate         float64
	MinimumSize     float64
	RiskRewardCount int
	LowerBound      int
	UpperBound      int
	Strategy        string
	Loss            float64
	MaxSize         float64
	Support         float64
	Resistance      float64
	CurrentPrice    float64
}

// highFeeRate is the fee rate above which fees usually dominate rung PnL.
const highFeeRate = 0.01

// RiskWarnings returns human-readable warnings for settings that will run but
// are unlikely to produce a useful ladder.
func RiskWarnings(s RiskSummary) []string {
	var warnings []string

	if s.FeeRate >= highFeeRate {
		warnings = append(warnings, fmt.Sprintf("Fee rate %.4f is at least %.2f; fees may exceed rung profit", s.FeeRate, highFeeRate))
	}

	if s.RiskPerTrade > 0 && s.Loss >= s.RiskPerTrade {
		warnings = append(warnings, fmt.Sprintf("Loss target %.2f is not below risk per trade %.2f and no ladder with a positive net diff reaches it", s.Loss, s.RiskPerTrade))
	}

	if s.Loss > 0 && s.Strategy != constants.StrategyQuantity {
		warnings = append(warnings, fmt.Sprintf("Loss target %.2f only applies to the %s strategy", s.Loss, constants.StrategyQuantity))
	}

	if s.UpperBound > 0 && s.LowerBound > 0 && s.UpperBound-s.LowerBound == 1 {
		warnings = append(warnings, fmt.Sprintf("Search range [%d, %d) evaluates a single risk-reward value", s.LowerBound, s.UpperBound))
	}

	if s.MinimumSize > 0 && s.MaxSize > 0 && s.MinimumSize > s.MaxSize {
		warnings = append(warnings, fmt.Sprintf("Minimum rung size %.8g exceeds max position size %.8g", s.MinimumSize, s.MaxSize))
	}

	if s.CurrentPrice > 0 && s.Support > 0 && s.Resistance > 0 &&
		(s.CurrentPrice < s.Support || s.CurrentPrice > s.Resistance) {
		warnings = append(warnings, fmt.Sprintf("Current price %.8g is outside the zone [%.8g, %.8g]", s.CurrentPrice, s.Support, s.Resistance))
	}

	return warnings
}
