// Package optimization provides shared data structures for optimization results.
package optimization

// Summary captures the winning candidate of a risk-reward search.
type Summary struct {
	Strategy        string   `json:"strategy" yaml:"strategy"`
	Kind            string   `json:"kind" yaml:"kind"`
	RiskRewardValue int      `json:"riskRewardValue" yaml:"riskRewardValue"`
	RiskPerTrade    float64  `json:"riskPerTrade" yaml:"riskPerTrade"`
	RiskPerRung     float64  `json:"riskPerRung" yaml:"riskPerRung"`
	Rungs           int      `json:"rungs" yaml:"rungs"`
	TotalQuantity   float64  `json:"totalQuantity" yaml:"totalQuantity"`
	MaxRungQuantity float64  `json:"maxRungQuantity" yaml:"maxRungQuantity"`
	MaxRungIndex    int      `json:"maxRungIndex" yaml:"maxRungIndex"`
	EntryExtreme    float64  `json:"entryExtreme" yaml:"entryExtreme"`
	DeepestIndex    int      `json:"deepestIndex" yaml:"deepestIndex"`
	DeepestNegPnL   float64  `json:"deepestNegPnl" yaml:"deepestNegPnl"`
	AvgEntry        float64  `json:"avgEntry" yaml:"avgEntry"`
	Stop            float64  `json:"stop,omitempty" yaml:"stop,omitempty"`
	NetDiff         float64  `json:"netDiff" yaml:"netDiff"`
	Notes           []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}
