package config

import (
	"fmt"
	"strings"

	"github.com/iwvelando/risk-ladder/pkg/constants"
)

// SearchConfig defines the risk-reward search space and how it is evaluated.
type SearchConfig struct {
	LowerBound int     `yaml:"lowerBound,omitempty" mapstructure:"lowerBound"`
	UpperBound int     `yaml:"upperBound,omitempty" mapstructure:"upperBound"` // exclusive
	Strategy   string  `yaml:"strategy,omitempty" mapstructure:"strategy"`
	Loss       float64 `yaml:"loss,omitempty" mapstructure:"loss"`
	Workers    int     `yaml:"workers,omitempty" mapstructure:"workers"`
	Mode       string  `yaml:"mode,omitempty" mapstructure:"mode"`
	MaxBatches int     `yaml:"maxBatches,omitempty" mapstructure:"maxBatches"`
}

// CanonicalStrategy returns the canonical identifier for a search strategy.
func CanonicalStrategy(value string) string {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	switch trimmed {
	case "", "qty", "size", constants.StrategyQuantity:
		return constants.StrategyQuantity
	case constants.StrategyEntry:
		return constants.StrategyEntry
	default:
		return trimmed
	}
}

// Normalize ensures defaults and canonical values are applied before validation.
func (s *SearchConfig) Normalize() {
	if s == nil {
		return
	}
	if s.LowerBound <= 0 {
		s.LowerBound = constants.DefaultLowerBound
	}
	if s.UpperBound <= 0 {
		s.UpperBound = constants.DefaultUpperBound
	}
	s.Strategy = CanonicalStrategy(s.Strategy)
	s.Mode = strings.ToLower(strings.TrimSpace(s.Mode))
	if s.Mode == "" {
		s.Mode = constants.ModePool
	}
	if s.MaxBatches <= 0 {
		s.MaxBatches = constants.DefaultMaxBatches
	}
}

// Validate returns an error when the search configuration is unsupported.
func (s *SearchConfig) Validate() error {
	if s == nil {
		return fmt.Errorf("search configuration cannot be nil")
	}

	s.Normalize()

	if s.LowerBound < 1 {
		return fmt.Errorf("search lower bound %d must be at least 1", s.LowerBound)
	}
	if s.LowerBound >= s.UpperBound {
		return fmt.Errorf("search lower bound %d must be less than upper bound %d", s.LowerBound, s.UpperBound)
	}
	switch s.Strategy {
	case constants.StrategyQuantity, constants.StrategyEntry:
	default:
		return fmt.Errorf("search strategy %q is not supported", s.Strategy)
	}
	switch s.Mode {
	case constants.ModeSequential, constants.ModePool, constants.ModeChunked:
	default:
		return fmt.Errorf("search mode %q is not supported", s.Mode)
	}
	if s.Loss < 0 {
		return fmt.Errorf("search loss target %.2f cannot be negative", s.Loss)
	}
	if s.Workers < 0 {
		return fmt.Errorf("search workers %d cannot be negative", s.Workers)
	}
	return nil
}

// DefaultSearch returns a normalized search configuration.
func DefaultSearch() SearchConfig {
	s := SearchConfig{}
	s.Normalize()
	return s
}
