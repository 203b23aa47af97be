// Package config defines the data structures related to configuration and
// includes functions for loading, normalizing and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/risk-ladder/internal/ladder"
	"github.com/iwvelando/risk-ladder/internal/zone"
	"github.com/iwvelando/risk-ladder/pkg/constants"
	"github.com/iwvelando/risk-ladder/pkg/mathutil"
	"github.com/iwvelando/risk-ladder/pkg/trade"
	"github.com/iwvelando/risk-ladder/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for risk-ladder.
type Configuration struct {
	Logging      LoggingConfig  `yaml:"logging,omitempty" mapstructure:"logging"`
	Output       OutputConfig   `yaml:"output,omitempty" mapstructure:"output"`
	Risk         RiskSettings   `yaml:"risk" mapstructure:"risk"`
	Zone         zone.PriceZone `yaml:"zone" mapstructure:"zone"`
	Search       SearchConfig   `yaml:"search,omitempty" mapstructure:"search"`
	Bound        BoundConfig    `yaml:"bound,omitempty" mapstructure:"bound"`
	Margin       MarginConfig   `yaml:"margin,omitempty" mapstructure:"margin"`
	StopScan     StopScanConfig `yaml:"stopScan,omitempty" mapstructure:"stopScan"`
	CurrentPrice float64        `yaml:"currentPrice,omitempty" mapstructure:"currentPrice"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json, yaml
}

// RiskSettings is the YAML form of ladder.RiskConfig. Precision values are
// fixed-point format specifiers such as "%.3f".
type RiskSettings struct {
	FeeRate              float64 `yaml:"feeRate" mapstructure:"feeRate"`
	RiskPerTrade         float64 `yaml:"riskPerTrade" mapstructure:"riskPerTrade"`
	RiskRewardCount      int     `yaml:"riskRewardCount,omitempty" mapstructure:"riskRewardCount"`
	DecimalPlaces        string  `yaml:"decimalPlaces,omitempty" mapstructure:"decimalPlaces"`
	PricePlaces          string  `yaml:"pricePlaces,omitempty" mapstructure:"pricePlaces"`
	MinimumSize          float64 `yaml:"minimumSize,omitempty" mapstructure:"minimumSize"`
	IncreasePosition     bool    `yaml:"increasePosition,omitempty" mapstructure:"increasePosition"`
	Kind                 string  `yaml:"kind" mapstructure:"kind"`
	TakeProfit           float64 `yaml:"takeProfit,omitempty" mapstructure:"takeProfit"`
	RewardMultiplier     float64 `yaml:"rewardMultiplier,omitempty" mapstructure:"rewardMultiplier"`
	DefaultPercentChange float64 `yaml:"defaultPercentChange,omitempty" mapstructure:"defaultPercentChange"`
	Entry                float64 `yaml:"entry,omitempty" mapstructure:"entry"`
	Stop                 float64 `yaml:"stop,omitempty" mapstructure:"stop"`
}

// BoundConfig configures the max-size risk search.
type BoundConfig struct {
	MaxSize   float64 `yaml:"maxSize,omitempty" mapstructure:"maxSize"`
	Gap       float64 `yaml:"gap,omitempty" mapstructure:"gap"`
	BatchSize int     `yaml:"batchSize,omitempty" mapstructure:"batchSize"`
}

// StopScanConfig configures the stop-price scan. Stops are tried every Gap
// from the zone's stop edge toward Target.
type StopScanConfig struct {
	Target float64 `yaml:"target,omitempty" mapstructure:"target"`
	Gap    float64 `yaml:"gap,omitempty" mapstructure:"gap"`
}

// MarginConfig enables a liquidation check on the resulting ladder.
type MarginConfig struct {
	Balance         float64 `yaml:"balance,omitempty" mapstructure:"balance"`
	MaintenanceRate float64 `yaml:"maintenanceRate,omitempty" mapstructure:"maintenanceRate"`
}

// Enabled reports whether a margin check was configured.
func (m MarginConfig) Enabled() bool {
	return m.Balance > 0 && m.MaintenanceRate > 0
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Keys present in the file can be overridden from the
// environment, e.g. RISK_LADDER_RISK_RISKPERTRADE.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.Normalize()
	return &configuration, nil
}

// LoadConfigurationFromReader loads YAML configuration from r using a private
// viper instance, so concurrent callers do not share state.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.Normalize()
	return &configuration, nil
}

// Normalize applies defaults to every section.
func (c *Configuration) Normalize() {
	if c.Output.Format == "" {
		c.Output.Format = constants.OutputFormatPretty
	}
	c.Risk.Normalize()
	c.Search.Normalize()
	c.Bound.Normalize()
}

// Normalize applies default precision, kind and multipliers.
func (r *RiskSettings) Normalize() {
	r.Kind = strings.ToLower(strings.TrimSpace(r.Kind))
	if r.Kind == "" {
		r.Kind = string(trade.Long)
	}
	if strings.TrimSpace(r.DecimalPlaces) == "" {
		r.DecimalPlaces = constants.DefaultDecimalPlaces
	}
	if strings.TrimSpace(r.PricePlaces) == "" {
		r.PricePlaces = constants.DefaultPricePlaces
	}
	if r.RiskRewardCount <= 0 {
		r.RiskRewardCount = constants.DefaultLowerBound
	}
	if r.RewardMultiplier <= 0 {
		r.RewardMultiplier = constants.DefaultRewardMultiplier
	}
	if r.DefaultPercentChange <= 0 {
		r.DefaultPercentChange = constants.DefaultPercentChange
	}
}

// RiskConfig converts the settings into the ladder engine's form.
func (r RiskSettings) RiskConfig() (ladder.RiskConfig, error) {
	kind, err := trade.ParseKind(r.Kind)
	if err != nil {
		return ladder.RiskConfig{}, err
	}
	decimals, err := mathutil.ParsePlaces(r.DecimalPlaces)
	if err != nil {
		return ladder.RiskConfig{}, fmt.Errorf("risk.decimalPlaces: %w", err)
	}
	prices, err := mathutil.ParsePlaces(r.PricePlaces)
	if err != nil {
		return ladder.RiskConfig{}, fmt.Errorf("risk.pricePlaces: %w", err)
	}

	conf := ladder.RiskConfig{
		FeeRate:              r.FeeRate,
		RiskPerTrade:         r.RiskPerTrade,
		RiskRewardCount:      r.RiskRewardCount,
		DecimalPlaces:        decimals,
		PricePlaces:          prices,
		MinimumSize:          r.MinimumSize,
		IncreasePosition:     r.IncreasePosition,
		Kind:                 kind,
		TakeProfit:           r.TakeProfit,
		RewardMultiplier:     r.RewardMultiplier,
		DefaultPercentChange: r.DefaultPercentChange,
	}
	if err := conf.Validate(); err != nil {
		return ladder.RiskConfig{}, err
	}
	return conf, nil
}

// Normalize applies the bound-search defaults. A zero gap is left for the
// optimizer to suggest from the max size.
func (b *BoundConfig) Normalize() {
	if b.BatchSize <= 0 {
		b.BatchSize = constants.DefaultBatchSize
	}
}

// Validate returns an error when the configuration cannot drive a run.
func (c *Configuration) Validate() error {
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return err
	}
	if _, err := c.Risk.RiskConfig(); err != nil {
		return fmt.Errorf("risk: %w", err)
	}
	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if c.Bound.MaxSize < 0 || c.Bound.Gap < 0 {
		return fmt.Errorf("bound: maxSize and gap cannot be negative")
	}
	if c.StopScan.Target < 0 || c.StopScan.Gap < 0 {
		return fmt.Errorf("stopScan: target and gap cannot be negative")
	}
	if c.Margin.Balance < 0 || c.Margin.MaintenanceRate < 0 || c.Margin.MaintenanceRate >= 1 {
		return fmt.Errorf("margin: balance must be non-negative and maintenanceRate within [0, 1)")
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	return validation.RiskWarnings(validation.RiskSummary{
		RiskPerTrade:    c.Risk.RiskPerTrade,
		FeeRate:         c.Risk.FeeRate,
		MinimumSize:     c.Risk.MinimumSize,
		RiskRewardCount: c.Risk.RiskRewardCount,
		LowerBound:      c.Search.LowerBound,
		UpperBound:      c.Search.UpperBound,
		Strategy:        c.Search.Strategy,
		Loss:            c.Search.Loss,
		MaxSize:         c.Bound.MaxSize,
		Support:         c.Zone.Support,
		Resistance:      c.Zone.Resistance,
		CurrentPrice:    c.CurrentPrice,
	})
}
