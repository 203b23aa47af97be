// Package constants provides shared constants for the risk-ladder application.
package constants

// Numeric precision constants
const (
	// AmountPlaces is the precision used for monetary amounts (risk, fee, pnl).
	AmountPlaces = 3

	// DefaultDecimalPlaces is the default quantity precision ("%.3f").
	DefaultDecimalPlaces = "%.3f"

	// DefaultPricePlaces is the default price precision ("%.1f").
	DefaultPricePlaces = "%.1f"

	// FloatTolerance is the tolerance for float comparisons in rounding checks.
	FloatTolerance = 1e-9
)

// Ladder defaults
const (
	// DefaultPercentChange is used when a ladder is built without a stop price.
	DefaultPercentChange = 0.02

	// DefaultRewardMultiplier scales the entry loss when computing close targets.
	DefaultRewardMultiplier = 1.0

	// MaxNarrowSteps bounds the geometric walk in zone narrowing.
	MaxNarrowSteps = 10000

	// MinimumWalkPrice stops a downward zone walk once prices fall below it.
	MinimumWalkPrice = 1.0

	// DefaultZoneDivisions is the number of sub-brackets a narrowed zone is split into.
	DefaultZoneDivisions = 5

	// MaxMarginZones caps the brackets walked between a price and a zone edge.
	MaxMarginZones = 20
)

// Search defaults
const (
	// DefaultLowerBound is the first risk-reward count evaluated.
	DefaultLowerBound = 30

	// DefaultUpperBound is the exclusive upper risk-reward count.
	DefaultUpperBound = 199

	// DefaultBatchSize is the number of risk values tried per bound-search batch.
	DefaultBatchSize = 5

	// DefaultMaxBatches caps the number of bound-search batches.
	DefaultMaxBatches = 1000

	// SmallSizeThreshold selects the fine bound-search gap below this max size.
	SmallSizeThreshold = 0.15

	// SmallSizeGap is the bound-search gap for small max sizes.
	SmallSizeGap = 0.1

	// DefaultGap is the bound-search gap otherwise.
	DefaultGap = 1.0

	// MaxStopPrices caps the number of stop prices a stop scan evaluates.
	MaxStopPrices = 1000
)

// Strategy constants
const (
	// StrategyQuantity requires the largest rung to be the deepest one.
	StrategyQuantity = "quantity"

	// StrategyEntry accepts every non-empty ladder.
	StrategyEntry = "entry"
)

// Dispatch modes
const (
	ModeSequential = "sequential"
	ModePool       = "pool"
	ModeChunked    = "chunked"
)

// Run modes for the CLI
const (
	RunModeLadder   = "ladder"
	RunModeOptimize = "optimize"
	RunModeBound    = "bound"
	RunModeStop     = "stop"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatYAML is the YAML output format
	OutputFormatYAML = "yaml"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultEnvFile is loaded into the environment when present.
	DefaultEnvFile = ".env"
)

// Environment variables
const (
	// EnvPrefix prefixes configuration overrides read from the environment.
	EnvPrefix = "RISK_LADDER"

	EnvConfigPath       = "RISK_LADDER_CONFIG"
	EnvServerConfigPath = "RISK_LADDER_SERVER_CONFIG"
	EnvMode             = "RISK_LADDER_MODE"
	EnvLogLevel         = "RISK_LADDER_LOG_LEVEL"
	EnvOutputFormat     = "RISK_LADDER_OUTPUT_FORMAT"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultRequestTimeoutSeconds bounds a single optimization request.
	DefaultRequestTimeoutSeconds = 30
)
