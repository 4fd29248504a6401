// Package constants provides shared constants for the commerce-analytics application.
package constants

// DateLayout is the calendar date format used by input series and by the
// generated forecast dates.
const DateLayout = "2006-01-02"

// Forecasting constants
const (
	// DefaultHorizon is the number of daily periods forecast when none is configured.
	DefaultHorizon = 30

	// DefaultConfidence is the confidence level used when none is configured.
	DefaultConfidence = 0.95

	// DefaultZScore is used for any confidence level outside the lookup table.
	DefaultZScore = 1.96

	// DefaultAnomalyThreshold is the absolute z-score above which a point is anomalous.
	DefaultAnomalyThreshold = 2.0

	// DefaultMovingAverageWindow is the trailing window of the moving average overlay.
	DefaultMovingAverageWindow = 7

	// HoldoutFraction is the tail fraction used for accuracy metrics.
	HoldoutFraction = 0.2

	// SmoothingAlpha, SmoothingBeta and SmoothingGamma are the fixed Holt and
	// Holt-Winters coefficients.
	SmoothingAlpha = 0.2
	SmoothingBeta  = 0.1
	SmoothingGamma = 0.1

	// SeasonalityThreshold is the minimum lag correlation accepted as a season.
	SeasonalityThreshold = 0.5

	// MinSeasonalityLength is the shortest series the seasonality detector inspects.
	MinSeasonalityLength = 30

	// Method selection thresholds for the auto method.
	HoltWintersMinPoints       = 60
	DoubleExponentialMinPoints = 14
	SingleExponentialMinPoints = 7

	// AutoAlphaMinHoldout is the minimum tail used to score candidate alphas.
	AutoAlphaMinHoldout = 5

	// TrendFlatRelativeTolerance is the slope, relative to the series mean,
	// below which a trend is reported as flat.
	TrendFlatRelativeTolerance = 0.001
)

// Numeric constants
const (
	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyDecimalPlaces is the precision for currency rounding
	CurrencyDecimalPlaces = 2

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Business economics used by the budget optimizer. These are policy
// assumptions, not values derived from data.
const (
	// COGSRate is the cost of goods sold as a fraction of revenue.
	COGSRate = 0.40

	// PlatformFeeRate is the commerce platform fee as a fraction of revenue.
	PlatformFeeRate = 0.08

	// DefaultROAS and DefaultCPA are used when no channel metrics are available.
	DefaultROAS = 2.5
	DefaultCPA  = 45.0

	// TikTokROAS and TikTokCPA are placeholder metrics for TikTok, which has
	// no historical data source.
	TikTokROAS = 2.0
	TikTokCPA  = 40.0

	// OptimizerStep is the amount shifted between two channels per move.
	OptimizerStep = 500.0

	// OptimizerMaxRounds is the upper bound of local search rounds.
	OptimizerMaxRounds = 100

	// OptimizerRoundCap stops the local search after this many rounds even
	// when the last round still improved profit.
	OptimizerRoundCap = 51
)

// Channel names
const (
	ChannelMeta   = "meta"
	ChannelGoogle = "google"
	ChannelTikTok = "tiktok"
)

// Dataset metric names. Channel metrics are written as "<metric>:<channel>".
const (
	MetricRevenue   = "revenue"
	MetricOrders    = "orders"
	MetricSpend     = "spend"
	MetricROAS      = "roas"
	MetricSeparator = ":"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Dataset defaults
const (
	// DatasetSourceMock generates synthetic data instead of reading a file.
	DatasetSourceMock = "mock"

	// DatasetSourceFile reads a JSON or YAML dataset file.
	DatasetSourceFile = "file"

	DefaultMockSeed  = 42
	DefaultMockDays  = 90
	DefaultMockStart = "2025-01-01"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (1 MB)
	DefaultMaxBodySizeBytes int64 = 1024 * 1024

	// DefaultRateLimit is the default sustained request rate per second.
	DefaultRateLimit = 20.0

	// DefaultRateBurst is the default request burst size.
	DefaultRateBurst = 40
)
