// Package forecast implements the time-series forecasting engine: smoothing
// and regression fits, seasonality and anomaly detection, confidence bands
// and accuracy metrics. Every function is pure; results are plain records
// suitable for JSON encoding.
package forecast

import (
	"github.com/iwvelando/commerce-analytics/pkg/constants"
)

// TimePoint is one observation of a daily series. Series are expected in
// chronological order and are never re-sorted.
type TimePoint struct {
	Date  string  `json:"date" yaml:"date"`
	Value float64 `json:"value" yaml:"value"`
}

// Method identifies a fitting strategy.
type Method string

// Fitting strategies. MethodNone and MethodInsufficientData are only ever
// reported, never requested.
const (
	MethodAuto              Method = "auto"
	MethodLinear            Method = "linear"
	MethodExponential       Method = "exponential"
	MethodDoubleExponential Method = "double_exponential"
	MethodHoltWinters       Method = "holt_winters"
	MethodNone              Method = "none"
	MethodInsufficientData  Method = "insufficient_data"
)

// SeasonalityMode controls how the season length is obtained.
type SeasonalityMode string

const (
	// SeasonalityAuto runs the autocorrelation detector.
	SeasonalityAuto SeasonalityMode = "auto"
	// SeasonalityFixed uses Options.SeasonLength as given.
	SeasonalityFixed SeasonalityMode = "fixed"
	// SeasonalityNone disables seasonality entirely.
	SeasonalityNone SeasonalityMode = "none"
)

// Options configures a Forecast call. The zero value means auto method,
// 95% confidence and auto seasonality.
type Options struct {
	Method       Method          `json:"method,omitempty"`
	Confidence   float64         `json:"confidence,omitempty"`
	Seasonality  SeasonalityMode `json:"seasonality,omitempty"`
	SeasonLength int             `json:"seasonLength,omitempty"`
}

// Point is one forecast period.
type Point struct {
	Date      string  `json:"date"`
	Predicted float64 `json:"predicted"`
	Lower     float64 `json:"lower"`
	Upper     float64 `json:"upper"`
}

// Metrics are accuracy measures over the holdout tail.
type Metrics struct {
	MAPE float64 `json:"mape"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
}

// TrendDirection is the categorical direction of a series.
type TrendDirection string

const (
	TrendUp   TrendDirection = "up"
	TrendDown TrendDirection = "down"
	TrendFlat TrendDirection = "flat"
)

// Trend describes the linear trend of the history.
type Trend struct {
	Direction TrendDirection `json:"direction"`
	Slope     float64        `json:"slope"`
}

// Result is the output of Forecast.
type Result struct {
	Values      []Point     `json:"values"`
	Method      Method      `json:"method"`
	Metrics     Metrics     `json:"metrics"`
	Seasonality int         `json:"seasonality,omitempty"`
	Trend       Trend       `json:"trend"`
	Fitted      []TimePoint `json:"fitted"`
	Confidence  float64     `json:"confidence"`
	Total       float64     `json:"total"`
	Error       string      `json:"error,omitempty"`
}

// Regression holds an ordinary least squares fit of value against the
// integer time index.
type Regression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R2        float64 `json:"r2"`
}

// Predict evaluates the regression line at time index x.
func (r Regression) Predict(x float64) float64 {
	return r.Intercept + r.Slope*x
}

// Anomaly is a point whose z-score exceeds the detection threshold.
type Anomaly struct {
	Index  int     `json:"index"`
	Date   string  `json:"date"`
	Value  float64 `json:"value"`
	ZScore float64 `json:"zScore"`
}

var zScores = map[float64]float64{
	0.8:  1.28,
	0.9:  1.645,
	0.95: 1.96,
	0.99: 2.576,
}

// ZScore maps a confidence level to its two-sided z-score. Unsupported
// levels use the 95% value.
func ZScore(confidence float64) float64 {
	if z, ok := zScores[confidence]; ok {
		return z
	}
	return constants.DefaultZScore
}

// SupportedConfidence reports whether confidence is in the z-score table.
func SupportedConfidence(confidence float64) bool {
	_, ok := zScores[confidence]
	return ok
}

func values(data []TimePoint) []float64 {
	out := make([]float64, len(data))
	for i, p := range data {
		out[i] = p.Value
	}
	return out
}
