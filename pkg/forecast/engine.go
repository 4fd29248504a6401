package forecast

import (
	"math"

	"github.com/iwvelando/commerce-analytics/pkg/constants"
	"github.com/iwvelando/commerce-analytics/pkg/datetime"
	"github.com/iwvelando/commerce-analytics/pkg/mathutil"
)

// Forecast fits history with the requested (or auto-selected) method and
// projects horizon daily periods with confidence bands. It never panics:
// empty or single-point histories return a result with an Error message and
// no values.
func Forecast(history []TimePoint, horizon int, opts Options) Result {
	confidence := opts.Confidence
	if !SupportedConfidence(confidence) {
		confidence = constants.DefaultConfidence
	}

	switch {
	case len(history) == 0:
		return emptyResult(MethodNone, confidence, "no historical data provided")
	case len(history) < 2:
		return emptyResult(MethodInsufficientData, confidence, "at least 2 data points are required to forecast")
	}

	y := values(history)
	season, hasSeason := resolveSeasonality(y, opts)
	method := selectMethod(opts.Method, len(y), hasSeason)
	fit := fitMethod(method, y, season, hasSeason)

	result := Result{
		Method:     fit.Method,
		Metrics:    accuracy(y, fit.Fitted),
		Trend:      trendOf(y),
		Fitted:     make([]TimePoint, len(history)),
		Confidence: confidence,
		Values:     []Point{},
	}
	if hasSeason {
		result.Seasonality = season
	}
	for i, p := range history {
		result.Fitted[i] = TimePoint{Date: p.Date, Value: fit.Fitted[i]}
	}

	if horizon <= 0 {
		return result
	}

	predictions := fit.Forecast(horizon)
	dates, err := datetime.NextDates(history[len(history)-1].Date, horizon)
	if err != nil {
		dates = make([]string, horizon)
	}
	z := ZScore(confidence)
	sd := residualStdDev(y, fit.Fitted)

	result.Values = make([]Point, horizon)
	for i, predicted := range predictions {
		margin := z * sd * math.Sqrt(float64(i+1))
		result.Values[i] = Point{
			Date:      dates[i],
			Predicted: predicted,
			Lower:     math.Max(0, predicted-margin),
			Upper:     predicted + margin,
		}
		result.Total += predicted
	}
	return result
}

func emptyResult(method Method, confidence float64, msg string) Result {
	return Result{
		Values:     []Point{},
		Method:     method,
		Trend:      Trend{Direction: TrendFlat},
		Fitted:     []TimePoint{},
		Confidence: confidence,
		Error:      msg,
	}
}

func resolveSeasonality(y []float64, opts Options) (int, bool) {
	switch opts.Seasonality {
	case SeasonalityNone:
		return 0, false
	case SeasonalityFixed:
		if opts.SeasonLength >= 2 {
			return opts.SeasonLength, true
		}
		return 0, false
	default:
		return detectSeasonality(y)
	}
}

// selectMethod resolves MethodAuto by history length. Explicit methods are
// returned unchanged; fitMethod handles their degradation.
func selectMethod(requested Method, n int, hasSeason bool) Method {
	switch requested {
	case MethodLinear, MethodExponential, MethodDoubleExponential, MethodHoltWinters:
		return requested
	}
	switch {
	case n >= constants.HoltWintersMinPoints && hasSeason:
		return MethodHoltWinters
	case n >= constants.DoubleExponentialMinPoints:
		return MethodDoubleExponential
	case n >= constants.SingleExponentialMinPoints:
		return MethodExponential
	default:
		return MethodLinear
	}
}

func fitMethod(method Method, y []float64, season int, hasSeason bool) Fit {
	switch method {
	case MethodHoltWinters:
		if !hasSeason {
			return doubleExponentialFit(y, constants.SmoothingAlpha, constants.SmoothingBeta)
		}
		return holtWintersFit(y, season, constants.SmoothingAlpha, constants.SmoothingBeta, constants.SmoothingGamma)
	case MethodDoubleExponential:
		return doubleExponentialFit(y, constants.SmoothingAlpha, constants.SmoothingBeta)
	case MethodExponential:
		return exponentialFit(y, 0)
	default:
		return linearFit(y)
	}
}

// accuracy compares actual values with the in-sample fit over the last
// max(1, ceil(20%)) points. Points with an actual value of zero are left out
// of MAPE only.
func accuracy(actual, fitted []float64) Metrics {
	n := min(len(actual), len(fitted))
	if n == 0 {
		return Metrics{}
	}
	holdout := max(1, int(math.Ceil(float64(n)*constants.HoldoutFraction)))

	var absSum, sqSum, pctSum float64
	pctCount := 0
	for i := n - holdout; i < n; i++ {
		e := actual[i] - fitted[i]
		absSum += math.Abs(e)
		sqSum += e * e
		if actual[i] != 0 {
			pctSum += math.Abs(e / actual[i])
			pctCount++
		}
	}

	metrics := Metrics{
		MAE:  absSum / float64(holdout),
		RMSE: math.Sqrt(sqSum / float64(holdout)),
	}
	if pctCount > 0 {
		metrics.MAPE = pctSum / float64(pctCount) * constants.PercentageMultiplier
	}
	return metrics
}

func residualStdDev(actual, fitted []float64) float64 {
	n := min(len(actual), len(fitted))
	residuals := make([]float64, n)
	for i := 0; i < n; i++ {
		residuals[i] = actual[i] - fitted[i]
	}
	sd := mathutil.StdDev(residuals)
	if math.IsNaN(sd) || math.IsInf(sd, 0) {
		return 0
	}
	return sd
}

func trendOf(y []float64) Trend {
	reg := linearRegression(y)
	tolerance := constants.TrendFlatRelativeTolerance * math.Abs(mathutil.Mean(y))
	switch {
	case reg.Slope > tolerance:
		return Trend{Direction: TrendUp, Slope: reg.Slope}
	case reg.Slope < -tolerance:
		return Trend{Direction: TrendDown, Slope: reg.Slope}
	default:
		return Trend{Direction: TrendFlat, Slope: reg.Slope}
	}
}
