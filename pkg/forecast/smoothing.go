package forecast

import (
	"math"

	"github.com/iwvelando/commerce-analytics/pkg/constants"
	"github.com/iwvelando/commerce-analytics/pkg/mathutil"
)

var alphaGrid = []float64{0.1, 0.2, 0.3, 0.4, 0.5}

// Fit is an in-sample reconstruction of a series together with the final
// model state needed to extrapolate it.
type Fit struct {
	Method       Method      `json:"method"`
	Fitted       []float64   `json:"fitted"`
	Alpha        float64     `json:"alpha,omitempty"`
	Beta         float64     `json:"beta,omitempty"`
	Gamma        float64     `json:"gamma,omitempty"`
	Level        float64     `json:"level"`
	Trend        float64     `json:"trend"`
	Seasonal     []float64   `json:"seasonal,omitempty"`
	SeasonLength int         `json:"seasonLength,omitempty"`
	Regression   *Regression `json:"regression,omitempty"`
}

// Forecast extrapolates horizon periods past the end of the fitted series.
// Predictions are floored at zero.
func (f Fit) Forecast(horizon int) []float64 {
	if horizon <= 0 {
		return []float64{}
	}
	out := make([]float64, horizon)
	n := len(f.Fitted)
	switch f.Method {
	case MethodLinear:
		reg := Regression{}
		if f.Regression != nil {
			reg = *f.Regression
		}
		for i := range out {
			out[i] = math.Max(0, reg.Predict(float64(n+i)))
		}
	case MethodDoubleExponential:
		level := f.Level
		for i := range out {
			level += f.Trend
			out[i] = math.Max(0, level)
		}
	case MethodHoltWinters:
		level := f.Level
		for i := range out {
			level += f.Trend
			factor := 1.0
			if f.SeasonLength > 0 && len(f.Seasonal) == f.SeasonLength {
				factor = f.Seasonal[(n+i)%f.SeasonLength]
			}
			out[i] = math.Max(0, level*factor)
		}
	default:
		for i := range out {
			out[i] = math.Max(0, f.Level)
		}
	}
	return out
}

// ExponentialSmoothing applies single exponential smoothing. An alpha
// outside (0, 1] selects the alpha from the grid {0.1 .. 0.5} with the
// lowest one-step-ahead error over the tail of the series.
func ExponentialSmoothing(data []TimePoint, alpha float64) Fit {
	return exponentialFit(values(data), alpha)
}

// OptimizeAlpha returns the grid alpha used by ExponentialSmoothing's
// auto mode.
func OptimizeAlpha(data []TimePoint) float64 {
	return optimizeAlpha(values(data))
}

func exponentialFit(y []float64, alpha float64) Fit {
	if alpha <= 0 || alpha > 1 {
		alpha = optimizeAlpha(y)
	}
	smoothed := smooth(y, alpha)
	fit := Fit{Method: MethodExponential, Fitted: smoothed, Alpha: alpha}
	if len(smoothed) > 0 {
		fit.Level = smoothed[len(smoothed)-1]
	}
	return fit
}

func smooth(y []float64, alpha float64) []float64 {
	s := make([]float64, len(y))
	if len(y) == 0 {
		return s
	}
	s[0] = y[0]
	for i := 1; i < len(y); i++ {
		s[i] = alpha*y[i] + (1-alpha)*s[i-1]
	}
	return s
}

func optimizeAlpha(y []float64) float64 {
	n := len(y)
	if n < 2 {
		return alphaGrid[0]
	}
	holdout := max(constants.AutoAlphaMinHoldout, int(float64(n)*constants.HoldoutFraction))
	holdout = min(holdout, n-1)

	best := alphaGrid[0]
	bestMSE := math.Inf(1)
	for _, alpha := range alphaGrid {
		s := smooth(y, alpha)
		mse := 0.0
		for i := n - holdout; i < n; i++ {
			e := y[i] - s[i-1]
			mse += e * e
		}
		mse /= float64(holdout)
		if mse < bestMSE {
			bestMSE = mse
			best = alpha
		}
	}
	return best
}

// DoubleExponentialSmoothing applies Holt's linear trend method. Non-positive
// coefficients fall back to alpha 0.2 and beta 0.1.
func DoubleExponentialSmoothing(data []TimePoint, alpha, beta float64) Fit {
	return doubleExponentialFit(values(data), alpha, beta)
}

func doubleExponentialFit(y []float64, alpha, beta float64) Fit {
	if alpha <= 0 || alpha > 1 {
		alpha = constants.SmoothingAlpha
	}
	if beta <= 0 || beta > 1 {
		beta = constants.SmoothingBeta
	}
	fit := Fit{Method: MethodDoubleExponential, Fitted: make([]float64, len(y)), Alpha: alpha, Beta: beta}
	if len(y) == 0 {
		return fit
	}

	level := y[0]
	trend := 0.0
	if len(y) > 1 {
		trend = y[1] - y[0]
	}
	fit.Fitted[0] = level
	for i := 1; i < len(y); i++ {
		prevLevel := level
		level = alpha*y[i] + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
		fit.Fitted[i] = level
	}
	fit.Level = level
	fit.Trend = trend
	return fit
}

// HoltWinters applies multiplicative triple exponential smoothing with the
// given season length. Non-positive coefficients fall back to 0.2/0.1/0.1.
// A series shorter than two seasons is fitted with double exponential
// smoothing instead, which the returned Method reports.
func HoltWinters(data []TimePoint, seasonLength int, alpha, beta, gamma float64) Fit {
	return holtWintersFit(values(data), seasonLength, alpha, beta, gamma)
}

func holtWintersFit(y []float64, m int, alpha, beta, gamma float64) Fit {
	if alpha <= 0 || alpha > 1 {
		alpha = constants.SmoothingAlpha
	}
	if beta <= 0 || beta > 1 {
		beta = constants.SmoothingBeta
	}
	if gamma <= 0 || gamma > 1 {
		gamma = constants.SmoothingGamma
	}
	n := len(y)
	if m < 2 || n < 2*m {
		return doubleExponentialFit(y, alpha, beta)
	}

	firstMean := mathutil.Mean(y[:m])
	secondMean := mathutil.Mean(y[m : 2*m])
	level := firstMean
	trend := (secondMean - firstMean) / float64(m)

	seasonal := make([]float64, m)
	fitted := make([]float64, n)
	for i := 0; i < m; i++ {
		seasonal[i] = 1
		if level != 0 {
			seasonal[i] = y[i] / level
		}
		fitted[i] = level * seasonal[i]
	}

	for i := m; i < n; i++ {
		idx := i % m
		s := seasonal[idx]
		prevLevel := level
		deseasonalized := y[i]
		if s != 0 {
			deseasonalized = y[i] / s
		}
		level = alpha*deseasonalized + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
		if level != 0 {
			seasonal[idx] = gamma*(y[i]/level) + (1-gamma)*s
		}
		fitted[i] = level * seasonal[idx]
	}

	return Fit{
		Method:       MethodHoltWinters,
		Fitted:       fitted,
		Alpha:        alpha,
		Beta:         beta,
		Gamma:        gamma,
		Level:        level,
		Trend:        trend,
		Seasonal:     seasonal,
		SeasonLength: m,
	}
}
