package budget

import (
	"math"
)

// ModelType names the shape of a response curve.
type ModelType string

const (
	ModelLinear      ModelType = "linear"
	ModelLogarithmic ModelType = "log"
)

// ReturnsModel relates spend to revenue. A linear model is
// revenue = slope*spend + intercept; a log model is
// revenue = slope*ln(spend) + intercept.
type ReturnsModel struct {
	Type      ModelType `json:"type"`
	Slope     float64   `json:"slope"`
	Intercept float64   `json:"intercept"`
	R2        float64   `json:"r2"`
}

// Predict evaluates the model. A log model yields 0 for non-positive spend.
func (m ReturnsModel) Predict(spend float64) float64 {
	if m.Type == ModelLogarithmic {
		if spend <= 0 {
			return 0
		}
		return m.Slope*math.Log(spend) + m.Intercept
	}
	return m.Slope*spend + m.Intercept
}

// DiminishingReturnsModel fits a linear and a log model to paired spend and
// revenue observations and returns the one with the higher R². Ties keep
// the linear model. Fewer than two pairs yield a unit linear model with R²
// of 0. The log fit ignores non-positive spend.
func DiminishingReturnsModel(spend, revenue []float64) ReturnsModel {
	n := min(len(spend), len(revenue))
	if n < 2 {
		return ReturnsModel{Type: ModelLinear, Slope: 1}
	}

	slope, intercept, r2 := leastSquares(spend[:n], revenue[:n])
	best := ReturnsModel{Type: ModelLinear, Slope: slope, Intercept: intercept, R2: r2}

	var logX, logY []float64
	for i := 0; i < n; i++ {
		if spend[i] > 0 {
			logX = append(logX, math.Log(spend[i]))
			logY = append(logY, revenue[i])
		}
	}
	if len(logX) >= 2 {
		slope, intercept, r2 := leastSquares(logX, logY)
		if r2 > best.R2 {
			best = ReturnsModel{Type: ModelLogarithmic, Slope: slope, Intercept: intercept, R2: r2}
		}
	}
	return best
}

func leastSquares(x, y []float64) (slope, intercept, r2 float64) {
	n := float64(len(x))
	var sumX, sumY, sumXY, sumXX float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumXX += x[i] * x[i]
	}
	mean := sumY / n
	denominator := n*sumXX - sumX*sumX
	if denominator == 0 {
		return 0, mean, 0
	}
	slope = (n*sumXY - sumX*sumY) / denominator
	intercept = (sumY - slope*sumX) / n

	var ssTot, ssRes float64
	for i := range x {
		d := y[i] - mean
		ssTot += d * d
		e := y[i] - (slope*x[i] + intercept)
		ssRes += e * e
	}
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}
	return slope, intercept, r2
}
