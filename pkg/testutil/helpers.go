// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"

	"github.com/iwvelando/commerce-analytics/pkg/datetime"
	"github.com/iwvelando/commerce-analytics/pkg/forecast"
)

// DefaultStart is the first date of generated test series.
const DefaultStart = "2025-01-01"

// Series builds consecutive daily points starting at start.
func Series(start string, values ...float64) []forecast.TimePoint {
	dates, err := datetime.DateRange(start, len(values))
	if err != nil {
		panic(err)
	}
	points := make([]forecast.TimePoint, len(values))
	for i, v := range values {
		points[i] = forecast.TimePoint{Date: dates[i], Value: v}
	}
	return points
}

// LinearSeries builds intercept + slope*i for i in [0, n).
func LinearSeries(n int, intercept, slope float64) []forecast.TimePoint {
	values := make([]float64, n)
	for i := range values {
		values[i] = intercept + slope*float64(i)
	}
	return Series(DefaultStart, values...)
}

// ConstantSeries builds n points of the same value.
func ConstantSeries(n int, value float64) []forecast.TimePoint {
	return LinearSeries(n, value, 0)
}

// SeasonalSeries builds a flat base level modulated by a sine wave of the
// given period.
func SeasonalSeries(n, period int, base, amplitude float64) []forecast.TimePoint {
	values := make([]float64, n)
	for i := range values {
		values[i] = base + amplitude*math.Sin(2*math.Pi*float64(i)/float64(period))
	}
	return Series(DefaultStart, values...)
}
