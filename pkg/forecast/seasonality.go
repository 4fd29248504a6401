package forecast

import (
	"github.com/iwvelando/commerce-analytics/pkg/constants"
	"github.com/iwvelando/commerce-analytics/pkg/mathutil"
)

var candidateLags = []int{7, 14, 30}

// DetectSeasonality checks the weekly, fortnightly and monthly lags and
// returns the one with the highest lag correlation when it exceeds 0.5.
//
// The correlation is mean(v[i]*v[i-lag]) divided by the series variance,
// without centring the products on the mean. It is a heuristic rather than
// a textbook autocorrelation and is kept as-is so period selection stays
// stable.
func DetectSeasonality(data []TimePoint) (int, bool) {
	return detectSeasonality(values(data))
}

func detectSeasonality(y []float64) (int, bool) {
	n := len(y)
	if n < constants.MinSeasonalityLength {
		return 0, false
	}
	variance := mathutil.Variance(y)
	if variance == 0 {
		return 0, false
	}

	bestLag := 0
	bestCorrelation := 0.0
	for _, lag := range candidateLags {
		if lag >= n {
			continue
		}
		total := 0.0
		for i := lag; i < n; i++ {
			total += y[i] * y[i-lag]
		}
		correlation := total / float64(n-lag) / variance
		if bestLag == 0 || correlation > bestCorrelation {
			bestLag = lag
			bestCorrelation = correlation
		}
	}

	if bestLag == 0 || bestCorrelation <= constants.SeasonalityThreshold {
		return 0, false
	}
	return bestLag, true
}
