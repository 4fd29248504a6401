package forecast

import (
	"math"

	"github.com/iwvelando/commerce-analytics/pkg/constants"
	"github.com/iwvelando/commerce-analytics/pkg/mathutil"
)

// DetectAnomalies flags every point whose z-score over the full series has
// an absolute value above threshold. A non-positive threshold uses 2. A
// series without variance has no anomalies.
func DetectAnomalies(data []TimePoint, threshold float64) []Anomaly {
	anomalies := []Anomaly{}
	if len(data) == 0 {
		return anomalies
	}
	if threshold <= 0 {
		threshold = constants.DefaultAnomalyThreshold
	}

	y := values(data)
	mean := mathutil.Mean(y)
	stdDev := mathutil.StdDev(y)
	if stdDev == 0 {
		return anomalies
	}

	for i, v := range y {
		z := (v - mean) / stdDev
		if math.Abs(z) > threshold {
			anomalies = append(anomalies, Anomaly{
				Index:  i,
				Date:   data[i].Date,
				Value:  v,
				ZScore: z,
			})
		}
	}
	return anomalies
}
