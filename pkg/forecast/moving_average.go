package forecast

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
)

// MovingAverage returns the trailing simple moving average of data. Each
// output point carries the date of the last observation in its window, so
// the result has len(data)-window+1 points. Windows below one are treated
// as one.
func MovingAverage(data []TimePoint, window int) []TimePoint {
	if window < 1 {
		window = 1
	}
	if len(data) < window {
		return []TimePoint{}
	}

	sma := trend.NewSmaWithPeriod[float64](window)
	averages := helper.ChanToSlice(sma.Compute(helper.SliceToChan(values(data))))

	offset := sma.IdlePeriod()
	out := make([]TimePoint, 0, len(averages))
	for i, avg := range averages {
		if i+offset >= len(data) {
			break
		}
		out = append(out, TimePoint{Date: data[i+offset].Date, Value: avg})
	}
	return out
}
