package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/iwvelando/commerce-analytics/pkg/budget"
	"github.com/iwvelando/commerce-analytics/pkg/constants"
	"github.com/iwvelando/commerce-analytics/pkg/datetime"
	"github.com/iwvelando/commerce-analytics/pkg/forecast"
	"github.com/iwvelando/commerce-analytics/pkg/mathutil"
)

// MockOptions configures Generate.
type MockOptions struct {
	Seed  uint64 `json:"seed"`
	Days  int    `json:"days"`
	Start string `json:"start"`
}

// DefaultMockOptions returns 90 days from 2025-01-01 with seed 42.
func DefaultMockOptions() MockOptions {
	return MockOptions{
		Seed:  constants.DefaultMockSeed,
		Days:  constants.DefaultMockDays,
		Start: constants.DefaultMockStart,
	}
}

// weekdayFactor scales daily revenue, Sunday first.
var weekdayFactor = [7]float64{0.90, 0.94, 0.97, 1.00, 1.04, 1.12, 1.03}

type channelProfile struct {
	baseSpend   float64
	spendGrowth float64
	spendNoise  float64
	roas        float64
	roasNoise   float64
}

var mockChannels = map[string]channelProfile{
	constants.ChannelMeta:   {baseSpend: 900, spendGrowth: 4, spendNoise: 60, roas: 3.2, roasNoise: 0.25},
	constants.ChannelGoogle: {baseSpend: 650, spendGrowth: 3, spendNoise: 40, roas: 2.6, roasNoise: 0.2},
}

// Generate builds a synthetic store: growing revenue with a weekly pattern
// and noise, orders at a noisy average order value, and meta and google ad
// history. The same options always produce the same dataset.
func Generate(opts MockOptions) (*Dataset, error) {
	defaults := DefaultMockOptions()
	if opts.Days <= 0 {
		opts.Days = defaults.Days
	}
	if opts.Start == "" {
		opts.Start = defaults.Start
	}

	dates, err := datetime.DateRange(opts.Start, opts.Days)
	if err != nil {
		return nil, fmt.Errorf("invalid mock start date %q: %w", opts.Start, err)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	d := &Dataset{
		Revenue:  make([]forecast.TimePoint, opts.Days),
		Orders:   make([]forecast.TimePoint, opts.Days),
		Channels: budget.History{},
	}

	for i, date := range dates {
		weekday := datetime.MustParseDate(date).Weekday()
		aov := 72 + rng.NormFloat64()*3

		revenue := (4000 + 18*float64(i)) * weekdayFactor[weekday]
		revenue = math.Max(0, revenue+rng.NormFloat64()*150)
		d.Revenue[i] = forecast.TimePoint{Date: date, Value: mathutil.Round(revenue)}
		d.Orders[i] = forecast.TimePoint{Date: date, Value: math.Round(revenue / aov)}

		for _, ch := range []string{constants.ChannelGoogle, constants.ChannelMeta} {
			d.Channels[ch] = append(d.Channels[ch], mockRecord(rng, mockChannels[ch], date, i, weekday, aov))
		}
	}
	return d, nil
}

func mockRecord(rng *rand.Rand, p channelProfile, date string, day int, weekday time.Weekday, aov float64) budget.ChannelRecord {
	spend := math.Max(0, p.baseSpend+p.spendGrowth*float64(day)+rng.NormFloat64()*p.spendNoise)
	roas := math.Max(0, p.roas*weekdayFactor[weekday]+rng.NormFloat64()*p.roasNoise)
	revenue := spend * roas
	return budget.ChannelRecord{
		Date:      date,
		Spend:     mathutil.Round(spend),
		Revenue:   mathutil.Round(revenue),
		Purchases: math.Round(revenue / aov),
	}
}
