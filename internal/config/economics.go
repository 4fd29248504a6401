package config

import (
	"strings"

	"github.com/iwvelando/commerce-analytics/pkg/budget"
	"github.com/iwvelando/commerce-analytics/pkg/constants"
	"github.com/iwvelando/commerce-analytics/pkg/forecast"
)

// EconomicsConfig overrides the business assumptions of the budget
// projections. Rates are pointers so an explicit zero is kept.
type EconomicsConfig struct {
	COGSRate        *float64                 `yaml:"cogsRate,omitempty" mapstructure:"cogsRate"`
	PlatformFeeRate *float64                 `yaml:"platformFeeRate,omitempty" mapstructure:"platformFeeRate"`
	DefaultROAS     float64                  `yaml:"defaultROAS,omitempty" mapstructure:"defaultROAS"`
	DefaultCPA      float64                  `yaml:"defaultCPA,omitempty" mapstructure:"defaultCPA"`
	FallbackChannel string                   `yaml:"fallbackChannel,omitempty" mapstructure:"fallbackChannel"`
	Placeholders    []ChannelMetricsOverride `yaml:"placeholders,omitempty" mapstructure:"placeholders"`
}

// ChannelMetricsOverride fixes the metrics of a channel without history.
type ChannelMetricsOverride struct {
	Channel string  `yaml:"channel" mapstructure:"channel"`
	ROAS    float64 `yaml:"roas" mapstructure:"roas"`
	CPA     float64 `yaml:"cpa" mapstructure:"cpa"`
}

// OptimizerConfig controls the allocation search.
type OptimizerConfig struct {
	Channels  []string `yaml:"channels,omitempty" mapstructure:"channels"`
	Step      float64  `yaml:"step,omitempty" mapstructure:"step"`
	MaxRounds int      `yaml:"maxRounds,omitempty" mapstructure:"maxRounds"`
	RoundCap  int      `yaml:"roundCap,omitempty" mapstructure:"roundCap"`
}

// PlanConfig is a total budget to allocate across channels.
type PlanConfig struct {
	Name        string         `yaml:"name" mapstructure:"name"`
	Active      bool           `yaml:"active" mapstructure:"active"`
	TotalBudget float64        `yaml:"totalBudget" mapstructure:"totalBudget"`
	Bounds      []ChannelBound `yaml:"bounds,omitempty" mapstructure:"bounds"`
}

// ChannelBound limits one channel of a plan.
type ChannelBound struct {
	Channel string   `yaml:"channel" mapstructure:"channel"`
	Min     *float64 `yaml:"min,omitempty" mapstructure:"min"`
	Max     *float64 `yaml:"max,omitempty" mapstructure:"max"`
}

// Key is the lower-cased channel name used in allocations.
func (b ChannelBound) Key() string {
	return strings.ToLower(strings.TrimSpace(b.Channel))
}

// Assumptions resolves the economics and optimizer sections into budget
// assumptions. Unset values keep the package defaults.
func (c *Configuration) Assumptions() budget.Assumptions {
	a := budget.DefaultAssumptions()
	e := c.Economics
	if e.COGSRate != nil {
		a.COGSRate = *e.COGSRate
	}
	if e.PlatformFeeRate != nil {
		a.PlatformFeeRate = *e.PlatformFeeRate
	}
	if e.DefaultROAS > 0 {
		a.Default.ROAS = e.DefaultROAS
	}
	if e.DefaultCPA > 0 {
		a.Default.CPA = e.DefaultCPA
	}
	if e.FallbackChannel != "" {
		a.FallbackChannel = strings.ToLower(e.FallbackChannel)
	}
	if len(e.Placeholders) > 0 {
		a.Placeholders = make(map[string]budget.ChannelMetrics, len(e.Placeholders))
		for _, p := range e.Placeholders {
			a.Placeholders[strings.ToLower(p.Channel)] = budget.ChannelMetrics{ROAS: p.ROAS, CPA: p.CPA}
		}
	}

	o := c.Optimizer
	if len(o.Channels) > 0 {
		a.Channels = make([]string, len(o.Channels))
		for i, ch := range o.Channels {
			a.Channels[i] = strings.ToLower(ch)
		}
	}
	if o.Step > 0 {
		a.Step = o.Step
	}
	if o.MaxRounds > 0 {
		a.MaxRounds = o.MaxRounds
	}
	if o.RoundCap > 0 {
		a.RoundCap = o.RoundCap
	}
	return a
}

// Constraints converts the bounds of a plan.
func (p PlanConfig) Constraints() budget.Constraints {
	constraints := make(budget.Constraints, len(p.Bounds))
	for _, b := range p.Bounds {
		constraints[b.Key()] = budget.Bounds{Min: b.Min, Max: b.Max}
	}
	return constraints
}

// ForecastOptions resolves the forecast options and horizon of a series,
// falling back to the ForecastDefaults. Invalid names resolve to auto;
// ValidateConfiguration reports them.
func (c *Configuration) ForecastOptions(s SeriesConfig) (forecast.Options, int) {
	d := c.Forecast

	horizon := s.Horizon
	if horizon == 0 {
		horizon = d.Horizon
	}
	if horizon == 0 {
		horizon = constants.DefaultHorizon
	}

	methodName := s.Method
	if methodName == "" {
		methodName = d.Method
	}
	method, _ := forecast.ParseMethod(methodName)

	confidence := s.Confidence
	if confidence == 0 {
		confidence = d.Confidence
	}

	seasonalityName := s.Seasonality
	if seasonalityName == "" {
		seasonalityName = d.Seasonality
	}
	mode, length, _ := forecast.ParseSeasonality(seasonalityName)

	return forecast.Options{
		Method:       method,
		Confidence:   confidence,
		Seasonality:  mode,
		SeasonLength: length,
	}, horizon
}

// AnomalyThreshold returns the configured z-score threshold.
func (c *Configuration) AnomalyThreshold() float64 {
	if c.Forecast.AnomalyThreshold > 0 {
		return c.Forecast.AnomalyThreshold
	}
	return constants.DefaultAnomalyThreshold
}

// MovingAverageWindow returns the configured moving average window.
func (c *Configuration) MovingAverageWindow() int {
	if c.Forecast.MovingAverageWindow > 0 {
		return c.Forecast.MovingAverageWindow
	}
	return constants.DefaultMovingAverageWindow
}
