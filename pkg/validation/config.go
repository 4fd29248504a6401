package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/iwvelando/commerce-analytics/pkg/constants"
	"github.com/iwvelando/commerce-analytics/pkg/forecast"
)

// SeriesConfig is the part of a configured forecast series that can be
// checked without data.
type SeriesConfig struct {
	Name        string
	Active      bool
	Metric      string
	Method      string
	Seasonality string
	Confidence  float64
	Horizon     int
}

// BoundConfig limits a channel inside a budget plan.
type BoundConfig struct {
	Channel string
	Min     *float64
	Max     *float64
}

// PlanConfig is a configured budget plan.
type PlanConfig struct {
	Name        string
	Active      bool
	TotalBudget float64
	Bounds      []BoundConfig
}

// ConfigValidator checks every active series and plan. Channels is the
// optimiser's channel set; bounds on other channels are reported.
type ConfigValidator struct {
	Series   []SeriesConfig
	Plans    []PlanConfig
	Channels []string
}

// ValidateMetric checks a dataset metric name: revenue, orders, or
// spend/revenue/roas followed by ":<channel>".
func ValidateMetric(metric string) error {
	name, channel, hasChannel := strings.Cut(metric, constants.MetricSeparator)
	switch name {
	case constants.MetricRevenue:
		if hasChannel && channel == "" {
			return fmt.Errorf("metric %q is missing a channel name", metric)
		}
		return nil
	case constants.MetricOrders:
		if hasChannel {
			return fmt.Errorf("metric %q does not take a channel", metric)
		}
		return nil
	case constants.MetricSpend, constants.MetricROAS:
		if !hasChannel || channel == "" {
			return fmt.Errorf("metric %q requires a channel, e.g. %s%smeta", metric, name, constants.MetricSeparator)
		}
		return nil
	default:
		return fmt.Errorf("unknown metric %q", metric)
	}
}

// ValidateSeries returns warnings for a single forecast series.
func ValidateSeries(s SeriesConfig) []string {
	var warnings []string

	if err := ValidateMetric(s.Metric); err != nil {
		warnings = append(warnings, fmt.Sprintf("Series '%s': %v", s.Name, err))
	}
	if _, err := forecast.ParseMethod(s.Method); err != nil {
		warnings = append(warnings, fmt.Sprintf("Series '%s': %v - auto method will be used", s.Name, err))
	}
	if _, _, err := forecast.ParseSeasonality(s.Seasonality); err != nil {
		warnings = append(warnings, fmt.Sprintf("Series '%s': %v - seasonality will be detected", s.Name, err))
	}
	if s.Confidence != 0 && !forecast.SupportedConfidence(s.Confidence) {
		warnings = append(warnings, fmt.Sprintf("Series '%s': confidence %.2f is not one of 0.8, 0.9, 0.95, 0.99 - 0.95 will be used",
			s.Name, s.Confidence))
	}
	if s.Horizon < 0 {
		warnings = append(warnings, fmt.Sprintf("Series '%s': negative horizon %d produces no forecast", s.Name, s.Horizon))
	}

	return warnings
}

// ValidatePlan returns warnings for a single budget plan.
func ValidatePlan(p PlanConfig, channels []string) []string {
	var warnings []string

	if p.TotalBudget <= 0 {
		warnings = append(warnings, fmt.Sprintf("Plan '%s': total budget %.2f is not positive - nothing will be allocated",
			p.Name, p.TotalBudget))
	}

	minimums := 0.0
	for _, b := range p.Bounds {
		if len(channels) > 0 && !slices.Contains(channels, b.Channel) {
			warnings = append(warnings, fmt.Sprintf("Plan '%s': bound on unknown channel '%s' is ignored", p.Name, b.Channel))
			continue
		}
		if b.Min != nil && b.Max != nil && *b.Min > *b.Max {
			warnings = append(warnings, fmt.Sprintf("Plan '%s': channel '%s' minimum %.2f exceeds maximum %.2f",
				p.Name, b.Channel, *b.Min, *b.Max))
		}
		if b.Min != nil {
			if *b.Min > p.TotalBudget {
				warnings = append(warnings, fmt.Sprintf("Plan '%s': channel '%s' minimum %.2f exceeds the total budget %.2f",
					p.Name, b.Channel, *b.Min, p.TotalBudget))
			}
			minimums += max(*b.Min, 0)
		}
	}
	if p.TotalBudget > 0 && minimums > p.TotalBudget {
		warnings = append(warnings, fmt.Sprintf("Plan '%s': channel minimums %.2f exceed the total budget %.2f",
			p.Name, minimums, p.TotalBudget))
	}

	return warnings
}

// ValidateAll validates every active series and plan and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	activeSeries := 0
	for _, s := range cv.Series {
		if !s.Active {
			continue
		}
		activeSeries++
		warnings = append(warnings, ValidateSeries(s)...)
	}
	if len(cv.Series) > 0 && activeSeries == 0 {
		warnings = append(warnings, "No active series - nothing will be forecast")
	}

	for _, p := range cv.Plans {
		if !p.Active {
			continue
		}
		warnings = append(warnings, ValidatePlan(p, cv.Channels)...)
	}

	return warnings
}

// ValidateEconomics returns warnings for the COGS and platform fee rates.
// Nil rates use their defaults and are not checked.
func ValidateEconomics(cogsRate, platformFeeRate *float64) []string {
	var warnings []string
	total := 0.0
	for _, r := range []struct {
		name string
		rate *float64
	}{{"COGS rate", cogsRate}, {"platform fee rate", platformFeeRate}} {
		if r.rate == nil {
			continue
		}
		if *r.rate < 0 || *r.rate > 1 {
			warnings = append(warnings, fmt.Sprintf("Economics: %s %.2f is outside [0, 1]", r.name, *r.rate))
		}
		total += *r.rate
	}
	if total >= 1 {
		warnings = append(warnings, fmt.Sprintf("Economics: COGS and fees take %.0f%% of revenue - every sale loses money before ad spend",
			total*constants.PercentageMultiplier))
	}
	return warnings
}
