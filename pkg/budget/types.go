// Package budget projects ad spend scenarios across marketing channels and
// searches for profit-maximising allocations. All functions are pure: they
// never log, never mutate their inputs and return plain records suitable for
// JSON encoding.
package budget

import (
	"sort"
)

// ChannelRecord is one period of spend and outcome for a channel.
// Purchases takes precedence over Conversions when both are set.
type ChannelRecord struct {
	Date        string  `json:"date,omitempty" yaml:"date,omitempty"`
	Spend       float64 `json:"spend" yaml:"spend"`
	Revenue     float64 `json:"revenue" yaml:"revenue"`
	Purchases   float64 `json:"purchases,omitempty" yaml:"purchases,omitempty"`
	Conversions float64 `json:"conversions,omitempty" yaml:"conversions,omitempty"`
}

func (r ChannelRecord) conversions() float64 {
	if r.Purchases > 0 {
		return r.Purchases
	}
	return r.Conversions
}

// History maps a channel name to its records.
type History map[string][]ChannelRecord

// Allocation maps a channel name to a spend amount.
type Allocation map[string]float64

// Total sums the allocation in channel order.
func (a Allocation) Total() float64 {
	total := 0.0
	for _, ch := range sortedKeys(a) {
		total += a[ch]
	}
	return total
}

// Clone returns an independent copy.
func (a Allocation) Clone() Allocation {
	out := make(Allocation, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Bounds limits a channel's spend during optimisation. A nil Min is 0 and a
// nil Max is the total budget.
type Bounds struct {
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// Between returns bounds with both limits set.
func Between(lo, hi float64) Bounds {
	return Bounds{Min: &lo, Max: &hi}
}

// AtLeast returns bounds with only a minimum.
func AtLeast(lo float64) Bounds {
	return Bounds{Min: &lo}
}

// AtMost returns bounds with only a maximum.
func AtMost(hi float64) Bounds {
	return Bounds{Max: &hi}
}

func (b Bounds) resolve(total float64) (float64, float64) {
	lo, hi := 0.0, total
	if b.Min != nil && *b.Min > 0 {
		lo = *b.Min
	}
	if b.Max != nil {
		hi = *b.Max
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// Constraints maps a channel name to its bounds.
type Constraints map[string]Bounds

// MetricsSource records where a channel's ROAS and CPA came from.
type MetricsSource string

const (
	SourceHistory     MetricsSource = "history"
	SourcePlaceholder MetricsSource = "placeholder"
	SourceFallback    MetricsSource = "fallback"
	SourceDefault     MetricsSource = "default"
)

// ChannelMetrics are the unit economics used to project a channel.
type ChannelMetrics struct {
	ROAS   float64       `json:"roas" yaml:"roas"`
	CPA    float64       `json:"cpa" yaml:"cpa"`
	Source MetricsSource `json:"source,omitempty" yaml:"-"`
}

// ChannelResult is the projection for one funded channel.
type ChannelResult struct {
	Spend     float64       `json:"spend"`
	Revenue   float64       `json:"revenue"`
	ROAS      float64       `json:"roas"`
	CPA       float64       `json:"cpa"`
	Purchases float64       `json:"purchases"`
	Source    MetricsSource `json:"source"`
}

// ScenarioResult aggregates the projection of every funded channel.
// Margin is profit as a percentage of revenue.
type ScenarioResult struct {
	TotalSpend   float64                  `json:"totalSpend"`
	TotalRevenue float64                  `json:"totalRevenue"`
	ROAS         float64                  `json:"roas"`
	TotalCPA     float64                  `json:"totalCPA"`
	Conversions  float64                  `json:"conversions"`
	COGS         float64                  `json:"cogs"`
	PlatformFees float64                  `json:"platformFees"`
	Profit       float64                  `json:"profit"`
	Margin       float64                  `json:"margin"`
	ByChannel    map[string]ChannelResult `json:"byChannel"`
}

// OptimalAllocation is the outcome of FindOptimalAllocation. Converged is
// false when the search stopped on the round cap rather than on a round
// without improvement.
type OptimalAllocation struct {
	Allocation Allocation     `json:"allocation"`
	Scenario   ScenarioResult `json:"scenario"`
	Iterations int            `json:"iterations"`
	Converged  bool           `json:"converged"`
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
