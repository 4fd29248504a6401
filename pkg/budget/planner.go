package budget

import (
	"math"

	"github.com/iwvelando/commerce-analytics/pkg/mathutil"
)

// Planner projects and optimises allocations under a fixed set of
// Assumptions. A Planner holds no mutable state and is safe for concurrent
// use.
type Planner struct {
	assumptions Assumptions
}

// NewPlanner returns a Planner. Unset assumption fields take their defaults.
func NewPlanner(a Assumptions) *Planner {
	return &Planner{assumptions: a.withDefaults()}
}

// Assumptions returns the effective assumptions.
func (p *Planner) Assumptions() Assumptions {
	return p.assumptions
}

var defaultPlanner = NewPlanner(DefaultAssumptions())

// SimulateScenario projects budgets with the default assumptions.
func SimulateScenario(budgets Allocation, history History) ScenarioResult {
	return defaultPlanner.Simulate(budgets, history)
}

// FindOptimalAllocation searches allocations with the default assumptions.
func FindOptimalAllocation(totalBudget float64, history History, constraints Constraints) OptimalAllocation {
	return defaultPlanner.Optimize(totalBudget, history, constraints)
}

// CalculateBudgetShiftImpact evaluates a single shift with the default
// assumptions.
func CalculateBudgetShiftImpact(allocation Allocation, from, to string, amount float64, history History) ShiftImpact {
	return defaultPlanner.ShiftImpact(allocation, from, to, amount, history)
}

type aggregate struct {
	spend, revenue, conversions float64
}

func aggregateHistory(history History) map[string]aggregate {
	out := make(map[string]aggregate, len(history))
	for _, ch := range sortedKeys(history) {
		var agg aggregate
		for _, r := range history[ch] {
			if !finite(r.Spend) || !finite(r.Revenue) || !finite(r.conversions()) {
				continue
			}
			agg.spend += r.Spend
			agg.revenue += r.Revenue
			agg.conversions += r.conversions()
		}
		out[ch] = agg
	}
	return out
}

func (agg aggregate) metrics() (ChannelMetrics, bool) {
	if agg.spend <= 0 {
		return ChannelMetrics{}, false
	}
	return ChannelMetrics{
		ROAS:   agg.revenue / agg.spend,
		CPA:    mathutil.SafeDivide(agg.spend, agg.conversions),
		Source: SourceHistory,
	}, true
}

// Metrics resolves the unit economics of channel: its own history, then a
// placeholder, then the fallback channel's history, then the default.
func (p *Planner) Metrics(channel string, history History) ChannelMetrics {
	return p.metricsFor(channel, aggregateHistory(history))
}

func (p *Planner) metricsFor(channel string, aggregates map[string]aggregate) ChannelMetrics {
	if m, ok := aggregates[channel].metrics(); ok {
		return m
	}
	if m, ok := p.assumptions.Placeholders[channel]; ok {
		m.Source = SourcePlaceholder
		return m
	}
	if m, ok := aggregates[p.assumptions.FallbackChannel].metrics(); ok {
		m.Source = SourceFallback
		return m
	}
	m := p.assumptions.Default
	m.Source = SourceDefault
	return m
}

// Simulate projects revenue, purchases and profit for every channel with a
// positive budget. Profit is revenue less COGS, platform fees and the total
// spend.
func (p *Planner) Simulate(budgets Allocation, history History) ScenarioResult {
	return p.simulate(budgets, aggregateHistory(history))
}

func (p *Planner) simulate(budgets Allocation, aggregates map[string]aggregate) ScenarioResult {
	result := ScenarioResult{ByChannel: map[string]ChannelResult{}}
	for _, ch := range sortedKeys(budgets) {
		spend := budgets[ch]
		if !(spend > 0) || math.IsInf(spend, 0) {
			continue
		}
		m := p.metricsFor(ch, aggregates)
		channel := ChannelResult{
			Spend:     spend,
			Revenue:   spend * m.ROAS,
			ROAS:      m.ROAS,
			CPA:       m.CPA,
			Purchases: mathutil.SafeDivide(spend, m.CPA),
			Source:    m.Source,
		}
		result.ByChannel[ch] = channel
		result.TotalSpend += channel.Spend
		result.TotalRevenue += channel.Revenue
		result.Conversions += channel.Purchases
	}

	result.COGS = result.TotalRevenue * p.assumptions.COGSRate
	result.PlatformFees = result.TotalRevenue * p.assumptions.PlatformFeeRate
	result.Profit = result.TotalRevenue - result.COGS - result.PlatformFees - result.TotalSpend
	result.ROAS = mathutil.SafeDivide(result.TotalRevenue, result.TotalSpend)
	result.TotalCPA = mathutil.SafeDivide(result.TotalSpend, result.Conversions)
	result.Margin = mathutil.CalculatePercentage(result.Profit, result.TotalRevenue)
	return result
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
