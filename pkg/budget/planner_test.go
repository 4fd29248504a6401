package budget_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/iwvelando/commerce-analytics/pkg/budget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHistory() budget.History {
	return budget.History{
		"meta": {
			{Date: "2025-01-01", Spend: 500, Revenue: 1500, Purchases: 10},
			{Date: "2025-01-02", Spend: 500, Revenue: 1500, Purchases: 10},
		},
		"google": {
			{Date: "2025-01-01", Spend: 1000, Revenue: 1500, Purchases: 30},
		},
	}
}

func TestSimulateScenarioSingleChannel(t *testing.T) {
	history := budget.History{"meta": {{Spend: 1000, Revenue: 3000, Purchases: 20}}}
	result := budget.SimulateScenario(budget.Allocation{"meta": 10000}, history)

	require.Contains(t, result.ByChannel, "meta")
	meta := result.ByChannel["meta"]
	assert.Equal(t, 3.0, meta.ROAS)
	assert.Equal(t, 30000.0, meta.Revenue)
	assert.Equal(t, 50.0, meta.CPA)
	assert.Equal(t, 200.0, meta.Purchases)
	assert.Equal(t, budget.SourceHistory, meta.Source)

	assert.Equal(t, 10000.0, result.TotalSpend)
	assert.Equal(t, 30000.0, result.TotalRevenue)
	assert.InDelta(t, 12000, result.COGS, 1e-6)
	assert.InDelta(t, 2400, result.PlatformFees, 1e-6)
	assert.InDelta(t, 5600, result.Profit, 1e-6)
	assert.InDelta(t, 5600.0/30000.0*100, result.Margin, 1e-9)
	assert.Equal(t, 3.0, result.ROAS)
	assert.Equal(t, 50.0, result.TotalCPA)
}

func TestSimulateScenarioNoFundedChannels(t *testing.T) {
	for name, budgets := range map[string]budget.Allocation{
		"nil":      nil,
		"empty":    {},
		"zeroed":   {"meta": 0, "google": -100},
		"notANumb": {"meta": math.NaN()},
	} {
		t.Run(name, func(t *testing.T) {
			result := budget.SimulateScenario(budgets, sampleHistory())
			assert.Equal(t, 0.0, result.TotalSpend)
			assert.Equal(t, 0.0, result.Profit)
			assert.Equal(t, 0.0, result.Margin)
			assert.Empty(t, result.ByChannel)
			assert.NotNil(t, result.ByChannel)
		})
	}
}

func TestSimulateScenarioMetricsFallbacks(t *testing.T) {
	google := budget.History{"google": {{Spend: 100, Revenue: 400, Purchases: 4}}}

	tests := []struct {
		name       string
		channel    string
		history    budget.History
		wantROAS   float64
		wantCPA    float64
		wantSource budget.MetricsSource
	}{
		{"Unknown channel uses google history", "pinterest", google, 4, 25, budget.SourceFallback},
		{"Unknown channel without google uses defaults", "pinterest", nil, 2.5, 45, budget.SourceDefault},
		{"Meta without history uses google history", "meta", google, 4, 25, budget.SourceFallback},
		{"TikTok uses placeholder", "tiktok", google, 2, 40, budget.SourcePlaceholder},
		{
			"TikTok history wins over placeholder", "tiktok",
			budget.History{"tiktok": {{Spend: 200, Revenue: 1000, Purchases: 10}}},
			5, 20, budget.SourceHistory,
		},
		{
			"Zero spend history is ignored", "meta",
			budget.History{"meta": {{Spend: 0, Revenue: 100, Purchases: 1}}},
			2.5, 45, budget.SourceDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := budget.SimulateScenario(budget.Allocation{tt.channel: 1000}, tt.history)
			ch := result.ByChannel[tt.channel]
			assert.Equal(t, tt.wantROAS, ch.ROAS)
			assert.Equal(t, tt.wantCPA, ch.CPA)
			assert.Equal(t, tt.wantSource, ch.Source)
			assert.InDelta(t, 1000*tt.wantROAS, ch.Revenue, 1e-9)
		})
	}
}

func TestSimulateScenarioConversionGuards(t *testing.T) {
	noConversions := budget.History{"meta": {{Spend: 100, Revenue: 200}}}
	result := budget.SimulateScenario(budget.Allocation{"meta": 1000}, noConversions)
	assert.Equal(t, 0.0, result.ByChannel["meta"].CPA)
	assert.Equal(t, 0.0, result.ByChannel["meta"].Purchases)
	assert.Equal(t, 0.0, result.TotalCPA)
	assert.Equal(t, 2000.0, result.TotalRevenue)

	conversionsOnly := budget.History{"meta": {{Spend: 100, Revenue: 200, Conversions: 4}}}
	result = budget.SimulateScenario(budget.Allocation{"meta": 1000}, conversionsOnly)
	assert.Equal(t, 25.0, result.ByChannel["meta"].CPA)
	assert.Equal(t, 40.0, result.Conversions)
}

func TestSimulateScenarioBlendedMetrics(t *testing.T) {
	result := budget.SimulateScenario(budget.Allocation{"meta": 2000, "google": 2000}, sampleHistory())

	assert.Equal(t, 4000.0, result.TotalSpend)
	assert.Equal(t, 9000.0, result.TotalRevenue)
	assert.Equal(t, 2.25, result.ROAS)
	// meta: 2000/50 = 40 purchases, google: 2000/33.33 = 60 purchases
	assert.InDelta(t, 100, result.Conversions, 1e-9)
	assert.InDelta(t, 40, result.TotalCPA, 1e-9)
}

func TestSimulateScenarioDoesNotMutateInputs(t *testing.T) {
	history := sampleHistory()
	budgets := budget.Allocation{"meta": 1000}
	budget.SimulateScenario(budgets, history)

	assert.Equal(t, sampleHistory(), history)
	assert.Equal(t, budget.Allocation{"meta": 1000}, budgets)
}

func TestPlannerCustomAssumptions(t *testing.T) {
	a := budget.DefaultAssumptions()
	a.COGSRate = 0
	a.PlatformFeeRate = 0
	a.Default = budget.ChannelMetrics{ROAS: 4, CPA: 10}
	planner := budget.NewPlanner(a)

	result := planner.Simulate(budget.Allocation{"email": 100}, nil)
	assert.Equal(t, 400.0, result.TotalRevenue)
	assert.Equal(t, 300.0, result.Profit)
	assert.Equal(t, 10.0, result.Conversions)

	filled := budget.NewPlanner(budget.Assumptions{}).Assumptions()
	defaults := budget.DefaultAssumptions()
	assert.Equal(t, defaults.Channels, filled.Channels)
	assert.Equal(t, defaults.Step, filled.Step)
	assert.Equal(t, defaults.Default, filled.Default)
}

func TestPlannerMetrics(t *testing.T) {
	m := budget.NewPlanner(budget.DefaultAssumptions()).Metrics("meta", sampleHistory())
	assert.Equal(t, budget.ChannelMetrics{ROAS: 3, CPA: 50, Source: budget.SourceHistory}, m)
}

func TestFindOptimalAllocationMovesSpendToBestChannel(t *testing.T) {
	result := budget.FindOptimalAllocation(9000, sampleHistory(), nil)

	assert.Equal(t, 9000.0, result.Allocation["meta"])
	assert.Equal(t, 0.0, result.Allocation["google"])
	assert.Equal(t, 0.0, result.Allocation["tiktok"])
	assert.True(t, result.Converged)
	assert.Greater(t, result.Iterations, 1)
	assert.Less(t, result.Iterations, 51)

	equal := budget.SimulateScenario(budget.Allocation{"meta": 3000, "google": 3000, "tiktok": 3000}, sampleHistory())
	assert.Greater(t, result.Scenario.Profit, equal.Profit)
	assert.Equal(t, budget.SimulateScenario(result.Allocation, sampleHistory()), result.Scenario)
}

func TestFindOptimalAllocationRespectsConstraints(t *testing.T) {
	tests := []struct {
		name        string
		total       float64
		constraints budget.Constraints
	}{
		{"No constraints", 10000, nil},
		{"Meta capped", 9000, budget.Constraints{"meta": budget.AtMost(5000)}},
		{"Google floor", 9000, budget.Constraints{"google": budget.AtLeast(2500)}},
		{
			"All bounded", 12000,
			budget.Constraints{
				"meta":   budget.Between(1000, 6000),
				"google": budget.Between(2000, 4000),
				"tiktok": budget.Between(500, 3000),
			},
		},
		{"Minimum above equal share", 9000, budget.Constraints{"tiktok": budget.AtLeast(5000)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := budget.FindOptimalAllocation(tt.total, sampleHistory(), tt.constraints)

			for _, ch := range []string{"meta", "google", "tiktok"} {
				value := result.Allocation[ch]
				lo, hi := 0.0, tt.total
				if b, ok := tt.constraints[ch]; ok {
					if b.Min != nil {
						lo = *b.Min
					}
					if b.Max != nil {
						hi = *b.Max
					}
				}
				assert.GreaterOrEqualf(t, value, lo, "channel %s", ch)
				assert.LessOrEqualf(t, value, hi, "channel %s", ch)
			}
			assert.InDelta(t, tt.total, result.Allocation.Total(), 1e-6)
		})
	}
}

func TestFindOptimalAllocationZeroBudget(t *testing.T) {
	for _, total := range []float64{0, -500, math.NaN(), math.Inf(1)} {
		result := budget.FindOptimalAllocation(total, sampleHistory(), nil)
		assert.Equal(t, budget.Allocation{"meta": 0, "google": 0, "tiktok": 0}, result.Allocation)
		assert.Equal(t, 0.0, result.Scenario.Profit)
		assert.Equal(t, 0, result.Iterations)
	}
}

func TestFindOptimalAllocationRoundCap(t *testing.T) {
	a := budget.DefaultAssumptions()
	a.Step = 1
	result := budget.NewPlanner(a).Optimize(9000, sampleHistory(), nil)

	assert.Equal(t, 51, result.Iterations)
	assert.False(t, result.Converged)

	a.MaxRounds = 10
	result = budget.NewPlanner(a).Optimize(9000, sampleHistory(), nil)
	assert.Equal(t, 10, result.Iterations)
	assert.False(t, result.Converged)
}

func TestFindOptimalAllocationIsDeterministic(t *testing.T) {
	constraints := budget.Constraints{"meta": budget.AtMost(6000)}
	first := budget.FindOptimalAllocation(15000, sampleHistory(), constraints)
	second := budget.FindOptimalAllocation(15000, sampleHistory(), constraints)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical allocations, got %v and %v", first.Allocation, second.Allocation)
	}
}

func TestCalculateBudgetShiftImpact(t *testing.T) {
	allocation := budget.Allocation{"meta": 5000, "google": 5000}

	impact := budget.CalculateBudgetShiftImpact(allocation, "google", "meta", 1000, sampleHistory())
	assert.True(t, impact.Improves)
	assert.InDelta(t, 780, impact.ProfitChange, 1e-6)
	assert.InDelta(t, 1500, impact.RevenueChange, 1e-6)
	assert.Equal(t, 1000.0, impact.Amount)
	assert.Contains(t, impact.Recommendation, "Shift $1,000.00 from google to meta")
	assert.Equal(t, 6000.0, impact.After.ByChannel["meta"].Spend)

	reverse := budget.CalculateBudgetShiftImpact(allocation, "meta", "google", 1000, sampleHistory())
	assert.False(t, reverse.Improves)
	assert.Contains(t, reverse.Recommendation, "Keep the current allocation")

	assert.Equal(t, budget.Allocation{"meta": 5000, "google": 5000}, allocation)
}

func TestCalculateBudgetShiftImpactLimitsAmount(t *testing.T) {
	allocation := budget.Allocation{"meta": 5000, "google": 2000}

	impact := budget.CalculateBudgetShiftImpact(allocation, "google", "meta", 9000, sampleHistory())
	assert.Equal(t, 2000.0, impact.Amount)
	assert.NotContains(t, impact.After.ByChannel, "google")

	none := budget.CalculateBudgetShiftImpact(allocation, "google", "meta", -10, sampleHistory())
	assert.Equal(t, 0.0, none.Amount)
	assert.Equal(t, 0.0, none.ProfitChange)
	assert.False(t, none.Improves)
}
