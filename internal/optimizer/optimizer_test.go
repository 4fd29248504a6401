package optimizer

import (
	"strings"
	"testing"

	"github.com/iwvelando/commerce-analytics/internal/config"
	"github.com/iwvelando/commerce-analytics/internal/dataset"
	"github.com/iwvelando/commerce-analytics/pkg/budget"
	"github.com/iwvelando/commerce-analytics/pkg/mathutil"
)

// Meta returns 3x at a CPA of 50, Google 1.5x; TikTok uses the placeholder.
func sampleData() *dataset.Dataset {
	return &dataset.Dataset{
		Channels: budget.History{
			"meta": {
				{Date: "2025-01-01", Spend: 500, Revenue: 1500, Purchases: 10},
				{Date: "2025-01-02", Spend: 500, Revenue: 1500, Purchases: 10},
			},
			"google": {
				{Date: "2025-01-01", Spend: 1000, Revenue: 1500, Conversions: 30},
			},
		},
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

func newTestRunner(t *testing.T, conf *config.Configuration) *Runner {
	t.Helper()
	r, err := NewRunner(nil, conf, sampleData())
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	return r
}

func TestNewRunnerRequiresInputs(t *testing.T) {
	if _, err := NewRunner(nil, nil, sampleData()); err == nil {
		t.Error("expected error for nil configuration")
	}
	if _, err := NewRunner(nil, config.Default(), nil); err == nil {
		t.Error("expected error for nil dataset")
	}
}

func TestRunAllocatesToMostProfitableChannel(t *testing.T) {
	conf := config.Default()
	conf.Plans = []config.PlanConfig{
		{Name: "Unconstrained", Active: true, TotalBudget: 9000},
		{Name: "Disabled", Active: false, TotalBudget: 1000},
	}

	result, err := newTestRunner(t, conf).Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Empty() || len(result.Summaries) != 1 {
		t.Fatalf("expected exactly one summary, got %d", len(result.Summaries))
	}
	if _, ok := result.Find("Disabled"); ok {
		t.Error("inactive plan should not be summarized")
	}

	summary, ok := result.Find("Unconstrained")
	if !ok {
		t.Fatal("missing summary for Unconstrained")
	}
	if summary.Allocation["meta"] != 9000 {
		t.Errorf("expected all 9000 on meta, got %v", summary.Allocation)
	}
	for _, ch := range []string{"meta", "google", "tiktok"} {
		if summary.Baseline[ch] != 3000 {
			t.Errorf("baseline %s: expected 3000, got %v", ch, summary.Baseline[ch])
		}
	}
	// Profit per dollar: meta 0.56, google -0.22, tiktok 0.04.
	if !mathutil.WithinTolerance(summary.BaselineProfit, 1140, 1e-6) {
		t.Errorf("expected baseline profit 1140, got %v", summary.BaselineProfit)
	}
	if !mathutil.WithinTolerance(summary.Profit, 5040, 1e-6) {
		t.Errorf("expected profit 5040, got %v", summary.Profit)
	}
	if !mathutil.WithinTolerance(summary.ProfitLift, 3900, 1e-6) {
		t.Errorf("expected lift 3900, got %v", summary.ProfitLift)
	}
	if !summary.Converged {
		t.Error("expected the search to converge")
	}
	if summary.Iterations < 2 {
		t.Errorf("expected several rounds, got %d", summary.Iterations)
	}
	if summary.ProfitDisplay != "$5,040.00" {
		t.Errorf("unexpected profit display %q", summary.ProfitDisplay)
	}
	if len(summary.Notes) != 0 {
		t.Errorf("expected no notes, got %v", summary.Notes)
	}
}

func TestRunRespectsBounds(t *testing.T) {
	conf := config.Default()
	conf.Plans = []config.PlanConfig{{
		Name:        "Bounded",
		Active:      true,
		TotalBudget: 9000,
		Bounds: []config.ChannelBound{
			{Channel: "Meta", Max: floatPtr(5000)},
			{Channel: " Google", Min: floatPtr(1000)},
		},
	}}

	result, err := newTestRunner(t, conf).Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	summary := result.Summaries[0]

	expected := budget.Allocation{"meta": 5000, "google": 1000, "tiktok": 3000}
	for ch, want := range expected {
		if summary.Allocation[ch] != want {
			t.Errorf("%s: expected %v, got %v", ch, want, summary.Allocation[ch])
		}
	}

	joined := strings.Join(summary.Notes, "\n")
	if !strings.Contains(joined, "meta held at its maximum") {
		t.Errorf("expected a maximum note, got %v", summary.Notes)
	}
	if !strings.Contains(joined, "google held at its minimum") {
		t.Errorf("expected a minimum note, got %v", summary.Notes)
	}
}

func TestRunReportsInfeasibleTotal(t *testing.T) {
	conf := config.Default()
	conf.Plans = []config.PlanConfig{{
		Name:        "Overcommitted",
		Active:      true,
		TotalBudget: 9000,
		Bounds: []config.ChannelBound{
			{Channel: "meta", Min: floatPtr(5000)},
			{Channel: "google", Min: floatPtr(5000)},
		},
	}}

	result, err := newTestRunner(t, conf).Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	summary := result.Summaries[0]
	if summary.Notes == nil || !strings.Contains(summary.Notes[0], "channel bounds allocate $10,000.00 against the $9,000.00 budget") {
		t.Errorf("expected an infeasible total note first, got %v", summary.Notes)
	}
}

func TestRunReportsRoundCap(t *testing.T) {
	conf := config.Default()
	conf.Optimizer.Step = 1
	conf.Plans = []config.PlanConfig{{Name: "Fine steps", Active: true, TotalBudget: 9000}}

	result, err := newTestRunner(t, conf).Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	summary := result.Summaries[0]
	if summary.Converged {
		t.Error("expected the search to stop before converging")
	}
	if summary.Iterations != 51 {
		t.Errorf("expected 51 rounds, got %d", summary.Iterations)
	}
	if len(summary.Notes) != 1 || !strings.Contains(summary.Notes[0], "search stopped after 51 rounds") {
		t.Errorf("expected a round cap note, got %v", summary.Notes)
	}
}

func TestRunRejectsInvalidBudget(t *testing.T) {
	tests := []struct {
		name   string
		budget float64
	}{
		{"zero", 0},
		{"negative", -100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := config.Default()
			conf.Plans = []config.PlanConfig{{Name: "Broken", Active: true, TotalBudget: tt.budget}}
			if _, err := newTestRunner(t, conf).Run(); err == nil {
				t.Error("expected an error for a non-positive total budget")
			}
		})
	}
}

func TestRunWithoutPlans(t *testing.T) {
	result, err := newTestRunner(t, config.Default()).Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Empty() {
		t.Errorf("expected an empty result, got %d summaries", len(result.Summaries))
	}
}
