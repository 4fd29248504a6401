// Package optimizer runs the configured budget plans through the allocation
// search and summarizes each outcome against an equal split.
package optimizer

import (
	"fmt"
	"math"

	"github.com/iwvelando/commerce-analytics/internal/config"
	"github.com/iwvelando/commerce-analytics/internal/dataset"
	"github.com/iwvelando/commerce-analytics/pkg/budget"
	"github.com/iwvelando/commerce-analytics/pkg/format"
	"github.com/iwvelando/commerce-analytics/pkg/mathutil"
	"github.com/iwvelando/commerce-analytics/pkg/optimization"
	"go.uber.org/zap"
)

// Runner executes budget plans against a dataset's channel history.
type Runner struct {
	logger  *zap.Logger
	conf    *config.Configuration
	data    *dataset.Dataset
	planner *budget.Planner
}

// Result holds one summary per active plan, in configuration order.
type Result struct {
	Summaries []optimization.Summary `json:"summaries"`
}

// Empty indicates whether any plan was run.
func (r Result) Empty() bool {
	return len(r.Summaries) == 0
}

// Find returns the summary of the named plan.
func (r Result) Find(plan string) (optimization.Summary, bool) {
	for _, s := range r.Summaries {
		if s.Plan == plan {
			return s, true
		}
	}
	return optimization.Summary{}, false
}

// NewRunner constructs a Runner for the provided configuration and dataset.
func NewRunner(logger *zap.Logger, conf *config.Configuration, data *dataset.Dataset) (*Runner, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if data == nil {
		return nil, fmt.Errorf("dataset cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		logger:  logger,
		conf:    conf,
		data:    data,
		planner: budget.NewPlanner(conf.Assumptions()),
	}, nil
}

// Run optimizes every active plan.
func (r *Runner) Run() (*Result, error) {
	history := r.data.History()
	result := &Result{Summaries: []optimization.Summary{}}
	for _, plan := range r.conf.Plans {
		if !plan.Active {
			r.logger.Debug(fmt.Sprintf("skipping plan %s because it is inactive", plan.Name),
				zap.String("op", "optimizer.Run"),
			)
			continue
		}
		if !(plan.TotalBudget > 0) || math.IsInf(plan.TotalBudget, 0) {
			return nil, fmt.Errorf("plan %s: total budget must be positive, got %v", plan.Name, plan.TotalBudget)
		}

		summary := r.runPlan(plan, history)
		r.logger.Info("optimizer allocated plan budget",
			zap.String("op", "optimizer.Run"),
			zap.String("plan", summary.Plan),
			zap.Float64("totalBudget", summary.TotalBudget),
			zap.Any("allocation", summary.Allocation),
			zap.Float64("baselineProfit", summary.BaselineProfit),
			zap.Float64("profit", summary.Profit),
			zap.Float64("profitLift", summary.ProfitLift),
			zap.Int("iterations", summary.Iterations),
			zap.Bool("converged", summary.Converged),
		)
		result.Summaries = append(result.Summaries, summary)
	}
	return result, nil
}

func (r *Runner) runPlan(plan config.PlanConfig, history budget.History) optimization.Summary {
	assumptions := r.planner.Assumptions()
	constraints := plan.Constraints()

	baseline := equalSplit(plan.TotalBudget, assumptions.Channels)
	baselineScenario := r.planner.Simulate(baseline, history)
	optimal := r.planner.Optimize(plan.TotalBudget, history, constraints)

	lift := optimal.Scenario.Profit - baselineScenario.Profit
	return optimization.Summary{
		Plan:              plan.Name,
		TotalBudget:       plan.TotalBudget,
		Baseline:          baseline,
		Allocation:        optimal.Allocation,
		BaselineProfit:    baselineScenario.Profit,
		Profit:            optimal.Scenario.Profit,
		ProfitLift:        lift,
		Revenue:           optimal.Scenario.TotalRevenue,
		ROAS:              optimal.Scenario.ROAS,
		Margin:            optimal.Scenario.Margin,
		Iterations:        optimal.Iterations,
		Converged:         optimal.Converged,
		Notes:             notes(plan, assumptions, optimal),
		ProfitDisplay:     format.Currency(optimal.Scenario.Profit),
		ProfitLiftDisplay: format.Currency(lift),
	}
}

func equalSplit(total float64, channels []string) budget.Allocation {
	allocation := make(budget.Allocation, len(channels))
	if len(channels) == 0 {
		return allocation
	}
	share := total / float64(len(channels))
	for _, ch := range channels {
		allocation[ch] = share
	}
	return allocation
}

func notes(plan config.PlanConfig, assumptions budget.Assumptions, optimal budget.OptimalAllocation) []string {
	var out []string
	if short := plan.TotalBudget - optimal.Allocation.Total(); !mathutil.IsZero(short) {
		out = append(out, fmt.Sprintf("channel bounds allocate %s against the %s budget",
			format.Currency(optimal.Allocation.Total()), format.Currency(plan.TotalBudget)))
	}
	for _, bound := range plan.Bounds {
		channel := bound.Key()
		spend, ok := optimal.Allocation[channel]
		if !ok {
			continue
		}
		if bound.Min != nil && spend == *bound.Min {
			out = append(out, fmt.Sprintf("%s held at its minimum of %s", channel, format.Currency(spend)))
		}
		if bound.Max != nil && spend == *bound.Max {
			out = append(out, fmt.Sprintf("%s held at its maximum of %s", channel, format.Currency(spend)))
		}
	}
	if !optimal.Converged {
		out = append(out, fmt.Sprintf("search stopped after %d rounds before converging; a larger step than %s may help",
			optimal.Iterations, format.Currency(assumptions.Step)))
	}
	return out
}
