// Package optimization provides shared data structures for optimization results.
package optimization

import (
	"github.com/iwvelando/commerce-analytics/pkg/budget"
)

// Summary captures the result of a single budget plan. Baseline is the
// equal split the search starts from; ProfitLift is the profit gained over
// it.
type Summary struct {
	Plan              string            `json:"plan"`
	TotalBudget       float64           `json:"totalBudget"`
	Baseline          budget.Allocation `json:"baseline"`
	Allocation        budget.Allocation `json:"allocation"`
	BaselineProfit    float64           `json:"baselineProfit"`
	Profit            float64           `json:"profit"`
	ProfitLift        float64           `json:"profitLift"`
	Revenue           float64           `json:"revenue"`
	ROAS              float64           `json:"roas"`
	Margin            float64           `json:"margin"`
	Iterations        int               `json:"iterations"`
	Converged         bool              `json:"converged"`
	Notes             []string          `json:"notes,omitempty"`
	ProfitDisplay     string            `json:"profitDisplay,omitempty"`
	ProfitLiftDisplay string            `json:"profitLiftDisplay,omitempty"`
}
