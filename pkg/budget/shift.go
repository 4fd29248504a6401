package budget

import (
	"fmt"

	"github.com/iwvelando/commerce-analytics/pkg/format"
	"github.com/iwvelando/commerce-analytics/pkg/mathutil"
)

// ShiftImpact compares an allocation before and after moving spend from one
// channel to another.
type ShiftImpact struct {
	From           string         `json:"from"`
	To             string         `json:"to"`
	Amount         float64        `json:"amount"`
	Before         ScenarioResult `json:"before"`
	After          ScenarioResult `json:"after"`
	ProfitChange   float64        `json:"profitChange"`
	RevenueChange  float64        `json:"revenueChange"`
	Improves       bool           `json:"improves"`
	Recommendation string         `json:"recommendation"`
}

// ShiftImpact moves amount from one channel to another and reports the
// projected profit change. The amount is limited to the spend available on
// the source channel; a non-positive amount leaves the allocation unchanged.
func (p *Planner) ShiftImpact(allocation Allocation, from, to string, amount float64, history History) ShiftImpact {
	aggregates := aggregateHistory(history)

	moved := amount
	if !(moved > 0) || !finite(moved) || from == to {
		moved = 0
	}
	moved = mathutil.Clamp(moved, 0, max(allocation[from], 0))

	after := allocation.Clone()
	if moved > 0 {
		after[from] -= moved
		after[to] += moved
	}

	impact := ShiftImpact{
		From:   from,
		To:     to,
		Amount: moved,
		Before: p.simulate(allocation, aggregates),
		After:  p.simulate(after, aggregates),
	}
	impact.ProfitChange = impact.After.Profit - impact.Before.Profit
	impact.RevenueChange = impact.After.TotalRevenue - impact.Before.TotalRevenue
	impact.Improves = impact.ProfitChange > 0

	if impact.Improves {
		impact.Recommendation = fmt.Sprintf("Shift %s from %s to %s: projected profit increases by %s.",
			format.Currency(moved), from, to, format.Currency(impact.ProfitChange))
	} else {
		impact.Recommendation = fmt.Sprintf("Keep the current allocation: shifting %s from %s to %s changes projected profit by %s.",
			format.Currency(moved), from, to, format.Currency(impact.ProfitChange))
	}
	return impact
}
