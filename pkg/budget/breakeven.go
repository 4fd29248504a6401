package budget

import (
	"encoding/json"
	"math"
)

// Breakeven is the revenue and order volume that cover fixed costs.
// When the contribution margin per order is not positive the breakeven
// point is unreachable and both figures are +Inf.
type Breakeven struct {
	FixedCosts              float64
	VariableCostRate        float64
	AOV                     float64
	ContributionMargin      float64
	ContributionMarginRatio float64
	BreakevenRevenue        float64
	BreakevenOrders         float64
}

// Unbounded reports whether the breakeven point is unreachable.
func (b Breakeven) Unbounded() bool {
	return math.IsInf(b.BreakevenRevenue, 1)
}

// MarshalJSON encodes infinite figures as null with "unbounded": true,
// since JSON has no representation for infinity.
func (b Breakeven) MarshalJSON() ([]byte, error) {
	type wire struct {
		FixedCosts              float64  `json:"fixedCosts"`
		VariableCostRate        float64  `json:"variableCostRate"`
		AOV                     float64  `json:"aov"`
		ContributionMargin      float64  `json:"contributionMargin"`
		ContributionMarginRatio float64  `json:"contributionMarginRatio"`
		BreakevenRevenue        *float64 `json:"breakEvenRevenue"`
		BreakevenOrders         *float64 `json:"breakEvenOrders"`
		Unbounded               bool     `json:"unbounded"`
	}
	w := wire{
		FixedCosts:              b.FixedCosts,
		VariableCostRate:        b.VariableCostRate,
		AOV:                     b.AOV,
		ContributionMargin:      b.ContributionMargin,
		ContributionMarginRatio: b.ContributionMarginRatio,
		Unbounded:               b.Unbounded(),
	}
	if !w.Unbounded {
		w.BreakevenRevenue = &b.BreakevenRevenue
		w.BreakevenOrders = &b.BreakevenOrders
	}
	return json.Marshal(w)
}

// CalculateBreakeven computes the breakeven point for fixedCosts when each
// order of value aov carries variableCostRate of its value in variable
// cost. A non-positive aov yields zeroed figures.
func CalculateBreakeven(fixedCosts, variableCostRate, aov float64) Breakeven {
	b := Breakeven{FixedCosts: fixedCosts, VariableCostRate: variableCostRate, AOV: aov}
	if !(aov > 0) {
		return b
	}
	b.ContributionMargin = aov * (1 - variableCostRate)
	b.ContributionMarginRatio = 1 - variableCostRate
	if !(b.ContributionMargin > 0) {
		b.BreakevenRevenue = math.Inf(1)
		b.BreakevenOrders = math.Inf(1)
		return b
	}
	b.BreakevenOrders = fixedCosts / b.ContributionMargin
	b.BreakevenRevenue = b.BreakevenOrders * aov
	return b
}
