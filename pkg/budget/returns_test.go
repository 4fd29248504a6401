package budget_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/iwvelando/commerce-analytics/pkg/budget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiminishingReturnsModelTooFewPoints(t *testing.T) {
	expected := budget.ReturnsModel{Type: budget.ModelLinear, Slope: 1, Intercept: 0, R2: 0}

	assert.Equal(t, expected, budget.DiminishingReturnsModel(nil, nil))
	assert.Equal(t, expected, budget.DiminishingReturnsModel([]float64{100}, []float64{300}))
	assert.Equal(t, expected, budget.DiminishingReturnsModel([]float64{100, 200}, []float64{300}))
}

func TestDiminishingReturnsModelPrefersLinear(t *testing.T) {
	spend := []float64{100, 200, 300, 400}
	revenue := []float64{250, 450, 650, 850}

	model := budget.DiminishingReturnsModel(spend, revenue)
	assert.Equal(t, budget.ModelLinear, model.Type)
	assert.InDelta(t, 2, model.Slope, 1e-9)
	assert.InDelta(t, 50, model.Intercept, 1e-9)
	assert.InDelta(t, 1, model.R2, 1e-9)
	assert.InDelta(t, 1050, model.Predict(500), 1e-9)
}

func TestDiminishingReturnsModelPrefersLog(t *testing.T) {
	spend := []float64{0, 100, 200, 400, 800, 1600}
	revenue := make([]float64, len(spend))
	for i, s := range spend {
		if s > 0 {
			revenue[i] = 1000*math.Log(s) + 10
		}
	}

	model := budget.DiminishingReturnsModel(spend, revenue)
	require.Equal(t, budget.ModelLogarithmic, model.Type)
	assert.InDelta(t, 1000, model.Slope, 1e-6)
	assert.InDelta(t, 10, model.Intercept, 1e-6)
	assert.InDelta(t, 1, model.R2, 1e-9)
	assert.Equal(t, 0.0, model.Predict(0))
}

func TestDiminishingReturnsModelTiesFavourLinear(t *testing.T) {
	model := budget.DiminishingReturnsModel([]float64{100, 200, 300}, []float64{500, 500, 500})
	assert.Equal(t, budget.ModelLinear, model.Type)
	assert.Equal(t, 0.0, model.R2)
}

func TestCalculateBreakeven(t *testing.T) {
	b := budget.CalculateBreakeven(10000, 0.6, 50)
	assert.InDelta(t, 20, b.ContributionMargin, 1e-9)
	assert.InDelta(t, 0.4, b.ContributionMarginRatio, 1e-12)
	assert.InDelta(t, 500, b.BreakevenOrders, 1e-9)
	assert.InDelta(t, 25000, b.BreakevenRevenue, 1e-6)
	assert.False(t, b.Unbounded())
}

func TestCalculateBreakevenFullyVariableCosts(t *testing.T) {
	b := budget.CalculateBreakeven(10000, 1.0, 50)
	assert.True(t, math.IsInf(b.BreakevenRevenue, 1))
	assert.True(t, math.IsInf(b.BreakevenOrders, 1))
	assert.True(t, b.Unbounded())

	loss := budget.CalculateBreakeven(10000, 1.5, 50)
	assert.True(t, math.IsInf(loss.BreakevenRevenue, 1))
}

func TestCalculateBreakevenNonPositiveAOV(t *testing.T) {
	for _, aov := range []float64{0, -20, math.NaN()} {
		b := budget.CalculateBreakeven(10000, 1.0, aov)
		assert.Equal(t, 0.0, b.BreakevenRevenue)
		assert.Equal(t, 0.0, b.BreakevenOrders)
		assert.Equal(t, 0.0, b.ContributionMargin)
		assert.False(t, b.Unbounded())
	}
}

func TestBreakevenJSON(t *testing.T) {
	data, err := json.Marshal(budget.CalculateBreakeven(10000, 1.0, 50))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded["breakEvenRevenue"])
	assert.Nil(t, decoded["breakEvenOrders"])
	assert.Equal(t, true, decoded["unbounded"])

	data, err = json.Marshal(budget.CalculateBreakeven(1000, 0.5, 100))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 2000.0, decoded["breakEvenRevenue"])
	assert.Equal(t, 20.0, decoded["breakEvenOrders"])
	assert.Equal(t, false, decoded["unbounded"])
}
