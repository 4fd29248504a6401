package format

import (
	"math"
	"testing"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected string
	}{
		{"Zero", 0, "$0.00"},
		{"Small", 12.5, "$12.50"},
		{"Thousands", 1234.567, "$1,234.57"},
		{"Millions", 1234567.891, "$1,234,567.89"},
		{"Negative", -1234.56, "-$1,234.56"},
		{"Infinite", math.Inf(1), "∞"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Currency(tt.amount); got != tt.expected {
				t.Errorf("Currency(%v) = %q, expected %q", tt.amount, got, tt.expected)
			}
		})
	}
}

func TestRatioAndPercent(t *testing.T) {
	if got := Ratio(3); got != "3.00x" {
		t.Errorf("Ratio(3) = %q", got)
	}
	if got := Percent(12.46); got != "12.5%" {
		t.Errorf("Percent(12.46) = %q", got)
	}
}
