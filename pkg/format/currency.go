// Package format renders numbers for human consumption.
package format

import (
	"math"

	"github.com/iwvelando/commerce-analytics/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	if math.IsInf(amount, 0) {
		if amount < 0 {
			return "-∞"
		}
		return "∞"
	}
	rounded := mathutil.Round(amount)
	if rounded < 0 {
		return "-$" + printer.Sprintf("%.2f", -rounded)
	}
	return "$" + printer.Sprintf("%.2f", rounded)
}

// Ratio formats a multiplier such as ROAS (e.g., "3.25x").
func Ratio(value float64) string {
	return printer.Sprintf("%.2fx", value)
}

// Percent formats a percentage value (e.g., "12.5%").
func Percent(value float64) string {
	return printer.Sprintf("%.1f%%", value)
}
