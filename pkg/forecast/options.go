package forecast

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseMethod returns the canonical Method for a user supplied name.
// An empty name is MethodAuto.
func ParseMethod(value string) (Method, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	switch normalized {
	case "", "auto":
		return MethodAuto, nil
	case "linear", "linear_regression":
		return MethodLinear, nil
	case "exponential", "single_exponential", "ses":
		return MethodExponential, nil
	case "double_exponential", "holt":
		return MethodDoubleExponential, nil
	case "holt_winters", "triple_exponential":
		return MethodHoltWinters, nil
	default:
		return MethodAuto, fmt.Errorf("unsupported forecast method %q", value)
	}
}

// ParseSeasonality interprets "auto", a disabled keyword or a literal
// season length.
func ParseSeasonality(value string) (SeasonalityMode, int, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", "auto":
		return SeasonalityAuto, 0, nil
	case "none", "off", "disabled", "false":
		return SeasonalityNone, 0, nil
	}
	length, err := strconv.Atoi(normalized)
	if err != nil {
		return SeasonalityAuto, 0, fmt.Errorf("invalid seasonality %q: expected auto, none or a period length", value)
	}
	if length < 2 {
		return SeasonalityAuto, 0, fmt.Errorf("seasonality period %d must be at least 2", length)
	}
	return SeasonalityFixed, length, nil
}
