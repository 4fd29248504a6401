// Package output provides utilities for formatting and displaying forecast
// and budget plan results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/iwvelando/commerce-analytics/internal/forecast"
	pkgforecast "github.com/iwvelando/commerce-analytics/pkg/forecast"
	"github.com/iwvelando/commerce-analytics/pkg/format"
	"github.com/iwvelando/commerce-analytics/pkg/optimization"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat writes a human-readable rather than machine-readable table
// of every forecast.
func PrettyFormat(w io.Writer, results []forecast.Forecast) {
	p := message.NewPrinter(language.English)
	for i, result := range results {
		r := result.Result
		fmt.Fprintf(w, "--- Forecast for %s (%s) ---\n", result.Name, result.Metric)
		if r.Error != "" {
			fmt.Fprintf(w, "No forecast: %s\n", r.Error)
		} else {
			_, _ = p.Fprintf(w, "Method: %s | Trend: %s (%.2f/day) | MAPE: %.1f%% | Confidence: %.0f%%\n",
				r.Method, r.Trend.Direction, r.Trend.Slope, r.Metrics.MAPE, r.Confidence*100)
			if r.Seasonality > 0 {
				fmt.Fprintf(w, "Seasonality: %d days\n", r.Seasonality)
			}
			fmt.Fprintf(w, "Date       | Predicted     | Lower         | Upper\n")
			fmt.Fprintf(w, "__________ | _____________ | _____________ | _____________\n")
			for _, v := range r.Values {
				_, _ = p.Fprintf(w, "%s | %13.2f | %13.2f | %13.2f\n", v.Date, v.Predicted, v.Lower, v.Upper)
			}
			_, _ = p.Fprintf(w, "Total: %.2f\n", r.Total)
		}
		if len(result.Anomalies) > 0 {
			fmt.Fprintf(w, "Anomalies: %d (see the anomalies command)\n", len(result.Anomalies))
		}
		if len(results) > 1 && i < len(results)-1 {
			fmt.Fprintf(w, "\n")
		}
	}
}

// PrettyAnomalies writes the anomalies detected in every forecast history.
func PrettyAnomalies(w io.Writer, results []forecast.Forecast) {
	p := message.NewPrinter(language.English)
	for i, result := range results {
		fmt.Fprintf(w, "--- Anomalies in %s (%s) ---\n", result.Name, result.Metric)
		if len(result.Anomalies) == 0 {
			fmt.Fprintf(w, "None\n")
		}
		for _, a := range result.Anomalies {
			_, _ = p.Fprintf(w, "%s | %.2f | z=%.2f\n", a.Date, a.Value, a.ZScore)
		}
		if len(results) > 1 && i < len(results)-1 {
			fmt.Fprintf(w, "\n")
		}
	}
}

// PrettyPlans writes each budget plan allocation next to its equal split.
func PrettyPlans(w io.Writer, summaries []optimization.Summary) {
	for i, s := range summaries {
		fmt.Fprintf(w, "--- Budget plan %s (%s) ---\n", s.Plan, format.Currency(s.TotalBudget))
		fmt.Fprintf(w, "Channel    | Equal split   | Optimized\n")
		fmt.Fprintf(w, "__________ | _____________ | _____________\n")
		for _, ch := range channels(s) {
			fmt.Fprintf(w, "%-10s | %13s | %13s\n", ch, format.Currency(s.Baseline[ch]), format.Currency(s.Allocation[ch]))
		}
		fmt.Fprintf(w, "Profit: %s (baseline %s, lift %s)\n",
			format.Currency(s.Profit), format.Currency(s.BaselineProfit), format.Currency(s.ProfitLift))
		fmt.Fprintf(w, "ROAS: %s | Margin: %s | Rounds: %d | Converged: %t\n",
			format.Ratio(s.ROAS), format.Percent(s.Margin), s.Iterations, s.Converged)
		for _, note := range s.Notes {
			fmt.Fprintf(w, "Note: %s\n", note)
		}
		if len(summaries) > 1 && i < len(summaries)-1 {
			fmt.Fprintf(w, "\n")
		}
	}
}

// CsvFormat writes one row per forecast period of every series.
func CsvFormat(w io.Writer, results []forecast.Forecast) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"series", "metric", "date", "predicted", "lower", "upper"}); err != nil {
		return err
	}
	for _, result := range results {
		for _, v := range result.Result.Values {
			row := []string{result.Name, result.Metric, v.Date, decimal(v.Predicted), decimal(v.Lower), decimal(v.Upper)}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// CsvPlans writes one row per channel of every budget plan.
func CsvPlans(w io.Writer, summaries []optimization.Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"plan", "channel", "baseline", "allocation", "profit", "notes"}); err != nil {
		return err
	}
	for _, s := range summaries {
		for _, ch := range channels(s) {
			row := []string{s.Plan, ch, decimal(s.Baseline[ch]), decimal(s.Allocation[ch]), decimal(s.Profit), strings.Join(s.Notes, "; ")}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// AnomalyReport lists the anomalies of one series.
type AnomalyReport struct {
	Name      string                `json:"name"`
	Metric    string                `json:"metric"`
	Anomalies []pkgforecast.Anomaly `json:"anomalies"`
}

// AnomalyReports extracts the anomalies of every forecast.
func AnomalyReports(results []forecast.Forecast) []AnomalyReport {
	reports := make([]AnomalyReport, len(results))
	for i, result := range results {
		reports[i] = AnomalyReport{Name: result.Name, Metric: result.Metric, Anomalies: result.Anomalies}
		if reports[i].Anomalies == nil {
			reports[i].Anomalies = []pkgforecast.Anomaly{}
		}
	}
	return reports
}

// CsvAnomalies writes one row per anomaly of every series.
func CsvAnomalies(w io.Writer, results []forecast.Forecast) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"series", "metric", "date", "value", "zscore"}); err != nil {
		return err
	}
	for _, result := range results {
		for _, a := range result.Anomalies {
			row := []string{result.Name, result.Metric, a.Date, decimal(a.Value), decimal(a.ZScore)}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONFormat writes v as indented JSON.
func JSONFormat(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func channels(s optimization.Summary) []string {
	seen := make(map[string]bool)
	var out []string
	for _, alloc := range []map[string]float64{s.Baseline, s.Allocation} {
		for ch := range alloc {
			if !seen[ch] {
				seen[ch] = true
				out = append(out, ch)
			}
		}
	}
	sort.Strings(out)
	return out
}

func decimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
