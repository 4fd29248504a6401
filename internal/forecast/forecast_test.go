package forecast

import (
	"context"
	"testing"

	"github.com/iwvelando/commerce-analytics/internal/config"
	"github.com/iwvelando/commerce-analytics/internal/dataset"
	"github.com/iwvelando/commerce-analytics/pkg/forecast"
	"go.uber.org/zap"
)

func mockDataset(t *testing.T, days int) *dataset.Dataset {
	t.Helper()
	d, err := generateMock(days)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	return d
}

func generateMock(days int) (*dataset.Dataset, error) {
	return dataset.Generate(dataset.MockOptions{Seed: 11, Days: days, Start: "2025-01-01"})
}

func TestGetForecast(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	conf := config.Default()
	conf.Forecast.Horizon = 14
	conf.Series = []config.SeriesConfig{
		{Name: "Revenue", Active: true, Metric: "revenue"},
		{Name: "Skipped", Active: false, Metric: "orders"},
		{Name: "Meta spend", Active: true, Metric: "spend:meta", Horizon: 7, Method: "linear"},
		{Name: "Google ROAS", Active: true, Metric: "roas:google", Confidence: 0.8},
	}

	results, err := GetForecast(context.Background(), logger, *conf, mockDataset(t, 90))
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 active series, got %d", len(results))
	}

	expectedNames := []string{"Revenue", "Meta spend", "Google ROAS"}
	for i, name := range expectedNames {
		if results[i].Name != name {
			t.Errorf("result %d: expected %s, got %s", i, name, results[i].Name)
		}
		if results[i].HistoryPoints != 90 {
			t.Errorf("%s: expected 90 history points, got %d", name, results[i].HistoryPoints)
		}
		if len(results[i].Result.Values) != results[i].Horizon {
			t.Errorf("%s: expected %d values, got %d", name, results[i].Horizon, len(results[i].Result.Values))
		}
		if len(results[i].MovingAverage) != 90-conf.MovingAverageWindow()+1 {
			t.Errorf("%s: unexpected moving average length %d", name, len(results[i].MovingAverage))
		}
		if results[i].Anomalies == nil {
			t.Errorf("%s: anomalies should be an empty list rather than nil", name)
		}
	}

	if results[0].Horizon != 14 {
		t.Errorf("expected default horizon 14, got %d", results[0].Horizon)
	}
	if results[1].Horizon != 7 || results[1].Result.Method != forecast.MethodLinear {
		t.Errorf("expected series overrides to apply, got horizon %d method %s", results[1].Horizon, results[1].Result.Method)
	}
	if results[2].Result.Confidence != 0.8 {
		t.Errorf("expected confidence 0.8, got %v", results[2].Result.Confidence)
	}
	if results[0].Result.Trend.Direction != forecast.TrendUp {
		t.Errorf("expected mock revenue to trend up, got %s", results[0].Result.Trend.Direction)
	}
}

func TestGetForecastShortHistory(t *testing.T) {
	conf := config.Default()
	results, err := GetForecast(context.Background(), nil, *conf, mockDataset(t, 1))
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}
	for _, r := range results {
		if r.Result.Method != forecast.MethodInsufficientData {
			t.Errorf("%s: expected insufficient_data, got %s", r.Name, r.Result.Method)
		}
		if r.Result.Error == "" {
			t.Errorf("%s: expected an error message", r.Name)
		}
	}
}

func TestGetForecastErrors(t *testing.T) {
	conf := config.Default()
	if _, err := GetForecast(context.Background(), nil, *conf, nil); err == nil {
		t.Error("expected error for nil dataset")
	}

	conf.Series = []config.SeriesConfig{{Name: "TikTok spend", Active: true, Metric: "spend:tiktok"}}
	if _, err := GetForecast(context.Background(), nil, *conf, mockDataset(t, 30)); err == nil {
		t.Error("expected error for a channel without history")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	conf = config.Default()
	if _, err := GetForecast(ctx, nil, *conf, mockDataset(t, 30)); err == nil {
		t.Error("expected error for a cancelled context")
	}
}

func TestGetForecastNoActiveSeries(t *testing.T) {
	conf := config.Default()
	conf.Series = nil
	results, err := GetForecast(context.Background(), nil, *conf, mockDataset(t, 30))
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
