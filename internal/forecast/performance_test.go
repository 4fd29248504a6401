package forecast

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/iwvelando/commerce-analytics/internal/config"
	"go.uber.org/zap"
)

func yearConfig() config.Configuration {
	conf := config.Default()
	conf.Forecast.Horizon = 90
	conf.Series = []config.SeriesConfig{
		{Name: "Revenue", Active: true, Metric: "revenue"},
		{Name: "Orders", Active: true, Metric: "orders"},
		{Name: "Meta revenue", Active: true, Metric: "revenue:meta"},
		{Name: "Google spend", Active: true, Metric: "spend:google", Method: "holt_winters"},
	}
	return *conf
}

// TestPerformance forecasts a year of history for several series.
func TestPerformance(t *testing.T) {
	logger := zap.NewNop()
	data := mockDataset(t, 365)

	start := time.Now()
	results, err := GetForecast(context.Background(), logger, yearConfig(), data)
	if err != nil {
		t.Fatalf("GetForecast failed: %v", err)
	}
	elapsed := time.Since(start)
	t.Logf("forecast of %d series over 365 days took %v", len(results), elapsed)

	if elapsed > 10*time.Second {
		t.Errorf("forecast time %v exceeds 10 second threshold", elapsed)
	}
	for _, result := range results {
		if len(result.Result.Values) != 90 {
			t.Errorf("%s: expected 90 forecast values, got %d", result.Name, len(result.Result.Values))
		}
	}
}

// TestDataConsistency validates that multiple runs produce identical results.
func TestDataConsistency(t *testing.T) {
	logger := zap.NewNop()
	conf := yearConfig()

	first, err := GetForecast(context.Background(), logger, conf, mockDataset(t, 365))
	if err != nil {
		t.Fatalf("GetForecast failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := GetForecast(context.Background(), logger, conf, mockDataset(t, 365))
		if err != nil {
			t.Fatalf("GetForecast failed on iteration %d: %v", i, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("iteration %d produced different results", i)
		}
	}
}

func BenchmarkGetForecast(b *testing.B) {
	logger := zap.NewNop()
	conf := yearConfig()
	data, err := generateMock(365)
	if err != nil {
		b.Fatalf("Generate() error = %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := GetForecast(context.Background(), logger, conf, data); err != nil {
			b.Fatal(err)
		}
	}
}
