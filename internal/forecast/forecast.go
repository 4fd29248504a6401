// Package forecast defines the data structures related to a configured
// forecast run and includes functions for computing the forecasts of every
// active series of a dataset.
package forecast

import (
	"context"
	"fmt"

	"github.com/iwvelando/commerce-analytics/internal/config"
	"github.com/iwvelando/commerce-analytics/internal/dataset"
	"github.com/iwvelando/commerce-analytics/pkg/forecast"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Forecast holds the outcome of one configured series.
type Forecast struct {
	Name          string               `json:"name"`
	Metric        string               `json:"metric"`
	Horizon       int                  `json:"horizon"`
	HistoryPoints int                  `json:"historyPoints"`
	Result        forecast.Result      `json:"result"`
	Anomalies     []forecast.Anomaly   `json:"anomalies"`
	MovingAverage []forecast.TimePoint `json:"movingAverage"`
}

// GetForecast processes the forecasts for all active series. Series are
// computed concurrently and returned in configuration order.
func GetForecast(ctx context.Context, logger *zap.Logger, conf config.Configuration, data *dataset.Dataset) ([]Forecast, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if data == nil {
		return nil, fmt.Errorf("dataset cannot be nil")
	}

	var active []config.SeriesConfig
	for _, series := range conf.Series {
		if !series.Active {
			logger.Debug(fmt.Sprintf("skipping series %s because it is inactive", series.Name),
				zap.String("op", "forecast.GetForecast"),
			)
			continue
		}
		active = append(active, series)
	}

	results := make([]Forecast, len(active))
	g, ctx := errgroup.WithContext(ctx)
	for i, series := range active {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := forecastSeries(logger, &conf, data, series)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func forecastSeries(logger *zap.Logger, conf *config.Configuration, data *dataset.Dataset, series config.SeriesConfig) (Forecast, error) {
	history, err := data.Series(series.Metric)
	if err != nil {
		return Forecast{}, fmt.Errorf("series %s: %w", series.Name, err)
	}

	opts, horizon := conf.ForecastOptions(series)
	result := forecast.Forecast(history, horizon, opts)
	if result.Error != "" {
		logger.Warn(fmt.Sprintf("series %s could not be forecast: %s", series.Name, result.Error),
			zap.String("op", "forecast.GetForecast"),
			zap.Int("points", len(history)),
		)
	}

	anomalies := forecast.DetectAnomalies(history, conf.AnomalyThreshold())
	logger.Debug(fmt.Sprintf("forecast series %s", series.Name),
		zap.String("op", "forecast.GetForecast"),
		zap.String("method", string(result.Method)),
		zap.Int("horizon", horizon),
		zap.Int("anomalies", len(anomalies)),
		zap.Float64("mape", result.Metrics.MAPE),
	)

	return Forecast{
		Name:          series.Name,
		Metric:        series.Metric,
		Horizon:       horizon,
		HistoryPoints: len(history),
		Result:        result,
		Anomalies:     anomalies,
		MovingAverage: forecast.MovingAverage(history, conf.MovingAverageWindow()),
	}, nil
}
