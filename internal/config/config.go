// Package config defines the data structures related to configuration and
// includes functions for loading the config and resolving it into the
// options of the forecasting and budgeting packages.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/commerce-analytics/pkg/constants"
	"github.com/iwvelando/commerce-analytics/pkg/validation"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables that override config keys,
// e.g. COMMERCE_ANALYTICS_FORECAST_HORIZON.
const EnvPrefix = "COMMERCE_ANALYTICS"

// Configuration holds all configuration for commerce-analytics.
type Configuration struct {
	Logging   LoggingConfig    `yaml:"logging,omitempty" mapstructure:"logging"`
	Output    OutputConfig     `yaml:"output,omitempty" mapstructure:"output"`
	Forecast  ForecastDefaults `yaml:"forecast,omitempty" mapstructure:"forecast"`
	Economics EconomicsConfig  `yaml:"economics,omitempty" mapstructure:"economics"`
	Optimizer OptimizerConfig  `yaml:"optimizer,omitempty" mapstructure:"optimizer"`
	Dataset   DatasetConfig    `yaml:"dataset,omitempty" mapstructure:"dataset"`
	Series    []SeriesConfig   `yaml:"series,omitempty" mapstructure:"series"`
	Plans     []PlanConfig     `yaml:"plans,omitempty" mapstructure:"plans"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
}

// ForecastDefaults apply to every series that does not override them.
type ForecastDefaults struct {
	Horizon             int     `yaml:"horizon,omitempty" mapstructure:"horizon"`
	Method              string  `yaml:"method,omitempty" mapstructure:"method"`
	Confidence          float64 `yaml:"confidence,omitempty" mapstructure:"confidence"`
	Seasonality         string  `yaml:"seasonality,omitempty" mapstructure:"seasonality"`
	AnomalyThreshold    float64 `yaml:"anomalyThreshold,omitempty" mapstructure:"anomalyThreshold"`
	MovingAverageWindow int     `yaml:"movingAverageWindow,omitempty" mapstructure:"movingAverageWindow"`
}

// DatasetConfig selects where historical data comes from.
type DatasetConfig struct {
	Source string `yaml:"source,omitempty" mapstructure:"source"` // mock, file
	Path   string `yaml:"path,omitempty" mapstructure:"path"`
	Seed   uint64 `yaml:"seed,omitempty" mapstructure:"seed"`
	Days   int    `yaml:"days,omitempty" mapstructure:"days"`
	Start  string `yaml:"start,omitempty" mapstructure:"start"`
}

// SeriesConfig is one dataset metric to forecast. Zero-valued fields take
// the ForecastDefaults.
type SeriesConfig struct {
	Name        string  `yaml:"name" mapstructure:"name"`
	Active      bool    `yaml:"active" mapstructure:"active"`
	Metric      string  `yaml:"metric" mapstructure:"metric"`
	Horizon     int     `yaml:"horizon,omitempty" mapstructure:"horizon"`
	Method      string  `yaml:"method,omitempty" mapstructure:"method"`
	Confidence  float64 `yaml:"confidence,omitempty" mapstructure:"confidence"`
	Seasonality string  `yaml:"seasonality,omitempty" mapstructure:"seasonality"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}
	return decode(v)
}

// Default returns the configuration used when no file is given: a mock
// dataset with revenue and orders forecasts and no budget plans.
func Default() *Configuration {
	v := newViper()
	conf, err := decode(v)
	if err != nil {
		panic(fmt.Sprintf("default configuration is invalid: %v", err))
	}
	conf.Series = []SeriesConfig{
		{Name: "Revenue", Active: true, Metric: constants.MetricRevenue},
		{Name: "Orders", Active: true, Metric: constants.MetricOrders},
	}
	return conf
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output.format", constants.OutputFormatPretty)

	v.SetDefault("forecast.horizon", constants.DefaultHorizon)
	v.SetDefault("forecast.method", "auto")
	v.SetDefault("forecast.confidence", constants.DefaultConfidence)
	v.SetDefault("forecast.seasonality", "auto")
	v.SetDefault("forecast.anomalyThreshold", constants.DefaultAnomalyThreshold)
	v.SetDefault("forecast.movingAverageWindow", constants.DefaultMovingAverageWindow)

	v.SetDefault("economics.cogsRate", constants.COGSRate)
	v.SetDefault("economics.platformFeeRate", constants.PlatformFeeRate)
	v.SetDefault("economics.defaultROAS", constants.DefaultROAS)
	v.SetDefault("economics.defaultCPA", constants.DefaultCPA)
	v.SetDefault("economics.fallbackChannel", constants.ChannelGoogle)

	v.SetDefault("optimizer.channels", []string{constants.ChannelMeta, constants.ChannelGoogle, constants.ChannelTikTok})
	v.SetDefault("optimizer.step", constants.OptimizerStep)
	v.SetDefault("optimizer.maxRounds", constants.OptimizerMaxRounds)
	v.SetDefault("optimizer.roundCap", constants.OptimizerRoundCap)

	v.SetDefault("dataset.source", constants.DatasetSourceMock)
	v.SetDefault("dataset.seed", constants.DefaultMockSeed)
	v.SetDefault("dataset.days", constants.DefaultMockDays)
	v.SetDefault("dataset.start", constants.DefaultMockStart)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	configuration.normalize()
	return &configuration, nil
}

func (c *Configuration) normalize() {
	c.Dataset.Source = strings.ToLower(strings.TrimSpace(c.Dataset.Source))
	for i := range c.Series {
		c.Series[i].Metric = strings.ToLower(strings.TrimSpace(c.Series[i].Metric))
		if c.Series[i].Name == "" {
			c.Series[i].Name = c.Series[i].Metric
		}
	}
	for i := range c.Plans {
		for j := range c.Plans[i].Bounds {
			c.Plans[i].Bounds[j].Channel = c.Plans[i].Bounds[j].Key()
		}
	}
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var series []validation.SeriesConfig
	for _, s := range c.Series {
		series = append(series, validation.SeriesConfig{
			Name:        s.Name,
			Active:      s.Active,
			Metric:      s.Metric,
			Method:      s.Method,
			Seasonality: s.Seasonality,
			Confidence:  s.Confidence,
			Horizon:     s.Horizon,
		})
	}

	var plans []validation.PlanConfig
	for _, p := range c.Plans {
		var bounds []validation.BoundConfig
		for _, b := range p.Bounds {
			bounds = append(bounds, validation.BoundConfig{Channel: b.Key(), Min: b.Min, Max: b.Max})
		}
		plans = append(plans, validation.PlanConfig{
			Name:        p.Name,
			Active:      p.Active,
			TotalBudget: p.TotalBudget,
			Bounds:      bounds,
		})
	}

	validator := &validation.ConfigValidator{
		Series:   series,
		Plans:    plans,
		Channels: c.Assumptions().Channels,
	}
	warnings := validator.ValidateAll()

	if c.Dataset.Source != constants.DatasetSourceMock && c.Dataset.Source != constants.DatasetSourceFile {
		warnings = append(warnings, fmt.Sprintf("Dataset source '%s' is not one of %s, %s",
			c.Dataset.Source, constants.DatasetSourceMock, constants.DatasetSourceFile))
	}
	if c.Dataset.Source == constants.DatasetSourceFile && c.Dataset.Path == "" {
		warnings = append(warnings, "Dataset source is file but no dataset path is set")
	}
	warnings = append(warnings, validation.ValidateEconomics(c.Economics.COGSRate, c.Economics.PlatformFeeRate)...)
	return warnings
}
