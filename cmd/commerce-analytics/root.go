package main

import (
	"fmt"
	"os"

	"github.com/iwvelando/commerce-analytics/internal/config"
	"github.com/iwvelando/commerce-analytics/internal/dataset"
	"github.com/iwvelando/commerce-analytics/pkg/constants"
	"github.com/iwvelando/commerce-analytics/pkg/validation"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// app carries the state shared by every command. PersistentPreRunE fills
// conf, logger and outputFormat before a command runs.
type app struct {
	root *cobra.Command

	configPath   string
	logLevel     string
	outputFormat string
	window       int

	conf   *config.Configuration
	logger *zap.Logger
}

func newApp() *app {
	a := &app{}
	a.root = &cobra.Command{
		Use:           "commerce-analytics",
		Short:         "Forecast store metrics and plan ad budgets",
		Long:          "Forecast revenue, orders and channel metrics from daily history, detect anomalies and search for profit-maximising ad budget allocations.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	a.bindFlags(a.root.PersistentFlags())

	a.root.AddCommand(
		a.forecastCmd(),
		a.anomaliesCmd(),
		a.optimizeCmd(),
		a.mockCmd(),
		a.serveCmd(),
	)
	return a
}

func (a *app) bindFlags(flags *pflag.FlagSet) {
	flags.StringVar(&a.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.StringVar(&a.outputFormat, "output-format", "", "type of output override: pretty, csv, json")
	flags.IntVar(&a.window, "window", 0, "only use the last N days of history (0 uses all)")
}

// setup loads the configuration and builds the logger. A missing default
// configuration file falls back to the built-in configuration; an explicitly
// requested file must exist.
func (a *app) setup(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") || fileExists(a.configPath) {
		conf, err := config.LoadConfiguration(a.configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration at %s: %w", a.configPath, err)
		}
		a.conf = conf
	} else {
		a.conf = config.Default()
	}
	conf := a.conf

	logger, err := initializeLogger(conf.Logging, a.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	if a.outputFormat == "" {
		a.outputFormat = conf.Output.Format
	}
	if a.outputFormat == "" {
		a.outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(a.outputFormat); err != nil {
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}
	return nil
}

// loadDataset reads the configured dataset, restricted to --window days.
func (a *app) loadDataset() (*dataset.Dataset, error) {
	data, err := dataset.FromConfig(a.conf.Dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	a.logger.Debug(fmt.Sprintf("loaded dataset with %d days of revenue", len(data.Revenue)),
		zap.String("op", "main"),
		zap.String("source", a.conf.Dataset.Source),
		zap.Strings("channels", data.ChannelNames()),
	)
	return data.Window(a.window), nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
