package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/commerce-analytics/internal/config"
	"github.com/iwvelando/commerce-analytics/internal/dataset"
	"github.com/iwvelando/commerce-analytics/internal/forecast"
	"github.com/iwvelando/commerce-analytics/internal/optimizer"
	"github.com/iwvelando/commerce-analytics/internal/server"
	"github.com/iwvelando/commerce-analytics/pkg/constants"
	"github.com/iwvelando/commerce-analytics/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) forecastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forecast",
		Short: "Forecast every active configured series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.runForecasts(cmd)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch a.outputFormat {
			case constants.OutputFormatCSV:
				return output.CsvFormat(w, results)
			case constants.OutputFormatJSON:
				return output.JSONFormat(w, results)
			default:
				output.PrettyFormat(w, results)
				return nil
			}
		},
	}
}

func (a *app) anomaliesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "anomalies",
		Short: "List anomalous days in every active configured series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.runForecasts(cmd)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch a.outputFormat {
			case constants.OutputFormatCSV:
				return output.CsvAnomalies(w, results)
			case constants.OutputFormatJSON:
				return output.JSONFormat(w, output.AnomalyReports(results))
			default:
				output.PrettyAnomalies(w, results)
				return nil
			}
		},
	}
}

func (a *app) runForecasts(cmd *cobra.Command) ([]forecast.Forecast, error) {
	data, err := a.loadDataset()
	if err != nil {
		return nil, err
	}
	results, err := forecast.GetForecast(cmd.Context(), a.logger, *a.conf, data)
	if err != nil {
		return nil, fmt.Errorf("failed to compute forecast: %w", err)
	}
	return results, nil
}

func (a *app) optimizeCmd() *cobra.Command {
	var total float64
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Allocate the configured budget plans across ad channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("budget") {
				a.conf.Plans = []config.PlanConfig{{Name: "command line", Active: true, TotalBudget: total}}
			}
			data, err := a.loadDataset()
			if err != nil {
				return err
			}
			runner, err := optimizer.NewRunner(a.logger, a.conf, data)
			if err != nil {
				return fmt.Errorf("failed to initialize optimizer: %w", err)
			}
			result, err := runner.Run()
			if err != nil {
				return fmt.Errorf("optimizer execution failed: %w", err)
			}
			if result.Empty() {
				a.logger.Warn("no active budget plans to optimize",
					zap.String("op", "main"),
				)
			}

			w := cmd.OutOrStdout()
			switch a.outputFormat {
			case constants.OutputFormatCSV:
				return output.CsvPlans(w, result.Summaries)
			case constants.OutputFormatJSON:
				return output.JSONFormat(w, result.Summaries)
			default:
				output.PrettyPlans(w, result.Summaries)
				return nil
			}
		},
	}
	cmd.Flags().Float64Var(&total, "budget", 0, "optimize this total budget instead of the configured plans")
	return cmd
}

func (a *app) mockCmd() *cobra.Command {
	var (
		opts   dataset.MockOptions
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Write a synthetic store dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("seed") {
				opts.Seed = a.conf.Dataset.Seed
			}
			if !flags.Changed("days") {
				opts.Days = a.conf.Dataset.Days
			}
			if !flags.Changed("start") {
				opts.Start = a.conf.Dataset.Start
			}

			data, err := dataset.Generate(opts)
			if err != nil {
				return fmt.Errorf("failed to generate dataset: %w", err)
			}

			if out == "" {
				if err := data.Encode(cmd.OutOrStdout(), format); err != nil {
					return fmt.Errorf("failed to write dataset: %w", err)
				}
			} else if err := writeDataset(data, out, format); err != nil {
				return err
			}
			a.logger.Info(fmt.Sprintf("generated %d days of mock data", len(data.Revenue)),
				zap.String("op", "main"),
				zap.Uint64("seed", opts.Seed),
				zap.String("output", out),
			)
			return nil
		},
	}
	defaults := dataset.DefaultMockOptions()
	cmd.Flags().Uint64Var(&opts.Seed, "seed", defaults.Seed, "random seed")
	cmd.Flags().IntVar(&opts.Days, "days", defaults.Days, "number of days to generate")
	cmd.Flags().StringVar(&opts.Start, "start", defaults.Start, "first date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&format, "format", dataset.FormatJSON, "dataset format: json or yaml")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	var (
		serverConfig string
		address      string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analytics HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig(serverConfig)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Address = address
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(a.logger, cfg, a.conf, version).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&serverConfig, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override")
	return cmd
}

// writeDataset encodes data into a new file at path. A failed close is
// reported since it can lose buffered output.
func writeDataset(data *dataset.Dataset, path, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := data.Encode(f, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
