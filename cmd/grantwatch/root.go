package main

import (
	"context"

	"github.com/spf13/cobra"

	"grantwatch/internal/app"
	"grantwatch/internal/config"
	"grantwatch/internal/fetcher"
	"grantwatch/internal/keywords"
	"grantwatch/internal/observability"
	"grantwatch/internal/poller"
	"grantwatch/internal/scraper"
	"grantwatch/internal/snapshot"
)

const defaultConfigPath = "configs/config.yaml"

type options struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "grantwatch",
		Short:         "Polls grant announcement pages and reports links not seen before",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, opts)
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "path to YAML config")

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Poll all sources once and write the snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, opts)
		},
	})
	root.AddCommand(newSeenCmd(opts))

	return root
}

// loadConfig: явно указанный --config обязан существовать,
// путь по умолчанию может отсутствовать (тогда встроенные источники)
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	required := cmd.Flags().Changed("config")
	return config.LoadConfig(opts.configPath, required)
}

func runOnce(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := app.GracefulShutdown(context.Background(), logger)
	defer cancel()

	ledger, err := app.OpenLedger(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ledger initialization failed", "driver", cfg.Storage.Driver, "error", err.Error())
		return err
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Warn("Failed to close ledger", "error", err.Error())
		}
	}()

	matcher, err := keywords.Compile(cfg.Keywords)
	if err != nil {
		return err
	}
	logger.Debug("Keywords compiled", "patterns", matcher.Len(), "sources", len(cfg.Sources))

	f := fetcher.NewFetcher(cfg, logger)
	defer func() { _ = f.Close() }()

	metrics := observability.NewMetrics()
	p := poller.New(f, scraper.NewExtractor(matcher), ledger, logger, metrics)
	orch := app.NewOrchestrator(cfg, logger, p, snapshot.NewWriter(cfg.Snapshot.Path), metrics)

	run, err := orch.Run(ctx)
	if err != nil {
		return err
	}

	app.PrintSummary(cmd.OutOrStdout(), run)
	return nil
}
