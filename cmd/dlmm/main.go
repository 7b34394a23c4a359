package main

import (
	"context"
	"fmt"
	"os"

	"cosmossdk.io/math"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/binfi-labs/dlmm-go/pkg/config"
	"github.com/binfi-labs/dlmm-go/pkg/dlmm"
	"github.com/binfi-labs/dlmm-go/pkg/ledger"
	"github.com/binfi-labs/dlmm-go/pkg/ledger/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "dlmm",
		Short:        "Bin liquidity pool simulator",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a scenario file against an in-memory deployment",
		RunE:  runSimulate,
	}
	simulateCmd.Flags().String("scenario", "", "scenario JSON path")
	simulateCmd.Flags().String("snapshot", "", "write a state snapshot to this path")
	simulateCmd.Flags().String("pg-dsn", "", "archive final state to this Postgres DSN")
	simulateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(simulateCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap against a scenario's final state",
		RunE:  runQuote,
	}
	quoteCmd.Flags().String("scenario", "", "scenario JSON path")
	quoteCmd.Flags().String("amount", "", "input amount")
	quoteCmd.Flags().String("dir", "xy", "swap direction (xy or yx)")
	quoteCmd.Flags().Int("max-bins", 4, "maximum bins to cross")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(quoteCmd)

	factorsCmd := &cobra.Command{
		Use:   "factors",
		Short: "Print the price factor table for a bin step",
		RunE:  runFactors,
	}
	factorsCmd.Flags().Uint64("bin-step", 100, "bin step in basis points")
	factorsCmd.Flags().Int32("from", -10, "first bin to print")
	factorsCmd.Flags().Int32("to", 10, "last bin to print")
	factorsCmd.Flags().String("price", "1", "initial price to render bin prices at")
	root.AddCommand(factorsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Scenario == "" {
		return fmt.Errorf("scenario path is required")
	}
	runner, doc, err := loadScenario(cfg.Scenario, logger)
	if err != nil {
		return err
	}
	if err := runner.runOps(doc); err != nil {
		return err
	}
	if err := runner.summary(); err != nil {
		return err
	}

	if cfg.Snapshot != "" {
		data, err := ledger.Snapshot(runner.store)
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.Snapshot, data, 0o644); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		logger.Info("snapshot written", zap.String("path", cfg.Snapshot), zap.Int("bytes", len(data)))
	}

	if cfg.PgDSN != "" {
		ctx := context.Background()
		store, err := postgres.NewStore(ctx, cfg.PgDSN)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Archive(ctx, runner.store); err != nil {
			return err
		}
		logger.Info("state archived to postgres")
	}
	return nil
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Scenario == "" {
		return fmt.Errorf("scenario path is required")
	}
	amountStr, _ := cmd.Flags().GetString("amount")
	amount, ok := math.NewIntFromString(amountStr)
	if !ok {
		return fmt.Errorf("invalid amount %q", amountStr)
	}
	dir, _ := cmd.Flags().GetString("dir")

	runner, doc, err := loadScenario(cfg.Scenario, logger)
	if err != nil {
		return err
	}
	if err := runner.runOps(doc); err != nil {
		return err
	}

	steps, err := runner.eng.QuoteExactIn(runner.admin, runner.poolID, runner.xToken, runner.yToken, dir != "yx", amount, cfg.MaxBins)
	if err != nil {
		return err
	}
	totalIn, totalOut := math.ZeroInt(), math.ZeroInt()
	for _, s := range steps {
		totalIn = totalIn.Add(s.In)
		totalOut = totalOut.Add(s.Out)
		logger.Info("quote step",
			zap.Int32("bin", s.BinID),
			zap.String("in", s.In.String()),
			zap.String("out", s.Out.String()),
			zap.String("fee", s.Fee.String()),
			zap.Bool("crossed", s.Crossed))
	}
	logger.Info("quote",
		zap.String("total_in", totalIn.String()),
		zap.String("total_out", totalOut.String()))
	return nil
}

func runFactors(cmd *cobra.Command, _ []string) error {
	binStep, _ := cmd.Flags().GetUint64("bin-step")
	from, _ := cmd.Flags().GetInt32("from")
	to, _ := cmd.Flags().GetInt32("to")
	priceStr, _ := cmd.Flags().GetString("price")

	initialPrice, err := parsePrice(priceStr)
	if err != nil {
		return err
	}
	factors, err := dlmm.BuildBinFactors(binStep)
	if err != nil {
		return err
	}

	for binID := from; binID <= to; binID++ {
		unsigned, err := dlmm.ToUnsignedBinID(binID)
		if err != nil {
			return err
		}
		price, err := dlmm.BinPrice(initialPrice, factors, binID)
		if err != nil {
			return err
		}
		fmt.Printf("bin %5d  factor %s  price %s\n", binID, factors[unsigned].String(), renderPrice(price))
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if level != "" {
		if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
			return nil, err
		}
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}
