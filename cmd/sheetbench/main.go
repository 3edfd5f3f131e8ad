// Package main provides the CLI entry point for sheetbench, a benchmark of
// XLSX read and write libraries across workload sizes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/weiihann/sheetbench/config"
)

func main() {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(logger, level)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	verbose    bool
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	var gf globalFlags

	root := &cobra.Command{
		Use:   "sheetbench",
		Short: "Benchmark XLSX read and write libraries",
		Long: `Sheetbench writes and reads the same rectangular workbook with several
XLSX libraries, one isolated process per trial, and reports time, peak memory
and throughput per case.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if gf.verbose {
				level.Set(slog.LevelDebug)
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&gf.configPath, "config", "",
		"Config file (default: sheetbench.yaml or sheetbench.yml if present)")
	flags.BoolVarP(&gf.verbose, "verbose", "v", false,
		"Enable debug logging")

	root.AddCommand(
		newRunCmd(logger, &gf),
		newTrialCmd(),
		newReportCmd(logger, &gf),
		newServeCmd(logger, &gf),
		newExportCmd(logger, &gf),
	)

	return root
}

func loadConfig(gf *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(gf.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}
