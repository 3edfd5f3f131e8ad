package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/weiihann/sheetbench/bench"
	"github.com/weiihann/sheetbench/config"
	"github.com/weiihann/sheetbench/harness"
	"github.com/weiihann/sheetbench/results"
)

func newRunCmd(logger *slog.Logger, gf *globalFlags) *cobra.Command {
	var (
		cases      string
		out        string
		cacheMode  string
		trialBin   string
		timeout    time.Duration
		resultsDir string
		tmpDir     string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the write and read benchmark matrix",
		Long: `Run every write library on every case, then every read library on the
files produced by the reference writer. Each trial runs in its own process and
its record is appended to the results file as soon as it completes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(gf)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("cases") {
				cfg.Cases = strings.Split(cases, ",")
			}
			if flags.Changed("out") {
				cfg.Output = out
			}
			if flags.Changed("cache-mode") {
				cfg.CacheMode = cacheMode
			}
			if flags.Changed("trial-bin") {
				cfg.TrialBinary = trialBin
			}
			if flags.Changed("timeout") {
				cfg.Timeout = timeout
			}
			if flags.Changed("results-dir") {
				cfg.ResultsDir = resultsDir
			}
			if flags.Changed("tmp-dir") {
				cfg.TmpDir = tmpDir
			}

			return runBenchmark(cmd.Context(), logger, cmd.OutOrStdout(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cases, "cases", "",
		"Comma-separated RxC cases, e.g. 1000x10,5000x20 (default: built-in list)")
	flags.StringVar(&out, "out", "results.jsonl",
		"Results file name inside the results dir (.jsonl is appended if missing)")
	flags.StringVar(&cacheMode, "cache-mode", "none",
		"Worksheet cache mode for the excelize library: none, memory, disk")
	flags.StringVar(&trialBin, "trial-bin", "",
		"Binary used to spawn trials (default: this executable)")
	flags.DurationVar(&timeout, "timeout", 0,
		"Kill a trial after this long (0 = no timeout)")
	flags.StringVar(&resultsDir, "results-dir", "results",
		"Directory holding results files")
	flags.StringVar(&tmpDir, "tmp-dir", "",
		"Directory for generated workbooks (default: $TMPDIR/sheetbench)")

	return cmd
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	out io.Writer,
	cfg *config.Config,
) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	cases := cfg.ParsedCases()

	// Step 1: Locate the trial binary.
	binPath, err := harness.ResolveBinary(cfg.TrialBinary)
	if err != nil {
		return err
	}

	runner := harness.NewRunner(harness.WrapCommand(binPath), cfg.Timeout, logger)

	// Step 2: Open the results store.
	store, err := results.OpenStore(cfg.ResultsPath())
	if err != nil {
		return err
	}
	defer store.Close()

	orch := bench.New(bench.Config{
		Cases:           cases,
		WriteLibraries:  cfg.WriteLibraries,
		ReadLibraries:   cfg.ReadLibraries,
		ReferenceWriter: cfg.ReferenceWriter,
		CacheMode:       cfg.CacheMode,
		TmpDir:          cfg.TmpDir,
	}, runner, store, out, logger)

	keys := make([]string, len(cases))
	for i, c := range cases {
		keys[i] = c.Key()
	}

	fmt.Fprintf(out, "Results: %s\n", store.Path())
	fmt.Fprintf(out, "Tmp dir: %s\n", cfg.TmpDir)
	fmt.Fprintf(out, "Cache mode: %s\n", cfg.CacheMode)
	fmt.Fprintf(out, "Cases: %s\n", strings.Join(keys, ", "))

	logger.InfoContext(ctx, "starting benchmark",
		slog.String("run_id", orch.RunID()),
		slog.String("trial_binary", binPath),
		slog.Int("cases", len(cases)),
		slog.Any("write_libraries", cfg.WriteLibraries),
		slog.Any("read_libraries", cfg.ReadLibraries),
	)

	// Step 3: Run the matrix.
	start := time.Now()

	sum, err := orch.Run(ctx)
	if err != nil {
		return fmt.Errorf("benchmark stopped after %d trials: %w", sum.Trials, err)
	}

	logger.InfoContext(ctx, "benchmark complete",
		slog.Int("trials", sum.Trials),
		slog.Int("failed", sum.Failed),
		slog.Int("skipped", sum.Skipped),
		slog.Duration("elapsed", time.Since(start)),
	)

	fmt.Fprintf(out, "\nDone. Results saved to: %s\n", store.Path())

	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return write(f)
}
