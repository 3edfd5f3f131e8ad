package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weiihann/sheetbench/harness"
	"github.com/weiihann/sheetbench/results"
	"github.com/weiihann/sheetbench/trial"
)

// newTrialCmd is the child side of a trial. It prints exactly one record on
// stdout and exits 0 whatever the outcome.
func newTrialCmd() *cobra.Command {
	var (
		mode      string
		lib       string
		rows      string
		cols      string
		p         trial.Params
		cacheMode string
	)

	cmd := &cobra.Command{
		Use:    harness.TrialCommand,
		Short:  "Run a single trial (used internally by run)",
		Hidden: true,
		Args:   cobra.ArbitraryArgs,
		FParseErrWhitelist: cobra.FParseErrWhitelist{
			UnknownFlags: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			p.Mode = results.Mode(strings.ToLower(strings.TrimSpace(mode)))
			p.Library = strings.TrimSpace(lib)
			p.Rows = atoi(rows)
			p.Cols = atoi(cols)
			p.CacheMode = cacheMode

			rec := trial.Execute(cmd.Context(), p)

			// Nothing else can be reported once stdout fails.
			_ = results.Encode(cmd.OutOrStdout(), rec)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&mode, "mode", "", "write or read")
	flags.StringVar(&lib, "lib", "", "Library identifier")
	flags.StringVar(&rows, "rows", "", "Data row count")
	flags.StringVar(&cols, "cols", "", "Column count")
	flags.StringVar(&p.OutputPath, "out", "", "Output file (write mode)")
	flags.StringVar(&p.InputPath, "in", "", "Input file (read mode)")
	flags.StringVar(&p.OriginWriter, "writer", "", "Library that produced the input file (read mode)")
	flags.StringVar(&cacheMode, "cache-mode", "", "Cache mode for libraries that support one")
	flags.StringVar(&p.RunID, "run-id", "", "Run identifier stamped on the record")

	return cmd
}

// atoi returns 0 for anything that is not a number, which validation then
// rejects.
func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}

	return n
}
