package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/weiihann/sheetbench/export"
	"github.com/weiihann/sheetbench/results"
)

func newExportCmd(logger *slog.Logger, gf *globalFlags) *cobra.Command {
	var (
		driver string
		dsn    string
		in     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Load a results file into a SQL database",
		Long: `Insert every record of a results file into the Records table of a
sqlite3 or mysql database, creating the table if needed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dsn == "" {
				return errors.New("--dsn is required")
			}

			cfg, err := loadConfig(gf)
			if err != nil {
				return err
			}

			path := cfg.ResultsPath()
			if in != "" {
				path = cfg.ResolveInput(in)
			}

			recs, skipped, err := results.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read results: %w", err)
			}

			db, err := export.OpenSQL(driver, dsn)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			n, err := db.Insert(cmd.Context(), recs)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			logger.InfoContext(cmd.Context(), "export complete",
				slog.String("file", path),
				slog.String("driver", driver),
				slog.Int("records", n),
				slog.Int("skipped_lines", skipped),
			)

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records from %s\n", n, path)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&driver, "driver", "sqlite3", "Database driver: sqlite3 or mysql")
	flags.StringVar(&dsn, "dsn", "", "Data source name, e.g. results.db or user:pass@tcp(host:3306)/bench")
	flags.StringVar(&in, "in", "", "Results file (default: the configured output file)")

	return cmd
}
