package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/weiihann/sheetbench/config"
	"github.com/weiihann/sheetbench/report"
	"github.com/weiihann/sheetbench/results"
)

func newReportCmd(logger *slog.Logger, gf *globalFlags) *cobra.Command {
	var (
		in          string
		md          string
		htmlOut     string
		chartsDir   string
		logScale    bool
		hideMissing bool
		hideFail    bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize a results file",
		Long: `Print the write and read tables of a results file to the console and
optionally save them as Markdown, as an HTML page with charts, or as PNG charts.
A bare file name is looked up in the results dir.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(gf)
			if err != nil {
				return err
			}

			path := cfg.ResultsPath()
			if in != "" {
				path = cfg.ResolveInput(in)
			}

			return runReport(logger, cmd.OutOrStdout(), cfg, reportConfig{
				in:          path,
				md:          md,
				html:        htmlOut,
				chartsDir:   chartsDir,
				logScale:    logScale,
				hideMissing: hideMissing,
				hideFail:    hideFail,
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&in, "in", "",
		"Results file (default: the configured output file)")
	flags.StringVar(&md, "md", "",
		"Write a Markdown report (default name report.md in the results dir)")
	flags.Lookup("md").NoOptDefVal = "report.md"
	flags.StringVar(&htmlOut, "html", "",
		"Write an HTML report with charts to this file")
	flags.StringVar(&chartsDir, "charts-dir", "",
		"Write one PNG chart per table and metric into this directory")
	flags.BoolVar(&logScale, "log", false,
		"Use a logarithmic Y axis for PNG charts")
	flags.BoolVar(&hideMissing, "hide-missing", false,
		"Hide cases with no record for any library")
	flags.BoolVar(&hideFail, "hide-fail", false,
		"Hide cases where no library succeeded")

	return cmd
}

type reportConfig struct {
	in          string
	md          string
	html        string
	chartsDir   string
	logScale    bool
	hideMissing bool
	hideFail    bool
}

func reportOptions(cfg *config.Config) report.Options {
	return report.Options{
		WriteLibraries: cfg.WriteLibraries,
		ReadLibraries:  cfg.ReadLibraries,
		WriteBaseline:  cfg.WriteBaseline,
		ReadBaseline:   cfg.ReadBaseline,
	}
}

func runReport(logger *slog.Logger, out io.Writer, cfg *config.Config, rc reportConfig) error {
	recs, skipped, err := results.ReadFile(rc.in)
	if err != nil {
		return fmt.Errorf("read results %s: %w", rc.in, err)
	}

	if skipped > 0 {
		logger.Warn("skipped malformed lines",
			slog.String("file", rc.in),
			slog.Int("lines", skipped),
		)
	}

	if len(recs) == 0 {
		fmt.Fprintf(out, "No results found in %s\n", rc.in)

		return nil
	}

	opts := reportOptions(cfg)
	opts.HideMissing = rc.hideMissing
	opts.HideFail = rc.hideFail

	rep := report.Build(recs, opts)

	fmt.Fprintf(out, "Results file: %s\n\n", rc.in)

	if err := report.WriteText(out, rep); err != nil {
		return err
	}

	fmt.Fprintln(out, "Done.")

	now := time.Now()
	source := filepath.Base(rc.in)

	if rc.md != "" {
		path := cfg.ResolveInput(rc.md)

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}

		err := writeFile(path, func(w io.Writer) error {
			return report.WriteMarkdown(w, rep, source, now)
		})
		if err != nil {
			return fmt.Errorf("write markdown: %w", err)
		}

		fmt.Fprintf(out, "\nMarkdown saved to: %s\n", path)
	}

	if rc.html != "" {
		err := writeFile(rc.html, func(w io.Writer) error {
			return report.WriteHTML(w, &report.Page{
				Title:     "Benchmark results",
				Source:    source,
				Generated: now,
				Report:    rep,
			})
		})
		if err != nil {
			return fmt.Errorf("write html: %w", err)
		}

		fmt.Fprintf(out, "HTML saved to: %s\n", rc.html)
	}

	if rc.chartsDir != "" {
		paths, err := report.WriteCharts(rc.chartsDir, rep, rc.logScale)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Charts saved to: %s (%d files)\n", rc.chartsDir, len(paths))
	}

	return nil
}
