// Package bench drives the case x library matrix: every write trial for
// every case first, then read trials against the reference writer's files.
// Each record is appended to the store as soon as it arrives.
package bench

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/weiihann/sheetbench/backend"
	"github.com/weiihann/sheetbench/harness"
	"github.com/weiihann/sheetbench/results"
	"github.com/weiihann/sheetbench/trial"
	"github.com/weiihann/sheetbench/workload"
)

// Executor runs one trial in isolation. A non-nil error means no record was
// produced.
type Executor interface {
	Run(ctx context.Context, p trial.Params) (*results.Record, error)
}

// Appender persists one record.
type Appender interface {
	Append(rec results.Record) error
}

// Config selects the matrix of one run.
type Config struct {
	Cases           []workload.Case
	WriteLibraries  []string
	ReadLibraries   []string
	ReferenceWriter string
	CacheMode       string
	TmpDir          string
	RunID           string
}

// Summary counts what a run did.
type Summary struct {
	Trials  int
	Failed  int
	Skipped int
}

// Orchestrator runs a matrix sequentially, one trial in flight at a time.
type Orchestrator struct {
	cfg    Config
	exec   Executor
	store  Appender
	out    io.Writer
	logger *slog.Logger
}

// New creates an Orchestrator. Progress lines are written to out.
func New(cfg Config, exec Executor, store Appender, out io.Writer, logger *slog.Logger) *Orchestrator {
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}

	return &Orchestrator{
		cfg:    cfg,
		exec:   exec,
		store:  store,
		out:    out,
		logger: logger,
	}
}

// RunID returns the id stamped on every record of this run.
func (o *Orchestrator) RunID() string {
	return o.cfg.RunID
}

// Run executes the write phase then the read phase. It stops early only when
// ctx is canceled or the store rejects a record; the in-flight trial of a
// canceled run is not recorded.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	if err := os.MkdirAll(o.cfg.TmpDir, 0o755); err != nil {
		return sum, fmt.Errorf("create tmp dir: %w", err)
	}

	// Reference writer output per case key.
	inputs := make(map[string]string, len(o.cfg.Cases))

	for _, c := range o.cfg.Cases {
		fmt.Fprintf(o.out, "\n== CASE %s ==\n", c.Key())

		for _, lib := range o.cfg.WriteLibraries {
			p := o.params(results.ModeWrite, lib, c)
			p.OutputPath = filepath.Join(o.cfg.TmpDir, TempName(lib, c))

			rec, err := o.trial(ctx, p, &sum)
			if err != nil {
				return sum, err
			}

			if lib == o.cfg.ReferenceWriter && rec.OK && fileExists(p.OutputPath) {
				inputs[c.Key()] = p.OutputPath
			}
		}
	}

	for _, c := range o.cfg.Cases {
		fmt.Fprintf(o.out, "\n== READ %s (files from %s) ==\n", c.Key(), o.cfg.ReferenceWriter)

		input, ok := inputs[c.Key()]
		if !ok {
			for _, lib := range o.cfg.ReadLibraries {
				fmt.Fprintf(o.out, "[SKIP] read %s %s (no input file from %s)\n",
					lib, c.Key(), o.cfg.ReferenceWriter)

				sum.Skipped++
			}

			o.logger.Info("skipping read trials",
				slog.String("case", c.Key()),
				slog.String("reference_writer", o.cfg.ReferenceWriter),
			)

			continue
		}

		for _, lib := range o.cfg.ReadLibraries {
			p := o.params(results.ModeRead, lib, c)
			p.InputPath = input
			p.OriginWriter = o.cfg.ReferenceWriter

			if _, err := o.trial(ctx, p, &sum); err != nil {
				return sum, err
			}
		}
	}

	return sum, nil
}

func (o *Orchestrator) params(mode results.Mode, lib string, c workload.Case) trial.Params {
	p := trial.Params{
		Mode:    mode,
		Library: lib,
		Rows:    c.Rows,
		Cols:    c.Cols,
		RunID:   o.cfg.RunID,
	}

	if mode == results.ModeRead && backend.UsesCache(backend.Library(lib)) {
		p.CacheMode = o.cfg.CacheMode
	}

	return p
}

// trial runs p, appends its record and prints the progress line.
func (o *Orchestrator) trial(ctx context.Context, p trial.Params, sum *Summary) (results.Record, error) {
	if err := ctx.Err(); err != nil {
		return results.Record{}, err
	}

	var rec results.Record

	got, err := o.exec.Run(ctx, p)
	switch {
	case err != nil && ctx.Err() != nil:
		return results.Record{}, ctx.Err()
	case err != nil:
		o.logger.Warn("trial runner failed",
			slog.String("mode", string(p.Mode)),
			slog.String("library", p.Library),
			slog.String("error", err.Error()),
		)

		rec = harness.FailureRecord(p, err)
	default:
		rec = *got
	}

	if err := o.store.Append(rec); err != nil {
		return rec, fmt.Errorf("append record: %w", err)
	}

	sum.Trials++

	if rec.OK {
		fmt.Fprintf(o.out, "[OK]   %s %s %s (%d ms, %.1f MB)\n",
			p.Mode, p.Library, rec.CaseKey(), rec.ElapsedMs, rec.PeakMemoryMb)
	} else {
		sum.Failed++

		fmt.Fprintf(o.out, "[FAIL] %s %s %s\n       %s: %s\n",
			p.Mode, p.Library, rec.CaseKey(), rec.ErrorKind, firstLine(rec.ErrorMessage))
	}

	return rec, nil
}

// TempName returns a unique file name for the output of lib on c.
func TempName(lib string, c workload.Case) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")

	return fmt.Sprintf("bench_%s_%s_%s.xlsx", lib, c.Key(), id[:12])
}

func fileExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}

	return s
}
