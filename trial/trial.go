// Package trial executes exactly one benchmark trial. It runs inside the
// isolated child process and turns every outcome, including adapter panics,
// into a results.Record.
package trial

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/weiihann/sheetbench/backend"
	"github.com/weiihann/sheetbench/results"
)

// Adapter constructors, replaced in tests.
var (
	newWriter = backend.NewWriter
	newReader = backend.NewReader
)

// Params describes one trial.
type Params struct {
	Mode         results.Mode
	Library      string
	Rows         int
	Cols         int
	OutputPath   string
	InputPath    string
	OriginWriter string
	CacheMode    string
	RunID        string
}

// Args returns the command-line flags that reproduce p in the child.
func (p Params) Args() []string {
	args := []string{
		"--mode", string(p.Mode),
		"--lib", p.Library,
		"--rows", strconv.Itoa(p.Rows),
		"--cols", strconv.Itoa(p.Cols),
	}

	if p.OutputPath != "" {
		args = append(args, "--out", p.OutputPath)
	}
	if p.InputPath != "" {
		args = append(args, "--in", p.InputPath)
	}
	if p.OriginWriter != "" {
		args = append(args, "--writer", p.OriginWriter)
	}
	if p.CacheMode != "" {
		args = append(args, "--cache-mode", p.CacheMode)
	}
	if p.RunID != "" {
		args = append(args, "--run-id", p.RunID)
	}

	return args
}

// NewRecord returns the record skeleton for p: identity fields set, no
// outcome yet.
func NewRecord(p Params) results.Record {
	rec := results.Record{
		Timestamp: time.Now().UTC(),
		RunID:     p.RunID,
		Mode:      p.Mode,
		Library:   p.Library,
		RowCount:  p.Rows,
		ColCount:  p.Cols,
	}

	switch p.Mode {
	case results.ModeWrite:
		rec.OutputPath = p.OutputPath
	case results.ModeRead:
		rec.InputPath = p.InputPath
		rec.OriginWriter = p.OriginWriter

		if p.CacheMode != "" && backend.UsesCache(backend.Library(p.Library)) {
			rec.CacheMode = p.CacheMode
		}
	}

	return rec
}

// Execute runs the trial described by p and returns its record. It never
// panics and never returns an error: failures are recorded with OK false.
func Execute(ctx context.Context, p Params) results.Record {
	rec := NewRecord(p)

	start := time.Now()
	err := run(ctx, p, &rec)
	elapsed := time.Since(start)

	rec.ElapsedMs = elapsed.Round(time.Millisecond).Milliseconds()
	rec.PeakMemoryMb = PeakMemoryMB()

	if err != nil {
		rec.Fail(Kind(err), err.Error())

		return rec
	}

	rec.OK = true

	return rec
}

func run(ctx context.Context, p Params, rec *results.Record) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &BackendError{
				Library: p.Library,
				Err:     fmt.Errorf("panic: %v", v),
			}
		}
	}()

	if err := Validate(p); err != nil {
		return err
	}

	cache, err := backend.ParseCacheMode(p.CacheMode)
	if err != nil {
		return invalid("%v", err)
	}

	lib := backend.Library(p.Library)
	opts := backend.Options{Cache: cache}

	switch p.Mode {
	case results.ModeWrite:
		w, err := newWriter(lib, opts)
		if err != nil {
			return &UnsupportedLibraryError{Mode: p.Mode, Library: p.Library}
		}

		if err := w.Write(ctx, p.OutputPath, p.Rows, p.Cols); err != nil {
			return &BackendError{Library: p.Library, Err: err}
		}

	case results.ModeRead:
		r, err := newReader(lib, opts)
		if err != nil {
			return &UnsupportedLibraryError{Mode: p.Mode, Library: p.Library}
		}

		counts, err := r.Read(ctx, p.InputPath)
		if err != nil {
			return &BackendError{Library: p.Library, Err: err}
		}

		rec.SetReadCounts(counts.Rows, counts.Cells)
	}

	return nil
}

// Validate checks p before any backend code runs. For write mode it creates
// the output directory.
func Validate(p Params) error {
	if !p.Mode.Valid() {
		return invalid("invalid mode %q (expected write or read)", p.Mode)
	}

	if p.Library == "" {
		return invalid("missing library")
	}

	if p.Rows <= 0 || p.Cols <= 0 {
		return invalid("invalid rows/cols %dx%d (must be > 0)", p.Rows, p.Cols)
	}

	switch p.Mode {
	case results.ModeWrite:
		if p.OutputPath == "" {
			return invalid("missing output path for write mode")
		}

		if dir := filepath.Dir(p.OutputPath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return invalid("create output dir %s: %v", dir, err)
			}
		}

	case results.ModeRead:
		if p.InputPath == "" {
			return invalid("missing input path for read mode")
		}

		info, err := os.Stat(p.InputPath)
		if err != nil {
			return invalid("input file %s: %v", p.InputPath, err)
		}

		if !info.Mode().IsRegular() {
			return invalid("input %s is not a regular file", p.InputPath)
		}
	}

	return nil
}
