// Package harness runs each benchmark trial in its own child process and
// collects the single result record the child prints.
package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/weiihann/sheetbench/results"
	"github.com/weiihann/sheetbench/trial"
)

// maxRawOutput bounds the child output kept on a RunnerError record.
const maxRawOutput = 4096

// RunError is returned when the child did not produce a record. Raw holds
// its stdout, or stderr when stdout was empty.
type RunError struct {
	Err error
	Raw string
}

func (e *RunError) Error() string {
	return e.Err.Error()
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Runner launches the trial binary once per trial.
type Runner struct {
	BinaryPath string
	ExtraArgs  []string
	Env        []string
	Timeout    time.Duration
	Logger     *slog.Logger
}

// NewRunner creates a Runner for the given command. ExtraArgs are placed
// before the trial flags; Env is appended to the inherited environment.
func NewRunner(cfg CommandConfig, timeout time.Duration, logger *slog.Logger) *Runner {
	return &Runner{
		BinaryPath: cfg.Binary,
		ExtraArgs:  cfg.ExtraArgs,
		Env:        cfg.Env,
		Timeout:    timeout,
		Logger:     logger,
	}
}

// Run executes one trial and returns the record printed by the child. The
// child's exit status is not a trial outcome: any status is accepted as long
// as stdout ends with a record.
func (r *Runner) Run(ctx context.Context, p trial.Params) (*results.Record, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	args := make([]string, 0, len(r.ExtraArgs)+16)
	args = append(args, r.ExtraArgs...)
	args = append(args, p.Args()...)

	cmd := exec.CommandContext(ctx, r.BinaryPath, args...)

	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger := r.Logger.With(
		slog.String("mode", string(p.Mode)),
		slog.String("library", p.Library),
		slog.String("case", fmt.Sprintf("%dx%d", p.Rows, p.Cols)),
	)

	logger.Debug("starting trial", slog.String("binary", r.BinaryPath))

	wallStart := time.Now()
	runErr := cmd.Run()
	wall := time.Since(wallStart)

	logger.Debug("trial finished", slog.Duration("wall_time", wall))

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, &RunError{
				Err: fmt.Errorf("trial timed out after %s", r.Timeout),
				Raw: rawOutput(&stdout, &stderr),
			}
		}

		return nil, ctxErr
	}

	rec, parseErr := parseRecord(stdout.Bytes())
	if parseErr != nil {
		err := fmt.Errorf("parse trial output: %w", parseErr)
		if runErr != nil {
			err = fmt.Errorf("trial process failed: %w", runErr)
		}

		return nil, &RunError{Err: err, Raw: rawOutput(&stdout, &stderr)}
	}

	if runErr != nil {
		logger.Warn("trial exited abnormally after printing a record",
			slog.String("error", runErr.Error()),
		)
	}

	if rec.PeakMemoryMb == 0 {
		rec.PeakMemoryMb = childPeakMemoryMB(cmd.ProcessState)
	}

	return rec, nil
}

// FailureRecord builds the synthetic record for a trial whose process did
// not produce one.
func FailureRecord(p trial.Params, err error) results.Record {
	rec := trial.NewRecord(p)
	rec.Fail(results.KindRunner, "Runner failed: "+err.Error())

	var rerr *RunError
	if errors.As(err, &rerr) {
		rec.RawOutput = rerr.Raw
	}

	return rec
}

// parseRecord decodes the last non-empty line of out.
func parseRecord(out []byte) (*results.Record, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return nil, errors.New("empty output")
	}

	line := out
	if i := bytes.LastIndexByte(out, '\n'); i >= 0 {
		line = bytes.TrimSpace(out[i+1:])
	}

	var rec results.Record
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}

	if !rec.Mode.Valid() {
		return nil, fmt.Errorf("record has invalid mode %q", rec.Mode)
	}

	return &rec, nil
}

func rawOutput(stdout, stderr *bytes.Buffer) string {
	raw := bytes.TrimSpace(stdout.Bytes())
	if len(raw) == 0 {
		raw = bytes.TrimSpace(stderr.Bytes())
	}

	if len(raw) > maxRawOutput {
		raw = raw[len(raw)-maxRawOutput:]
	}

	return string(raw)
}
