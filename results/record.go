// Package results defines the benchmark result record and its append-only
// JSON-lines store.
package results

import (
	"time"

	"github.com/weiihann/sheetbench/workload"
)

// Mode is the benchmark phase of a record.
type Mode string

const (
	ModeWrite Mode = "write"
	ModeRead  Mode = "read"
)

// Valid reports whether m is a known phase.
func (m Mode) Valid() bool {
	return m == ModeWrite || m == ModeRead
}

// ErrorKind names the failure category of a record with OK == false.
type ErrorKind string

const (
	// KindValidation marks bad trial parameters; no backend code ran.
	KindValidation ErrorKind = "ValidationError"
	// KindUnsupportedLibrary marks an unknown library for the mode.
	KindUnsupportedLibrary ErrorKind = "UnsupportedLibrary"
	// KindBackend marks a failure raised by a backend adapter.
	KindBackend ErrorKind = "BackendError"
	// KindRunner marks a trial whose process did not produce a record.
	KindRunner ErrorKind = "RunnerError"
)

// Record is one trial outcome. It is written once and never mutated.
type Record struct {
	Timestamp    time.Time `json:"timestamp"`
	RunID        string    `json:"runId,omitempty"`
	Mode         Mode      `json:"mode"`
	Library      string    `json:"library"`
	RowCount     int       `json:"rowCount"`
	ColCount     int       `json:"colCount"`
	OutputPath   string    `json:"outputPath,omitempty"`
	InputPath    string    `json:"inputPath,omitempty"`
	OriginWriter string    `json:"originWriter,omitempty"`
	CacheMode    string    `json:"cacheMode,omitempty"`

	OK           bool    `json:"ok"`
	ElapsedMs    int64   `json:"elapsedMs"`
	PeakMemoryMb float64 `json:"peakMemoryMb"`

	// Read mode only, present iff OK.
	ReadRowCount  *int `json:"readRowCount,omitempty"`
	ReadCellCount *int `json:"readCellCount,omitempty"`

	// Present iff !OK.
	ErrorMessage string    `json:"errorMessage,omitempty"`
	ErrorKind    ErrorKind `json:"errorKind,omitempty"`

	// Child process output kept on RunnerError records.
	RawOutput string `json:"rawOutput,omitempty"`
}

// Case returns the workload case of the record.
func (r *Record) Case() workload.Case {
	return workload.Case{Rows: r.RowCount, Cols: r.ColCount}
}

// CaseKey returns the "{rows}x{cols}" grouping key.
func (r *Record) CaseKey() string {
	return r.Case().Key()
}

// SetReadCounts records the decoded row and cell counts of a read trial.
func (r *Record) SetReadCounts(rows, cells int) {
	r.ReadRowCount = &rows
	r.ReadCellCount = &cells
}

// Fail marks the record as failed with the given category and message.
func (r *Record) Fail(kind ErrorKind, msg string) {
	r.OK = false
	r.ErrorKind = kind
	r.ErrorMessage = msg
	r.ReadRowCount = nil
	r.ReadCellCount = nil
}
