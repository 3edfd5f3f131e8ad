// Package backend holds the spreadsheet libraries under test. Each library is
// a fixed adapter selected by identifier; unknown identifiers are rejected.
package backend

import (
	"context"
	"errors"
	"fmt"
)

// Library identifies a backend under test.
type Library string

const (
	// ExcelizeStream uses excelize's StreamWriter and Rows iterator.
	ExcelizeStream Library = "excelize-stream"
	// Excelize uses excelize's in-memory workbook model.
	Excelize Library = "excelize"
	// RawXML writes and parses the OOXML parts directly.
	RawXML Library = "rawxml"
)

// ErrUnsupported is returned for a library that has no adapter for the
// requested mode.
var ErrUnsupported = errors.New("unsupported library")

// Counts is what a read adapter decoded from the first sheet.
type Counts struct {
	Rows  int
	Cells int
}

// Writer writes the workload for one case to path.
type Writer interface {
	Write(ctx context.Context, path string, rows, cols int) error
}

// Reader fully traverses the first sheet of the file at path.
type Reader interface {
	Read(ctx context.Context, path string) (Counts, error)
}

// Options configures an adapter.
type Options struct {
	Cache CacheMode
}

// WriteLibraries returns the write backends in benchmark order.
func WriteLibraries() []Library {
	return []Library{ExcelizeStream, Excelize, RawXML}
}

// ReadLibraries returns the read backends in benchmark order.
func ReadLibraries() []Library {
	return []Library{ExcelizeStream, Excelize, RawXML}
}

// ReferenceWriter is the write backend whose files feed the read phase.
const ReferenceWriter = ExcelizeStream

// WriteBaseline and ReadBaseline normalize relative speed in reports.
const (
	WriteBaseline = ExcelizeStream
	ReadBaseline  = ExcelizeStream
)

// UsesCache reports whether lib honours a CacheMode. The excelize unzip
// limits only apply when a workbook is opened, so the mode affects reads.
func UsesCache(lib Library) bool {
	return lib == Excelize
}

// KnownWriter reports whether lib has a write adapter.
func KnownWriter(lib Library) bool {
	for _, l := range WriteLibraries() {
		if l == lib {
			return true
		}
	}

	return false
}

// KnownReader reports whether lib has a read adapter.
func KnownReader(lib Library) bool {
	for _, l := range ReadLibraries() {
		if l == lib {
			return true
		}
	}

	return false
}

// NewWriter returns the write adapter for lib.
func NewWriter(lib Library, opts Options) (Writer, error) {
	switch lib {
	case ExcelizeStream:
		return streamWriter{}, nil
	case Excelize:
		return modelWriter{}, nil
	case RawXML:
		return rawWriter{}, nil
	default:
		return nil, fmt.Errorf("%w for write: %q", ErrUnsupported, lib)
	}
}

// NewReader returns the read adapter for lib.
func NewReader(lib Library, opts Options) (Reader, error) {
	switch lib {
	case ExcelizeStream:
		return streamReader{}, nil
	case Excelize:
		return modelReader{opts: opts.Cache.excelizeOptions()}, nil
	case RawXML:
		return rawReader{}, nil
	default:
		return nil, fmt.Errorf("%w for read: %q", ErrUnsupported, lib)
	}
}
