package trial

import (
	"errors"
	"fmt"

	"github.com/weiihann/sheetbench/results"
)

// ValidationError reports bad trial parameters. No backend code runs.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// UnsupportedLibraryError reports a library with no adapter for the mode.
type UnsupportedLibraryError struct {
	Mode    results.Mode
	Library string
}

func (e *UnsupportedLibraryError) Error() string {
	return fmt.Sprintf("unknown library for %s: %s", e.Mode, e.Library)
}

// BackendError wraps any failure raised by an adapter.
type BackendError struct {
	Library string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Library, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Kind maps err to the record error category.
func Kind(err error) results.ErrorKind {
	var (
		verr *ValidationError
		uerr *UnsupportedLibraryError
	)

	switch {
	case errors.As(err, &verr):
		return results.KindValidation
	case errors.As(err, &uerr):
		return results.KindUnsupportedLibrary
	default:
		return results.KindBackend
	}
}

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
