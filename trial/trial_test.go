package trial

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/weiihann/sheetbench/backend"
	"github.com/weiihann/sheetbench/results"
)

func TestExecuteValidation(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		p    Params
		want results.ErrorKind
	}{
		{
			name: "bad mode",
			p:    Params{Mode: "append", Library: "excelize", Rows: 1, Cols: 1},
			want: results.KindValidation,
		},
		{
			name: "missing library",
			p:    Params{Mode: results.ModeWrite, Rows: 1, Cols: 1, OutputPath: filepath.Join(dir, "a.xlsx")},
			want: results.KindValidation,
		},
		{
			name: "zero rows",
			p:    Params{Mode: results.ModeWrite, Library: "excelize", Cols: 3, OutputPath: filepath.Join(dir, "b.xlsx")},
			want: results.KindValidation,
		},
		{
			name: "missing output",
			p:    Params{Mode: results.ModeWrite, Library: "excelize", Rows: 1, Cols: 1},
			want: results.KindValidation,
		},
		{
			name: "missing input file",
			p: Params{
				Mode: results.ModeRead, Library: "rawxml", Rows: 1, Cols: 1,
				InputPath: filepath.Join(dir, "absent.xlsx"),
			},
			want: results.KindValidation,
		},
		{
			name: "bad cache mode",
			p: Params{
				Mode: results.ModeWrite, Library: "excelize", Rows: 1, Cols: 1,
				OutputPath: filepath.Join(dir, "c.xlsx"), CacheMode: "discISAM",
			},
			want: results.KindValidation,
		},
		{
			name: "unknown library",
			p: Params{
				Mode: results.ModeWrite, Library: "phpspreadsheet", Rows: 1, Cols: 1,
				OutputPath: filepath.Join(dir, "d.xlsx"),
			},
			want: results.KindUnsupportedLibrary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Execute(context.Background(), tt.p)

			if rec.OK {
				t.Fatal("expected ok = false")
			}
			if rec.ErrorKind != tt.want {
				t.Errorf("errorKind = %q, want %q (%s)", rec.ErrorKind, tt.want, rec.ErrorMessage)
			}
			if rec.ErrorMessage == "" {
				t.Error("errorMessage is empty")
			}
			if rec.ReadRowCount != nil || rec.ReadCellCount != nil {
				t.Error("read counts set on a failed record")
			}
			if rec.ElapsedMs < 0 {
				t.Errorf("elapsedMs = %d, want >= 0", rec.ElapsedMs)
			}
		})
	}
}

func TestExecuteWriteThenRead(t *testing.T) {
	const rows, cols = 50, 4

	ctx := context.Background()
	out := filepath.Join(t.TempDir(), "sub", "dir", "bench.xlsx")

	w := Execute(ctx, Params{
		Mode: results.ModeWrite, Library: string(backend.ExcelizeStream),
		Rows: rows, Cols: cols, OutputPath: out, RunID: "run-1",
	})
	if !w.OK {
		t.Fatalf("write failed: %s: %s", w.ErrorKind, w.ErrorMessage)
	}
	if w.OutputPath != out || w.RunID != "run-1" {
		t.Errorf("write record identity = %+v", w)
	}
	if w.PeakMemoryMb <= 0 {
		t.Errorf("peakMemoryMb = %v, want > 0", w.PeakMemoryMb)
	}

	for _, lib := range backend.ReadLibraries() {
		t.Run(string(lib), func(t *testing.T) {
			r := Execute(ctx, Params{
				Mode: results.ModeRead, Library: string(lib),
				Rows: rows, Cols: cols, InputPath: out,
				OriginWriter: string(backend.ExcelizeStream), CacheMode: "memory",
			})
			if !r.OK {
				t.Fatalf("read failed: %s: %s", r.ErrorKind, r.ErrorMessage)
			}

			if r.ReadRowCount == nil || *r.ReadRowCount != rows+1 {
				t.Errorf("readRowCount = %v, want %d", r.ReadRowCount, rows+1)
			}
			if r.ReadCellCount == nil || *r.ReadCellCount != (rows+1)*cols {
				t.Errorf("readCellCount = %v, want %d", r.ReadCellCount, (rows+1)*cols)
			}
			if r.OriginWriter != string(backend.ExcelizeStream) {
				t.Errorf("originWriter = %q", r.OriginWriter)
			}

			wantCache := ""
			if backend.UsesCache(lib) {
				wantCache = "memory"
			}
			if r.CacheMode != wantCache {
				t.Errorf("cacheMode = %q, want %q", r.CacheMode, wantCache)
			}
		})
	}
}

func TestExecuteIdempotent(t *testing.T) {
	p := Params{
		Mode: results.ModeWrite, Library: string(backend.RawXML),
		Rows: 10, Cols: 3, OutputPath: filepath.Join(t.TempDir(), "x.xlsx"),
	}

	a := Execute(context.Background(), p)
	b := Execute(context.Background(), p)

	for _, rec := range []*results.Record{&a, &b} {
		rec.Timestamp = a.Timestamp
		rec.ElapsedMs = 0
		rec.PeakMemoryMb = 0
	}

	if !reflect.DeepEqual(a, b) {
		t.Errorf("records differ beyond timing fields:\n%+v\n%+v", a, b)
	}
}

type panicWriter struct{}

func (panicWriter) Write(context.Context, string, int, int) error {
	panic("index out of range")
}

type panicReader struct{}

func (panicReader) Read(context.Context, string) (backend.Counts, error) {
	var m map[string]int
	m["rows"]++

	return backend.Counts{}, nil
}

func TestExecuteRecoversAdapterPanic(t *testing.T) {
	origWriter, origReader := newWriter, newReader
	t.Cleanup(func() {
		newWriter, newReader = origWriter, origReader
	})

	newWriter = func(backend.Library, backend.Options) (backend.Writer, error) {
		return panicWriter{}, nil
	}
	newReader = func(backend.Library, backend.Options) (backend.Reader, error) {
		return panicReader{}, nil
	}

	dir := t.TempDir()

	input := filepath.Join(dir, "in.xlsx")
	if err := os.WriteFile(input, []byte("xlsx"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		p    Params
	}{
		{
			name: "write",
			p: Params{
				Mode: results.ModeWrite, Library: string(backend.RawXML), Rows: 3, Cols: 2,
				OutputPath: filepath.Join(dir, "out.xlsx"),
			},
		},
		{
			name: "read",
			p: Params{
				Mode: results.ModeRead, Library: string(backend.RawXML), Rows: 3, Cols: 2,
				InputPath: input,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Execute(context.Background(), tt.p)

			if rec.OK {
				t.Fatal("expected ok = false")
			}
			if rec.ErrorKind != results.KindBackend {
				t.Errorf("errorKind = %q, want %q", rec.ErrorKind, results.KindBackend)
			}
			if !strings.Contains(rec.ErrorMessage, "panic") {
				t.Errorf("errorMessage = %q, want it to mention the panic", rec.ErrorMessage)
			}
			if rec.ReadRowCount != nil || rec.ReadCellCount != nil {
				t.Error("read counts set on a failed record")
			}
		})
	}
}

func TestCacheModeOnlyOnCachingReads(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "model.xlsx")

	w := Execute(context.Background(), Params{
		Mode: results.ModeWrite, Library: string(backend.Excelize), Rows: 5, Cols: 2,
		OutputPath: out, CacheMode: "disk",
	})
	if !w.OK {
		t.Fatalf("write failed: %s: %s", w.ErrorKind, w.ErrorMessage)
	}
	if w.CacheMode != "" {
		t.Errorf("write cacheMode = %q, want empty", w.CacheMode)
	}

	r := Execute(context.Background(), Params{
		Mode: results.ModeRead, Library: string(backend.Excelize), Rows: 5, Cols: 2,
		InputPath: out, CacheMode: "disk",
	})
	if !r.OK {
		t.Fatalf("read failed: %s: %s", r.ErrorKind, r.ErrorMessage)
	}
	if r.CacheMode != "disk" {
		t.Errorf("read cacheMode = %q, want disk", r.CacheMode)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want results.ErrorKind
	}{
		{invalid("x"), results.KindValidation},
		{fmt.Errorf("wrapped: %w", invalid("x")), results.KindValidation},
		{&UnsupportedLibraryError{Mode: results.ModeRead, Library: "y"}, results.KindUnsupportedLibrary},
		{&BackendError{Library: "z", Err: errors.New("boom")}, results.KindBackend},
		{errors.New("anything else"), results.KindBackend},
	}

	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestParamsArgs(t *testing.T) {
	p := Params{
		Mode: results.ModeRead, Library: "excelize", Rows: 5, Cols: 2,
		InputPath: "/tmp/in.xlsx", OriginWriter: "excelize-stream", CacheMode: "disk",
	}

	want := []string{
		"--mode", "read", "--lib", "excelize", "--rows", "5", "--cols", "2",
		"--in", "/tmp/in.xlsx", "--writer", "excelize-stream", "--cache-mode", "disk",
	}

	if got := p.Args(); !reflect.DeepEqual(got, want) {
		t.Errorf("Args() = %v, want %v", got, want)
	}
}
