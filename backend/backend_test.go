package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	const rows, cols = 120, 7

	pairs := []struct {
		writer Library
		reader Library
		cache  CacheMode
	}{
		{ExcelizeStream, ExcelizeStream, CacheNone},
		{ExcelizeStream, Excelize, CacheNone},
		{ExcelizeStream, Excelize, CacheDisk},
		{ExcelizeStream, Excelize, CacheMemory},
		{ExcelizeStream, RawXML, CacheNone},
		{Excelize, Excelize, CacheNone},
		{Excelize, RawXML, CacheNone},
		{RawXML, RawXML, CacheNone},
	}

	for _, p := range pairs {
		t.Run(string(p.writer)+"->"+string(p.reader)+"/"+string(p.cache), func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "out.xlsx")

			w, err := NewWriter(p.writer, Options{Cache: p.cache})
			if err != nil {
				t.Fatalf("NewWriter(%s) failed: %v", p.writer, err)
			}

			if err := w.Write(ctx, path, rows, cols); err != nil {
				t.Fatalf("write failed: %v", err)
			}

			if info, err := os.Stat(path); err != nil || info.Size() == 0 {
				t.Fatalf("output file missing or empty: %v", err)
			}

			r, err := NewReader(p.reader, Options{Cache: p.cache})
			if err != nil {
				t.Fatalf("NewReader(%s) failed: %v", p.reader, err)
			}

			counts, err := r.Read(ctx, path)
			if err != nil {
				t.Fatalf("read failed: %v", err)
			}

			if counts.Rows != rows+1 {
				t.Errorf("rows = %d, want %d", counts.Rows, rows+1)
			}
			if counts.Cells != (rows+1)*cols {
				t.Errorf("cells = %d, want %d", counts.Cells, (rows+1)*cols)
			}
		})
	}
}

func TestUnsupportedLibrary(t *testing.T) {
	if _, err := NewWriter("openspout", Options{}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("NewWriter error = %v, want ErrUnsupported", err)
	}
	if _, err := NewReader("", Options{}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("NewReader error = %v, want ErrUnsupported", err)
	}
}

func TestReadMissingFile(t *testing.T) {
	for _, lib := range ReadLibraries() {
		r, err := NewReader(lib, Options{})
		if err != nil {
			t.Fatalf("NewReader(%s) failed: %v", lib, err)
		}

		if _, err := r.Read(context.Background(), filepath.Join(t.TempDir(), "nope.xlsx")); err == nil {
			t.Errorf("%s: expected error for missing file", lib)
		}
	}
}

func TestReadNotAWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.xlsx")
	if err := os.WriteFile(path, []byte("definitely not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, lib := range ReadLibraries() {
		r, _ := NewReader(lib, Options{})
		if _, err := r.Read(context.Background(), path); err == nil {
			t.Errorf("%s: expected error for malformed file", lib)
		}
	}
}

func TestParseCacheMode(t *testing.T) {
	tests := []struct {
		in      string
		want    CacheMode
		wantErr bool
	}{
		{"", CacheNone, false},
		{"none", CacheNone, false},
		{" Memory ", CacheMemory, false},
		{"DISK", CacheDisk, false},
		{"discISAM", "", true},
	}

	for _, tt := range tests {
		got, err := ParseCacheMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCacheMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)

			continue
		}
		if got != tt.want {
			t.Errorf("ParseCacheMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestColumnName(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "A"},
		{26, "Z"},
		{27, "AA"},
		{52, "AZ"},
		{703, "AAA"},
	}

	for _, tt := range tests {
		if got := columnName(tt.n); got != tt.want {
			t.Errorf("columnName(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestCatalog(t *testing.T) {
	if !KnownWriter(ReferenceWriter) {
		t.Errorf("reference writer %q is not a write library", ReferenceWriter)
	}
	if !KnownReader(ReadBaseline) {
		t.Errorf("read baseline %q is not a read library", ReadBaseline)
	}
	if KnownWriter("fastexcel") {
		t.Error("fastexcel should not be a known writer")
	}
	if !UsesCache(Excelize) || UsesCache(RawXML) {
		t.Error("only the excelize model adapter uses the cache mode")
	}
}
