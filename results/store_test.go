package results

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDecodeSkipsBlankAndMalformed(t *testing.T) {
	input := strings.Join([]string{
		`{"mode":"write","library":"excelize-stream","rowCount":10,"colCount":2,"ok":true,"elapsedMs":5,"peakMemoryMb":12.5}`,
		``,
		`{"mode":"read", this is not json`,
		`   `,
		`null`,
		`42`,
		`{"mode":"read","library":"rawxml","rowCount":10,"colCount":2,"ok":true,"readRowCount":11,"readCellCount":22}`,
	}, "\n")

	recs, skipped, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if len(recs) != 2 {
		t.Fatalf("len(recs) = %d, want 2", len(recs))
	}
	if skipped != 3 {
		t.Errorf("skipped = %d, want 3", skipped)
	}

	if recs[0].Library != "excelize-stream" || recs[0].Mode != ModeWrite {
		t.Errorf("first record = %+v", recs[0])
	}
	if recs[1].ReadCellCount == nil || *recs[1].ReadCellCount != 22 {
		t.Errorf("readCellCount = %v, want 22", recs[1].ReadCellCount)
	}
}

func TestDecodeSkipsOverlongLines(t *testing.T) {
	valid := `{"mode":"write","library":"rawxml","rowCount":10,"colCount":2,"ok":true}`
	huge := strings.Repeat("x", 2<<20)
	hugeJSON := `{"mode":"write","errorMessage":"` + strings.Repeat("e", maxLineSize) + `"}`

	tests := []struct {
		name        string
		input       string
		wantRecs    int
		wantSkipped int
	}{
		{"between valid lines", valid + "\n" + huge + "\n" + valid + "\n", 2, 1},
		{"oversized record", hugeJSON + "\n" + valid + "\n", 1, 1},
		{"at end without newline", valid + "\n" + huge, 1, 1},
		{"just under the limit", valid + "\n" + strings.Repeat(" ", maxLineSize-len(valid)-1) + valid + "\n", 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, skipped, err := Decode(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}

			if len(recs) != tt.wantRecs {
				t.Errorf("len(recs) = %d, want %d", len(recs), tt.wantRecs)
			}
			if skipped != tt.wantSkipped {
				t.Errorf("skipped = %d, want %d", skipped, tt.wantSkipped)
			}

			for _, rec := range recs {
				if rec.Library != "rawxml" {
					t.Errorf("unexpected record %+v", rec)
				}
			}
		})
	}
}

func TestStoreAppendOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "results.jsonl")

	for run := 0; run < 2; run++ {
		store, err := OpenStore(path)
		if err != nil {
			t.Fatalf("OpenStore failed: %v", err)
		}

		for i := 0; i < 3; i++ {
			rec := Record{
				Timestamp: time.Now().UTC(),
				Mode:      ModeWrite,
				Library:   "excelize",
				RowCount:  100 * (i + 1),
				ColCount:  5,
				OK:        true,
			}
			if err := store.Append(rec); err != nil {
				t.Fatalf("Append failed: %v", err)
			}
		}

		if err := store.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read store: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("lines = %d, want 6", len(lines))
	}

	recs, skipped, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(recs) != 6 || skipped != 0 {
		t.Errorf("records = %d skipped = %d, want 6 and 0", len(recs), skipped)
	}
}

func TestRecordFieldPresence(t *testing.T) {
	ok := Record{Mode: ModeRead, Library: "rawxml", RowCount: 3, ColCount: 2, OK: true}
	ok.SetReadCounts(4, 8)

	failed := Record{Mode: ModeWrite, Library: "excelize", RowCount: 3, ColCount: 2}
	failed.Fail(KindBackend, "disk full")

	tests := []struct {
		name    string
		rec     Record
		present []string
		absent  []string
	}{
		{
			name:    "ok read",
			rec:     ok,
			present: []string{"readRowCount", "readCellCount", "ok", "elapsedMs", "peakMemoryMb"},
			absent:  []string{"errorMessage", "errorKind", "rawOutput"},
		},
		{
			name:    "failed write",
			rec:     failed,
			present: []string{"errorMessage", "errorKind", "ok"},
			absent:  []string{"readRowCount", "readCellCount", "inputPath"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, tt.rec); err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			if n := strings.Count(buf.String(), "\n"); n != 1 {
				t.Fatalf("encoded record has %d newlines, want 1", n)
			}

			var fields map[string]any
			if err := json.Unmarshal(buf.Bytes(), &fields); err != nil {
				t.Fatalf("output is not valid JSON: %v", err)
			}

			for _, k := range tt.present {
				if _, ok := fields[k]; !ok {
					t.Errorf("field %q missing", k)
				}
			}
			for _, k := range tt.absent {
				if _, ok := fields[k]; ok {
					t.Errorf("field %q present, want absent", k)
				}
			}
		})
	}
}

func TestEncodeEscapesNewlines(t *testing.T) {
	rec := Record{Mode: ModeWrite, Library: "x"}
	rec.Fail(KindRunner, "line one\nline two")
	rec.RawOutput = "<stderr>\nboom"

	line, err := Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if bytes.Count(line, []byte("\n")) != 1 {
		t.Errorf("marshalled record spans multiple lines: %q", line)
	}
	if !bytes.Contains(line, []byte("<stderr>")) {
		t.Errorf("HTML characters were escaped: %s", line)
	}
}
