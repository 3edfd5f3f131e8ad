package workload

import (
	"reflect"
	"strconv"
	"testing"
)

func TestHeader(t *testing.T) {
	for _, cols := range []int{1, 5, 37} {
		h := Header(cols)
		if len(h) != cols {
			t.Fatalf("len(Header(%d)) = %d, want %d", cols, len(h), cols)
		}

		for i, label := range h {
			want := "C" + strconv.Itoa(i+1)
			if label != want {
				t.Errorf("Header(%d)[%d] = %q, want %q", cols, i, label, want)
			}
		}
	}
}

func TestDataRow(t *testing.T) {
	tests := []struct {
		row  int
		cols int
		want []int
	}{
		{1, 3, []int{1001, 1002, 1003}},
		{7, 1, []int{7001}},
		{250, 4, []int{250001, 250002, 250003, 250004}},
	}

	for _, tt := range tests {
		got := DataRow(tt.row, tt.cols)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("DataRow(%d, %d) = %v, want %v",
				tt.row, tt.cols, got, tt.want)
		}
	}
}

func TestDataRowDeterministic(t *testing.T) {
	a := DataRow(42, 20)
	b := DataRow(42, 20)

	if !reflect.DeepEqual(a, b) {
		t.Error("DataRow is not deterministic")
	}

	buf := make([]int, 0, 20)
	c := AppendDataRow(buf, 42, 20)
	if !reflect.DeepEqual(a, c) {
		t.Errorf("AppendDataRow = %v, want %v", c, a)
	}
}

func TestParseCases(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Case
	}{
		{
			name: "basic",
			raw:  "1000x10,2000x50",
			want: []Case{{1000, 10}, {2000, 50}},
		},
		{
			name: "whitespace and upper x",
			raw:  " 10X5 ,  3x3 ",
			want: []Case{{10, 5}, {3, 3}},
		},
		{
			name: "skips invalid tokens",
			raw:  "0x10,abc,5x0,7x7,,12",
			want: []Case{{7, 7}},
		},
		{
			name: "empty",
			raw:  "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCases(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseCases(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCaseKey(t *testing.T) {
	c := Case{Rows: 2000, Cols: 100}

	if c.Key() != "2000x100" {
		t.Errorf("Key() = %q, want 2000x100", c.Key())
	}
	if c.TotalRows() != 2001 {
		t.Errorf("TotalRows() = %d, want 2001", c.TotalRows())
	}
	if c.TotalCells() != 200100 {
		t.Errorf("TotalCells() = %d, want 200100", c.TotalCells())
	}
}

func TestDefaultCases(t *testing.T) {
	cases := DefaultCases()
	if len(cases) != 5 {
		t.Fatalf("len(DefaultCases()) = %d, want 5", len(cases))
	}

	for _, c := range cases {
		if !c.Valid() {
			t.Errorf("default case %v is not valid", c)
		}
	}
}
