// Package workload produces the deterministic spreadsheet dataset written and
// read by every backend: one header row followed by N rows of M integers.
package workload

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Case is one benchmark size: data rows x columns.
type Case struct {
	Rows int
	Cols int
}

// Key returns the grouping key "{rows}x{cols}".
func (c Case) Key() string {
	return strconv.Itoa(c.Rows) + "x" + strconv.Itoa(c.Cols)
}

// String implements fmt.Stringer.
func (c Case) String() string {
	return c.Key()
}

// Valid reports whether both dimensions are positive.
func (c Case) Valid() bool {
	return c.Rows > 0 && c.Cols > 0
}

// TotalRows returns the number of sheet rows including the header.
func (c Case) TotalRows() int {
	return c.Rows + 1
}

// TotalCells returns the number of sheet cells including the header row.
func (c Case) TotalCells() int {
	return c.TotalRows() * c.Cols
}

// DefaultCases returns the case list used when none is configured.
func DefaultCases() []Case {
	return []Case{
		{Rows: 1000, Cols: 10},
		{Rows: 2000, Cols: 50},
		{Rows: 2000, Cols: 100},
		{Rows: 5000, Cols: 20},
		{Rows: 5000, Cols: 100},
	}
}

var caseToken = regexp.MustCompile(`(?i)^(\d+)x(\d+)$`)

// ParseCase parses a single "RxC" token.
func ParseCase(token string) (Case, error) {
	m := caseToken.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return Case{}, fmt.Errorf("invalid case %q (expected RxC)", token)
	}

	rows, err := strconv.Atoi(m[1])
	if err != nil {
		return Case{}, fmt.Errorf("invalid case %q: %w", token, err)
	}

	cols, err := strconv.Atoi(m[2])
	if err != nil {
		return Case{}, fmt.Errorf("invalid case %q: %w", token, err)
	}

	c := Case{Rows: rows, Cols: cols}
	if !c.Valid() {
		return Case{}, fmt.Errorf("invalid case %q: dimensions must be > 0", token)
	}

	return c, nil
}

// ParseCases parses a comma-separated list such as "1000x10, 2000x50".
// Tokens that are malformed or have a zero dimension are skipped.
func ParseCases(raw string) []Case {
	var cases []Case

	for _, tok := range strings.Split(raw, ",") {
		if strings.TrimSpace(tok) == "" {
			continue
		}

		c, err := ParseCase(tok)
		if err != nil {
			continue
		}

		cases = append(cases, c)
	}

	return cases
}

// Header returns the column labels "C1".."C{cols}".
func Header(cols int) []string {
	header := make([]string, cols)
	for c := 1; c <= cols; c++ {
		header[c-1] = "C" + strconv.Itoa(c)
	}

	return header
}

// DataRow returns the values of 1-based data row r. The cell at (r, c) holds
// r*1000 + c.
func DataRow(r, cols int) []int {
	row := make([]int, cols)
	for c := 1; c <= cols; c++ {
		row[c-1] = r*1000 + c
	}

	return row
}

// AppendDataRow is DataRow without the allocation; it fills dst[:0].
func AppendDataRow(dst []int, r, cols int) []int {
	dst = dst[:0]
	for c := 1; c <= cols; c++ {
		dst = append(dst, r*1000+c)
	}

	return dst
}
