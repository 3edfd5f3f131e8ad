package report

import "github.com/weiihann/sheetbench/results"

// RowsTotal is the number of rows a trial processed: header plus data for
// write, the decoded count for read.
func RowsTotal(r *results.Record) int {
	rows := 0
	if r.RowCount > 0 {
		rows = r.RowCount + 1
	}

	if r.Mode == results.ModeRead && r.ReadRowCount != nil && *r.ReadRowCount > 0 {
		rows = *r.ReadRowCount
	}

	return rows
}

// CellsTotal is the number of cells a trial processed. Read records use the
// decoded cell count, falling back to RowsTotal x cols.
func CellsTotal(r *results.Record) int {
	if r.Mode == results.ModeRead && r.ReadCellCount != nil && *r.ReadCellCount > 0 {
		return *r.ReadCellCount
	}

	if r.ColCount <= 0 {
		return 0
	}

	return RowsTotal(r) * r.ColCount
}

// CellsPerSecond reports throughput in cells. ok is false when the record
// failed, took no measurable time or processed no cells.
func CellsPerSecond(r *results.Record) (float64, bool) {
	return perSecond(r, CellsTotal(r))
}

// RowsPerSecond is CellsPerSecond counted in rows.
func RowsPerSecond(r *results.Record) (float64, bool) {
	return perSecond(r, RowsTotal(r))
}

func perSecond(r *results.Record, total int) (float64, bool) {
	if r == nil || !r.OK || r.ElapsedMs <= 0 || total <= 0 {
		return 0, false
	}

	return float64(total) / (float64(r.ElapsedMs) / 1000), true
}

// RelativeSpeed is the throughput of r as a fraction of baseline's.
func RelativeSpeed(r, baseline *results.Record) (float64, bool) {
	if r == nil || baseline == nil {
		return 0, false
	}

	speed, ok := CellsPerSecond(r)
	if !ok {
		return 0, false
	}

	base, ok := CellsPerSecond(baseline)
	if !ok || base <= 0 {
		return 0, false
	}

	return speed / base, true
}
