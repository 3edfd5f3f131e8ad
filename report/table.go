package report

import (
	"github.com/aclements/go-moremath/stats"

	"github.com/weiihann/sheetbench/results"
)

// Status classifies a table cell.
type Status int

const (
	StatusMissing Status = iota
	StatusFail
	StatusOK
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFail:
		return "fail"
	default:
		return "muted"
	}
}

// Cell is one (case, library) entry of a table.
type Cell struct {
	Status Status
	Record *results.Record

	CellsPerSec float64
	RowsPerSec  float64
	HasSpeed    bool

	// Relative is throughput as a fraction of the baseline's.
	Relative    float64
	HasRelative bool
}

// Text renders the cell: the placeholder, FAIL, or the metrics.
func (c Cell) Text() string {
	switch c.Status {
	case StatusMissing:
		return Placeholder
	case StatusFail:
		return "FAIL"
	}

	text := formatMs(c.Record.ElapsedMs) + " / " + formatMB(c.Record.PeakMemoryMb)

	if c.HasSpeed {
		text += " · " + FormatRate(c.CellsPerSec) + " cells/s"
		text += " · " + FormatRate(c.RowsPerSec) + " rows/s"
	}

	if c.HasRelative {
		text += " · " + formatPercent(c.Relative)
	}

	return text
}

// Row is one case of a table.
type Row struct {
	Case  string
	Cells []Cell
}

// Table is a case x library grid for one mode, and for read mode one
// origin writer.
type Table struct {
	Mode      results.Mode
	Writer    string
	Baseline  string
	Libraries []string
	Rows      []Row

	// GeoMean holds, per library, the geometric mean of the relative speed
	// over the rows where it is defined.
	GeoMean []GeoMeanCell
}

// GeoMeanCell is one entry of the geomean row.
type GeoMeanCell struct {
	Value float64
	OK    bool
}

func (g GeoMeanCell) Text() string {
	if !g.OK {
		return Placeholder
	}

	return formatPercent(g.Value)
}

// Header returns the column titles, the baseline marked.
func (t *Table) Header() []string {
	header := make([]string, 0, len(t.Libraries)+1)
	header = append(header, "case")

	for _, lib := range t.Libraries {
		if lib == t.Baseline {
			lib += " (baseline)"
		}

		header = append(header, lib)
	}

	return header
}

// Options controls which columns and rows a report shows.
type Options struct {
	// Column order; libraries found in the data but not listed are appended.
	WriteLibraries []string
	ReadLibraries  []string

	WriteBaseline string
	ReadBaseline  string

	// HideMissing drops rows with no record at all; HideFail also drops rows
	// where nothing succeeded.
	HideMissing bool
	HideFail    bool
}

// Report is the grouped view of a results file.
type Report struct {
	Write *Table
	Read  []*Table
}

// Empty reports whether there is nothing to show.
func (r *Report) Empty() bool {
	return r.Write == nil && len(r.Read) == 0
}

// Tables returns every table, write first.
func (r *Report) Tables() []*Table {
	var tables []*Table
	if r.Write != nil {
		tables = append(tables, r.Write)
	}

	return append(tables, r.Read...)
}

// Build groups recs and derives the metric tables.
func Build(recs []results.Record, opts Options) *Report {
	write, read := Split(recs)

	rep := &Report{}

	if len(write) > 0 {
		g := GroupWrite(write)
		rep.Write = buildTable(g, results.ModeWrite, "",
			columns(opts.WriteLibraries, g.Libraries()), opts.WriteBaseline, opts)
	}

	if len(read) > 0 {
		groups := GroupRead(read)
		for _, writer := range Writers(groups) {
			g := groups[writer]
			rep.Read = append(rep.Read, buildTable(g, results.ModeRead, writer,
				columns(opts.ReadLibraries, g.Libraries()), opts.ReadBaseline, opts))
		}
	}

	return rep
}

func buildTable(g ByCase, mode results.Mode, writer string, libs []string, baseline string, opts Options) *Table {
	t := &Table{
		Mode:      mode,
		Writer:    writer,
		Baseline:  baseline,
		Libraries: libs,
	}

	for _, key := range g.Cases() {
		byLib := g[key]
		base := byLib[baseline]

		row := Row{Case: key, Cells: make([]Cell, len(libs))}

		allMissing, allFailOrMissing := true, true

		for i, lib := range libs {
			cell := newCell(byLib[lib], base)
			row.Cells[i] = cell

			if cell.Status != StatusMissing {
				allMissing = false
			}
			if cell.Status == StatusOK {
				allFailOrMissing = false
			}
		}

		if opts.HideMissing && allMissing {
			continue
		}
		if opts.HideFail && allFailOrMissing {
			continue
		}

		t.Rows = append(t.Rows, row)
	}

	t.GeoMean = geoMeans(t)

	return t
}

func newCell(rec, baseline *results.Record) Cell {
	if rec == nil {
		return Cell{Status: StatusMissing}
	}

	if !rec.OK {
		return Cell{Status: StatusFail, Record: rec}
	}

	c := Cell{Status: StatusOK, Record: rec}

	c.CellsPerSec, c.HasSpeed = CellsPerSecond(rec)
	if c.HasSpeed {
		c.RowsPerSec, _ = RowsPerSecond(rec)
	}

	c.Relative, c.HasRelative = RelativeSpeed(rec, baseline)

	return c
}

func geoMeans(t *Table) []GeoMeanCell {
	out := make([]GeoMeanCell, len(t.Libraries))

	for i := range t.Libraries {
		var ratios []float64

		for _, row := range t.Rows {
			if c := row.Cells[i]; c.HasRelative && c.Relative > 0 {
				ratios = append(ratios, c.Relative)
			}
		}

		if len(ratios) > 0 {
			out[i] = GeoMeanCell{Value: stats.GeoMean(ratios), OK: true}
		}
	}

	return out
}

// columns returns preferred followed by the members of found not already
// listed.
func columns(preferred, found []string) []string {
	seen := make(map[string]bool, len(preferred))

	libs := make([]string, 0, len(preferred)+len(found))
	for _, lib := range preferred {
		if !seen[lib] {
			seen[lib] = true
			libs = append(libs, lib)
		}
	}

	for _, lib := range found {
		if !seen[lib] {
			seen[lib] = true
			libs = append(libs, lib)
		}
	}

	return libs
}
