package report

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"
)

const (
	chartWidth  = 16 * vg.Centimeter
	chartHeight = 9 * vg.Centimeter
	chartDPI    = 96
)

// errNoData is returned when a chart would have no points.
var errNoData = errors.New("no data points")

// Metric is one charted quantity, one series per library and one point per
// case.
type Metric struct {
	Key   string
	Title string
	Unit  string
	value func(Cell) (float64, bool)
}

// Metrics lists the charted quantities.
var Metrics = []Metric{
	{Key: "elapsed", Title: "Time", Unit: "ms", value: func(c Cell) (float64, bool) {
		if c.Status != StatusOK {
			return 0, false
		}

		return float64(c.Record.ElapsedMs), true
	}},
	{Key: "memory", Title: "Peak memory", Unit: "MB", value: func(c Cell) (float64, bool) {
		if c.Status != StatusOK {
			return 0, false
		}

		return c.Record.PeakMemoryMb, true
	}},
	{Key: "speed", Title: "Speed", Unit: "cells/s", value: func(c Cell) (float64, bool) {
		return c.CellsPerSec, c.HasSpeed
	}},
	{Key: "relative", Title: "Relative speed", Unit: "x baseline", value: func(c Cell) (float64, bool) {
		return c.Relative, c.HasRelative
	}},
}

// Plot draws metric m of t. With logY the Y axis is logarithmic and
// non-positive values are left out.
func (t *Table) Plot(m Metric, logY bool) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = m.Title + " (" + m.Unit + ")"
	p.Y.Label.Text = m.Unit
	p.Legend.Top = true
	p.Legend.Left = true

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	p.Add(grid)

	points := 0

	for i, lib := range t.Libraries {
		xys := make(plotter.XYs, 0, len(t.Rows))

		for x, row := range t.Rows {
			v, ok := m.value(row.Cells[i])
			if !ok || (logY && v <= 0) {
				continue
			}

			xys = append(xys, plotter.XY{X: float64(x), Y: v})
		}

		if len(xys) == 0 {
			continue
		}

		line, scatter, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, fmt.Errorf("plot %s: %w", lib, err)
		}

		line.Color = plotutil.Color(i)
		scatter.Color = plotutil.Color(i)
		scatter.Shape = plotutil.Shape(i)

		p.Add(line, scatter)
		p.Legend.Add(lib, line, scatter)

		points += len(xys)
	}

	if points == 0 {
		return nil, errNoData
	}

	cases := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		cases[i] = row.Case
	}

	p.NominalX(cases...)
	p.X.Min = -0.5
	p.X.Max = float64(len(cases)) - 0.5

	if logY {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{}

		if p.Y.Min == p.Y.Max {
			p.Y.Min /= 2
			p.Y.Max *= 2
		}
	} else {
		p.Y.Min = 0
	}

	return p, nil
}

func renderSVG(p *plot.Plot) ([]byte, error) {
	c := vgsvg.New(chartWidth, chartHeight)
	p.Draw(draw.New(c))

	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render svg: %w", err)
	}

	return buf.Bytes(), nil
}

func renderPNG(p *plot.Plot) ([]byte, error) {
	c := vgimg.PngCanvas{Canvas: vgimg.NewWith(
		vgimg.UseWH(chartWidth, chartHeight),
		vgimg.UseDPI(chartDPI),
		vgimg.UseBackgroundColor(color.White),
	)}
	p.Draw(draw.New(c))

	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}

	return buf.Bytes(), nil
}

// ChartName is the file stem for metric m of t, e.g. "write_speed" or
// "read_excelize-stream_elapsed".
func (t *Table) ChartName(m Metric) string {
	if t.Writer == "" {
		return string(t.Mode) + "_" + m.Key
	}

	return string(t.Mode) + "_" + sanitizeStem(t.Writer) + "_" + m.Key
}

// WriteCharts saves one PNG per table and metric into dir and returns the
// written paths. Metrics without data are skipped.
func WriteCharts(dir string, rep *Report, logY bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create charts dir: %w", err)
	}

	var paths []string

	for _, t := range rep.Tables() {
		for _, m := range Metrics {
			p, err := t.Plot(m, logY)
			if errors.Is(err, errNoData) {
				continue
			}
			if err != nil {
				return paths, err
			}

			data, err := renderPNG(p)
			if err != nil {
				return paths, err
			}

			path := filepath.Join(dir, t.ChartName(m)+".png")
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return paths, fmt.Errorf("write chart: %w", err)
			}

			paths = append(paths, path)
		}
	}

	return paths, nil
}

func sanitizeStem(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}
