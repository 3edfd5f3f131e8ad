package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/weiihann/sheetbench/workload"
)

const defaultSheet = "Sheet1"

// streamWriter writes one row at a time through excelize.StreamWriter.
type streamWriter struct{}

func (streamWriter) Write(ctx context.Context, path string, rows, cols int) (err error) {
	f := excelize.NewFile()
	defer closeFile(f, &err)

	sw, err := f.NewStreamWriter(defaultSheet)
	if err != nil {
		return fmt.Errorf("new stream writer: %w", err)
	}

	values := make([]interface{}, cols)

	for c, label := range workload.Header(cols) {
		values[c] = label
	}

	if err := sw.SetRow("A1", values); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	data := make([]int, 0, cols)

	for r := 1; r <= rows; r++ {
		if r%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		data = workload.AppendDataRow(data, r, cols)
		for c, v := range data {
			values[c] = v
		}

		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}

		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush stream: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	return nil
}

// modelWriter sets every cell on excelize's in-memory worksheet model.
type modelWriter struct{}

func (w modelWriter) Write(ctx context.Context, path string, rows, cols int) (err error) {
	f := excelize.NewFile()
	defer closeFile(f, &err)

	for c, label := range workload.Header(cols) {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}

		if err := f.SetCellValue(defaultSheet, cell, label); err != nil {
			return fmt.Errorf("set %s: %w", cell, err)
		}
	}

	data := make([]int, 0, cols)

	for r := 1; r <= rows; r++ {
		if r%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		data = workload.AppendDataRow(data, r, cols)

		for c, v := range data {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}

			if err := f.SetCellValue(defaultSheet, cell, v); err != nil {
				return fmt.Errorf("set %s: %w", cell, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	return nil
}

// streamReader walks the first sheet with excelize's Rows iterator.
type streamReader struct{}

func (streamReader) Read(ctx context.Context, path string) (counts Counts, err error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Counts{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer closeFile(f, &err)

	sheet, err := firstSheet(f)
	if err != nil {
		return Counts{}, err
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return Counts{}, fmt.Errorf("iterate %s: %w", sheet, err)
	}
	defer rows.Close()

	for rows.Next() {
		if counts.Rows%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return counts, err
			}
		}

		cols, err := rows.Columns()
		if err != nil {
			return counts, fmt.Errorf("row %d: %w", counts.Rows+1, err)
		}

		counts.Rows++
		counts.Cells += len(cols)
	}

	if err := rows.Error(); err != nil {
		return counts, fmt.Errorf("iterate %s: %w", sheet, err)
	}

	return counts, nil
}

// modelReader loads the whole first sheet with GetRows.
type modelReader struct {
	opts excelize.Options
}

func (r modelReader) Read(ctx context.Context, path string) (counts Counts, err error) {
	f, err := excelize.OpenFile(path, r.opts)
	if err != nil {
		return Counts{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer closeFile(f, &err)

	sheet, err := firstSheet(f)
	if err != nil {
		return Counts{}, err
	}

	all, err := f.GetRows(sheet)
	if err != nil {
		return Counts{}, fmt.Errorf("load %s: %w", sheet, err)
	}

	if err := ctx.Err(); err != nil {
		return Counts{}, err
	}

	for _, row := range all {
		counts.Rows++
		counts.Cells += len(row)
	}

	return counts, nil
}

func firstSheet(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", errors.New("workbook has no sheets")
	}

	return sheets[0], nil
}

func closeFile(f *excelize.File, err *error) {
	if cerr := f.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("close workbook: %w", cerr)
	}
}
