package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// WriteText prints rep as fixed-width console tables.
func WriteText(w io.Writer, rep *Report) error {
	if rep.Write != nil {
		fmt.Fprint(w, "=== WRITE BENCH ===\n\n")

		if err := writeTextTable(w, rep.Write); err != nil {
			return err
		}
	}

	if len(rep.Read) > 0 {
		fmt.Fprint(w, "\n=== READ BENCH ===\n\n")

		for _, t := range rep.Read {
			fmt.Fprintf(w, "--- Files created by: %s ---\n\n", t.Writer)

			if err := writeTextTable(w, t); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(w, "Legend: %s\n", Legend)

	return nil
}

func writeTextTable(w io.Writer, t *Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)

	header := t.Header()
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	rule := make([]string, len(header))
	for i, h := range header {
		rule[i] = strings.Repeat("-", len(h))
	}

	fmt.Fprintln(tw, strings.Join(rule, "\t"))

	for _, row := range t.Rows {
		fields := make([]string, 0, len(row.Cells)+1)
		fields = append(fields, row.Case)

		for _, c := range row.Cells {
			fields = append(fields, c.Text())
		}

		fmt.Fprintln(tw, strings.Join(fields, "\t"))
	}

	if len(t.Rows) > 1 {
		fields := []string{"geomean"}
		for _, g := range t.GeoMean {
			fields = append(fields, g.Text())
		}

		fmt.Fprintln(tw, strings.Join(fields, "\t"))
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}

	fmt.Fprintln(w)

	return nil
}
