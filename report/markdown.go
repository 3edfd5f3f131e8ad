package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// WriteMarkdown writes rep as a Markdown document. source is the results
// file name shown in the preamble.
func WriteMarkdown(w io.Writer, rep *Report, source string, generated time.Time) error {
	var b strings.Builder

	b.WriteString("# XLSX Benchmark Report\n\n")
	fmt.Fprintf(&b, "- Source: `%s`\n", source)
	fmt.Fprintf(&b, "- Generated: `%s`\n\n", generated.Format(time.RFC3339))

	if rep.Write != nil {
		b.WriteString("## Write benchmark\n\n")
		writeMarkdownTable(&b, rep.Write)
		b.WriteString("\n")
	}

	if len(rep.Read) > 0 {
		b.WriteString("## Read benchmark\n\n")

		for _, t := range rep.Read {
			fmt.Fprintf(&b, "### Reading files created by `%s`\n\n", t.Writer)
			writeMarkdownTable(&b, t)
			b.WriteString("\n")
		}
	}

	b.WriteString("---\n")
	fmt.Fprintf(&b, "Cell format: `%s`\n", Legend)

	_, err := io.WriteString(w, b.String())

	return err
}

func writeMarkdownTable(b *strings.Builder, t *Table) {
	header := t.Header()

	b.WriteString("|")
	for _, h := range header {
		b.WriteString(" " + escapeMarkdown(h) + " |")
	}

	b.WriteString("\n|" + strings.Repeat("---|", len(header)) + "\n")

	for _, row := range t.Rows {
		b.WriteString("| " + escapeMarkdown(row.Case) + " |")

		for _, c := range row.Cells {
			b.WriteString(" " + escapeMarkdown(c.Text()) + " |")
		}

		b.WriteString("\n")
	}

	if len(t.Rows) > 1 {
		b.WriteString("| *geomean* |")

		for _, g := range t.GeoMean {
			b.WriteString(" " + g.Text() + " |")
		}

		b.WriteString("\n")
	}
}
