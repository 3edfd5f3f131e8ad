package report

import (
	"fmt"
	"strconv"
	"strings"
)

// Placeholder marks a combination absent from the results.
const Placeholder = "—"

// Legend explains the cell format.
const Legend = "time (ms) / peak memory (MB) · speed (cells/s, rows/s) · relative speed (% of baseline)"

// FormatRate renders a per-second rate with a G, M or k suffix.
func FormatRate(v float64) string {
	switch {
	case v >= 1e9:
		return formatNumber(v/1e9) + "G"
	case v >= 1e6:
		return formatNumber(v/1e6) + "M"
	case v >= 1e3:
		return formatNumber(v/1e3) + "k"
	default:
		return formatNumber(v)
	}
}

func formatNumber(v float64) string {
	switch {
	case v >= 100:
		return strconv.FormatFloat(v, 'f', 0, 64)
	case v >= 10:
		return strconv.FormatFloat(v, 'f', 1, 64)
	default:
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
}

func formatPercent(ratio float64) string {
	return strconv.FormatFloat(ratio*100, 'f', 0, 64) + "%"
}

func formatMs(ms int64) string {
	return fmt.Sprintf("%dms", ms)
}

func formatMB(mb float64) string {
	return strconv.FormatFloat(mb, 'f', 1, 64) + "MB"
}

func escapeMarkdown(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
