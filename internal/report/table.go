// Package report renders a content gap analysis for people: aligned console
// tables and an XLSX workbook.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

const columnGap = "  "

// table is a plain text table. Columns flagged in right are right-aligned.
type table struct {
	headers []string
	rows    [][]string
	right   []bool
}

func (t table) widths() []int {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func (t table) write(w io.Writer) error {
	widths := t.widths()

	lines := make([]string, 0, len(t.rows)+2)
	lines = append(lines, t.line(t.headers, widths))

	rule := make([]string, len(widths))
	for i, n := range widths {
		rule[i] = strings.Repeat("-", n)
	}
	lines = append(lines, strings.Join(rule, columnGap))

	for _, row := range t.rows {
		lines = append(lines, t.line(row, widths))
	}

	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func (t table) line(cells []string, widths []int) string {
	var sb strings.Builder
	for i, width := range widths {
		if i > 0 {
			sb.WriteString(columnGap)
		}
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		pad := width - runewidth.StringWidth(cell)
		if pad < 0 {
			pad = 0
		}
		if i < len(t.right) && t.right[i] {
			sb.WriteString(strings.Repeat(" ", pad))
			sb.WriteString(cell)
		} else {
			sb.WriteString(cell)
			sb.WriteString(strings.Repeat(" ", pad))
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
