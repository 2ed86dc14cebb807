package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// column describes one text table column. Numeric columns align right.
type column struct {
	title   string
	numeric bool
}

// summaryColumns and topicColumns are the layouts of the plain-text report.
var (
	summaryColumns = []column{{"Subject", false}, {"Attempted", true}, {"Correct", true}, {"Accuracy", true}}
	topicColumns   = []column{{"Topic", false}, {"Status", false}, {"Attempted", true}, {"Accuracy", true}}
)

// formatTable lays rows out under cols, sizing each column to its widest
// cell in terminal cells. Cells beyond len(cols) are dropped.
func formatTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = displayWidth(c.title)
	}
	for _, row := range rows {
		for i := range cols {
			if i < len(row) {
				widths[i] = max(widths[i], displayWidth(row[i]))
			}
		}
	}

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.title
	}
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, formatRow(cols, widths, header))
	for _, row := range rows {
		lines = append(lines, formatRow(cols, widths, row))
	}
	return lines
}

func formatRow(cols []column, widths []int, row []string) string {
	cells := make([]string, len(cols))
	for i, c := range cols {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		cells[i] = padCell(cell, widths[i], c.numeric)
	}
	return strings.Join(cells, " ")
}

func padCell(value string, width int, right bool) string {
	if right {
		return runewidth.FillLeft(value, width)
	}
	return runewidth.FillRight(value, width)
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}
