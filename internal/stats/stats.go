// Package stats contains aggregation, derived metrics and text reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
)

const sparkChars = " .:-=+*#%@"

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Bar renders a horizontal bar of width cells filled to fraction.
func Bar(fraction float64, width int) string {
	if width <= 0 {
		return ""
	}
	if fraction < 0 || math.IsNaN(fraction) {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(math.Round(fraction * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// RenderSummary prints per-subject accuracy.
func RenderSummary(w io.Writer, r Report) error {
	if _, err := fmt.Fprintln(w, "Subjects"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(r.Subjects))
	for _, s := range r.Subjects {
		rows = append(rows, []string{
			string(s.Subject),
			formatCount(s.Attempted),
			formatCount(s.Correct),
			fmt.Sprintf("%d%%", AccuracyPercent(s.Attempted, s.Correct)),
		})
	}
	for _, line := range formatTable(summaryColumns, rows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Streak: %d day(s)  Last 7 days: [%s]\n\n", r.Streak, Sparkline(activityValues(r.Activity))); err != nil {
		return err
	}
	return nil
}

// RenderHeatmap prints topic buckets for each subject.
func RenderHeatmap(w io.Writer, r Report) error {
	for _, subject := range r.subjectOrder() {
		cells := r.Heatmap[subject]
		if _, err := fmt.Fprintf(w, "Topics: %s\n", subject); err != nil {
			return err
		}
		if len(cells) == 0 {
			if _, err := fmt.Fprintln(w, "No topics."); err != nil {
				return err
			}
			continue
		}
		rows := make([][]string, 0, len(cells))
		for _, c := range cells {
			rows = append(rows, []string{
				c.Topic,
				c.Bucket.String(),
				formatCount(c.Attempted),
				fmt.Sprintf("%d%%", AccuracyPercent(c.Attempted, c.Correct)),
			})
		}
		for _, line := range formatTable(topicColumns, rows) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
	}
	return nil
}

// RenderMistakes prints a ranked bar chart of mistake types.
func RenderMistakes(w io.Writer, title string, d Distribution, barWidth int) error {
	if _, err := fmt.Fprintf(w, "%s (total %s)\n", title, formatCount(d.Total)); err != nil {
		return err
	}
	bars := d.Visible()
	labelWidth := 0
	for _, b := range bars {
		if lw := runewidth.StringWidth(b.Type.Label()); lw > labelWidth {
			labelWidth = lw
		}
	}
	for _, b := range bars {
		label := runewidth.FillRight(b.Type.Label(), labelWidth)
		if _, err := fmt.Fprintf(w, "%s %s %s\n", label, Bar(b.Share, barWidth), formatCount(b.Count)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderTrend prints the test trend chart.
func RenderTrend(w io.Writer, t Trend, totalWidth, height int, useColor bool) error {
	if len(t.Points) == 0 {
		_, err := fmt.Fprintln(w, "No tests recorded.")
		return err
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	first := t.Points[0].Date
	last := t.Points[len(t.Points)-1].Date
	title := fmt.Sprintf("Test trend (%d tests, %s to %s)", len(t.Points), first, last)
	return PlotSeriesWithColor(w, title, t.Series(), width, height, useColor)
}

func activityValues(days []DayCount) []float64 {
	out := make([]float64, len(days))
	for i, d := range days {
		out[i] = d.Attempted
	}
	return out
}

func formatCount(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
