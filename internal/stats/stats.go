// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/typespeed/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a set of trial results.
type Summary struct {
	Trials       int
	AvgWPM       float64
	BestWPM      int
	AvgAccuracy  float64
	TotalSeconds int
}

// Summarize computes averages and bests over results.
func Summarize(results []model.TrialResult) Summary {
	s := Summary{Trials: len(results)}
	if len(results) == 0 {
		return s
	}
	var totalWPM, totalAcc int
	for _, r := range results {
		totalWPM += r.WPM
		totalAcc += r.Accuracy
		s.TotalSeconds += r.ElapsedSeconds
		if r.WPM > s.BestWPM {
			s.BestWPM = r.WPM
		}
	}
	count := float64(len(results))
	s.AvgWPM = float64(totalWPM) / count
	s.AvgAccuracy = float64(totalAcc) / count
	return s
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
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

// RenderSummary prints a summary block for results.
func RenderSummary(w io.Writer, title string, results []model.TrialResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No trials found.")
		return err
	}
	s := Summarize(results)
	lines := []string{
		title,
		fmt.Sprintf("Trials: %d", s.Trials),
		fmt.Sprintf("Avg WPM: %.1f", s.AvgWPM),
		fmt.Sprintf("Best WPM: %d", s.BestWPM),
		fmt.Sprintf("Avg Accuracy: %.1f%%", s.AvgAccuracy),
		fmt.Sprintf("Time typed: %ds", s.TotalSeconds),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSeries prints WPM and accuracy sparklines smoothed over window and
// clipped to the last width points.
func RenderSeries(w io.Writer, series model.Series, window, width int) error {
	if len(series.WPM) == 0 {
		_, err := fmt.Fprintln(w, "No test history yet. Complete a test to see your performance!")
		return err
	}
	rows := []struct {
		name   string
		values []int
	}{
		{name: "WPM", values: series.WPM},
		{name: "Accuracy", values: series.Accuracy},
	}
	if len(series.Accuracy) == 0 {
		rows = rows[:1]
	}
	if _, err := fmt.Fprintf(w, "Performance (last %d tests)\n", len(series.WPM)); err != nil {
		return err
	}
	for _, row := range rows {
		values := MovingAverage(toFloats(row.values), window)
		if width > 0 && len(values) > width {
			values = values[len(values)-width:]
		}
		lo, hi := minMax(values)
		if _, err := fmt.Fprintf(w, "%-8s │%s│ min=%.0f max=%.0f last=%d\n", row.name, Sparkline(values), lo, hi, row.values[len(row.values)-1]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderRecent prints one row per result labelled like the chart series.
func RenderRecent(w io.Writer, results []model.TrialResult) error {
	if len(results) == 0 {
		return nil
	}
	headers := []string{"Test", "WPM", "Accuracy", "Time", "Date"}
	rows := make([][]string, 0, len(results))
	for i, r := range results {
		date := "-"
		if !r.Timestamp.IsZero() {
			date = r.Timestamp.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			fmt.Sprintf("Test %d", i+1),
			fmt.Sprintf("%d", r.WPM),
			fmt.Sprintf("%d%%", r.Accuracy),
			fmt.Sprintf("%ds", r.ElapsedSeconds),
			date,
		})
	}
	return writeTable(w, "Recent Tests", headers, rows, map[int]bool{1: true, 2: true, 3: true})
}

// RenderMistakes prints the most frequently mistyped words.
func RenderMistakes(w io.Writer, counts []model.MistakeCount) error {
	if len(counts) == 0 {
		_, err := fmt.Fprintln(w, "No mistakes recorded.")
		return err
	}
	headers := []string{"Word", "Mistyped"}
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Expected, fmt.Sprintf("%d", c.Count)})
	}
	return writeTable(w, "Most Mistyped Words", headers, rows, map[int]bool{1: true})
}

func writeTable(w io.Writer, title string, headers []string, rows [][]string, rightAlign map[int]bool) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func toFloats(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
