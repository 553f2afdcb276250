package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/typespeed/internal/model"
)

func TestSummarize(t *testing.T) {
	results := []model.TrialResult{
		{WPM: 40, Accuracy: 90, ElapsedSeconds: 30},
		{WPM: 60, Accuracy: 100, ElapsedSeconds: 45},
	}
	s := Summarize(results)
	if s.Trials != 2 || s.BestWPM != 60 || s.TotalSeconds != 75 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.AvgWPM != 50 || s.AvgAccuracy != 95 {
		t.Fatalf("unexpected averages: %+v", s)
	}
	if empty := Summarize(nil); empty.Trials != 0 || empty.AvgWPM != 0 {
		t.Fatalf("expected zero summary, got %+v", empty)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if out := MovingAverage([]float64{1, 2}, 1); out[0] != 1 || out[1] != 2 {
		t.Fatalf("window 1 should copy values, got %v", out)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("unexpected sparkline: %q", got)
	}
	if got := Sparkline([]float64{5, 5, 5}); got != "+++" {
		t.Fatalf("flat series should use the middle glyph, got %q", got)
	}
	if got := Sparkline(nil); got != "" {
		t.Fatalf("expected empty sparkline, got %q", got)
	}
}

func TestRenderSeries(t *testing.T) {
	var buf bytes.Buffer
	series := model.Series{
		WPM:      []int{30, 40, 50},
		Accuracy: []int{80, 90, 100},
		Labels:   []string{"Test 1", "Test 2", "Test 3"},
	}
	if err := RenderSeries(&buf, series, 1, 2); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Performance (last 3 tests)") {
		t.Fatalf("missing heading: %q", out)
	}
	if !strings.Contains(out, "min=40 max=50 last=50") {
		t.Fatalf("expected clipped WPM row: %q", out)
	}
	if !strings.Contains(out, "min=90 max=100 last=100") {
		t.Fatalf("expected clipped accuracy row: %q", out)
	}
}

func TestRenderSeriesEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSeries(&buf, model.Series{}, 1, 0); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No test history yet") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestRenderRecentAndMistakes(t *testing.T) {
	var buf bytes.Buffer
	results := []model.TrialResult{
		{WPM: 42, Accuracy: 97, ElapsedSeconds: 20, Timestamp: time.Date(2026, 1, 2, 3, 4, 0, 0, time.Local)},
		{WPM: 8, Accuracy: 50, ElapsedSeconds: 60},
	}
	if err := RenderRecent(&buf, results); err != nil {
		t.Fatalf("render recent: %v", err)
	}
	if err := RenderMistakes(&buf, []model.MistakeCount{{Expected: "quick", Count: 3}}); err != nil {
		t.Fatalf("render mistakes: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Recent Tests", "2026-01-02 03:04", "Test 2", "Most Mistyped Words", "quick"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output: %q", want, out)
		}
	}
}

func TestSeriesWidthFor(t *testing.T) {
	if got := SeriesWidthFor(100); got != 60 {
		t.Fatalf("expected 60, got %d", got)
	}
	if got := SeriesWidthFor(20); got != minSeriesWidth {
		t.Fatalf("expected minimum width, got %d", got)
	}
}
