package main

import (
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/typespeed/internal/model"
	"github.com/verte-zerg/typespeed/internal/stats"
)

type trialArchive interface {
	ListTrials(ctx context.Context, last int) ([]model.TrialResult, error)
	ListMistakes(ctx context.Context, trialID string) ([]model.Mistake, error)
	TopMistakes(ctx context.Context, n int) ([]model.MistakeCount, error)
}

type seriesSource interface {
	Series(ctx context.Context) model.Series
}

type reportOptions struct {
	Last   int
	Window int
	Top    int
	Width  int
}

func writeHistoryReport(ctx context.Context, w io.Writer, archive trialArchive, recent seriesSource, opts reportOptions) error {
	last := opts.Last
	if last == 0 {
		last = -1
	}
	results, err := archive.ListTrials(ctx, last)
	if err != nil {
		return fmt.Errorf("failed to list trials: %w", err)
	}
	title := "All trials"
	if opts.Last > 0 {
		title = fmt.Sprintf("Last %d trials", opts.Last)
	}
	if err := stats.RenderSummary(w, title, results); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	series := recent.Series(ctx)
	if err := stats.RenderSeries(w, series, opts.Window, opts.Width); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	tail := results
	if len(tail) > len(series.WPM) {
		tail = tail[len(tail)-len(series.WPM):]
	}
	if err := stats.RenderRecent(w, tail); err != nil {
		return fmt.Errorf("failed to write recent trials: %w", err)
	}

	if len(results) > 0 {
		latest := results[len(results)-1]
		mistakes, err := archive.ListMistakes(ctx, latest.ID)
		if err != nil {
			return fmt.Errorf("failed to load mistakes of %s: %w", latest.ID, err)
		}
		if err := writeLatestMistakes(w, mistakes); err != nil {
			return err
		}
	}

	if opts.Top == 0 {
		return nil
	}
	top, err := archive.TopMistakes(ctx, opts.Top)
	if err != nil {
		return fmt.Errorf("failed to load mistakes: %w", err)
	}
	if err := stats.RenderMistakes(w, top); err != nil {
		return fmt.Errorf("failed to write mistakes: %w", err)
	}
	return nil
}

func writeLatestMistakes(w io.Writer, mistakes []model.Mistake) error {
	if _, err := fmt.Fprintf(w, "Latest trial: %d mistakes\n", len(mistakes)); err != nil {
		return fmt.Errorf("failed to write mistakes: %w", err)
	}
	for _, m := range mistakes {
		if _, err := fmt.Fprintf(w, "  %s → %s\n", m.Typed, m.Expected); err != nil {
			return fmt.Errorf("failed to write mistakes: %w", err)
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return fmt.Errorf("failed to write mistakes: %w", err)
	}
	return nil
}
