// Package history keeps a bounded log of finished trials.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/typespeed/internal/model"
)

const (
	// Key is the key-value entry holding the serialized history.
	Key = "typingHistory"
	// Limit is the number of most recent results kept.
	Limit = 10
)

// KV is the persistence boundary for history payloads.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// History persists the most recent trial results in a KV store.
// Appends are serialized so concurrent trials do not drop each other's results.
type History struct {
	kv     KV
	logger *zap.SugaredLogger

	mu sync.Mutex
}

// New returns a History backed by kv.
func New(kv KV, logger *zap.SugaredLogger) *History {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &History{kv: kv, logger: logger}
}

type record struct {
	ID       string `json:"id,omitempty"`
	WPM      int    `json:"wpm"`
	Accuracy int    `json:"accuracy"`
	Time     int    `json:"time"`
	Date     string `json:"date"`
}

// Load returns the persisted results, oldest first. Missing or unreadable
// payloads are treated as empty history.
func (h *History) Load(ctx context.Context) []model.TrialResult {
	payload, ok, err := h.kv.Get(ctx, Key)
	if err != nil {
		h.logger.Warnw("failed to read history", "error", err)
		return []model.TrialResult{}
	}
	if !ok || payload == "" {
		return []model.TrialResult{}
	}
	results, err := decode(payload)
	if err != nil {
		h.logger.Warnw("discarding malformed history", "error", err)
		return []model.TrialResult{}
	}
	return results
}

// Append adds result to the end, keeps the last Limit entries and persists them.
func (h *History) Append(ctx context.Context, result model.TrialResult) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	results := append(h.Load(ctx), result)
	if len(results) > Limit {
		results = results[len(results)-Limit:]
	}
	payload, err := encode(results)
	if err != nil {
		return err
	}
	if err := h.kv.Set(ctx, Key, payload); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

// Series projects the persisted history for charting.
func (h *History) Series(ctx context.Context) model.Series {
	return SeriesOf(h.Load(ctx))
}

// SeriesOf projects results for charting.
func SeriesOf(results []model.TrialResult) model.Series {
	series := model.Series{
		WPM:      make([]int, 0, len(results)),
		Accuracy: make([]int, 0, len(results)),
		Labels:   make([]string, 0, len(results)),
	}
	for i, r := range results {
		series.WPM = append(series.WPM, r.WPM)
		series.Accuracy = append(series.Accuracy, r.Accuracy)
		series.Labels = append(series.Labels, fmt.Sprintf("Test %d", i+1))
	}
	return series
}

func encode(results []model.TrialResult) (string, error) {
	records := make([]record, 0, len(results))
	for _, r := range results {
		records = append(records, record{
			ID:       r.ID,
			WPM:      r.WPM,
			Accuracy: r.Accuracy,
			Time:     r.ElapsedSeconds,
			Date:     r.Timestamp.Format(time.RFC3339),
		})
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("failed to encode history: %w", err)
	}
	return string(data), nil
}

func decode(payload string) ([]model.TrialResult, error) {
	var records []record
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		return nil, err
	}
	results := make([]model.TrialResult, 0, len(records))
	for _, rec := range records {
		// Entries written by older front ends carry locale dates; keep them
		// with a zero timestamp.
		ts, err := time.Parse(time.RFC3339, rec.Date)
		if err != nil {
			ts = time.Time{}
		}
		results = append(results, model.TrialResult{
			ID:             rec.ID,
			WPM:            rec.WPM,
			Accuracy:       rec.Accuracy,
			ElapsedSeconds: rec.Time,
			Timestamp:      ts,
		})
	}
	return results, nil
}
