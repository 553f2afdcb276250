package trial

import "github.com/verte-zerg/typespeed/internal/model"

// Snapshot is an immutable view of a trial for rendering. Seq increases with
// every change so consumers can drop out-of-order deliveries.
type Snapshot struct {
	Seq              uint64             `json:"seq"`
	Status           model.Status       `json:"status"`
	Target           []string           `json:"target"`
	Typed            string             `json:"typed"`
	CurrentWordIndex int                `json:"currentWordIndex"`
	Elapsed          int                `json:"elapsedSeconds"`
	Remaining        int                `json:"timeRemainingSeconds"`
	Metrics          model.Metrics      `json:"metrics"`
	Mistakes         []model.Mistake    `json:"mistakes"`
	Result           *model.TrialResult `json:"result,omitempty"`
	History          model.Series       `json:"history"`
}

// Finished reports whether the trial has ended.
func (s Snapshot) Finished() bool {
	return s.Status == model.StatusFinished
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		Seq:              c.seq,
		Status:           c.status,
		Target:           append([]string(nil), c.target...),
		Typed:            c.typed,
		CurrentWordIndex: c.wordIndex,
		Elapsed:          c.elapsed,
		Remaining:        c.remaining,
		Metrics:          c.metrics,
		Mistakes:         append([]model.Mistake{}, c.mistakes...),
		History: model.Series{
			WPM:      append([]int{}, c.series.WPM...),
			Accuracy: append([]int{}, c.series.Accuracy...),
			Labels:   append([]string{}, c.series.Labels...),
		},
	}
	if c.result != nil {
		res := *c.result
		snap.Result = &res
	}
	return snap
}
