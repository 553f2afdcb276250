// Package trial implements the typing trial state machine.
package trial

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/typespeed/internal/clock"
	"github.com/verte-zerg/typespeed/internal/metrics"
	"github.com/verte-zerg/typespeed/internal/model"
)

const (
	// DefaultWords is the target length of a regular trial.
	DefaultWords = 30
	// NewTestWords is the target length of the longer "new test" trial.
	NewTestWords = 50
	// DefaultDuration is the countdown start in seconds.
	DefaultDuration = 60
)

// Sampler produces target sequences.
type Sampler interface {
	Sample(count int) []string
}

// Recorder keeps the bounded result history.
type Recorder interface {
	Append(ctx context.Context, result model.TrialResult) error
	Series(ctx context.Context) model.Series
}

// Archive stores every finished trial with its mistakes.
type Archive interface {
	InsertTrial(ctx context.Context, result model.TrialResult, mistakes []model.Mistake) error
}

// Option configures a Controller.
type Option func(*Controller)

// WithWords sets the initial target length.
func WithWords(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.words = n
		}
	}
}

// WithDuration sets the countdown start in seconds.
func WithDuration(seconds int) Option {
	return func(c *Controller) {
		if seconds > 0 {
			c.duration = seconds
		}
	}
}

// WithScheduler sets the scheduler driving the trial clock.
func WithScheduler(s clock.Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

// WithArchive stores finished trials in a.
func WithArchive(a Archive) Option {
	return func(c *Controller) { c.archive = a }
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithNotify registers fn to receive a snapshot after every change,
// including clock ticks. fn is called without internal locks held.
func WithNotify(fn func(Snapshot)) Option {
	return func(c *Controller) { c.notify = fn }
}

// WithNow sets the time source for result timestamps.
func WithNow(fn func() time.Time) Option {
	return func(c *Controller) { c.now = fn }
}

// WithIDs sets the result id generator.
func WithIDs(fn func() string) Option {
	return func(c *Controller) { c.newID = fn }
}

// Controller runs one trial at a time: Idle until the first input, Running
// while the clock advances, Finished on completion or timeout.
type Controller struct {
	mu sync.Mutex

	bank    Sampler
	history Recorder
	archive Archive
	sched   clock.Scheduler
	logger  *zap.SugaredLogger
	notify  func(Snapshot)
	now     func() time.Time
	newID   func() string

	words    int
	duration int

	clock     *clock.Clock
	seq       uint64
	status    model.Status
	target    []string
	typed     string
	tokens    []string
	wordIndex int
	elapsed   int
	remaining int
	metrics   model.Metrics
	mistakes  []model.Mistake
	result    *model.TrialResult
	series    model.Series
}

// New returns an idle controller with a freshly sampled target.
// history may be nil when results need not be kept.
func New(bank Sampler, history Recorder, opts ...Option) *Controller {
	c := &Controller{
		bank:     bank,
		history:  history,
		sched:    clock.TickerScheduler{},
		logger:   zap.NewNop().Sugar(),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		words:    DefaultWords,
		duration: DefaultDuration,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()
	return c
}

// Ingest replaces the typed text with raw and re-evaluates the trial. Input
// is ignored once the trial is finished or no time remains.
func (c *Controller) Ingest(raw string) Snapshot {
	c.mu.Lock()
	if c.status == model.StatusFinished || c.clock.Remaining() == 0 {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap
	}
	if c.status == model.StatusIdle && raw != "" {
		c.status = model.StatusRunning
		c.clock.Start()
		c.logger.Debugw("trial started", "words", len(c.target), "duration", c.duration)
	}
	c.typed = raw
	c.tokens = metrics.Tokens(raw)
	c.wordIndex = metrics.CurrentWordIndex(c.tokens)
	c.syncClockLocked()
	c.recomputeLocked()
	if c.status == model.StatusRunning && c.completedLocked() {
		c.finishLocked("completed")
	}
	c.seq++
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(snap)
	return snap
}

// Restart discards the current trial and starts a new idle one. A
// non-positive words keeps the previous target length.
func (c *Controller) Restart(words int) Snapshot {
	c.mu.Lock()
	if words > 0 {
		c.words = words
	}
	c.resetLocked()
	c.seq++
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(snap)
	return snap
}

// Snapshot returns the current trial state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close stops the clock of the current trial.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock.Stop()
}

func (c *Controller) resetLocked() {
	// Each trial gets its own clock rather than a Reset one: a tick that
	// passed the old clock's guard before the stop is still bound to the old
	// clock and handleTick drops it by identity.
	if c.clock != nil {
		c.clock.Stop()
	}
	var cl *clock.Clock
	cl = clock.New(c.duration, c.sched, func(t clock.Tick) { c.handleTick(cl, t) })
	c.clock = cl

	c.status = model.StatusIdle
	c.target = c.bank.Sample(c.words)
	c.typed = ""
	c.tokens = nil
	c.wordIndex = 0
	c.elapsed = 0
	c.remaining = c.duration
	c.metrics = model.InitialMetrics
	c.mistakes = nil
	c.result = nil
	c.series = c.loadSeries()
}

func (c *Controller) handleTick(cl *clock.Clock, t clock.Tick) {
	c.mu.Lock()
	if cl != c.clock || c.status != model.StatusRunning {
		c.mu.Unlock()
		return
	}
	switch {
	case t.Expired:
		c.finishLocked("timeout")
	case t.Kind == clock.KindElapsed:
		// Only the elapsed counter moves live WPM.
		c.elapsed = t.Elapsed
		c.recomputeLocked()
	default:
		c.remaining = t.Remaining
	}
	c.seq++
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(snap)
}

func (c *Controller) syncClockLocked() {
	c.elapsed = c.clock.Elapsed()
	c.remaining = c.clock.Remaining()
}

func (c *Controller) recomputeLocked() {
	if c.status == model.StatusIdle {
		c.metrics = model.InitialMetrics
		return
	}
	wpm := 0
	if c.elapsed > 0 {
		wpm = metrics.WPM(metrics.CharsTyped(c.typed), float64(c.elapsed))
	}
	c.metrics = model.Metrics{
		WPM:      wpm,
		Accuracy: metrics.Accuracy(c.target, c.tokens),
	}
}

func (c *Controller) completedLocked() bool {
	n := len(c.target)
	if n == 0 || len(c.tokens) != n {
		return false
	}
	return c.tokens[n-1] == c.target[n-1]
}

func (c *Controller) finishLocked(reason string) {
	if c.status == model.StatusFinished {
		return
	}
	c.clock.Stop()
	c.syncClockLocked()
	c.recomputeLocked()
	c.status = model.StatusFinished
	c.mistakes = metrics.Mistakes(c.target, c.tokens)

	result := model.TrialResult{
		ID:             c.newID(),
		WPM:            c.metrics.WPM,
		Accuracy:       c.metrics.Accuracy,
		ElapsedSeconds: c.elapsed,
		Timestamp:      c.now(),
	}
	c.result = &result

	ctx := context.Background()
	if c.history != nil {
		if err := c.history.Append(ctx, result); err != nil {
			c.logger.Errorw("failed to append trial result", "error", err, "id", result.ID)
		}
	}
	if c.archive != nil {
		if err := c.archive.InsertTrial(ctx, result, c.mistakes); err != nil {
			c.logger.Errorw("failed to archive trial", "error", err, "id", result.ID)
		}
	}
	c.series = c.loadSeries()
	c.logger.Infow("trial finished",
		"reason", reason,
		"wpm", result.WPM,
		"accuracy", result.Accuracy,
		"elapsed", result.ElapsedSeconds,
		"mistakes", len(c.mistakes),
	)
}

func (c *Controller) loadSeries() model.Series {
	if c.history == nil {
		return model.Series{}
	}
	return c.history.Series(context.Background())
}

func (c *Controller) emit(snap Snapshot) {
	if c.notify != nil {
		c.notify(snap)
	}
}
