// Package clock coordinates the countdown and elapsed counters of a trial.
package clock

import (
	"sync"
	"time"
)

// Kind identifies which counter produced a tick.
type Kind int

// Tick kinds.
const (
	KindElapsed Kind = iota
	KindCountdown
)

// Tick reports the counters after one of them advanced.
type Tick struct {
	Kind      Kind
	Elapsed   int
	Remaining int
	Expired   bool
}

// Clock owns two independent one-second counters: a countdown that starts at
// the limit and floors at zero, and an elapsed counter that starts at zero.
// Start, Stop and Reset are safe to call repeatedly.
type Clock struct {
	mu     sync.Mutex
	sched  Scheduler
	onTick func(Tick)

	limit     int
	remaining int
	elapsed   int

	started bool
	stopped bool
	gen     uint64
	cancels []func()
}

// New returns a stopped clock with the countdown set to limit seconds.
func New(limit int, sched Scheduler, onTick func(Tick)) *Clock {
	if sched == nil {
		sched = TickerScheduler{}
	}
	return &Clock{
		sched:     sched,
		onTick:    onTick,
		limit:     limit,
		remaining: limit,
	}
}

// Start begins both counters. It returns false when the clock was already
// started since the last Reset.
func (c *Clock) Start() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return false
	}
	c.started = true
	c.gen++
	gen := c.gen
	c.cancels = []func(){
		c.sched.Every(time.Second, func() { c.tickElapsed(gen) }),
		c.sched.Every(time.Second, func() { c.tickCountdown(gen) }),
	}
	return true
}

// Stop halts both counters and releases their callbacks. Only the call that
// actually stopped a running clock returns true.
func (c *Clock) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopLocked()
}

// Reset stops the clock and zeroes both counters so it can start again.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.gen++
	c.started = false
	c.stopped = false
	c.elapsed = 0
	c.remaining = c.limit
}

// Running reports whether the counters are advancing.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started && !c.stopped
}

// Elapsed returns the elapsed counter in seconds.
func (c *Clock) Elapsed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

// Remaining returns the countdown in seconds.
func (c *Clock) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Clock) stopLocked() bool {
	if !c.started || c.stopped {
		return false
	}
	c.stopped = true
	c.gen++
	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil
	return true
}

func (c *Clock) tickElapsed(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.stopped {
		c.mu.Unlock()
		return
	}
	c.elapsed++
	tick := Tick{Kind: KindElapsed, Elapsed: c.elapsed, Remaining: c.remaining}
	c.mu.Unlock()
	c.emit(tick)
}

func (c *Clock) tickCountdown(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.stopped {
		c.mu.Unlock()
		return
	}
	if c.remaining > 0 {
		c.remaining--
	}
	tick := Tick{Kind: KindCountdown, Remaining: c.remaining}
	if c.remaining == 0 {
		// Both counters report the full limit on timeout.
		if consumed := c.limit - c.remaining; c.elapsed < consumed {
			c.elapsed = consumed
		}
		c.stopLocked()
		tick.Expired = true
	}
	tick.Elapsed = c.elapsed
	c.mu.Unlock()
	c.emit(tick)
}

func (c *Clock) emit(tick Tick) {
	if c.onTick != nil {
		c.onTick(tick)
	}
}
