// Package clocktest provides a manually driven scheduler for tests.
package clocktest

import (
	"sync"
	"time"
)

type entry struct {
	fn        func()
	cancelled bool
}

// Scheduler fires registered callbacks only when advanced. Callbacks fire in
// registration order.
type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
}

// Every implements clock.Scheduler.
func (s *Scheduler) Every(_ time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &entry{fn: fn}
	s.entries = append(s.entries, e)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		e.cancelled = true
	}
}

// Advance simulates n seconds, firing every active callback once per second.
func (s *Scheduler) Advance(n int) {
	for i := 0; i < n; i++ {
		s.mu.Lock()
		snapshot := append([]*entry(nil), s.entries...)
		s.mu.Unlock()
		for _, e := range snapshot {
			s.mu.Lock()
			cancelled := e.cancelled
			s.mu.Unlock()
			if !cancelled {
				e.fn()
			}
		}
	}
}

// FireAll invokes every registered callback, cancelled or not, once. It
// simulates callbacks that were already in flight when cancellation happened.
func (s *Scheduler) FireAll() {
	s.mu.Lock()
	snapshot := append([]*entry(nil), s.entries...)
	s.mu.Unlock()
	for _, e := range snapshot {
		e.fn()
	}
}

// Active returns the number of callbacks that have not been cancelled.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if !e.cancelled {
			n++
		}
	}
	return n
}
