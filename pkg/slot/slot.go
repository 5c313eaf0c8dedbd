// Package slot is a single frame mailbox between the capture goroutine
// and the preview loop. The newest frame always wins.
package slot

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/liteview/liteview/pkg/image"
)

// WaitResult tells why WaitForFrame returned.
type WaitResult uint8

const (
	Ready WaitResult = iota
	Timeout
	Shutdown
)

func (r WaitResult) String() string {
	switch r {
	case Ready:
		return "ready"
	case Timeout:
		return "timeout"
	case Shutdown:
		return "shutdown"
	}
	return "?"
}

// DefaultPoll is the drain wait re-check period.
const DefaultPoll = 500 * time.Microsecond

// Slot keeps at most one pending frame.
// The mutex guards only the frame cell, nothing slow is done under it.
type Slot struct {
	mu    sync.Mutex
	frame image.Frame
	full  bool

	running atomic.Bool

	available chan struct{}
	consumed  chan struct{}

	published   atomic.Uint64
	overwritten atomic.Uint64
	taken       atomic.Uint64
}

func New() *Slot {
	s := &Slot{
		available: make(chan struct{}, 1),
		consumed:  make(chan struct{}, 1),
	}
	s.running.Store(true)
	return s
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Publish puts the frame into the slot replacing an unconsumed one.
// It returns true when a pending frame was overwritten.
func (s *Slot) Publish(f image.Frame) (overwritten bool) {
	s.mu.Lock()
	overwritten = s.full
	s.frame, s.full = f, true
	s.mu.Unlock()

	s.published.Add(1)
	if overwritten {
		s.overwritten.Add(1)
	}
	notify(s.available)
	return
}

// Take removes the pending frame if any.
func (s *Slot) Take() (image.Frame, bool) {
	s.mu.Lock()
	if !s.full {
		s.mu.Unlock()
		return image.Frame{}, false
	}
	f := s.frame
	s.frame, s.full = image.Frame{}, false
	s.mu.Unlock()

	s.taken.Add(1)
	notify(s.consumed)
	return f, true
}

// Pending tells if there is an unconsumed frame.
func (s *Slot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.full
}

// WaitForFrame blocks until a frame is pending, the timeout is over
// or the slot is retired. A pending frame wins over retirement.
func (s *Slot) WaitForFrame(timeout time.Duration) WaitResult {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		if s.Pending() {
			return Ready
		}
		if !s.Running() {
			return Shutdown
		}
		select {
		case <-s.available:
		case <-timer.C:
			if s.Pending() {
				return Ready
			}
			if !s.Running() {
				return Shutdown
			}
			return Timeout
		}
	}
}

// WaitDrained blocks until the pending frame is taken.
// It re-checks the flags at least every poll period and gives up with false
// when the slot is retired or abort returns true.
func (s *Slot) WaitDrained(poll time.Duration, abort func() bool) bool {
	if poll <= 0 {
		poll = DefaultPoll
	}
	for {
		if !s.Running() || (abort != nil && abort()) {
			return false
		}
		if !s.Pending() {
			return true
		}
		t := time.NewTimer(poll)
		select {
		case <-s.consumed:
		case <-t.C:
		}
		t.Stop()
	}
}

func (s *Slot) Running() bool { return s.running.Load() }

// Retire marks the slot as finished and wakes everyone waiting on it.
// Either side may call it, many times.
func (s *Slot) Retire() {
	s.running.Store(false)
	notify(s.available)
	notify(s.consumed)
}

// Stats is a snapshot of the slot counters.
type Stats struct {
	Published   uint64
	Overwritten uint64
	Taken       uint64
}

func (s *Slot) Stats() Stats {
	return Stats{
		Published:   s.published.Load(),
		Overwritten: s.overwritten.Load(),
		Taken:       s.taken.Load(),
	}
}
