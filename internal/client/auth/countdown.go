package auth

import (
	"sync"
	"time"
)

// Timer is the part of *time.Timer the countdown needs.
type Timer interface {
	Stop() bool
}

// Clock abstracts time for the countdown and the splash delay.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Countdown tracks the validity window of a verification code. It owns at
// most one timer; no goroutine outlives Stop.
type Countdown struct {
	mu       sync.Mutex
	clock    Clock
	timer    Timer
	deadline time.Time
	gen      uint64
	onExpire func()
}

func NewCountdown(clock Clock, onExpire func()) *Countdown {
	if clock == nil {
		clock = realClock{}
	}
	return &Countdown{clock: clock, onExpire: onExpire}
}

// Reset restarts the countdown at d.
func (c *Countdown) Reset(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.gen++
	gen := c.gen
	c.deadline = c.clock.Now().Add(d)
	c.timer = c.clock.AfterFunc(d, func() { c.fire(gen) })
}

func (c *Countdown) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.timer == nil {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.mu.Unlock()

	if c.onExpire != nil {
		c.onExpire()
	}
}

// Stop cancels the countdown. It is safe to call repeatedly.
func (c *Countdown) Stop() {
	c.mu.Lock()
	c.stopLocked()
	c.mu.Unlock()
}

func (c *Countdown) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
	c.deadline = time.Time{}
}

// Remaining returns the time left, or 0 when stopped or expired.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.deadline.IsZero() {
		return 0
	}
	if d := c.deadline.Sub(c.clock.Now()); d > 0 {
		return d
	}
	return 0
}

// Running reports whether a timer is armed.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}
