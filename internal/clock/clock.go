// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package clock abstracts the time source so pollers and the orientation
// estimator can be driven by a manual clock in tests.
package clock

import (
	"sync"
	"time"
)

// Clock supplies timestamps and tickers.
type Clock interface {
	// Now returns the current time, including the monotonic reading when
	// the implementation has one.
	Now() time.Time

	// Since returns the duration elapsed since t.
	Since(t time.Time) time.Duration

	// NewTicker returns a ticker delivering ticks every d.
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers ticks at a fixed period.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealClock implements Clock with the time package.
type RealClock struct{}

func (RealClock) Now() time.Time                  { return time.Now() }
func (RealClock) Since(t time.Time) time.Duration { return time.Since(t) }

func (RealClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{ticker: time.NewTicker(d)}
}

type realTicker struct {
	ticker *time.Ticker
}

func (t *realTicker) C() <-chan time.Time { return t.ticker.C }
func (t *realTicker) Stop()               { t.ticker.Stop() }

// MockClock is a manually advanced clock for tests.
type MockClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*MockTicker
}

// NewMockClock returns a MockClock set to t.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *MockClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// Advance moves the clock forward by d and fires every ticker whose next
// tick is due. A single Advance fires a ticker at most once.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	tickers := make([]*MockTicker, len(c.tickers))
	copy(tickers, c.tickers)
	c.mu.Unlock()

	for _, t := range tickers {
		t.checkAndFire(now)
	}
}

// NewTicker creates a MockTicker whose first tick is due one period from now.
func (c *MockClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &MockTicker{
		ch:       make(chan time.Time, 1),
		interval: d,
		nextTick: c.now.Add(d),
	}
	c.tickers = append(c.tickers, t)
	return t
}

// ActiveTickers returns the number of tickers that have not been stopped.
func (c *MockClock) ActiveTickers() int {
	c.mu.Lock()
	tickers := make([]*MockTicker, len(c.tickers))
	copy(tickers, c.tickers)
	c.mu.Unlock()

	n := 0
	for _, t := range tickers {
		if !t.Stopped() {
			n++
		}
	}
	return n
}

// MockTicker is a ticker driven by MockClock.Advance.
type MockTicker struct {
	mu       sync.Mutex
	ch       chan time.Time
	interval time.Duration
	nextTick time.Time
	stopped  bool
}

func (t *MockTicker) C() <-chan time.Time { return t.ch }

func (t *MockTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

// Stopped reports whether Stop has been called.
func (t *MockTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

func (t *MockTicker) checkAndFire(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}

	if !now.Before(t.nextTick) {
		select {
		case t.ch <- now:
		default:
		}
		t.nextTick = t.nextTick.Add(t.interval)
		// A long Advance skips missed ticks rather than queueing them.
		if !now.Before(t.nextTick) {
			t.nextTick = now.Add(t.interval)
		}
	}
}
