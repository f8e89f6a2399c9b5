// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package poller runs a fetch-and-render tick for one telemetry channel on a
// fixed, changeable period.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/UiASub/Topside/internal/clock"
)

var (
	ErrAlreadyRunning  = errors.New("poller already running")
	ErrNotRunning      = errors.New("poller not running")
	ErrInvalidInterval = errors.New("poller interval must be positive")
)

// Tick performs one poll. It is called on its own goroutine, so ticks of the
// same poller may overlap when a fetch outlasts the interval.
type Tick func(ctx context.Context) error

// ErrorSink receives the error of a failed tick.
type ErrorSink func(err error)

// FetchAndRender builds a Tick that fetches a value and renders it only when
// the fetch succeeded and the poller has not been stopped meanwhile.
func FetchAndRender[T any](fetch func(ctx context.Context) (T, error), render func(T)) Tick {
	return func(ctx context.Context) error {
		v, err := fetch(ctx)
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		render(v)
		return nil
	}
}

// Poller owns the single ticker of one channel.
type Poller struct {
	name    string
	clock   clock.Clock
	onError ErrorSink

	mu       sync.Mutex
	running  bool
	interval time.Duration
	tick     Tick
	ticker   clock.Ticker
	stopLoop chan struct{}
	loopDone chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	gen      uint64

	inflight sync.WaitGroup
}

// New creates a stopped poller. A nil onError logs the failure.
func New(name string, c clock.Clock, onError ErrorSink) *Poller {
	if onError == nil {
		onError = func(err error) {
			log.WithField("channel", name).WithError(err).Warn("poll failed")
		}
	}
	return &Poller{name: name, clock: c, onError: onError}
}

func (p *Poller) Name() string { return p.name }

// Start arms the ticker with interval and runs tick on every period.
func (p *Poller) Start(interval time.Duration, tick Tick) error {
	if interval <= 0 {
		return errors.Wrapf(ErrInvalidInterval, "%s: %v", p.name, interval)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return errors.Wrap(ErrAlreadyRunning, p.name)
	}
	p.running = true
	p.tick = tick
	p.gen++
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.arm(interval)

	log.WithFields(log.Fields{"channel": p.name, "interval": interval}).Debug("poller started")
	return nil
}

// SetInterval replaces the period. When it returns the old ticker is stopped
// and its loop has exited, so no tick of the old period can fire afterwards.
// In-flight ticks are not cancelled.
func (p *Poller) SetInterval(interval time.Duration) error {
	if interval <= 0 {
		return errors.Wrapf(ErrInvalidInterval, "%s: %v", p.name, interval)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return errors.Wrap(ErrNotRunning, p.name)
	}
	p.disarm()
	p.arm(interval)

	log.WithFields(log.Fields{"channel": p.name, "interval": interval}).Debug("poller interval changed")
	return nil
}

// Stop disarms the ticker and cancels in-flight ticks. Results of those ticks
// are discarded. Stop on a stopped poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	p.disarm()
	p.cancel()
	p.gen++
	p.running = false

	log.WithField("channel", p.name).Debug("poller stopped")
}

// Wait blocks until every dispatched tick has returned.
func (p *Poller) Wait() {
	p.inflight.Wait()
}

func (p *Poller) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// arm must be called with mu held.
func (p *Poller) arm(interval time.Duration) {
	p.interval = interval
	p.ticker = p.clock.NewTicker(interval)
	p.stopLoop = make(chan struct{})
	p.loopDone = make(chan struct{})
	go p.loop(p.ctx, p.ticker, p.stopLoop, p.loopDone, p.gen, p.tick)
}

// disarm must be called with mu held. The loop never takes mu, so waiting
// for it here cannot deadlock.
func (p *Poller) disarm() {
	p.ticker.Stop()
	close(p.stopLoop)
	<-p.loopDone
}

func (p *Poller) loop(ctx context.Context, t clock.Ticker, stop <-chan struct{}, done chan<- struct{}, gen uint64, tick Tick) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case <-t.C():
			select {
			case <-stop:
				return
			default:
			}
			p.inflight.Add(1)
			go p.run(ctx, gen, tick)
		}
	}
}

func (p *Poller) run(ctx context.Context, gen uint64, tick Tick) {
	defer p.inflight.Done()

	err := tick(ctx)
	if err == nil {
		return
	}

	p.mu.Lock()
	stale := gen != p.gen
	p.mu.Unlock()
	if stale || ctx.Err() != nil {
		return
	}
	p.onError(err)
}
