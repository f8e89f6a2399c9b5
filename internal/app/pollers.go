// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/UiASub/Topside/internal/clock"
	"github.com/UiASub/Topside/internal/dashboard"
	"github.com/UiASub/Topside/internal/poller"
	"github.com/UiASub/Topside/internal/telemetry"
)

// Fetcher is the subset of telemetry.Client the pollers need.
type Fetcher interface {
	Battery(ctx context.Context) (telemetry.Battery, error)
	Depth(ctx context.Context) (telemetry.Depth, error)
	Lights(ctx context.Context) (telemetry.Lights, error)
	Sensors(ctx context.Context) (telemetry.Sensors, error)
	Thrusters(ctx context.Context) (telemetry.Thrusters, error)
	Resources(ctx context.Context) (telemetry.Resources, error)
	VideoStream(ctx context.Context) (telemetry.VideoStream, error)
}

// PollerSet owns one poller per telemetry channel.
type PollerSet struct {
	pollers map[dashboard.Channel]*poller.Poller
	ticks   map[dashboard.Channel]poller.Tick
}

// NewPollerSet wires every channel's fetch to its render function on d.
func NewPollerSet(c clock.Clock, f Fetcher, d *dashboard.Dashboard) *PollerSet {
	ticks := map[dashboard.Channel]poller.Tick{
		dashboard.ChannelBattery:   poller.FetchAndRender(f.Battery, d.RenderBattery),
		dashboard.ChannelDepth:     poller.FetchAndRender(f.Depth, d.RenderDepth),
		dashboard.ChannelLights:    poller.FetchAndRender(f.Lights, d.RenderLights),
		dashboard.ChannelSensors:   poller.FetchAndRender(f.Sensors, d.RenderSensors),
		dashboard.ChannelThrusters: poller.FetchAndRender(f.Thrusters, d.RenderThrusters),
		dashboard.ChannelResources: poller.FetchAndRender(f.Resources, d.RenderResources),
		dashboard.ChannelVideo:     poller.FetchAndRender(f.VideoStream, d.RenderVideo),
	}

	set := &PollerSet{
		pollers: make(map[dashboard.Channel]*poller.Poller, len(ticks)),
		ticks:   ticks,
	}
	for ch := range ticks {
		set.pollers[ch] = poller.New(string(ch), c, d.ReportError(ch))
	}
	return set
}

// Start starts every channel whose interval is positive. Channels with a
// zero interval stay stopped.
func (s *PollerSet) Start(intervals map[dashboard.Channel]time.Duration) error {
	for _, ch := range dashboard.PolledChannels {
		iv := intervals[ch]
		if iv <= 0 {
			log.WithField("channel", ch).Info("polling disabled")
			continue
		}
		if err := s.pollers[ch].Start(iv, s.ticks[ch]); err != nil {
			return errors.Wrapf(err, "start %s poller", ch)
		}
		log.WithFields(log.Fields{"channel": ch, "interval": iv}).Info("polling started")
	}
	return nil
}

// SetInterval applies one period to every running poller and returns the
// channels it changed.
func (s *PollerSet) SetInterval(iv time.Duration) ([]dashboard.Channel, error) {
	if iv <= 0 {
		return nil, poller.ErrInvalidInterval
	}
	var changed []dashboard.Channel
	for _, ch := range dashboard.PolledChannels {
		p := s.pollers[ch]
		if !p.Running() {
			continue
		}
		if err := p.SetInterval(iv); err != nil {
			if errors.Is(err, poller.ErrNotRunning) {
				continue
			}
			return changed, err
		}
		changed = append(changed, ch)
	}
	log.WithFields(log.Fields{"interval": iv, "channels": len(changed)}).Info("poll interval changed")
	return changed, nil
}

// Intervals reports the period of every running poller.
func (s *PollerSet) Intervals() map[dashboard.Channel]time.Duration {
	out := make(map[dashboard.Channel]time.Duration)
	for ch, p := range s.pollers {
		if p.Running() {
			out[ch] = p.Interval()
		}
	}
	return out
}

// Stop stops every poller and waits for in-flight ticks to return.
func (s *PollerSet) Stop() {
	for _, p := range s.pollers {
		p.Stop()
	}
	for _, p := range s.pollers {
		p.Wait()
	}
}
