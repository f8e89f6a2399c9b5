// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package dashboard holds the render state of the topside display and the
// functions that turn telemetry into it.
package dashboard

import (
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/UiASub/Topside/internal/clock"
	"github.com/UiASub/Topside/internal/orientation"
	"github.com/UiASub/Topside/internal/poller"
	"github.com/UiASub/Topside/internal/telemetry"
)

// ErrNoSample is returned by Calibrate before any sensor sample was rendered.
var ErrNoSample = errors.New("no sensor sample yet")

// Publisher receives every rendered value. Implementations must not block.
type Publisher interface {
	Publish(ch Channel, v interface{})
}

// Dashboard renders telemetry into a State. Render functions may be called
// from concurrent poller ticks.
type Dashboard struct {
	state *State
	clock clock.Clock
	pub   Publisher

	estMu     sync.Mutex
	est       *orientation.Estimator
	lastAccel *orientation.Vector3

	lossMu sync.Mutex
	loss   PacketLoss

	padMu sync.Mutex
	pad   Gamepad
}

// New creates an empty dashboard. pub may be nil.
func New(c clock.Clock, pub Publisher) *Dashboard {
	return &Dashboard{
		state: NewState(),
		clock: c,
		pub:   pub,
		est:   orientation.NewEstimator(),
	}
}

func (d *Dashboard) Snapshot() Snapshot { return d.state.Snapshot() }

// Orientation returns the latest orientation, or false before the first
// sensor sample.
func (d *Dashboard) Orientation() (orientation.Orientation, bool) {
	d.state.mu.RLock()
	defer d.state.mu.RUnlock()
	if d.state.snap.Orientation == nil {
		return orientation.Orientation{}, false
	}
	return *d.state.snap.Orientation, true
}

// ReportError returns the error sink of one channel. Failures are logged and
// recorded in the channel status; rendered values are left as they were.
func (d *Dashboard) ReportError(ch Channel) poller.ErrorSink {
	return func(err error) {
		log.WithField("channel", ch).WithError(err).Warn("telemetry fetch failed")
		d.state.recordError(ch, d.clock.Now(), err)
	}
}

func (d *Dashboard) RenderBattery(b telemetry.Battery) {
	d.state.update(ChannelBattery, d.clock.Now(), func(s *Snapshot) { s.Battery = &b })
	d.publish(ChannelBattery, b)
}

func (d *Dashboard) RenderDepth(v telemetry.Depth) {
	d.state.update(ChannelDepth, d.clock.Now(), func(s *Snapshot) { s.Depth = &v })
	d.publish(ChannelDepth, v)
}

func (d *Dashboard) RenderLights(l telemetry.Lights) {
	d.state.update(ChannelLights, d.clock.Now(), func(s *Snapshot) { s.Lights = l })
	d.publish(ChannelLights, l)
}

// RenderSensors runs the estimator on the sample and renders both the raw
// sample and the resulting orientation. The clock is read under estMu, so
// overlapping ticks reach the estimator in time order; a sample stamped
// before the estimator's last one is dropped.
func (d *Dashboard) RenderSensors(v telemetry.Sensors) {
	d.estMu.Lock()
	now := d.clock.Now()
	if st := d.est.State(); st.Tracking && now.Before(st.LastSample) {
		d.estMu.Unlock()
		log.WithFields(log.Fields{"at": now, "last": st.LastSample}).Debug("dropping out-of-order sensor sample")
		return
	}
	o := d.est.ComputeOrientation(v.Acceleration, v.Gyroscope, now)
	offset := d.est.Offset()
	accel := v.Acceleration
	d.lastAccel = &accel
	d.state.update(ChannelSensors, now, func(s *Snapshot) {
		s.Sensors = &v
		s.Orientation = &o
		s.Offset = offset
	})
	d.estMu.Unlock()

	d.publish(ChannelSensors, v)
	d.publish(ChannelOrientation, o)
}

func (d *Dashboard) RenderThrusters(t telemetry.Thrusters) {
	d.state.update(ChannelThrusters, d.clock.Now(), func(s *Snapshot) { s.Thrusters = t })
	d.publish(ChannelThrusters, t)
}

// RenderResources also feeds the sequence number to the packet-loss counter.
func (d *Dashboard) RenderResources(r telemetry.Resources) {
	d.lossMu.Lock()
	lost := d.loss.Observe(r.Sequence)
	d.lossMu.Unlock()

	d.state.update(ChannelResources, d.clock.Now(), func(s *Snapshot) {
		s.Resources = &r
		s.PacketsLost = lost
	})
	d.publish(ChannelResources, r)
}

func (d *Dashboard) RenderVideo(v telemetry.VideoStream) {
	d.state.update(ChannelVideo, d.clock.Now(), func(s *Snapshot) { s.Video = &v })
	d.publish(ChannelVideo, v)
}

// RenderGamepad renders a gamepad report sent by a browser. Invalid reports
// are rejected and leave the previous view in place.
func (d *Dashboard) RenderGamepad(r GamepadReport) (GamepadView, error) {
	d.padMu.Lock()
	view, err := d.pad.Update(r)
	if err == nil {
		d.state.update(ChannelGamepad, d.clock.Now(), func(s *Snapshot) { s.Gamepad = &view })
	}
	d.padMu.Unlock()
	if err != nil {
		return GamepadView{}, err
	}

	d.publish(ChannelGamepad, view)
	return view, nil
}

// Calibrate makes the attitude of the latest sensor sample the new zero.
// The displayed orientation is re-rendered at once so it reads zero.
func (d *Dashboard) Calibrate() (orientation.CalibrationOffset, error) {
	d.estMu.Lock()
	if d.lastAccel == nil {
		d.estMu.Unlock()
		return orientation.CalibrationOffset{}, ErrNoSample
	}
	d.est.Calibrate(*d.lastAccel)
	o, offset := d.rerender()
	d.storeOrientation(o, offset)
	d.estMu.Unlock()

	d.publish(ChannelOrientation, o)
	log.WithFields(log.Fields{
		"roll":  offset.Roll,
		"pitch": offset.Pitch,
		"yaw":   offset.Yaw,
	}).Info("orientation calibrated")
	return offset, nil
}

// ResetOrientation drops the calibration and the integrated yaw.
func (d *Dashboard) ResetOrientation() {
	d.estMu.Lock()
	d.est.Reset()
	haveOne := d.lastAccel != nil
	var o orientation.Orientation
	if haveOne {
		var offset orientation.CalibrationOffset
		o, offset = d.rerender()
		d.storeOrientation(o, offset)
	} else {
		d.state.mu.Lock()
		d.state.snap.Offset = orientation.CalibrationOffset{}
		d.state.mu.Unlock()
	}
	d.estMu.Unlock()

	if haveOne {
		d.publish(ChannelOrientation, o)
	}
	log.Info("orientation reset")
}

// rerender evaluates the last sample again at its own timestamp, so no yaw
// is integrated. estMu must be held.
func (d *Dashboard) rerender() (orientation.Orientation, orientation.CalibrationOffset) {
	o := d.est.ComputeOrientation(*d.lastAccel, orientation.Vector3{}, d.est.State().LastSample)
	return o, d.est.Offset()
}

// storeOrientation must be called with estMu held so it orders with
// RenderSensors.
func (d *Dashboard) storeOrientation(o orientation.Orientation, offset orientation.CalibrationOffset) {
	d.state.mu.Lock()
	d.state.snap.Orientation = &o
	d.state.snap.Offset = offset
	d.state.mu.Unlock()
}

// EstimatorState exposes the integration state for diagnostics.
func (d *Dashboard) EstimatorState() orientation.EstimatorState {
	d.estMu.Lock()
	defer d.estMu.Unlock()
	return d.est.State()
}

func (d *Dashboard) publish(ch Channel, v interface{}) {
	if d.pub != nil {
		d.pub.Publish(ch, v)
	}
}
