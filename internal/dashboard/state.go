// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dashboard

import (
	"sync"
	"time"

	"github.com/UiASub/Topside/internal/orientation"
	"github.com/UiASub/Topside/internal/telemetry"
)

// Channel names one telemetry feed.
type Channel string

const (
	ChannelBattery     Channel = "battery"
	ChannelDepth       Channel = "depth"
	ChannelLights      Channel = "lights"
	ChannelSensors     Channel = "sensors"
	ChannelThrusters   Channel = "thrusters"
	ChannelResources   Channel = "resources"
	ChannelVideo       Channel = "video"
	ChannelOrientation Channel = "orientation"
	ChannelGamepad     Channel = "gamepad"
)

// PolledChannels are the channels fetched from the vehicle, in display order.
var PolledChannels = []Channel{
	ChannelBattery,
	ChannelDepth,
	ChannelLights,
	ChannelSensors,
	ChannelThrusters,
	ChannelResources,
	ChannelVideo,
}

// ChannelStatus tracks freshness and the last failure of one channel.
type ChannelStatus struct {
	Updated   time.Time `json:"updated,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	ErrorAt   time.Time `json:"error_at,omitempty"`
	Errors    int       `json:"errors"`
}

// Snapshot is a copy of everything on screen. Nil fields have never been
// rendered.
type Snapshot struct {
	Battery     *telemetry.Battery            `json:"battery,omitempty"`
	Depth       *telemetry.Depth              `json:"depth,omitempty"`
	Lights      telemetry.Lights              `json:"lights,omitempty"`
	Sensors     *telemetry.Sensors            `json:"sensors,omitempty"`
	Orientation *orientation.Orientation      `json:"orientation,omitempty"`
	Offset      orientation.CalibrationOffset `json:"calibration"`
	Thrusters   telemetry.Thrusters           `json:"thrusters,omitempty"`
	Resources   *telemetry.Resources          `json:"resources,omitempty"`
	PacketsLost int64                         `json:"packets_lost"`
	Video       *telemetry.VideoStream        `json:"video,omitempty"`
	Gamepad     *GamepadView                  `json:"gamepad,omitempty"`
	Status      map[Channel]ChannelStatus     `json:"status"`
}

// State is the latest rendered value of every channel.
type State struct {
	mu   sync.RWMutex
	snap Snapshot
}

func NewState() *State {
	return &State{snap: Snapshot{Status: make(map[Channel]ChannelStatus)}}
}

// Snapshot returns a deep copy that callers may keep and modify.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

func (s *State) update(ch Channel, at time.Time, fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.snap)
	st := s.snap.Status[ch]
	st.Updated = at
	s.snap.Status[ch] = st
}

// recordError keeps the rendered values and only updates the status.
func (s *State) recordError(ch Channel, at time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.snap.Status[ch]
	st.LastError = err.Error()
	st.ErrorAt = at
	st.Errors++
	s.snap.Status[ch] = st
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Battery = clonePtr(s.Battery)
	out.Depth = clonePtr(s.Depth)
	out.Orientation = clonePtr(s.Orientation)
	out.Video = clonePtr(s.Video)
	if s.Sensors != nil {
		sensors := *s.Sensors
		sensors.Magnetometer = clonePtr(s.Sensors.Magnetometer)
		out.Sensors = &sensors
	}
	if s.Resources != nil {
		res := *s.Resources
		res.HeapTotalKB = clonePtr(s.Resources.HeapTotalKB)
		out.Resources = &res
	}
	if s.Lights != nil {
		out.Lights = make(telemetry.Lights, len(s.Lights))
		for k, v := range s.Lights {
			out.Lights[k] = v
		}
	}
	if s.Thrusters != nil {
		out.Thrusters = make(telemetry.Thrusters, len(s.Thrusters))
		for k, v := range s.Thrusters {
			out.Thrusters[k] = v
		}
	}
	if s.Gamepad != nil {
		pad := *s.Gamepad
		pad.Pressed = make([]int, len(s.Gamepad.Pressed))
		copy(pad.Pressed, s.Gamepad.Pressed)
		pad.Axes = make([]float64, len(s.Gamepad.Axes))
		copy(pad.Axes, s.Gamepad.Axes)
		out.Gamepad = &pad
	}
	out.Status = make(map[Channel]ChannelStatus, len(s.Status))
	for k, v := range s.Status {
		out.Status[k] = v
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
