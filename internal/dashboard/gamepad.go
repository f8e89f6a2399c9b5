// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dashboard

import (
	"math"

	"github.com/pkg/errors"
)

const (
	// ButtonThreshold is the analog value above which a button shows as
	// pressed.
	ButtonThreshold = 0.1
	// StickDeadzone is the axis deflection below which a stick shows as idle.
	StickDeadzone = 0.1
	// StickTravel is how far a stick marker moves at full deflection.
	StickTravel = 25

	// stickAxes are the two sticks' x/y axes; triggers follow them.
	stickAxes = 4
	// stuckAxis is the resting deflection that marks an axis as stuck.
	stuckAxis = 0.5
)

// ErrBadGamepadReport is returned for reports with non-finite values.
var ErrBadGamepadReport = errors.New("bad gamepad report")

// GamepadReport is the raw state of the operator's gamepad as read by the
// browser.
type GamepadReport struct {
	Connected bool      `json:"connected"`
	Buttons   []float64 `json:"buttons"`
	Axes      []float64 `json:"axes"`
}

// Stick is the displayed position of one thumbstick relative to its rest
// position.
type Stick struct {
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Active bool    `json:"active"`
}

// GamepadView is what the dashboard shows for the gamepad. It is display
// only; nothing here is sent to the vehicle.
type GamepadView struct {
	Connected bool      `json:"connected"`
	Pressed   []int     `json:"pressed"`
	Axes      []float64 `json:"axes"`
	Left      Stick     `json:"left"`
	Right     Stick     `json:"right"`
}

// StickPosition places a stick marker for axis values x and y.
func StickPosition(x, y float64) Stick {
	return Stick{
		DX:     x * StickTravel,
		DY:     y * StickTravel,
		Active: math.Abs(x) > StickDeadzone || math.Abs(y) > StickDeadzone,
	}
}

// Gamepad turns reports into views. On connect it records the resting value
// of any stick axis that sits past stuckAxis and subtracts it from then on.
// A disconnect resets the view and forgets the offsets.
//
// The zero value is ready to use. It is not safe for concurrent use.
type Gamepad struct {
	connected bool
	offsets   map[int]float64
}

func (g *Gamepad) Update(r GamepadReport) (GamepadView, error) {
	if err := r.validate(); err != nil {
		return GamepadView{}, err
	}
	if !r.Connected {
		g.connected = false
		g.offsets = nil
		return GamepadView{}, nil
	}
	if !g.connected {
		g.connected = true
		g.offsets = stuckOffsets(r.Axes)
	}

	view := GamepadView{
		Connected: true,
		Pressed:   []int{},
		Axes:      make([]float64, len(r.Axes)),
	}
	for i, v := range r.Buttons {
		if v > ButtonThreshold {
			view.Pressed = append(view.Pressed, i)
		}
	}
	for i, v := range r.Axes {
		view.Axes[i] = math.Max(-1, math.Min(1, v-g.offsets[i]))
	}
	view.Left = StickPosition(axis(view.Axes, 0), axis(view.Axes, 1))
	view.Right = StickPosition(axis(view.Axes, 2), axis(view.Axes, 3))
	return view, nil
}

// Offsets returns the stuck-axis offsets captured on connect.
func (g *Gamepad) Offsets() map[int]float64 {
	out := make(map[int]float64, len(g.offsets))
	for k, v := range g.offsets {
		out[k] = v
	}
	return out
}

func (r GamepadReport) validate() error {
	for i, v := range r.Buttons {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrapf(ErrBadGamepadReport, "button %d", i)
		}
	}
	for i, v := range r.Axes {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrapf(ErrBadGamepadReport, "axis %d", i)
		}
	}
	return nil
}

func stuckOffsets(axes []float64) map[int]float64 {
	offsets := make(map[int]float64)
	for i := 0; i < stickAxes && i < len(axes); i++ {
		if math.Abs(axes[i]) > stuckAxis {
			offsets[i] = axes[i]
		}
	}
	return offsets
}

func axis(axes []float64, i int) float64 {
	if i < len(axes) {
		return axes[i]
	}
	return 0
}
