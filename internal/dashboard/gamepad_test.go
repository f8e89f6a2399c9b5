// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dashboard

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStickPosition(t *testing.T) {
	assert.Equal(t, Stick{DX: 12.5, DY: -25, Active: true}, StickPosition(0.5, -1))
	assert.Equal(t, Stick{}, StickPosition(0, 0))

	idle := StickPosition(0.1, -0.1)
	assert.False(t, idle.Active)
	assert.InDelta(t, 2.5, idle.DX, 1e-9)
	assert.True(t, StickPosition(0, 0.11).Active)
}

func TestGamepadButtons(t *testing.T) {
	var g Gamepad
	view, err := g.Update(GamepadReport{
		Connected: true,
		Buttons:   []float64{0, 0.1, 0.11, 1, 0, 0.5},
		Axes:      []float64{0, 0, 0, 0},
	})
	require.NoError(t, err)
	assert.True(t, view.Connected)
	assert.Equal(t, []int{2, 3, 5}, view.Pressed)
	assert.False(t, view.Left.Active)
	assert.False(t, view.Right.Active)
}

func TestGamepadStuckAxisOffset(t *testing.T) {
	var g Gamepad

	// Axis 1 rests at -0.8 on connect; axis 4 is a trigger and never offset.
	view, err := g.Update(GamepadReport{Connected: true, Axes: []float64{0.2, -0.8, 0, 0, -1}})
	require.NoError(t, err)
	assert.Equal(t, map[int]float64{1: -0.8}, g.Offsets())
	assert.InDelta(t, 0, view.Axes[1], 1e-9)
	assert.InDelta(t, -1, view.Axes[4], 1e-9)
	assert.Equal(t, StickPosition(0.2, 0), view.Left)

	// Offset stays for later reports and the result is clamped.
	view, err = g.Update(GamepadReport{Connected: true, Axes: []float64{0, 0.6, 0, 0, -1}})
	require.NoError(t, err)
	assert.InDelta(t, 1, view.Axes[1], 1e-9)
	assert.Equal(t, Stick{DY: 25, Active: true}, view.Left)
}

func TestGamepadDisconnectResets(t *testing.T) {
	var g Gamepad
	_, err := g.Update(GamepadReport{Connected: true, Buttons: []float64{1}, Axes: []float64{0.9, 0, 0, 0}})
	require.NoError(t, err)

	view, err := g.Update(GamepadReport{Connected: false})
	require.NoError(t, err)
	assert.Equal(t, GamepadView{}, view)
	assert.Empty(t, g.Offsets())

	// Reconnecting captures fresh offsets.
	view, err = g.Update(GamepadReport{Connected: true, Axes: []float64{0, 0, 0.7, 0}})
	require.NoError(t, err)
	assert.Equal(t, map[int]float64{2: 0.7}, g.Offsets())
	assert.False(t, view.Right.Active)
}

func TestGamepadRejectsNonFinite(t *testing.T) {
	var g Gamepad
	_, err := g.Update(GamepadReport{Connected: true, Axes: []float64{math.NaN()}})
	assert.True(t, errors.Is(err, ErrBadGamepadReport))

	_, err = g.Update(GamepadReport{Connected: true, Buttons: []float64{math.Inf(1)}})
	assert.True(t, errors.Is(err, ErrBadGamepadReport))
}

func TestRenderGamepad(t *testing.T) {
	d, _, rec := newTestDashboard()

	view, err := d.RenderGamepad(GamepadReport{Connected: true, Buttons: []float64{0, 1}, Axes: []float64{0, 0, 0.5, 0}})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, view.Pressed)

	snap := d.Snapshot()
	require.NotNil(t, snap.Gamepad)
	assert.Equal(t, view, *snap.Gamepad)
	assert.Equal(t, Stick{DX: 12.5, Active: true}, snap.Gamepad.Right)
	got, ok := rec.last(ChannelGamepad)
	require.True(t, ok)
	assert.Equal(t, view, got)

	_, err = d.RenderGamepad(GamepadReport{Connected: true, Axes: []float64{math.NaN()}})
	require.Error(t, err)
	assert.Equal(t, view, *d.Snapshot().Gamepad)

	snap.Gamepad.Pressed[0] = 7
	assert.Equal(t, []int{1}, d.Snapshot().Gamepad.Pressed)
}
