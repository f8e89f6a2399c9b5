// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dashboard

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UiASub/Topside/internal/orientation"
	"github.com/UiASub/Topside/internal/telemetry"
)

// dialTop is a pixel in the middle of the dial band at 50%.
var dialTop = image.Pt(int(panelGaugeCX), int(panelGaugeCY-panelGaugeRadius+panelGaugeWidth/2))

func countNot(img *image.RGBA, bg color.RGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) != bg {
				n++
			}
		}
	}
	return n
}

func TestRenderPanelWaiting(t *testing.T) {
	img := RenderPanel(NewState().Snapshot())
	assert.Equal(t, image.Rect(0, 0, PanelWidth, PanelHeight), img.Bounds())
	assert.Greater(t, countNot(img, panelBackground), 0)
	assert.Equal(t, panelBackground, img.RGBAAt(dialTop.X, dialTop.Y))
}

func TestRenderPanelGauge(t *testing.T) {
	snap := NewState().Snapshot()
	snap.Resources = &telemetry.Resources{CPUPercent: 100, HeapUsedPercent: 40, UptimeMS: 3_600_000}

	img := RenderPanel(snap)
	assert.Equal(t, GaugeColor(100), img.RGBAAt(dialTop.X, dialTop.Y))

	snap.Resources.CPUPercent = 10
	img = RenderPanel(snap)
	assert.Equal(t, panelTrack, img.RGBAAt(dialTop.X, dialTop.Y))
}

func TestRenderPanelFull(t *testing.T) {
	s := NewState()
	now := time.Date(2026, 6, 2, 10, 0, 0, 0, time.UTC)
	s.update(ChannelBattery, now, func(sn *Snapshot) { sn.Battery = &telemetry.Battery{Percent: 88} })
	s.update(ChannelDepth, now, func(sn *Snapshot) { sn.Depth = &telemetry.Depth{Depth: 12, Target: 15} })
	s.update(ChannelSensors, now, func(sn *Snapshot) {
		sn.Orientation = &orientation.Orientation{Roll: 20, Pitch: -3, Yaw: 90}
	})
	s.update(ChannelThrusters, now, func(sn *Snapshot) {
		sn.Thrusters = telemetry.Thrusters{"U_FWD_P": {Power: 450, Temp: 27}}
	})
	s.update(ChannelLights, now, func(sn *Snapshot) { sn.Lights = telemetry.Lights{"Light1": 50} })
	s.recordError(ChannelVideo, now, assert.AnError)

	snap := s.Snapshot()
	assert.Equal(t, []string{"video"}, failingChannels(snap))

	img := RenderPanel(snap)
	require.NotNil(t, img)
	assert.Greater(t, countNot(img, panelBackground), 500)

	// Roll 20 is past the alert threshold, so the attitude line is red.
	found := false
	b := img.Bounds()
	for y := 2 * panelLine; y > panelLine && !found; y-- {
		for x := 0; x < 100; x++ {
			if img.RGBAAt(x, y) == statusColors[StatusAlert] {
				found = true
				break
			}
		}
	}
	assert.True(t, found, "no alert-coloured glyph in %v", b)
}

func TestFailingChannelsIgnoresRecovered(t *testing.T) {
	s := NewState()
	t0 := time.Date(2026, 6, 2, 10, 0, 0, 0, time.UTC)
	s.recordError(ChannelDepth, t0, assert.AnError)
	s.update(ChannelDepth, t0.Add(time.Second), func(*Snapshot) {})
	assert.Empty(t, failingChannels(s.Snapshot()))
}

func TestHexColor(t *testing.T) {
	assert.Equal(t, color.RGBA{0x28, 0xa7, 0x45, 0xff}, hexColor(BarGreen))
	assert.Equal(t, color.RGBA{0xdc, 0x35, 0x45, 0xff}, hexColor(BarRed))
}
