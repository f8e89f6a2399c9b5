// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UiASub/Topside/internal/dashboard"
	"github.com/UiASub/Topside/internal/telemetry"
)

func dialLiveView(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

// readUntil skips snapshot pushes until a message of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) WSResponse {
	t.Helper()
	for {
		var resp WSResponse
		require.NoError(t, conn.ReadJSON(&resp))
		if resp.Type == typ {
			return resp
		}
	}
}

func TestLiveViewPushesSnapshot(t *testing.T) {
	srv, d, c, _ := newTestServer(t)
	d.RenderBattery(telemetry.Battery{Percent: 64})

	conn := dialLiveView(t, srv.URL)
	first := readUntil(t, conn, "snapshot")
	require.NotNil(t, first.Snapshot)
	require.NotNil(t, first.Snapshot.Battery)
	assert.Equal(t, 64.0, first.Snapshot.Battery.Percent)

	d.RenderBattery(telemetry.Battery{Percent: 63})
	require.Eventually(t, func() bool { return c.ActiveTickers() == 1 }, time.Second, time.Millisecond)
	c.Advance(100 * time.Millisecond)

	next := readUntil(t, conn, "snapshot")
	require.NotNil(t, next.Snapshot.Battery)
	assert.Equal(t, 63.0, next.Snapshot.Battery.Percent)
}

func TestLiveViewActions(t *testing.T) {
	srv, d, _, iv := newTestServer(t)
	conn := dialLiveView(t, srv.URL)

	require.NoError(t, conn.WriteJSON(WSMessage{Action: "calibrate"}))
	resp := readUntil(t, conn, "error")
	assert.Equal(t, "calibrate", resp.Action)
	assert.Contains(t, resp.Message, "no sensor sample")

	d.RenderSensors(tiltedSample())
	require.NoError(t, conn.WriteJSON(WSMessage{Action: "calibrate"}))
	resp = readUntil(t, conn, "status")
	assert.Equal(t, "calibrate", resp.Action)
	offset, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, 45, offset["roll"], 1e-9)

	require.NoError(t, conn.WriteJSON(WSMessage{Action: "reset"}))
	resp = readUntil(t, conn, "status")
	assert.Equal(t, "reset", resp.Action)

	require.NoError(t, conn.WriteJSON(WSMessage{Action: "set_interval", IntervalMS: 750}))
	resp = readUntil(t, conn, "status")
	assert.Equal(t, "set_interval", resp.Action)
	assert.Equal(t, 750*time.Millisecond, iv.last())

	require.NoError(t, conn.WriteJSON(WSMessage{Action: "set_interval"}))
	resp = readUntil(t, conn, "error")
	assert.Contains(t, resp.Message, "positive")

	require.NoError(t, conn.WriteJSON(WSMessage{Action: "dive"}))
	resp = readUntil(t, conn, "error")
	assert.Equal(t, "unknown action", resp.Message)
}

func TestLiveViewGamepad(t *testing.T) {
	srv, d, _, _ := newTestServer(t)
	conn := dialLiveView(t, srv.URL)

	report := dashboard.GamepadReport{Connected: true, Buttons: []float64{0, 0, 1}, Axes: []float64{0.4, 0, 0, 0}}
	require.NoError(t, conn.WriteJSON(WSMessage{Action: "gamepad", Gamepad: &report}))

	// Successful reports get no reply, so the next reply belongs to the
	// following message.
	require.NoError(t, conn.WriteJSON(WSMessage{Action: "gamepad"}))
	resp := readUntil(t, conn, "error")
	assert.Equal(t, "gamepad", resp.Action)
	assert.Equal(t, "missing gamepad report", resp.Message)

	pad := d.Snapshot().Gamepad
	require.NotNil(t, pad)
	assert.Equal(t, []int{2}, pad.Pressed)
	assert.True(t, pad.Left.Active)
}
