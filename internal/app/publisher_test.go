// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UiASub/Topside/internal/clock"
	"github.com/UiASub/Topside/internal/dashboard"
	"github.com/UiASub/Topside/internal/orientation"
	"github.com/UiASub/Topside/internal/telemetry"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type sentMsg struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeBroker struct {
	mu   sync.Mutex
	sent []sentMsg
}

func (b *fakeBroker) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, sentMsg{topic, qos, retained, payload.([]byte)})
	return doneToken{}
}

func (b *fakeBroker) messages() []sentMsg {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]sentMsg(nil), b.sent...)
}

func TestPublisherSendsRetainedJSON(t *testing.T) {
	broker := &fakeBroker{}
	p := newMQTTPublisher(broker, "rov")
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	p.Publish(dashboard.ChannelOrientation, orientation.Orientation{Roll: 1.5, Pitch: -2, Yaw: 30})
	p.Publish(dashboard.ChannelBattery, telemetry.Battery{Percent: 80})

	require.Eventually(t, func() bool { return len(broker.messages()) == 2 }, time.Second, time.Millisecond)
	cancel()
	p.Wait()

	msgs := broker.messages()
	assert.Equal(t, "rov/orientation", msgs[0].topic)
	assert.Equal(t, byte(0), msgs[0].qos)
	assert.True(t, msgs[0].retained)
	var o orientation.Orientation
	require.NoError(t, json.Unmarshal(msgs[0].payload, &o))
	assert.Equal(t, orientation.Orientation{Roll: 1.5, Pitch: -2, Yaw: 30}, o)

	assert.Equal(t, "rov/battery", msgs[1].topic)
	assert.JSONEq(t, `{"battery": 80}`, string(msgs[1].payload))
}

func TestPublisherDropsWhenFull(t *testing.T) {
	p := newMQTTPublisher(&fakeBroker{}, "rov")

	// Not started: nothing drains the queue.
	for i := 0; i < publishQueue+5; i++ {
		p.Publish(dashboard.ChannelDepth, telemetry.Depth{Depth: float64(i)})
	}
	assert.Equal(t, 5, p.Dropped())
}

func TestDashboardFeedsPublisher(t *testing.T) {
	broker := &fakeBroker{}
	p := newMQTTPublisher(broker, "uiasub")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	d := dashboard.New(clock.NewMockClock(epoch), p)
	d.RenderThrusters(telemetry.Thrusters{"FL": {Power: 410, Temp: 24}})

	require.Eventually(t, func() bool { return len(broker.messages()) == 1 }, time.Second, time.Millisecond)
	msg := broker.messages()[0]
	assert.Equal(t, "uiasub/thrusters", msg.topic)
	assert.JSONEq(t, `{"FL": {"power": 410, "temp": 24}}`, string(msg.payload))
}

func TestClientID(t *testing.T) {
	assert.Equal(t, "bridge-1-dashboard", clientID("bridge-1", "dashboard"))
	assert.NotEqual(t, clientID("bridge-1", "dashboard"), clientID("bridge-1", "monitor"))

	a, b := clientID("", "dashboard"), clientID("", "dashboard")
	assert.True(t, strings.HasPrefix(a, "topside-dashboard-"))
	assert.NotEqual(t, a, b)
}
