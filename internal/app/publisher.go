// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/UiASub/Topside/internal/config"
	"github.com/UiASub/Topside/internal/dashboard"
)

const (
	publishQueue   = 64
	publishTimeout = 2 * time.Second
)

// tokenPublisher is the part of mqtt.Client the publisher uses.
type tokenPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

type publishMsg struct {
	topic   string
	payload []byte
}

// MQTTPublisher forwards rendered values to <prefix>/<channel>, QoS 0,
// retained. Publish never blocks; when the queue is full the value is
// dropped.
type MQTTPublisher struct {
	client tokenPublisher
	prefix string
	msgs   chan publishMsg
	wg     sync.WaitGroup

	mu      sync.Mutex
	dropped int
}

func newMQTTPublisher(client tokenPublisher, prefix string) *MQTTPublisher {
	return &MQTTPublisher{
		client: client,
		prefix: prefix,
		msgs:   make(chan publishMsg, publishQueue),
	}
}

// Topic returns the topic of channel ch.
func (p *MQTTPublisher) Topic(ch dashboard.Channel) string {
	return p.prefix + "/" + string(ch)
}

func (p *MQTTPublisher) Publish(ch dashboard.Channel, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.WithField("channel", ch).WithError(err).Warn("mqtt: marshal failed")
		return
	}
	select {
	case p.msgs <- publishMsg{topic: p.Topic(ch), payload: payload}:
	default:
		p.mu.Lock()
		p.dropped++
		p.mu.Unlock()
	}
}

// Dropped returns how many values were dropped because the queue was full.
func (p *MQTTPublisher) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// Start publishes queued values on a goroutine until ctx is done.
func (p *MQTTPublisher) Start(ctx context.Context) {
	p.wg.Add(1)
	go p.run(ctx)
}

func (p *MQTTPublisher) run(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case m := <-p.msgs:
			token := p.client.Publish(m.topic, 0, true, m.payload)
			if !token.WaitTimeout(publishTimeout) {
				log.WithField("topic", m.topic).Warn("mqtt: publish timed out")
				continue
			}
			if err := token.Error(); err != nil {
				log.WithField("topic", m.topic).WithError(err).Warn("mqtt: publish failed")
			}
		case <-ctx.Done():
			return
		}
	}
}

// Wait blocks until the goroutine started by Start has returned.
func (p *MQTTPublisher) Wait() { p.wg.Wait() }

// clientID returns "<configured>-<role>", or a unique id when none is
// configured.
func clientID(configured, role string) string {
	if configured != "" {
		return configured + "-" + role
	}
	return "topside-" + role + "-" + uuid.NewString()[:8]
}

// connectMQTT connects to the broker of cfg. Once connected the client
// reconnects on its own.
func connectMQTT(cfg config.MQTTConfig, role string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID(cfg.ClientID, role)).
		SetAutoReconnect(true)
	opts.OnConnect = func(mqtt.Client) {
		log.WithField("broker", cfg.Broker).Info("mqtt: connected")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.WithField("broker", cfg.Broker).WithError(err).Warn("mqtt: connection lost")
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, errors.Wrapf(token.Error(), "mqtt: connect to %s", cfg.Broker)
	}
	return client, nil
}
