// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/UiASub/Topside/internal/config"
	"github.com/UiASub/Topside/internal/dashboard"
	"github.com/UiASub/Topside/internal/orientation"
	"github.com/UiASub/Topside/internal/telemetry"
)

// RunMonitor subscribes to the dashboard's MQTT feed and prints one line per
// message until SIGINT or SIGTERM.
func RunMonitor() error {
	cfg := config.Get()
	if cfg.MQTT.Broker == "" {
		return errors.New("monitor: mqtt.broker is not configured")
	}

	client, err := connectMQTT(cfg.MQTT, "monitor")
	if err != nil {
		return err
	}

	prefix := cfg.MQTT.TopicPrefix
	topic := prefix + "/#"
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		line, err := FormatFeedLine(prefix, msg.Topic(), msg.Payload())
		if err != nil {
			log.WithField("topic", msg.Topic()).WithError(err).Warn("monitor: bad payload")
			return
		}
		fmt.Println(line)
	})
	token.Wait()
	if token.Error() != nil {
		return errors.Wrapf(token.Error(), "monitor: subscribe %s", topic)
	}
	log.WithField("topic", topic).Info("monitor: subscribed")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("monitor: shutting down")
	client.Disconnect(250)
	return nil
}

// FormatFeedLine renders one feed message the way the console does.
func FormatFeedLine(prefix, topic string, payload []byte) (string, error) {
	ch := dashboard.Channel(strings.TrimPrefix(topic, prefix+"/"))

	switch ch {
	case dashboard.ChannelOrientation:
		var o orientation.Orientation
		if err := json.Unmarshal(payload, &o); err != nil {
			return "", errors.Wrap(err, "orientation")
		}
		return fmt.Sprintf("[ORIENT] ROLL=%6.2f  PITCH=%6.2f  YAW=%6.2f", o.Roll, o.Pitch, o.Yaw), nil

	case dashboard.ChannelSensors:
		var s telemetry.Sensors
		if err := json.Unmarshal(payload, &s); err != nil {
			return "", errors.Wrap(err, "sensors")
		}
		a, g := s.Acceleration, s.Gyroscope
		return fmt.Sprintf("[9DOF]   ax=%6.2f ay=%6.2f az=%6.2f  gx=%6.1f gy=%6.1f gz=%6.1f",
			a.X, a.Y, a.Z, g.X, g.Y, g.Z), nil

	case dashboard.ChannelBattery:
		var b telemetry.Battery
		if err := json.Unmarshal(payload, &b); err != nil {
			return "", errors.Wrap(err, "battery")
		}
		return fmt.Sprintf("[BATT]   %.0f%%", b.Percent), nil

	case dashboard.ChannelDepth:
		var d telemetry.Depth
		if err := json.Unmarshal(payload, &d); err != nil {
			return "", errors.Wrap(err, "depth")
		}
		return fmt.Sprintf("[DEPTH]  %.1fm / target %.1fm", d.Depth, d.Target), nil

	case dashboard.ChannelResources:
		var r telemetry.Resources
		if err := json.Unmarshal(payload, &r); err != nil {
			return "", errors.Wrap(err, "resources")
		}
		return fmt.Sprintf("[RES]    cpu=%.0f%% heap=%.0f%% up=%s seq=%s",
			r.CPUPercent, r.HeapUsedPercent, dashboard.FormatUptimeShort(r.UptimeMS),
			dashboard.FormatNumber(r.Sequence)), nil

	case dashboard.ChannelThrusters:
		var t telemetry.Thrusters
		if err := json.Unmarshal(payload, &t); err != nil {
			return "", errors.Wrap(err, "thrusters")
		}
		parts := make([]string, 0, len(t))
		for _, name := range t.Names() {
			parts = append(parts, fmt.Sprintf("%s=%.0fW/%.0fC", name, t[name].Power, t[name].Temp))
		}
		return "[THRUST] " + strings.Join(parts, " "), nil

	case dashboard.ChannelLights:
		var l telemetry.Lights
		if err := json.Unmarshal(payload, &l); err != nil {
			return "", errors.Wrap(err, "lights")
		}
		parts := make([]string, 0, len(l))
		for _, name := range l.Names() {
			parts = append(parts, fmt.Sprintf("%s=%.0f%%", name, l[name]))
		}
		return "[LIGHTS] " + strings.Join(parts, " "), nil

	case dashboard.ChannelVideo:
		var v telemetry.VideoStream
		if err := json.Unmarshal(payload, &v); err != nil {
			return "", errors.Wrap(err, "video")
		}
		return "[VIDEO]  " + v.URL, nil

	case dashboard.ChannelGamepad:
		var p dashboard.GamepadView
		if err := json.Unmarshal(payload, &p); err != nil {
			return "", errors.Wrap(err, "gamepad")
		}
		return formatGamepad(p), nil
	}
	return fmt.Sprintf("[%s] %s", topic, payload), nil
}
