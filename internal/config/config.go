// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"io"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Config holds all application configuration values.
type Config struct {
	// Vehicle
	ROVBaseURL    string `toml:"rov_base_url"`
	HTTPTimeoutMS int    `toml:"http_timeout_ms"`
	LogLevel      string `toml:"log_level"`

	Poll    PollConfig    `toml:"poll"`
	Web     WebConfig     `toml:"web"`
	Console ConsoleConfig `toml:"console"`
	MQTT    MQTTConfig    `toml:"mqtt"`
	Mock    MockConfig    `toml:"mock"`
}

// PollConfig holds the period of every telemetry channel in milliseconds.
// 0 disables the channel.
type PollConfig struct {
	BatteryMS   int `toml:"battery_ms"`
	DepthMS     int `toml:"depth_ms"`
	LightsMS    int `toml:"lights_ms"`
	SensorsMS   int `toml:"sensors_ms"`
	ThrustersMS int `toml:"thrusters_ms"`
	ResourcesMS int `toml:"resources_ms"`
	VideoMS     int `toml:"video_ms"`
}

type WebConfig struct {
	Listen             string `toml:"listen"`
	LiveViewIntervalMS int    `toml:"live_view_interval_ms"`
}

// ConsoleConfig controls the periodic console printout. 0 disables it.
type ConsoleConfig struct {
	IntervalMS int `toml:"interval_ms"`
}

// MQTTConfig enables the MQTT feed when Broker is set.
type MQTTConfig struct {
	Broker      string `toml:"broker"`
	ClientID    string `toml:"client_id"`
	TopicPrefix string `toml:"topic_prefix"`
}

type MockConfig struct {
	Listen string `toml:"listen"`
}

// MaxPollIntervalMS bounds every poll period.
const MaxPollIntervalMS = 60000

// Default returns the configuration used for keys a file leaves out.
func Default() *Config {
	return &Config{
		ROVBaseURL:    "http://127.0.0.1:5000",
		HTTPTimeoutMS: 2000,
		LogLevel:      "info",
		Poll: PollConfig{
			BatteryMS:   500,
			DepthMS:     500,
			LightsMS:    0,
			SensorsMS:   100,
			ThrustersMS: 0,
			ResourcesMS: 500,
			VideoMS:     1000,
		},
		Web: WebConfig{
			Listen:             ":8080",
			LiveViewIntervalMS: 200,
		},
		Console: ConsoleConfig{IntervalMS: 1000},
		MQTT: MQTTConfig{
			TopicPrefix: "rov",
		},
		Mock: MockConfig{Listen: ":5000"},
	}
}

// Global configuration instance (read-only after initialization).
// External code must use InitGlobal() to set and Get() to read.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the TOML configuration file at configPath.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open config file %s", configPath)
	}
	defer file.Close()
	return Decode(file)
}

// Decode parses TOML from r over the defaults and validates the result.
func Decode(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read config")
	}

	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse config")
	}
	for _, key := range md.Undecoded() {
		log.WithField("key", key.String()).Warn("config: unknown key ignored")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks ranges and required fields.
func (c *Config) validate() error {
	u, err := url.Parse(c.ROVBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Errorf("rov_base_url %q is not an absolute URL", c.ROVBaseURL)
	}
	if c.HTTPTimeoutMS <= 0 {
		return errors.New("http_timeout_ms must be positive")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log_level")
	}
	for name, ms := range c.Poll.channels() {
		if ms < 0 || ms > MaxPollIntervalMS {
			return errors.Errorf("poll.%s_ms must be between 0 and %d", name, MaxPollIntervalMS)
		}
	}
	if c.Web.LiveViewIntervalMS <= 0 {
		return errors.New("web.live_view_interval_ms must be positive")
	}
	if c.Console.IntervalMS < 0 {
		return errors.New("console.interval_ms must not be negative")
	}
	if c.MQTT.Broker != "" && c.MQTT.TopicPrefix == "" {
		return errors.New("mqtt.topic_prefix is required when mqtt.broker is set")
	}
	return nil
}

func (p PollConfig) channels() map[string]int {
	return map[string]int{
		"battery":   p.BatteryMS,
		"depth":     p.DepthMS,
		"lights":    p.LightsMS,
		"sensors":   p.SensorsMS,
		"thrusters": p.ThrustersMS,
		"resources": p.ResourcesMS,
		"video":     p.VideoMS,
	}
}

// Interval returns the poll period of channel, or 0 when it is disabled or
// unknown.
func (p PollConfig) Interval(channel string) time.Duration {
	return ms(p.channels()[channel])
}

func (c *Config) HTTPTimeout() time.Duration { return ms(c.HTTPTimeoutMS) }

func (w WebConfig) LiveViewInterval() time.Duration { return ms(w.LiveViewIntervalMS) }

func (c ConsoleConfig) Interval() time.Duration { return ms(c.IntervalMS) }

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// InitDefault installs the defaults as the global configuration when no
// file is given. It is a no-op after InitGlobal.
func InitDefault() {
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig = Default()
	})
}

// Get returns the global configuration instance.
// InitGlobal or InitDefault must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
