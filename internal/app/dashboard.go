// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/UiASub/Topside/internal/clock"
	"github.com/UiASub/Topside/internal/config"
	"github.com/UiASub/Topside/internal/dashboard"
	"github.com/UiASub/Topside/internal/telemetry"
)

// PollIntervals maps the poll section of cfg onto channels.
func PollIntervals(cfg config.PollConfig) map[dashboard.Channel]time.Duration {
	out := make(map[dashboard.Channel]time.Duration, len(dashboard.PolledChannels))
	for _, ch := range dashboard.PolledChannels {
		out[ch] = cfg.Interval(string(ch))
	}
	return out
}

// RunDashboard polls the vehicle and serves the dashboard until SIGINT or
// SIGTERM.
func RunDashboard() error {
	cfg := config.Get()
	c := clock.RealClock{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		pub        dashboard.Publisher
		mqttClient mqtt.Client
		publisher  *MQTTPublisher
	)
	if cfg.MQTT.Broker != "" {
		client, err := connectMQTT(cfg.MQTT, "dashboard")
		if err != nil {
			return err
		}
		mqttClient = client
		publisher = newMQTTPublisher(client, cfg.MQTT.TopicPrefix)
		publisher.Start(ctx)
		pub = publisher
		log.WithField("prefix", cfg.MQTT.TopicPrefix).Info("mqtt feed enabled")
	}

	dash := dashboard.New(c, pub)
	rov := telemetry.NewClient(cfg.ROVBaseURL, &http.Client{Timeout: cfg.HTTPTimeout()})
	pollers := NewPollerSet(c, rov, dash)
	if err := pollers.Start(PollIntervals(cfg.Poll)); err != nil {
		return err
	}
	log.WithField("rov", rov.BaseURL()).Info("polling vehicle")

	if iv := cfg.Console.Interval(); iv > 0 {
		go RunConsole(ctx, os.Stdout, dash, c, iv)
	}

	web := NewWebServer(dash, pollers, c, cfg.Web.LiveViewInterval())
	srv := &http.Server{
		Addr:              cfg.Web.Listen,
		Handler:           web.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Web.Listen).Info("web server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		log.WithField("signal", sig).Info("shutting down")
	case err := <-serveErr:
		runErr = errors.Wrap(err, "web server")
	}

	pollers.Stop()
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("web server shutdown")
	}

	if publisher != nil {
		publisher.Wait()
		mqttClient.Disconnect(250)
	}
	return runErr
}
