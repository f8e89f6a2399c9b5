// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package telemetry fetches and validates the ROV's REST telemetry.
package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrTransport covers request failures, non-2xx statuses and bodies that
	// are not valid JSON.
	ErrTransport = errors.New("telemetry transport failure")
	// ErrMalformedPayload means the JSON decoded but a required field is
	// missing or not a finite number.
	ErrMalformedPayload = errors.New("malformed telemetry payload")
)

// Endpoint paths served by the vehicle.
const (
	PathBattery     = "/api/battery"
	PathDepth       = "/api/depth"
	PathLights      = "/api/lights"
	PathSensors     = "/api/sensors"
	PathThrusters   = "/api/thrusters"
	PathResources   = "/api/resources"
	PathVideoStream = "/api/video_stream"
)

const maxBodyBytes = 1 << 20

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches telemetry from one vehicle.
type Client struct {
	baseURL string
	http    HTTPClient
}

// NewClient creates a client for the vehicle at baseURL. A nil httpClient
// uses http.DefaultClient.
func NewClient(baseURL string, httpClient HTTPClient) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Battery(ctx context.Context) (Battery, error) {
	var w batteryWire
	if err := c.get(ctx, PathBattery, &w); err != nil {
		return Battery{}, err
	}
	return w.value()
}

func (c *Client) Depth(ctx context.Context) (Depth, error) {
	var w depthWire
	if err := c.get(ctx, PathDepth, &w); err != nil {
		return Depth{}, err
	}
	return w.value()
}

func (c *Client) Lights(ctx context.Context) (Lights, error) {
	var w lightsWire
	if err := c.get(ctx, PathLights, &w); err != nil {
		return nil, err
	}
	return w.value()
}

func (c *Client) Sensors(ctx context.Context) (Sensors, error) {
	var w sensorsWire
	if err := c.get(ctx, PathSensors, &w); err != nil {
		return Sensors{}, err
	}
	return w.value()
}

func (c *Client) Thrusters(ctx context.Context) (Thrusters, error) {
	var w thrustersWire
	if err := c.get(ctx, PathThrusters, &w); err != nil {
		return nil, err
	}
	return w.value()
}

func (c *Client) Resources(ctx context.Context) (Resources, error) {
	var w resourcesWire
	if err := c.get(ctx, PathResources, &w); err != nil {
		return Resources{}, err
	}
	return w.value()
}

func (c *Client) VideoStream(ctx context.Context) (VideoStream, error) {
	var w videoStreamWire
	if err := c.get(ctx, PathVideoStream, &w); err != nil {
		return VideoStream{}, err
	}
	return w.value()
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrapf(ErrTransport, "build request %s: %v", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(ErrTransport, "GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return errors.Wrapf(ErrTransport, "GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return errors.Wrapf(ErrTransport, "decode %s: %v", path, err)
	}
	return nil
}
