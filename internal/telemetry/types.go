// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/UiASub/Topside/internal/orientation"
)

// Battery is the state of charge in percent (0-100).
type Battery struct {
	Percent float64 `json:"battery"`
}

// Depth is the measured and requested depth in metres.
type Depth struct {
	Depth  float64 `json:"dpt"`
	Target float64 `json:"dptSet"`
}

// Lights maps light name to brightness percent.
type Lights map[string]float64

// Names returns the light names in sorted order.
func (l Lights) Names() []string {
	return sortedKeys(l)
}

// Sensors is one 9-DOF sample. Magnetometer is optional on the wire.
type Sensors struct {
	Acceleration orientation.Vector3  `json:"acceleration"`
	Gyroscope    orientation.Vector3  `json:"gyroscope"`
	Magnetometer *orientation.Vector3 `json:"magnetometer,omitempty"`
}

// Thruster is the commanded power and temperature of one thruster.
type Thruster struct {
	Power float64 `json:"power"`
	Temp  float64 `json:"temp"`
}

// Thrusters maps thruster name (U_FWD_P, L_AFT_S, ...) to its state.
type Thrusters map[string]Thruster

// Names returns the thruster names in sorted order.
func (t Thrusters) Names() []string {
	return sortedKeys(t)
}

// Resources is the vehicle computer's resource report.
type Resources struct {
	CPUPercent      float64 `json:"cpu_percent"`
	HeapUsedPercent float64 `json:"heap_used_percent"`
	HeapFreeKB      int64   `json:"heap_free_kb"`
	HeapTotalKB     *int64  `json:"heap_total_kb,omitempty"`
	UptimeMS        int64   `json:"uptime_ms"`
	ThreadCount     int64   `json:"thread_count"`
	UDPRxCount      int64   `json:"udp_rx_count"`
	UDPRxErrors     int64   `json:"udp_rx_errors"`
	Sequence        int64   `json:"sequence"`
}

// VideoStream points at the current camera stream.
type VideoStream struct {
	URL string `json:"url"`
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Wire structs use pointers so a missing key can be told apart from zero.

type batteryWire struct {
	Battery *float64 `json:"battery"`
}

func (w batteryWire) value() (Battery, error) {
	if err := required("battery", w.Battery); err != nil {
		return Battery{}, err
	}
	return Battery{Percent: *w.Battery}, nil
}

type depthWire struct {
	Dpt    *float64 `json:"dpt"`
	DptSet *float64 `json:"dptSet"`
}

func (w depthWire) value() (Depth, error) {
	if err := required("dpt", w.Dpt); err != nil {
		return Depth{}, err
	}
	if err := required("dptSet", w.DptSet); err != nil {
		return Depth{}, err
	}
	return Depth{Depth: *w.Dpt, Target: *w.DptSet}, nil
}

type lightsWire map[string]*float64

func (w lightsWire) value() (Lights, error) {
	out := make(Lights, len(w))
	for name, v := range w {
		if err := required(name, v); err != nil {
			return nil, err
		}
		out[name] = *v
	}
	return out, nil
}

type vectorWire struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	Z *float64 `json:"z"`
}

func (w *vectorWire) value(field string) (orientation.Vector3, error) {
	if w == nil {
		return orientation.Vector3{}, errors.Wrapf(ErrMalformedPayload, "missing %q", field)
	}
	for _, c := range []struct {
		name string
		v    *float64
	}{{"x", w.X}, {"y", w.Y}, {"z", w.Z}} {
		if err := required(field+"."+c.name, c.v); err != nil {
			return orientation.Vector3{}, err
		}
	}
	return orientation.Vector3{X: *w.X, Y: *w.Y, Z: *w.Z}, nil
}

type sensorsWire struct {
	Acceleration *vectorWire `json:"acceleration"`
	Gyroscope    *vectorWire `json:"gyroscope"`
	Magnetometer *vectorWire `json:"magnetometer"`
}

func (w sensorsWire) value() (Sensors, error) {
	accel, err := w.Acceleration.value("acceleration")
	if err != nil {
		return Sensors{}, err
	}
	gyro, err := w.Gyroscope.value("gyroscope")
	if err != nil {
		return Sensors{}, err
	}
	s := Sensors{Acceleration: accel, Gyroscope: gyro}
	if w.Magnetometer != nil {
		mag, err := w.Magnetometer.value("magnetometer")
		if err != nil {
			return Sensors{}, err
		}
		s.Magnetometer = &mag
	}
	return s, nil
}

type thrusterWire struct {
	Power *float64 `json:"power"`
	Temp  *float64 `json:"temp"`
}

type thrustersWire map[string]*thrusterWire

func (w thrustersWire) value() (Thrusters, error) {
	out := make(Thrusters, len(w))
	for name, t := range w {
		if t == nil {
			return nil, errors.Wrapf(ErrMalformedPayload, "thruster %q is null", name)
		}
		if err := required(name+".power", t.Power); err != nil {
			return nil, err
		}
		if err := required(name+".temp", t.Temp); err != nil {
			return nil, err
		}
		out[name] = Thruster{Power: *t.Power, Temp: *t.Temp}
	}
	return out, nil
}

type resourcesWire struct {
	CPUPercent      *float64 `json:"cpu_percent"`
	HeapUsedPercent *float64 `json:"heap_used_percent"`
	HeapFreeKB      *int64   `json:"heap_free_kb"`
	HeapTotalKB     *int64   `json:"heap_total_kb"`
	UptimeMS        *int64   `json:"uptime_ms"`
	ThreadCount     *int64   `json:"thread_count"`
	UDPRxCount      *int64   `json:"udp_rx_count"`
	UDPRxErrors     *int64   `json:"udp_rx_errors"`
	Sequence        *int64   `json:"sequence"`
}

func (w resourcesWire) value() (Resources, error) {
	if err := required("cpu_percent", w.CPUPercent); err != nil {
		return Resources{}, err
	}
	if err := required("heap_used_percent", w.HeapUsedPercent); err != nil {
		return Resources{}, err
	}
	for _, c := range []struct {
		name string
		v    *int64
	}{
		{"heap_free_kb", w.HeapFreeKB},
		{"uptime_ms", w.UptimeMS},
		{"thread_count", w.ThreadCount},
		{"udp_rx_count", w.UDPRxCount},
		{"udp_rx_errors", w.UDPRxErrors},
		{"sequence", w.Sequence},
	} {
		if c.v == nil {
			return Resources{}, errors.Wrapf(ErrMalformedPayload, "missing %q", c.name)
		}
	}
	return Resources{
		CPUPercent:      *w.CPUPercent,
		HeapUsedPercent: *w.HeapUsedPercent,
		HeapFreeKB:      *w.HeapFreeKB,
		HeapTotalKB:     w.HeapTotalKB,
		UptimeMS:        *w.UptimeMS,
		ThreadCount:     *w.ThreadCount,
		UDPRxCount:      *w.UDPRxCount,
		UDPRxErrors:     *w.UDPRxErrors,
		Sequence:        *w.Sequence,
	}, nil
}

type videoStreamWire struct {
	URL *string `json:"url"`
}

func (w videoStreamWire) value() (VideoStream, error) {
	if w.URL == nil || *w.URL == "" {
		return VideoStream{}, errors.Wrap(ErrMalformedPayload, `missing "url"`)
	}
	return VideoStream{URL: *w.URL}, nil
}

// required rejects absent and non-finite fields.
func required(field string, v *float64) error {
	if v == nil {
		return errors.Wrapf(ErrMalformedPayload, "missing %q", field)
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return errors.Wrapf(ErrMalformedPayload, "%q is not a finite number", field)
	}
	return nil
}
