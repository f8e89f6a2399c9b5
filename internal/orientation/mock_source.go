// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"time"

	"github.com/UiASub/Topside/internal/clock"
)

// StandardGravity in m/s².
const StandardGravity = 9.80665

type mockSource struct {
	clock clock.Clock
	start time.Time
}

// NewMockSource creates a mock 9-DOF source whose attitude swings smoothly:
// roll ±20°, pitch ±15° and a steady 30°/s turn.
func NewMockSource(c clock.Clock) Source {
	return &mockSource{clock: c, start: c.Now()}
}

func (m *mockSource) Next() (Sample, error) {
	elapsed := m.clock.Since(m.start).Seconds()
	return MockSampleAt(elapsed), nil
}

// MockSampleAt returns the mock sample elapsed seconds into the run.
func MockSampleAt(elapsed float64) Sample {
	roll := 20 * math.Sin(elapsed) / radToDeg
	pitch := 15 * math.Cos(elapsed*0.7) / radToDeg
	yaw := math.Mod(elapsed*30, 360) / radToDeg

	return Sample{
		Acceleration: Vector3{
			X: -StandardGravity * math.Sin(pitch),
			Y: StandardGravity * math.Cos(pitch) * math.Sin(roll),
			Z: StandardGravity * math.Cos(pitch) * math.Cos(roll),
		},
		Gyroscope: Vector3{
			X: 20 * math.Cos(elapsed),
			Y: -15 * 0.7 * math.Sin(elapsed*0.7),
			Z: 30,
		},
		Magnetometer: Vector3{
			X: 40 * math.Cos(yaw),
			Y: -40 * math.Sin(yaw),
			Z: 15,
		},
	}
}
