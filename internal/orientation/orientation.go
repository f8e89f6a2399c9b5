// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
)

// Vector3 is one accelerometer (m/s²), gyroscope (°/s) or magnetometer
// sample as reported by the vehicle.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Orientation is the vehicle attitude in degrees.
type Orientation struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Source is anything that can provide 9-DOF samples over time.
type Source interface {
	Next() (Sample, error)
}

// Sample is one reading of the vehicle's inertial sensors.
type Sample struct {
	Acceleration Vector3 `json:"acceleration"`
	Gyroscope    Vector3 `json:"gyroscope"`
	Magnetometer Vector3 `json:"magnetometer"`
}

const radToDeg = 180.0 / math.Pi

// Tilt computes roll and pitch from the gravity vector only.
// Yaw is left at 0; the estimator fills it from the gyro.
//
// Uses simple tilt formulas:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
//
// Linear acceleration of the vehicle corrupts both angles.
func Tilt(accel Vector3) Orientation {
	rollRad := math.Atan2(accel.Y, accel.Z)
	pitchRad := math.Atan2(-accel.X, math.Sqrt(accel.Y*accel.Y+accel.Z*accel.Z))

	return Orientation{
		Roll:  rollRad * radToDeg,
		Pitch: pitchRad * radToDeg,
	}
}
