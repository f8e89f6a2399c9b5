// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"time"
)

// CalibrationOffset is the attitude captured by the last calibration.
// It is always replaced as a whole.
type CalibrationOffset struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// EstimatorState is the integration state of an Estimator.
//
// Tracking is false until the first sample has been processed; after that
// LastSample holds the timestamp of the most recent sample.
type EstimatorState struct {
	IntegratedYaw float64   `json:"integrated_yaw"`
	LastSample    time.Time `json:"last_sample"`
	Tracking      bool      `json:"tracking"`
}

// Estimator turns raw accelerometer and gyroscope samples into calibrated
// roll, pitch and yaw. Yaw is the integral of gyro Z and drifts without
// bound: there is no magnetometer correction.
//
// An Estimator is not safe for concurrent use.
type Estimator struct {
	offset CalibrationOffset
	state  EstimatorState
}

// NewEstimator returns an estimator with zero calibration that has not yet
// seen a sample.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// ComputeOrientation processes one sample taken at now.
//
// The first call only records the timestamp. Every later call integrates
// gyro.Z over now minus the previous timestamp. The timestamp is advanced
// to now in both cases.
func (e *Estimator) ComputeOrientation(accel, gyro Vector3, now time.Time) Orientation {
	if e.state.Tracking {
		dt := now.Sub(e.state.LastSample).Seconds()
		e.state.IntegratedYaw += gyro.Z * dt
	}
	e.state.LastSample = now
	e.state.Tracking = true

	tilt := Tilt(accel)
	return Orientation{
		Roll:  tilt.Roll - e.offset.Roll,
		Pitch: tilt.Pitch - e.offset.Pitch,
		// IntegratedYaw restarts from zero at calibration, so offset.Yaw is
		// already accounted for here.
		Yaw: e.state.IntegratedYaw,
	}
}

// Calibrate makes the attitude described by accel, and the current heading,
// the new zero. The yaw offset records the uncalibrated heading at the
// moment of calibration. Timestamp tracking is left alone.
func (e *Estimator) Calibrate(accel Vector3) {
	tilt := Tilt(accel)
	e.offset = CalibrationOffset{
		Roll:  tilt.Roll,
		Pitch: tilt.Pitch,
		Yaw:   e.state.IntegratedYaw,
	}
	e.state.IntegratedYaw = 0
}

// Reset clears the calibration and the integrated yaw. Timestamp tracking is
// left alone.
func (e *Estimator) Reset() {
	e.offset = CalibrationOffset{}
	e.state.IntegratedYaw = 0
}

func (e *Estimator) Offset() CalibrationOffset { return e.offset }
func (e *Estimator) State() EstimatorState     { return e.state }
