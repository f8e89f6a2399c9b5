// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"

	"github.com/UiASub/Topside/internal/clock"
)

const tol = 1e-9

var (
	t0      = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	level   = Vector3{Z: StandardGravity}
	noSpin  = Vector3{}
	approxO = cmpopts.EquateApprox(0, 1e-6)
)

func assertOrientation(t *testing.T, want, got Orientation) {
	t.Helper()
	if diff := cmp.Diff(want, got, approxO); diff != "" {
		t.Errorf("orientation mismatch (-want +got):\n%s", diff)
	}
}

func TestTiltLevel(t *testing.T) {
	for _, g := range []float64{0.5, 1, StandardGravity, 42} {
		o := Tilt(Vector3{Z: g})
		assert.InDelta(t, 0, o.Roll, tol)
		assert.InDelta(t, 0, o.Pitch, tol)
		assert.Equal(t, 0.0, o.Yaw)
	}
}

func TestTiltFortyFiveRoll(t *testing.T) {
	o := Tilt(Vector3{X: 0, Y: 1, Z: 1})
	assert.InDelta(t, 45, o.Roll, tol)
	assert.InDelta(t, 0, o.Pitch, tol)
}

func TestTiltPitch(t *testing.T) {
	o := Tilt(Vector3{X: -1, Y: 0, Z: 1})
	assert.InDelta(t, 45, o.Pitch, tol)
	assert.InDelta(t, 0, o.Roll, tol)
}

func TestFirstSampleDoesNotIntegrate(t *testing.T) {
	e := NewEstimator()
	assert.False(t, e.State().Tracking)

	o := e.ComputeOrientation(level, Vector3{Z: 90}, t0)
	assert.Equal(t, 0.0, o.Yaw)
	assert.True(t, e.State().Tracking)
	assert.Equal(t, t0, e.State().LastSample)
}

func TestYawIntegratesConstantRate(t *testing.T) {
	e := NewEstimator()
	rate := 12.5
	step := 20 * time.Millisecond

	now := t0
	e.ComputeOrientation(level, Vector3{Z: rate}, now)
	for i := 0; i < 250; i++ {
		now = now.Add(step)
		e.ComputeOrientation(level, Vector3{Z: rate}, now)
	}

	elapsed := now.Sub(t0).Seconds()
	assert.InDelta(t, rate*elapsed, e.State().IntegratedYaw, 1e-6)
}

// Yaw has no absolute reference, so a constant gyro bias keeps accumulating.
// This drift is expected.
func TestYawDriftIsUnbounded(t *testing.T) {
	e := NewEstimator()
	bias := Vector3{Z: 0.2}

	now := t0
	e.ComputeOrientation(level, bias, now)
	var prev float64
	for i := 0; i < 10; i++ {
		now = now.Add(time.Hour)
		o := e.ComputeOrientation(level, bias, now)
		assert.Greater(t, o.Yaw, prev)
		prev = o.Yaw
	}
	assert.InDelta(t, 0.2*10*3600, prev, 1e-6)
}

func TestSameTimestampIsIdempotent(t *testing.T) {
	e := NewEstimator()
	gyro := Vector3{Z: 45}

	e.ComputeOrientation(level, gyro, t0)
	now := t0.Add(time.Second)
	first := e.ComputeOrientation(level, gyro, now)
	second := e.ComputeOrientation(level, gyro, now)

	assert.Equal(t, first.Yaw, second.Yaw)
	assert.InDelta(t, 45, second.Yaw, tol)
}

func TestCalibrateZeroesImmediateReading(t *testing.T) {
	e := NewEstimator()
	tilted := Vector3{X: 0.3, Y: 2.1, Z: 9.4}
	gyro := Vector3{Z: 10}

	e.ComputeOrientation(tilted, gyro, t0)
	calTime := t0.Add(3 * time.Second)
	before := e.ComputeOrientation(tilted, gyro, calTime)
	assert.InDelta(t, 30, before.Yaw, tol)

	e.Calibrate(tilted)
	after := e.ComputeOrientation(tilted, gyro, calTime)
	assertOrientation(t, Orientation{}, after)
}

func TestCalibrateCapturesUncalibratedYaw(t *testing.T) {
	e := NewEstimator()
	e.ComputeOrientation(level, Vector3{Z: 5}, t0)
	e.ComputeOrientation(level, Vector3{Z: 5}, t0.Add(4*time.Second))

	e.Calibrate(Vector3{X: 0, Y: 1, Z: 1})
	want := CalibrationOffset{Roll: 45, Pitch: 0, Yaw: 20}
	if diff := cmp.Diff(want, e.Offset(), approxO); diff != "" {
		t.Errorf("offset mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 0.0, e.State().IntegratedYaw)
}

func TestCalibrateKeepsTimestamp(t *testing.T) {
	e := NewEstimator()
	gyro := Vector3{Z: 2}

	e.ComputeOrientation(level, gyro, t0)
	t1 := t0.Add(time.Second)
	e.ComputeOrientation(level, gyro, t1)

	e.Calibrate(level)
	st := e.State()
	assert.True(t, st.Tracking)
	assert.Equal(t, t1, st.LastSample)

	t2 := t1.Add(5 * time.Second)
	o := e.ComputeOrientation(level, gyro, t2)
	assert.InDelta(t, 10, o.Yaw, tol)
}

func TestCalibratedRollPitchFollowSubsequentTilt(t *testing.T) {
	e := NewEstimator()
	e.Calibrate(Vector3{X: 0, Y: 1, Z: 1})

	o := e.ComputeOrientation(level, noSpin, t0)
	assert.InDelta(t, -45, o.Roll, tol)
	assert.InDelta(t, 0, o.Pitch, tol)
}

func TestResetClearsCalibrationButNotTracking(t *testing.T) {
	e := NewEstimator()
	e.ComputeOrientation(level, Vector3{Z: 1}, t0)
	e.ComputeOrientation(level, Vector3{Z: 1}, t0.Add(2*time.Second))
	e.Calibrate(Vector3{X: 0, Y: 1, Z: 1})

	e.Reset()
	assert.Equal(t, CalibrationOffset{}, e.Offset())
	assert.Equal(t, 0.0, e.State().IntegratedYaw)
	assert.True(t, e.State().Tracking)

	o := e.ComputeOrientation(Vector3{X: 0, Y: 1, Z: 1}, noSpin, t0.Add(3*time.Second))
	assert.InDelta(t, 45, o.Roll, tol)
}

func TestNaNPropagates(t *testing.T) {
	e := NewEstimator()
	o := e.ComputeOrientation(Vector3{X: math.NaN(), Y: 0, Z: 1}, noSpin, t0)
	assert.True(t, math.IsNaN(o.Pitch))

	e.ComputeOrientation(level, Vector3{Z: math.NaN()}, t0.Add(time.Second))
	assert.True(t, math.IsNaN(e.State().IntegratedYaw))
}

func TestMockSourceMatchesTilt(t *testing.T) {
	c := clock.NewMockClock(t0)
	src := NewMockSource(c)

	c.Advance(1200 * time.Millisecond)
	s, err := src.Next()
	assert.NoError(t, err)

	o := Tilt(s.Acceleration)
	assert.InDelta(t, 20*math.Sin(1.2), o.Roll, 1e-6)
	assert.InDelta(t, 15*math.Cos(1.2*0.7), o.Pitch, 1e-6)
	assert.Equal(t, 30.0, s.Gyroscope.Z)
}
