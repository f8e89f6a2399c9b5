// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/UiASub/Topside/internal/clock"
	"github.com/UiASub/Topside/internal/orientation"
	"github.com/UiASub/Topside/internal/telemetry"
)

// MockThrusters are the eight thrusters of the vehicle, upper and lower
// layer, forward and aft, port and starboard.
var MockThrusters = []string{
	"U_FWD_P", "U_FWD_S", "U_AFT_P", "U_AFT_S",
	"L_FWD_P", "L_FWD_S", "L_AFT_P", "L_AFT_S",
}

// MockLights are the vehicle's four lights.
var MockLights = []string{"Light1", "Light2", "Light3", "Light4"}

// MockROV serves the vehicle's REST API with generated data.
type MockROV struct {
	clock    clock.Clock
	start    time.Time
	imu      orientation.Source
	videoURL string

	// DropEvery skips one resource sequence number every DropEvery reports
	// so the packet-loss counter has something to count. 0 never skips.
	DropEvery int64

	mu      sync.Mutex
	rng     *rand.Rand
	seq     int64
	reports int64
	rx      int64
}

func NewMockROV(c clock.Clock, seed int64) *MockROV {
	return &MockROV{
		clock:    c,
		start:    c.Now(),
		imu:      orientation.NewMockSource(c),
		videoURL: "http://127.0.0.1:8081/stream.mjpg",
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Handler returns the vehicle API routes.
func (m *MockROV) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(telemetry.PathBattery, m.get(m.battery))
	mux.HandleFunc(telemetry.PathDepth, m.get(m.depth))
	mux.HandleFunc(telemetry.PathLights, m.get(m.lights))
	mux.HandleFunc(telemetry.PathSensors, m.get(m.sensors))
	mux.HandleFunc(telemetry.PathThrusters, m.get(m.thrusters))
	mux.HandleFunc(telemetry.PathResources, m.get(m.resources))
	mux.HandleFunc(telemetry.PathVideoStream, m.get(m.video))
	return mux
}

func (m *MockROV) get(gen func() (interface{}, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allow(w, r, http.MethodGet) {
			return
		}
		m.mu.Lock()
		v, err := gen()
		m.rx++
		m.mu.Unlock()
		if err != nil {
			log.WithField("path", r.URL.Path).WithError(err).Warn("mock rov: generator failed")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func (m *MockROV) elapsed() float64 {
	return m.clock.Since(m.start).Seconds()
}

// The generators below run with mu held.

func (m *MockROV) battery() (interface{}, error) {
	// One percent every two minutes, never below 20.
	pct := math.Max(20, 100-m.elapsed()/120)
	return telemetry.Battery{Percent: math.Round(pct)}, nil
}

func (m *MockROV) depth() (interface{}, error) {
	t := m.elapsed()
	return telemetry.Depth{
		Depth:  math.Round((150+30*math.Sin(t/20))*10) / 10,
		Target: 150,
	}, nil
}

func (m *MockROV) lights() (interface{}, error) {
	out := make(telemetry.Lights, len(MockLights))
	for _, name := range MockLights {
		out[name] = float64(m.rng.Intn(101))
	}
	return out, nil
}

func (m *MockROV) sensors() (interface{}, error) {
	s, err := m.imu.Next()
	if err != nil {
		return nil, err
	}
	mag := s.Magnetometer
	return telemetry.Sensors{
		Acceleration: s.Acceleration,
		Gyroscope:    s.Gyroscope,
		Magnetometer: &mag,
	}, nil
}

func (m *MockROV) thrusters() (interface{}, error) {
	out := make(telemetry.Thrusters, len(MockThrusters))
	for _, name := range MockThrusters {
		out[name] = telemetry.Thruster{
			Power: float64(400 + m.rng.Intn(151)),
			Temp:  float64(20 + m.rng.Intn(11)),
		}
	}
	return out, nil
}

func (m *MockROV) resources() (interface{}, error) {
	m.reports++
	m.seq++
	if m.DropEvery > 0 && m.reports%m.DropEvery == 0 {
		m.seq++
	}
	total := int64(256)
	used := 45 + 10*math.Sin(m.elapsed()/30)
	return telemetry.Resources{
		CPUPercent:      math.Round(m.rng.Float64()*600) / 10,
		HeapUsedPercent: math.Round(used*10) / 10,
		HeapFreeKB:      int64(float64(total) * (100 - used) / 100),
		HeapTotalKB:     &total,
		UptimeMS:        m.clock.Since(m.start).Milliseconds(),
		ThreadCount:     int64(8 + m.rng.Intn(4)),
		UDPRxCount:      m.rx,
		UDPRxErrors:     0,
		Sequence:        m.seq,
	}, nil
}

func (m *MockROV) video() (interface{}, error) {
	return telemetry.VideoStream{URL: m.videoURL}, nil
}

// RunMockROV serves a simulated vehicle on addr until the process exits.
func RunMockROV(addr string) error {
	rov := NewMockROV(clock.RealClock{}, time.Now().UnixNano())
	rov.DropEvery = 50

	log.WithField("addr", addr).Info("mock rov: listening")
	srv := &http.Server{
		Addr:              addr,
		Handler:           rov.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}
