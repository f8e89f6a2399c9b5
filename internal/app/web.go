// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/UiASub/Topside/internal/clock"
	"github.com/UiASub/Topside/internal/config"
	"github.com/UiASub/Topside/internal/dashboard"
	"github.com/UiASub/Topside/internal/poller"
)

// IntervalSetter changes the period of every running poller.
type IntervalSetter interface {
	SetInterval(iv time.Duration) ([]dashboard.Channel, error)
}

// WebServer serves the dashboard API, the rendered panel and the live view.
type WebServer struct {
	dash     *dashboard.Dashboard
	pollers  IntervalSetter
	clock    clock.Clock
	liveView time.Duration
}

func NewWebServer(d *dashboard.Dashboard, pollers IntervalSetter, c clock.Clock, liveView time.Duration) *WebServer {
	return &WebServer{dash: d, pollers: pollers, clock: c, liveView: liveView}
}

// Handler returns the routes of the dashboard.
func (s *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orientation", s.handleOrientation)
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/calibrate", s.handleCalibrate)
	mux.HandleFunc("/api/reset", s.handleReset)
	mux.HandleFunc("/api/interval", s.handleInterval)
	mux.HandleFunc("/panel.png", s.handlePanel)
	mux.HandleFunc("/ws", s.handleLiveView)
	return mux
}

type intervalRequest struct {
	IntervalMS int `json:"interval_ms"`
}

type intervalResponse struct {
	IntervalMS int                 `json:"interval_ms"`
	Channels   []dashboard.Channel `json:"channels"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *WebServer) handleOrientation(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	o, ok := s.dash.Orientation()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no data yet"})
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *WebServer) handleState(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.dash.Snapshot())
}

func (s *WebServer) handleCalibrate(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	offset, err := s.dash.Calibrate()
	if errors.Is(err, dashboard.ErrNoSample) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, offset)
}

func (s *WebServer) handleReset(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	s.dash.ResetOrientation()
	w.WriteHeader(http.StatusNoContent)
}

func (s *WebServer) handleInterval(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req intervalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	resp, err := s.setInterval(req.IntervalMS)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *WebServer) setInterval(ms int) (intervalResponse, error) {
	if ms > config.MaxPollIntervalMS {
		return intervalResponse{}, errors.Errorf("interval_ms must be at most %d", config.MaxPollIntervalMS)
	}
	changed, err := s.pollers.SetInterval(time.Duration(ms) * time.Millisecond)
	if err != nil {
		if errors.Is(err, poller.ErrInvalidInterval) {
			return intervalResponse{}, errors.New("interval_ms must be positive")
		}
		return intervalResponse{}, err
	}
	return intervalResponse{IntervalMS: ms, Channels: changed}, nil
}

func (s *WebServer) handlePanel(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, dashboard.RenderPanel(s.dash.Snapshot())); err != nil {
		log.WithError(err).Error("web: panel encode failed")
		http.Error(w, "panel encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	return false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("web: json encode failed")
	}
}
