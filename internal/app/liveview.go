// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/UiASub/Topside/internal/dashboard"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins
	},
}

// WSMessage is an action sent by a live-view client.
type WSMessage struct {
	Action     string                   `json:"action"` // calibrate, reset, set_interval, gamepad
	IntervalMS int                      `json:"interval_ms,omitempty"`
	Gamepad    *dashboard.GamepadReport `json:"gamepad,omitempty"`
}

// WSResponse is pushed to live-view clients.
type WSResponse struct {
	Type     string              `json:"type"` // snapshot, status, error
	Action   string              `json:"action,omitempty"`
	Snapshot *dashboard.Snapshot `json:"snapshot,omitempty"`
	Result   interface{}         `json:"result,omitempty"`
	Message  string              `json:"message,omitempty"`
}

// liveViewSession serializes writes to one connection; the snapshot pusher
// and the action replies share it.
type liveViewSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *liveViewSession) send(resp WSResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(resp)
}

func (s *liveViewSession) sendError(action, message string) error {
	return s.send(WSResponse{Type: "error", Action: action, Message: message})
}

// handleLiveView streams snapshots to one client and executes its actions.
func (s *WebServer) handleLiveView(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("liveview: websocket upgrade failed")
		return
	}

	session := &liveViewSession{conn: conn}
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.pushSnapshots(session, done)
	}()
	defer wg.Wait()
	defer conn.Close()
	defer close(done)

	log.WithField("remote", r.RemoteAddr).Info("liveview: client connected")
	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("liveview: read failed")
			}
			log.WithField("remote", r.RemoteAddr).Info("liveview: client disconnected")
			return
		}
		if err := s.handleAction(session, msg); err != nil {
			log.WithError(err).Warn("liveview: write failed")
			return
		}
	}
}

func (s *WebServer) handleAction(session *liveViewSession, msg WSMessage) error {
	switch msg.Action {
	case "calibrate":
		offset, err := s.dash.Calibrate()
		if err != nil {
			return session.sendError(msg.Action, err.Error())
		}
		return session.send(WSResponse{Type: "status", Action: msg.Action, Result: offset})

	case "reset":
		s.dash.ResetOrientation()
		return session.send(WSResponse{Type: "status", Action: msg.Action})

	case "set_interval":
		resp, err := s.setInterval(msg.IntervalMS)
		if err != nil {
			return session.sendError(msg.Action, err.Error())
		}
		return session.send(WSResponse{Type: "status", Action: msg.Action, Result: resp})

	case "gamepad":
		// Sent every animation frame; only failures get a reply.
		if msg.Gamepad == nil {
			return session.sendError(msg.Action, "missing gamepad report")
		}
		if _, err := s.dash.RenderGamepad(*msg.Gamepad); err != nil {
			return session.sendError(msg.Action, err.Error())
		}
		return nil

	default:
		return session.sendError(msg.Action, "unknown action")
	}
}

// pushSnapshots sends the current snapshot right away and then once per
// live-view interval until done is closed.
func (s *WebServer) pushSnapshots(session *liveViewSession, done <-chan struct{}) {
	push := func() bool {
		snap := s.dash.Snapshot()
		if err := session.send(WSResponse{Type: "snapshot", Snapshot: &snap}); err != nil {
			log.WithError(err).Debug("liveview: push failed")
			return false
		}
		return true
	}
	if !push() {
		return
	}

	ticker := s.clock.NewTicker(s.liveView)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C():
			if !push() {
				return
			}
		}
	}
}
