// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/UiASub/Topside/internal/clock"
	"github.com/UiASub/Topside/internal/dashboard"
)

// RunConsole prints the dashboard to w every interval until ctx is done.
func RunConsole(ctx context.Context, w io.Writer, d *dashboard.Dashboard, c clock.Clock, interval time.Duration) {
	ticker := c.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			io.WriteString(w, FormatConsole(d.Snapshot()))
		}
	}
}

// FormatConsole renders one console frame. Channels that have never been
// rendered are left out.
func FormatConsole(s dashboard.Snapshot) string {
	var b strings.Builder

	if o := s.Orientation; o != nil {
		fmt.Fprintf(&b, "[ORIENT] ROLL=%6.2f  PITCH=%6.2f  YAW=%6.2f  (%s %s)\n",
			o.Roll, o.Pitch, o.Yaw,
			dashboard.AngleStatus(o.Roll, dashboard.DefaultAngleThreshold),
			dashboard.AngleStatus(o.Pitch, dashboard.DefaultAngleThreshold))
	}
	if g := s.Sensors; g != nil {
		fmt.Fprintf(&b, "[GYRO]   X=%6.1f°/s  Y=%6.1f°/s  Z=%6.1f°/s\n",
			g.Gyroscope.X, g.Gyroscope.Y, g.Gyroscope.Z)
	}
	if s.Battery != nil {
		fmt.Fprintf(&b, "[BATT]   %.0f%%\n", s.Battery.Percent)
	}
	if s.Depth != nil {
		fmt.Fprintf(&b, "[DEPTH]  %.1fm / target %.1fm\n", s.Depth.Depth, s.Depth.Target)
	}
	if len(s.Lights) > 0 {
		parts := make([]string, 0, len(s.Lights))
		for _, name := range s.Lights.Names() {
			parts = append(parts, fmt.Sprintf("%s=%.0f%%", name, s.Lights[name]))
		}
		fmt.Fprintf(&b, "[LIGHTS] %s\n", strings.Join(parts, " "))
	}
	for _, name := range s.Thrusters.Names() {
		t := s.Thrusters[name]
		fmt.Fprintf(&b, "[THRUST] %-8s power=%5.0fW temp=%4.1f°C\n", name, t.Power, t.Temp)
	}
	if r := s.Resources; r != nil {
		fmt.Fprintf(&b, "[RES]    cpu=%.0f%% heap=%.0f%% free=%sKB up=%s threads=%d rx=%s err=%s seq=%s lost=%s\n",
			r.CPUPercent, r.HeapUsedPercent, dashboard.FormatNumber(r.HeapFreeKB),
			dashboard.FormatUptime(r.UptimeMS), r.ThreadCount,
			dashboard.FormatNumber(r.UDPRxCount), dashboard.FormatNumber(r.UDPRxErrors),
			dashboard.FormatNumber(r.Sequence), dashboard.FormatNumber(s.PacketsLost))
	}
	if s.Video != nil {
		fmt.Fprintf(&b, "[VIDEO]  %s\n", s.Video.URL)
	}
	if p := s.Gamepad; p != nil {
		b.WriteString(formatGamepad(*p) + "\n")
	}

	var failing []string
	for ch, st := range s.Status {
		if st.LastError != "" && st.ErrorAt.After(st.Updated) {
			failing = append(failing, fmt.Sprintf("%s: %s", ch, st.LastError))
		}
	}
	sort.Strings(failing)
	for _, f := range failing {
		fmt.Fprintf(&b, "[ERROR]  %s\n", f)
	}
	return b.String()
}

func formatGamepad(p dashboard.GamepadView) string {
	if !p.Connected {
		return "[PAD]    disconnected"
	}
	pressed := make([]string, len(p.Pressed))
	for i, n := range p.Pressed {
		pressed[i] = fmt.Sprintf("b%d", n)
	}
	return fmt.Sprintf("[PAD]    L=(%+.0f,%+.0f) R=(%+.0f,%+.0f) pressed=[%s]",
		p.Left.DX, p.Left.DY, p.Right.DX, p.Right.DY, strings.Join(pressed, " "))
}
