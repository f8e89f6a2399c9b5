// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dashboard

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultAngleThreshold is the tilt in degrees at which an angle is shown
// as an alert.
const DefaultAngleThreshold = 15.0

// Status classifies a reading for colouring.
type Status string

const (
	StatusOK    Status = "ok"
	StatusWarn  Status = "warn"
	StatusAlert Status = "alert"
)

// AngleStatus is ok below half the threshold, warn below the threshold and
// alert from the threshold on. The sign of angle is ignored.
func AngleStatus(angle, threshold float64) Status {
	a := math.Abs(angle)
	switch {
	case a < threshold/2:
		return StatusOK
	case a < threshold:
		return StatusWarn
	default:
		return StatusAlert
	}
}

// FormatAngle renders whole degrees with an explicit sign, e.g. "+12°".
func FormatAngle(deg float64) string {
	r := math.Round(deg)
	if deg >= 0 {
		return fmt.Sprintf("+%.0f°", math.Abs(r))
	}
	return fmt.Sprintf("%.0f°", r)
}

// Gauge geometry of the half-circle dial.
const (
	GaugeCX     = 100.0
	GaugeCY     = 100.0
	GaugeRadius = 80.0
)

// GaugePoint is the end of the dial arc for percent. 0% is the left end and
// 100% the right end; y grows downwards.
func GaugePoint(percent float64) (x, y float64) {
	angle := math.Pi - percent/100*math.Pi
	return GaugeCX + GaugeRadius*math.Cos(angle), GaugeCY - GaugeRadius*math.Sin(angle)
}

// GaugeArc returns the SVG path of the dial arc from 0 to percent.
func GaugeArc(percent float64) string {
	sx, sy := GaugePoint(0)
	ex, ey := GaugePoint(percent)
	largeArc := 0
	if percent > 50 {
		largeArc = 1
	}
	return fmt.Sprintf("M %s %s A %s %s 0 %d 1 %s %s",
		num(sx), num(sy), num(GaugeRadius), num(GaugeRadius), largeArc, num(ex), num(ey))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// GaugeColor fades green to yellow over 0-50% and yellow to red over
// 50-100%. percent is clamped to that range.
func GaugeColor(percent float64) color.RGBA {
	p := math.Max(0, math.Min(100, percent))
	if p < 50 {
		ratio := p / 50
		return color.RGBA{
			R: channel(40 + ratio*215),
			G: channel(167 - ratio*37),
			B: channel(69 - ratio*69),
			A: 0xff,
		}
	}
	ratio := (p - 50) / 50
	return color.RGBA{R: 255, G: channel(130 - ratio*130), B: 0, A: 0xff}
}

func channel(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}

// CSS formats c as an rgb() colour.
func CSS(c color.RGBA) string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// Bar colours.
const (
	BarGreen  = "#28a745"
	BarYellow = "#ffc107"
	BarRed    = "#dc3545"
)

// BarColor is green below 50%, yellow below 80% and red above.
func BarColor(percent float64) string {
	switch {
	case percent < 50:
		return BarGreen
	case percent < 80:
		return BarYellow
	default:
		return BarRed
	}
}

type uptimeParts struct {
	days, hours, minutes, seconds int64
}

func splitUptime(ms int64) uptimeParts {
	d := time.Duration(ms) * time.Millisecond
	total := int64(d / time.Second)
	return uptimeParts{
		days:    total / 86400,
		hours:   total / 3600 % 24,
		minutes: total / 60 % 60,
		seconds: total % 60,
	}
}

// FormatUptime renders "2d 03:04:05", "3:04:05" or "4:05".
func FormatUptime(ms int64) string {
	p := splitUptime(ms)
	switch {
	case p.days > 0:
		return fmt.Sprintf("%dd %02d:%02d:%02d", p.days, p.hours, p.minutes, p.seconds)
	case p.hours > 0:
		return fmt.Sprintf("%d:%02d:%02d", p.hours, p.minutes, p.seconds)
	default:
		return fmt.Sprintf("%d:%02d", p.minutes, p.seconds)
	}
}

// FormatUptimeShort renders the two most significant units: "2d 3h",
// "3h 4m" or "4m 5s".
func FormatUptimeShort(ms int64) string {
	p := splitUptime(ms)
	switch {
	case p.days > 0:
		return fmt.Sprintf("%dd %dh", p.days, p.hours)
	case p.hours > 0:
		return fmt.Sprintf("%dh %dm", p.hours, p.minutes)
	default:
		return fmt.Sprintf("%dm %ds", p.minutes, p.seconds)
	}
}

// FormatNumber groups thousands with commas.
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	b.WriteString(sign)
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
