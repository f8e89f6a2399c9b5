// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dashboard

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Panel geometry.
const (
	PanelWidth  = 256
	PanelHeight = 128

	panelLine = 13

	panelGaugeCX     = 212.0
	panelGaugeCY     = 64.0
	panelGaugeRadius = 36.0
	panelGaugeWidth  = 8.0
)

var (
	panelBackground = color.RGBA{0x10, 0x14, 0x1c, 0xff}
	panelText       = color.RGBA{0xe8, 0xe8, 0xe8, 0xff}
	panelDim        = color.RGBA{0x80, 0x80, 0x80, 0xff}
	panelTrack      = color.RGBA{0x3a, 0x3f, 0x4a, 0xff}

	statusColors = map[Status]color.RGBA{
		StatusOK:    hexColor(BarGreen),
		StatusWarn:  hexColor(BarYellow),
		StatusAlert: hexColor(BarRed),
	}
)

// RenderPanel draws a compact overview of s: battery and depth, attitude,
// resources with a CPU dial, thrusters, lights and channel errors.
func RenderPanel(s Snapshot) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, PanelWidth, PanelHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{panelBackground}, image.Point{}, draw.Src)

	line := 1
	text := func(c color.RGBA, format string, args ...interface{}) {
		drawText(img, 2, line*panelLine, c, fmt.Sprintf(format, args...))
		line++
	}

	if s.Battery == nil && s.Depth == nil && s.Orientation == nil && s.Resources == nil {
		drawText(img, 80, 52, panelText, "ROV Topside")
		drawText(img, 84, 78, panelDim, "Waiting...")
		return img
	}

	switch {
	case s.Battery != nil && s.Depth != nil:
		text(panelText, "BAT %3.0f%%  DPT %.1f/%.1fm", s.Battery.Percent, s.Depth.Depth, s.Depth.Target)
	case s.Battery != nil:
		text(panelText, "BAT %3.0f%%  DPT --", s.Battery.Percent)
	case s.Depth != nil:
		text(panelText, "BAT --    DPT %.1f/%.1fm", s.Depth.Depth, s.Depth.Target)
	default:
		text(panelDim, "BAT --    DPT --")
	}

	if o := s.Orientation; o != nil {
		worst := AngleStatus(o.Roll, DefaultAngleThreshold)
		if ps := AngleStatus(o.Pitch, DefaultAngleThreshold); rank(ps) > rank(worst) {
			worst = ps
		}
		text(statusColors[worst], "R%s P%s Y%s", panelAngle(o.Roll), panelAngle(o.Pitch), panelAngle(o.Yaw))
	} else {
		text(panelDim, "R-- P-- Y--")
	}

	if r := s.Resources; r != nil {
		text(hexColor(BarColor(r.HeapUsedPercent)), "CPU %3.0f%%  MEM %3.0f%%", r.CPUPercent, r.HeapUsedPercent)
		text(panelText, "UP %s", FormatUptimeShort(r.UptimeMS))
		lostColor := panelText
		if s.PacketsLost > 0 {
			lostColor = statusColors[StatusWarn]
		}
		text(lostColor, "LOST %s", FormatNumber(s.PacketsLost))
		drawGauge(img, r.CPUPercent)
		drawText(img, int(panelGaugeCX)-10, int(panelGaugeCY)+panelLine, panelText, fmt.Sprintf("%3.0f%%", r.CPUPercent))
		drawText(img, int(panelGaugeCX)-10, int(panelGaugeCY)+2*panelLine, panelDim, "CPU")
	} else {
		text(panelDim, "CPU --  MEM --")
		drawGauge(img, 0)
	}

	if len(s.Thrusters) > 0 {
		var hottest float64
		for _, t := range s.Thrusters {
			hottest = math.Max(hottest, t.Temp)
		}
		text(panelText, "THR %d  MAX %.0fC", len(s.Thrusters), hottest)
	}
	if len(s.Lights) > 0 {
		var sum float64
		for _, v := range s.Lights {
			sum += v
		}
		text(panelText, "LIGHTS %d  AVG %.0f%%", len(s.Lights), sum/float64(len(s.Lights)))
	}

	if failing := failingChannels(s); len(failing) > 0 {
		drawText(img, 2, PanelHeight-3, statusColors[StatusAlert], "ERR "+strings.Join(failing, ","))
	}
	return img
}

func drawText(dst draw.Image, x, y int, c color.Color, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  &image.Uniform{c},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// drawGauge draws the dial track and the CPU arc over it.
func drawGauge(dst draw.Image, percent float64) {
	fillArc(dst, 0, 100, panelTrack)
	p := math.Max(0, math.Min(100, percent))
	if p > 0 {
		fillArc(dst, 0, p, GaugeColor(p))
	}
}

// fillArc rasterizes a band of the half-circle dial between two percentages.
func fillArc(dst draw.Image, from, to float64, c color.Color) {
	const steps = 48
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())

	point := func(percent, r float64) (float32, float32) {
		a := math.Pi - percent/100*math.Pi
		return float32(panelGaugeCX + r*math.Cos(a)), float32(panelGaugeCY - r*math.Sin(a))
	}

	outer, inner := panelGaugeRadius, panelGaugeRadius-panelGaugeWidth
	z.MoveTo(point(from, outer))
	for i := 1; i <= steps; i++ {
		z.LineTo(point(from+(to-from)*float64(i)/steps, outer))
	}
	for i := steps; i >= 0; i-- {
		z.LineTo(point(from+(to-from)*float64(i)/steps, inner))
	}
	z.ClosePath()
	z.Draw(dst, b, &image.Uniform{c}, image.Point{})
}

// panelAngle is FormatAngle without the degree sign, which basicfont lacks.
func panelAngle(deg float64) string {
	return strings.TrimSuffix(FormatAngle(deg), "°")
}

func rank(s Status) int {
	switch s {
	case StatusAlert:
		return 2
	case StatusWarn:
		return 1
	}
	return 0
}

func failingChannels(s Snapshot) []string {
	var out []string
	for ch, st := range s.Status {
		if st.LastError != "" && st.ErrorAt.After(st.Updated) {
			out = append(out, string(ch))
		}
	}
	sort.Strings(out)
	return out
}

func hexColor(s string) color.RGBA {
	var r, g, b uint8
	fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b)
	return color.RGBA{r, g, b, 0xff}
}
