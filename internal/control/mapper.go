// Package control handles the pad protocol and maps gestures to desktop input.
package control

import (
	"fmt"
	"math"

	"github.com/frudas24/deskgesture/internal/calib"
	"github.com/frudas24/deskgesture/internal/monitor"
)

// MonitorProvider returns the current list of monitors.
type MonitorProvider func() ([]monitor.Monitor, error)

// NormToAbs maps normalized pad coordinates onto an absolute desktop area.
func NormToAbs(xn, yn float64, area calib.Rect) (int, int) {
	area = calib.Normalize(area)
	xn = clamp01(xn)
	yn = clamp01(yn)
	return area.X + normToPixels(xn, area.W), area.Y + normToPixels(yn, area.H)
}

// ResolveArea returns the absolute desktop rectangle the pad drives.
// The calibration monitor wins; otherwise the session monitor is used.
func ResolveArea(c calib.Calib, sessionMonitor int, monitors []monitor.Monitor) (calib.Rect, error) {
	idx := c.MonitorIndex
	if idx <= 0 {
		idx = sessionMonitor
	}
	m, ok := monitor.Resolve(monitors, idx)
	if !ok {
		return calib.Rect{}, fmt.Errorf("monitor %d not found", idx)
	}
	return calib.Within(m.Bounds(), c.Area), nil
}

func normToPixels(norm float64, span int) int {
	if span <= 1 {
		return 0
	}
	return int(math.Round(norm * float64(span-1)))
}

// clamp01 bounds a float to the [0..1] range.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
