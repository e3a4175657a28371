// Package calib maps the gesture pad onto a region of the desktop.
package calib

// Rect describes a rectangle using top-left origin and size.
type Rect struct {
	X int
	Y int
	W int
	H int
}

// Calib stores which desktop region the pad drives.
type Calib struct {
	MonitorIndex int
	// Area is relative to the monitor. An empty area means the whole monitor.
	Area Rect
}

// Normalize returns a rectangle with non-negative width/height.
func Normalize(r Rect) Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}

// Empty reports whether r covers no pixels.
func Empty(r Rect) bool {
	r = Normalize(r)
	return r.W == 0 || r.H == 0
}

// Contains reports whether a point is inside the rectangle (edges inclusive).
func Contains(r Rect, x, y int) bool {
	if r.W <= 0 || r.H <= 0 {
		return false
	}
	maxX := r.X + r.W
	maxY := r.Y + r.H
	return x >= r.X && x <= maxX && y >= r.Y && y <= maxY
}

// Within places inner, given relative to outer, into outer's coordinate space and clips it.
// An empty inner yields outer.
func Within(outer, inner Rect) Rect {
	outer = Normalize(outer)
	if Empty(inner) {
		return outer
	}
	inner = Normalize(inner)
	x0 := clamp(outer.X+inner.X, outer.X, outer.X+outer.W)
	y0 := clamp(outer.Y+inner.Y, outer.Y, outer.Y+outer.H)
	x1 := clamp(outer.X+inner.X+inner.W, outer.X, outer.X+outer.W)
	y1 := clamp(outer.Y+inner.Y+inner.H, outer.Y, outer.Y+outer.H)
	if x1 <= x0 || y1 <= y0 {
		return outer
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
