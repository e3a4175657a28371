package control

import "github.com/frudas24/deskgesture/internal/calib"

// cageMove moves the cursor at (cx,cy) by (dx,dy) without leaving area.
// A cursor found outside the area is first brought back to its center.
func cageMove(area calib.Rect, cx, cy, dx, dy int) []Action {
	area = calib.Normalize(area)
	var out []Action
	if !calib.Contains(area, cx, cy) {
		cx, cy = area.X+area.W/2, area.Y+area.H/2
		out = append(out, Action{Type: ActMove, X: cx, Y: cy})
	}
	x := clampInt(cx+dx, area.X, area.X+area.W-1)
	y := clampInt(cy+dy, area.Y, area.Y+area.H-1)
	if len(out) > 0 && x == cx && y == cy {
		return out
	}
	return append(out, Action{Type: ActMove, X: x, Y: y})
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
