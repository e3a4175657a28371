// Package control handles the pad protocol and maps gestures to desktop input.
package control

import (
	"math"
	"strings"
	"time"

	"github.com/frudas24/deskgesture/internal/calib"
	"github.com/frudas24/deskgesture/internal/config"
	"github.com/frudas24/deskgesture/internal/gesture"
	"github.com/frudas24/deskgesture/internal/session"
	"github.com/frudas24/deskgesture/internal/wininput"
)

const (
	minMoveInterval = 16 * time.Millisecond
	minMoveDelta    = 2
	// tapSlop is the largest normalized travel still counted as a tap.
	tapSlop = 0.02
	// pinchTapSlop is the largest distance change still counted as a two-finger tap.
	pinchTapSlop = 10.0
)

// wheelUnitsPerPixel converts browser wheel pixels into Windows wheel units.
const wheelUnitsPerPixel = float64(wininput.WheelDelta) / 100

// Context is the desktop mapping a translation runs against.
type Context struct {
	InputEnabled bool
	Mode         string
	Area         calib.Rect
	Settings     config.Gestures
}

// Translator turns gesture states into input actions.
type Translator struct {
	now    func() time.Time
	cursor wininput.CursorReader

	pressed    bool
	lastMoveAt time.Time
	lastX      int
	lastY      int

	dragAt  time.Duration
	pinchAt time.Duration

	moveRem  gesture.Vec2
	wheelRem gesture.Vec2
	zoomRem  float64
}

// NewTranslator returns a ready-to-use translator.
func NewTranslator() *Translator {
	return &Translator{now: time.Now}
}

// SetNowFunc overrides the clock used for throttling.
func (t *Translator) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		t.now = fn
	}
}

// SetCursorReader enables caged relative moves using the OS cursor position.
func (t *Translator) SetCursorReader(r wininput.CursorReader) {
	t.cursor = r
}

// Pressed reports whether the translator holds the left button down.
func (t *Translator) Pressed() bool {
	return t.pressed
}

// Release returns the actions that let go of a held button.
func (t *Translator) Release() []Action {
	if !t.pressed {
		return nil
	}
	t.pressed = false
	return []Action{{Type: ActLeftUp}}
}

// Translate maps one handler call onto input actions.
func (t *Translator) Translate(s gesture.State, ctx Context) []Action {
	if !ctx.InputEnabled {
		return t.Release()
	}
	switch s.Kind {
	case gesture.KindDrag:
		if ctx.Mode == session.ModeAbsolute {
			return t.press(s, ctx)
		}
		return t.drag(s, ctx)
	case gesture.KindDnd:
		return t.press(s, ctx)
	case gesture.KindMove:
		return t.move(s, ctx)
	case gesture.KindScroll:
		if s.First || s.Last {
			return nil
		}
		return t.scrollBy(s.Delta, ctx.Settings)
	case gesture.KindWheel:
		if s.Last || s.Event == nil {
			return nil
		}
		return t.scrollBy(s.Event.Values, ctx.Settings)
	case gesture.KindPinch:
		return t.pinch(s, ctx)
	default:
		return nil
	}
}

// drag moves the cursor by pad motion and clicks on a tap.
func (t *Translator) drag(s gesture.State, ctx Context) []Action {
	switch {
	case s.First:
		t.moveRem = gesture.Vec2{}
		t.dragAt = s.Time
		return nil
	case s.Last:
		if !s.Canceled && s.Values.Sub(s.Initial).Len() <= tapSlop && elapsed(s, t.dragAt) <= tapWindow(ctx.Settings) {
			return []Action{{Type: ActClick}}
		}
		return nil
	}
	return t.relMove(s.Delta, ctx)
}

// press holds the left button for the length of the gesture at absolute positions.
func (t *Translator) press(s gesture.State, ctx Context) []Action {
	x, y := NormToAbs(s.Values[0], s.Values[1], ctx.Area)
	switch {
	case s.First:
		t.pressed = true
		t.markMove(x, y)
		return []Action{{Type: ActMove, X: x, Y: y}, {Type: ActLeftDown}}
	case s.Last:
		if !t.pressed {
			return nil
		}
		t.pressed = false
		return []Action{{Type: ActMove, X: x, Y: y}, {Type: ActLeftUp}}
	}
	if a, ok := t.throttledMove(x, y); ok {
		return []Action{a}
	}
	return nil
}

// move follows a hovering pointer. Pressed pointers belong to drag.
func (t *Translator) move(s gesture.State, ctx Context) []Action {
	if s.Dragging || s.Down {
		return nil
	}
	if ctx.Mode == session.ModeAbsolute {
		x, y := NormToAbs(s.Values[0], s.Values[1], ctx.Area)
		if a, ok := t.throttledMove(x, y); ok {
			return []Action{a}
		}
		return nil
	}
	if s.First || s.Last {
		return nil
	}
	return t.relMove(s.Delta, ctx)
}

// pinch zooms by distance changes and right clicks on a two-finger tap.
func (t *Translator) pinch(s gesture.State, ctx Context) []Action {
	switch {
	case s.First:
		t.zoomRem = 0
		t.pinchAt = s.Time
		return nil
	case s.Last:
		touch := s.Event != nil && strings.HasPrefix(s.Event.Type, "touch")
		if touch && !s.Canceled && math.Abs(s.Values[0]-s.Initial[0]) <= pinchTapSlop && elapsed(s, t.pinchAt) <= tapWindow(ctx.Settings) {
			return []Action{{Type: ActRightClick}}
		}
		return nil
	}
	scale := ctx.Settings.ZoomScale
	if scale <= 0 {
		scale = 1
	}
	z := t.zoomRem + s.Delta[0]*scale
	n := math.Trunc(z)
	t.zoomRem = z - n
	if n == 0 {
		return nil
	}
	return []Action{{Type: ActZoom, Y: int(n)}}
}

// relMove converts a normalized delta into pixels, keeping the subpixel remainder.
// With a cursor reader the move is caged to the area.
func (t *Translator) relMove(delta gesture.Vec2, ctx Context) []Action {
	area := calib.Normalize(ctx.Area)
	sens := ctx.Settings.Sensitivity
	if sens <= 0 {
		sens = 1
	}
	px := t.moveRem.Add(gesture.Vec2{delta[0] * float64(area.W) * sens, delta[1] * float64(area.H) * sens})
	dx, dy := math.Trunc(px[0]), math.Trunc(px[1])
	t.moveRem = gesture.Vec2{px[0] - dx, px[1] - dy}
	if dx == 0 && dy == 0 {
		return nil
	}

	if t.cursor != nil && !calib.Empty(area) {
		if cx, cy, ok := t.cursor.CursorPos(); ok {
			return cageMove(area, cx, cy, int(dx), int(dy))
		}
	}
	return []Action{{Type: ActMoveRel, X: int(dx), Y: int(dy)}}
}

// scrollBy converts browser wheel pixels into wheel and hwheel actions.
func (t *Translator) scrollBy(d gesture.Vec2, g config.Gestures) []Action {
	k := wheelUnitsPerPixel * g.WheelScale
	if g.WheelScale <= 0 {
		k = wheelUnitsPerPixel
	}
	if g.InvertScroll {
		k = -k
	}
	v := t.wheelRem.Add(gesture.Vec2{d[0] * k, -d[1] * k})
	h, w := math.Trunc(v[0]), math.Trunc(v[1])
	t.wheelRem = gesture.Vec2{v[0] - h, v[1] - w}

	var out []Action
	if w != 0 {
		out = append(out, Action{Type: ActWheel, Y: int(w)})
	}
	if h != 0 {
		out = append(out, Action{Type: ActHWheel, X: int(h)})
	}
	return out
}

// throttledMove drops moves that come too soon or too close to the last one.
func (t *Translator) throttledMove(x, y int) (Action, bool) {
	now := t.now()
	if !t.lastMoveAt.IsZero() && now.Sub(t.lastMoveAt) < minMoveInterval {
		return Action{}, false
	}
	if abs(x-t.lastX) < minMoveDelta && abs(y-t.lastY) < minMoveDelta {
		return Action{}, false
	}
	t.markMove(x, y)
	return Action{Type: ActMove, X: x, Y: y}, true
}

func (t *Translator) markMove(x, y int) {
	t.lastMoveAt = t.now()
	t.lastX = x
	t.lastY = y
}

// elapsed returns the gesture duration up to its latest event.
func elapsed(s gesture.State, start time.Duration) time.Duration {
	end := s.Time
	if s.Event != nil && s.Event.Time > end {
		end = s.Event.Time
	}
	return end - start
}

func tapWindow(g config.Gestures) time.Duration {
	return time.Duration(g.TapMs) * time.Millisecond
}

// abs returns the absolute value of an integer.
func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
