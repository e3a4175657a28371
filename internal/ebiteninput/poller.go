// Package ebiteninput turns per-tick input snapshots into normalized gesture events.
package ebiteninput

import (
	"time"

	"github.com/frudas24/deskgesture/internal/gesture"
)

// MousePointerID identifies the mouse in emitted pointer events.
const MousePointerID = 1

// touchPointerBase offsets touch IDs so they never collide with the mouse.
const touchPointerBase = 100

// WheelPixels is the browser-style pixel distance of one wheel notch.
const WheelPixels = 100

// Pointer button bits, matching the browser buttons mask.
const (
	ButtonLeft   = 1
	ButtonRight  = 2
	ButtonMiddle = 4
)

// Touch is one active touch point in window pixels.
type Touch struct {
	ID  int
	Pos gesture.Vec2
}

// Snapshot is the input state sampled during one tick.
type Snapshot struct {
	// Size is the window size in pixels used to normalize positions.
	Size    gesture.Vec2
	Cursor  gesture.Vec2
	Buttons int
	Touches []Touch
	// Wheel holds the raw wheel offsets; positive y scrolls up.
	Wheel gesture.Vec2
	Mods  gesture.Modifiers
}

// Poller diffs consecutive snapshots. It is not safe for concurrent use.
type Poller struct {
	prev    Snapshot
	primary int
	started bool
}

// NewPoller returns a poller with no previous state.
func NewPoller() *Poller {
	return &Poller{primary: -1}
}

// Next returns the events that turn the previous snapshot into cur.
func (p *Poller) Next(cur Snapshot, now time.Duration) []*gesture.Event {
	var out []*gesture.Event
	emit := func(e *gesture.Event) {
		e.Time = now
		e.Modifiers = cur.Mods
		out = append(out, e)
	}

	if !p.started || cur.Cursor != p.prev.Cursor || cur.Buttons != p.prev.Buttons {
		if e := p.mouse(cur); e != nil {
			emit(e)
		}
	}
	for _, e := range p.touches(cur) {
		emit(e)
	}
	if cur.Wheel != (gesture.Vec2{}) {
		emit(&gesture.Event{
			Type:    "wheel",
			Values:  gesture.Vec2{-cur.Wheel[0] * WheelPixels, -cur.Wheel[1] * WheelPixels},
			Origin:  normalize(cur.Cursor, cur.Size),
			Buttons: cur.Buttons,
		})
	}

	p.prev = cur
	p.prev.Touches = append([]Touch(nil), cur.Touches...)
	p.started = true
	return out
}

// mouse returns the pointer event for a cursor or button change.
func (p *Poller) mouse(cur Snapshot) *gesture.Event {
	typ := "pointermove"
	switch {
	case p.prev.Buttons == 0 && cur.Buttons != 0:
		typ = "pointerdown"
	case p.prev.Buttons != 0 && cur.Buttons == 0:
		typ = "pointerup"
	case !p.started:
		return nil
	}
	pos := normalize(cur.Cursor, cur.Size)
	return &gesture.Event{
		Type:      typ,
		Values:    pos,
		Origin:    pos,
		Buttons:   cur.Buttons,
		PointerID: MousePointerID,
	}
}

// touches emits the primary touch as a pointer and the whole set as touch events.
func (p *Poller) touches(cur Snapshot) []*gesture.Event {
	prev := p.prev.Touches
	if len(prev) == 0 && len(cur.Touches) == 0 {
		return nil
	}
	var out []*gesture.Event

	if e := p.primaryPointer(cur); e != nil {
		out = append(out, e)
	}

	typ := ""
	switch {
	case len(cur.Touches) > len(prev):
		typ = "touchstart"
	case len(cur.Touches) < len(prev):
		typ = "touchend"
	case moved(prev, cur.Touches):
		typ = "touchmove"
	}
	if typ == "" {
		return out
	}
	e := &gesture.Event{Type: typ, Touches: len(cur.Touches)}
	switch len(cur.Touches) {
	case 0:
		e.Values = pinchOf(prev)
	case 1:
		e.Values = normalize(cur.Touches[0].Pos, cur.Size)
		e.Origin = e.Values
	default:
		da, origin := gesture.PinchValues(cur.Touches[0].Pos, cur.Touches[1].Pos)
		e.Values = da
		e.Origin = normalize(origin, cur.Size)
	}
	return append(out, e)
}

// primaryPointer follows the first touch as a pointer until it lifts.
func (p *Poller) primaryPointer(cur Snapshot) *gesture.Event {
	if p.primary >= 0 {
		t, ok := find(cur.Touches, p.primary)
		if !ok {
			last, _ := find(p.prev.Touches, p.primary)
			id := p.primary
			p.primary = -1
			pos := normalize(last.Pos, cur.Size)
			return &gesture.Event{Type: "pointerup", Values: pos, Origin: pos, PointerID: touchPointerBase + id}
		}
		last, _ := find(p.prev.Touches, p.primary)
		if last.Pos == t.Pos {
			return nil
		}
		pos := normalize(t.Pos, cur.Size)
		return &gesture.Event{Type: "pointermove", Values: pos, Origin: pos, Buttons: ButtonLeft, PointerID: touchPointerBase + t.ID}
	}
	if len(p.prev.Touches) > 0 || len(cur.Touches) == 0 {
		return nil
	}
	t := cur.Touches[0]
	p.primary = t.ID
	pos := normalize(t.Pos, cur.Size)
	return &gesture.Event{Type: "pointerdown", Values: pos, Origin: pos, Buttons: ButtonLeft, PointerID: touchPointerBase + t.ID}
}

func find(list []Touch, id int) (Touch, bool) {
	for _, t := range list {
		if t.ID == id {
			return t, true
		}
	}
	return Touch{}, false
}

func moved(prev, cur []Touch) bool {
	for i := range cur {
		if cur[i] != prev[i] {
			return true
		}
	}
	return false
}

func pinchOf(list []Touch) gesture.Vec2 {
	if len(list) < 2 {
		return gesture.Vec2{}
	}
	da, _ := gesture.PinchValues(list[0].Pos, list[1].Pos)
	return da
}

// normalize maps window pixels onto the unit square.
func normalize(p, size gesture.Vec2) gesture.Vec2 {
	if size[0] <= 0 || size[1] <= 0 {
		return p
	}
	return gesture.Vec2{p[0] / size[0], p[1] / size[1]}
}
