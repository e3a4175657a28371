package main

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/frudas24/deskgesture/internal/gesture"
)

// wheelPixels is the browser-style distance of one wheel step.
const wheelPixels = 100

// termPad turns tcell mouse events into normalized gesture events over the terminal grid.
type termPad struct {
	w, h    int
	buttons int
	x, y    int
	started bool
}

// resize updates the grid used to normalize cell positions.
func (p *termPad) resize(w, h int) {
	p.w, p.h = w, h
}

// events converts one tcell mouse report.
func (p *termPad) events(ev *tcell.EventMouse, now time.Duration) []*gesture.Event {
	x, y := ev.Position()
	mask := ev.Buttons()
	mods := modifiers(ev.Modifiers())
	pos := p.normalize(x, y)

	var out []*gesture.Event
	if d := wheelDelta(mask); d != (gesture.Vec2{}) {
		out = append(out, &gesture.Event{Type: "wheel", Values: d, Origin: pos, Buttons: p.buttons, Modifiers: mods, Time: now})
	}

	buttons := buttonBits(mask)
	typ := "pointermove"
	switch {
	case p.buttons == 0 && buttons != 0:
		typ = "pointerdown"
	case p.buttons != 0 && buttons == 0:
		typ = "pointerup"
	case p.started && x == p.x && y == p.y && buttons == p.buttons:
		typ = ""
	}
	p.buttons, p.x, p.y, p.started = buttons, x, y, true
	if typ == "" {
		return out
	}
	return append(out, &gesture.Event{
		Type:      typ,
		Values:    pos,
		Origin:    pos,
		Buttons:   buttons,
		Modifiers: mods,
		Time:      now,
		PointerID: 1,
	})
}

// normalize maps the center of a cell onto the unit square.
func (p *termPad) normalize(x, y int) gesture.Vec2 {
	if p.w <= 0 || p.h <= 0 {
		return gesture.Vec2{}
	}
	return gesture.Vec2{(float64(x) + 0.5) / float64(p.w), (float64(y) + 0.5) / float64(p.h)}
}

// buttonBits maps tcell buttons onto the browser buttons mask.
func buttonBits(m tcell.ButtonMask) int {
	b := 0
	if m&tcell.Button1 != 0 {
		b |= 1
	}
	if m&tcell.Button2 != 0 {
		b |= 2
	}
	if m&tcell.Button3 != 0 {
		b |= 4
	}
	return b
}

// wheelDelta returns browser-style wheel pixels; positive y scrolls down.
func wheelDelta(m tcell.ButtonMask) gesture.Vec2 {
	var d gesture.Vec2
	if m&tcell.WheelUp != 0 {
		d[1] -= wheelPixels
	}
	if m&tcell.WheelDown != 0 {
		d[1] += wheelPixels
	}
	if m&tcell.WheelLeft != 0 {
		d[0] -= wheelPixels
	}
	if m&tcell.WheelRight != 0 {
		d[0] += wheelPixels
	}
	return d
}

func modifiers(m tcell.ModMask) gesture.Modifiers {
	return gesture.Modifiers{
		Shift: m&tcell.ModShift != 0,
		Ctrl:  m&tcell.ModCtrl != 0,
		Alt:   m&tcell.ModAlt != 0,
		Meta:  m&tcell.ModMeta != 0,
	}
}
