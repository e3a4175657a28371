// Package control handles the pad protocol and maps gestures to desktop input.
package control

import (
	"strings"
	"time"

	"github.com/frudas24/deskgesture/internal/gesture"
)

// padPixels scales normalized touch distances so touch and wheel pinch share units.
const padPixels = 1000.0

// NativeScaleFactor converts a native gesture scale into pinch distance.
const NativeScaleFactor = 260.0

// Rect represents a rectangle sent by the client UI.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Point is one normalized touch point.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Message is a control payload received over websocket or DataChannel.
type Message struct {
	T        string             `json:"t"`
	ID       int                `json:"id,omitempty"`
	X        float64            `json:"x,omitempty"`
	Y        float64            `json:"y,omitempty"`
	Buttons  int                `json:"buttons,omitempty"`
	Touches  int                `json:"touches,omitempty"`
	Points   []Point            `json:"points,omitempty"`
	DX       float64            `json:"dx,omitempty"`
	DY       float64            `json:"dy,omitempty"`
	Scale    float64            `json:"scale,omitempty"`
	Rotation float64            `json:"rotation,omitempty"`
	TS       float64            `json:"ts,omitempty"`
	Mods     *gesture.Modifiers `json:"mods,omitempty"`
	Mode     string             `json:"mode,omitempty"`
	Idx      int                `json:"idx,omitempty"`
	Rect     *Rect              `json:"rect,omitempty"`
	Enabled  *bool              `json:"enabled,omitempty"`
}

// shortNames keeps the compact pointer names of older clients working.
var shortNames = map[string]string{
	"down":  "pointerdown",
	"move":  "pointermove",
	"up":    "pointerup",
	"enter": "pointerenter",
	"leave": "pointerleave",
}

// EventType returns the canonical DOM-style event name of m.
func (m Message) EventType() string {
	if name, ok := shortNames[m.T]; ok {
		return name
	}
	return m.T
}

// IsInput reports whether m carries pad input rather than a control command.
func (m Message) IsInput() bool {
	t := m.EventType()
	switch {
	case strings.HasPrefix(t, "pointer"),
		strings.HasPrefix(t, "touch"),
		strings.HasPrefix(t, "gesture"),
		strings.HasPrefix(t, "drag"):
		return true
	}
	return t == "wheel" || t == "scroll"
}

// Event converts an input message into a gesture event. ok is false for control messages.
func (m Message) Event() (ev *gesture.Event, ok bool) {
	if !m.IsInput() {
		return nil, false
	}
	typ := m.EventType()
	ev = &gesture.Event{
		Type:      typ,
		PointerID: m.ID,
		Buttons:   m.Buttons,
		Touches:   m.Touches,
		Origin:    gesture.Vec2{m.X, m.Y},
		Time:      time.Duration(m.TS * float64(time.Millisecond)),
		Raw:       m,
	}
	if m.Mods != nil {
		ev.Modifiers = *m.Mods
	}

	switch {
	case strings.HasPrefix(typ, "touch"):
		if ev.Touches == 0 {
			ev.Touches = len(m.Points)
		}
		if len(m.Points) >= 2 {
			a := gesture.Vec2{m.Points[0].X * padPixels, m.Points[0].Y * padPixels}
			b := gesture.Vec2{m.Points[1].X * padPixels, m.Points[1].Y * padPixels}
			ev.Values, ev.Origin = gesture.PinchValues(a, b)
			ev.Origin = ev.Origin.Scale(1 / padPixels)
		}
	case strings.HasPrefix(typ, "gesture"):
		ev.Values = gesture.Vec2{m.Scale * NativeScaleFactor, m.Rotation}
	case typ == "wheel" || typ == "scroll":
		ev.Values = gesture.Vec2{m.DX, m.DY}
	default:
		ev.Values = gesture.Vec2{m.X, m.Y}
	}
	return ev, true
}
