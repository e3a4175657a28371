package main

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/frudas24/deskgesture/internal/config"
	"github.com/frudas24/deskgesture/internal/ebiteninput"
	"github.com/frudas24/deskgesture/internal/gesture"
	"github.com/frudas24/deskgesture/internal/surface"
)

const (
	puckSize = 48.0
	// flingMs is how far ahead a release velocity is projected.
	flingMs       = 250.0
	flingDuration = 0.6
	// scrollRange bounds the virtual page scrolled by the wheel.
	scrollRange = 2000.0
)

var (
	background = color.RGBA{0x14, 0x12, 0x1c, 0xff}
	puckIdle   = color.RGBA{0x5a, 0x8d, 0xee, 0xff}
	puckHover  = color.RGBA{0x8a, 0xb4, 0xff, 0xff}
	puckDrag   = color.RGBA{0xf0, 0xa0, 0x3c, 0xff}
)

// fling animates the puck after a release.
type fling struct {
	x, y *gween.Tween
}

// lab is the ebiten game hosting a gesture controller over the whole window.
type lab struct {
	sched   *ebiteninput.TickScheduler
	poller  *ebiteninput.Poller
	router  *surface.Router
	engine  *gesture.Controller
	touches []ebiten.TouchID
	pixel   *ebiten.Image
	// queued events are routed after the current batch, outside handlers.
	queued []*gesture.Event

	pos    gesture.Vec2
	scale  float64
	scroll float64
	fling  *fling
	state  *gesture.StateObject
	lines  map[gesture.Kind]string
}

// newLab binds every gesture kind to the window.
func newLab(settings config.Gestures) *lab {
	l := &lab{
		sched:  ebiteninput.NewTickScheduler(),
		poller: ebiteninput.NewPoller(),
		pixel:  ebiten.NewImage(1, 1),
		pos:    gesture.Vec2{0.5, 0.5},
		scale:  1,
		lines:  make(map[gesture.Kind]string),
	}
	l.pixel.Fill(color.White)

	pad := surface.NewElement("pad", surface.FullPad)
	pad.SetNativeGestures(settings.NativePinch)
	l.router = surface.NewRouter(pad, surface.NewElement("window", surface.FullPad))

	cfg := settings.Engine()
	cfg.Target = pad
	cfg.Window = l.router.Window()
	l.engine = gesture.New(cfg, gesture.Handlers{
		OnDrag:   l.onDrag,
		OnMove:   l.record,
		OnHover:  l.record,
		OnScroll: l.record,
		OnWheel:  l.onWheel,
		OnPinch:  l.onPinch,
	}, l.sched)
	l.engine.Bind()
	l.state = l.engine.State()
	return l
}

// Update polls input, routes it through the controller and advances animations.
func (l *lab) Update() error {
	dt := time.Second / time.Duration(ebiten.TPS())
	l.sched.Tick(dt)

	snap, ids := ebiteninput.Read(screenW, screenH, l.touches)
	l.touches = ids
	for _, ev := range l.poller.Next(snap, l.sched.Now()) {
		l.router.Route(ev)
	}
	for len(l.queued) > 0 {
		ev := l.queued[0]
		l.queued = l.queued[1:]
		l.router.Route(ev)
	}

	if l.fling != nil {
		x, doneX := l.fling.x.Update(float32(dt.Seconds()))
		y, doneY := l.fling.y.Update(float32(dt.Seconds()))
		l.pos = clampPos(gesture.Vec2{float64(x), float64(y)})
		if doneX && doneY {
			l.fling = nil
		}
	}
	l.state = l.engine.State()
	return nil
}

// Draw renders the puck and one status line per gesture kind.
func (l *lab) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	size := puckSize * l.scale
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(size, size)
	op.GeoM.Translate(l.pos[0]*screenW-size/2, l.pos[1]*screenH-size/2)
	c := puckIdle
	switch {
	case l.state.Dragging:
		c = puckDrag
	case l.state.Hovering:
		c = puckHover
	}
	op.ColorScale.ScaleWithColor(c)
	screen.DrawImage(l.pixel, op)

	var b strings.Builder
	fmt.Fprintf(&b, "scroll %.0f  zoom %.2f\n", l.scroll, l.scale)
	for _, k := range gesture.AllKinds() {
		if line, ok := l.lines[k]; ok {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	ebitenutil.DebugPrintAt(screen, b.String(), 8, 8)
}

// Layout keeps a fixed logical size so normalized coordinates match the window.
func (l *lab) Layout(_, _ int) (int, int) {
	return screenW, screenH
}

// onDrag moves the puck and flings it on release.
func (l *lab) onDrag(s gesture.State) any {
	l.record(s)
	switch {
	case s.First:
		l.fling = nil
	case s.Last:
		if s.Canceled || s.Velocity == 0 {
			return nil
		}
		to := clampPos(l.pos.Add(s.Velocities.Scale(flingMs)))
		l.fling = &fling{
			x: gween.New(float32(l.pos[0]), float32(to[0]), flingDuration, ease.OutCubic),
			y: gween.New(float32(l.pos[1]), float32(to[1]), flingDuration, ease.OutCubic),
		}
	default:
		l.pos = clampPos(l.pos.Add(s.Delta))
	}
	return nil
}

// onWheel scrolls a virtual page and reports the offset as a scroll event.
func (l *lab) onWheel(s gesture.State) any {
	l.record(s)
	if s.Last || s.Event == nil {
		return nil
	}
	next := clamp(l.scroll+s.Event.Values[1], 0, scrollRange)
	if next == l.scroll {
		return nil
	}
	l.scroll = next
	l.queued = append(l.queued, &gesture.Event{
		Type:      "scroll",
		Values:    gesture.Vec2{0, l.scroll},
		Modifiers: s.Modifiers,
		Time:      l.sched.Now(),
	})
	return nil
}

// onPinch zooms the puck by the change in finger distance.
func (l *lab) onPinch(s gesture.State) any {
	l.record(s)
	if s.Last {
		return nil
	}
	l.scale = clamp(l.scale*(1+s.Delta[0]/200), 0.25, 6)
	return nil
}

// record keeps a status line for the kind.
func (l *lab) record(s gesture.State) any {
	phase := "change"
	switch {
	case s.Canceled:
		phase = "canceled"
	case s.First:
		phase = "start"
	case s.Last:
		phase = "end"
	}
	l.lines[s.Kind] = fmt.Sprintf("%-6s %-8s values=(%.3f, %.3f) v=%.4f", s.Kind, phase, s.Values[0], s.Values[1], s.Velocity)
	return nil
}

func clampPos(p gesture.Vec2) gesture.Vec2 {
	return gesture.Vec2{clamp(p[0], 0, 1), clamp(p[1], 0, 1)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
