package ebiteninput

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/frudas24/deskgesture/internal/gesture"
)

var window = gesture.Vec2{200, 100}

func types(events []*gesture.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

// TestPoller_FirstSnapshotIsQuiet verifies the first idle sample emits nothing.
func TestPoller_FirstSnapshotIsQuiet(t *testing.T) {
	p := NewPoller()
	if got := p.Next(Snapshot{Size: window, Cursor: gesture.Vec2{10, 10}}, 0); len(got) != 0 {
		t.Fatalf("expected no events, got %v", types(got))
	}
}

// TestPoller_MouseLifecycle verifies button edges become down, move and up events.
func TestPoller_MouseLifecycle(t *testing.T) {
	p := NewPoller()
	p.Next(Snapshot{Size: window, Cursor: gesture.Vec2{20, 10}}, 0)

	var got []string
	var last *gesture.Event
	for i, s := range []Snapshot{
		{Size: window, Cursor: gesture.Vec2{20, 10}, Buttons: ButtonLeft},
		{Size: window, Cursor: gesture.Vec2{40, 20}, Buttons: ButtonLeft},
		{Size: window, Cursor: gesture.Vec2{40, 20}, Buttons: ButtonLeft},
		{Size: window, Cursor: gesture.Vec2{40, 20}},
	} {
		events := p.Next(s, time.Duration(i+1)*time.Millisecond)
		got = append(got, types(events)...)
		if len(events) > 0 {
			last = events[len(events)-1]
		}
	}
	if diff := cmp.Diff([]string{"pointerdown", "pointermove", "pointerup"}, got); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	if last.Values != (gesture.Vec2{0.2, 0.2}) || last.PointerID != MousePointerID || last.Time != 4*time.Millisecond {
		t.Fatalf("unexpected up event: %+v", last)
	}
}

// TestPoller_WheelUsesBrowserSigns verifies wheel offsets flip into browser deltas.
func TestPoller_WheelUsesBrowserSigns(t *testing.T) {
	p := NewPoller()
	p.Next(Snapshot{Size: window}, 0)
	events := p.Next(Snapshot{Size: window, Wheel: gesture.Vec2{0, 1}, Mods: gesture.Modifiers{Ctrl: true}}, time.Millisecond)
	if len(events) != 1 || events[0].Type != "wheel" {
		t.Fatalf("expected one wheel event, got %v", types(events))
	}
	if events[0].Values != (gesture.Vec2{0, -WheelPixels}) || !events[0].Modifiers.Ctrl {
		t.Fatalf("unexpected wheel event: %+v", events[0])
	}
}

// TestPoller_TwoFingerPinch verifies touches produce a primary pointer plus distance/angle touch events.
func TestPoller_TwoFingerPinch(t *testing.T) {
	p := NewPoller()
	p.Next(Snapshot{Size: window}, 0)

	one := []Touch{{ID: 7, Pos: gesture.Vec2{50, 50}}}
	two := []Touch{{ID: 7, Pos: gesture.Vec2{50, 50}}, {ID: 9, Pos: gesture.Vec2{150, 50}}}
	spread := []Touch{{ID: 7, Pos: gesture.Vec2{50, 50}}, {ID: 9, Pos: gesture.Vec2{170, 50}}}

	var got []string
	var pinch []gesture.Vec2
	for i, touches := range [][]Touch{one, two, spread, nil} {
		for _, e := range p.Next(Snapshot{Size: window, Touches: touches}, time.Duration(i+1)*time.Millisecond) {
			got = append(got, e.Type)
			if e.Touches >= 2 {
				pinch = append(pinch, e.Values)
			}
		}
	}
	want := []string{"pointerdown", "touchstart", "touchstart", "touchmove", "pointerup", "touchend"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]gesture.Vec2{{100, 0}, {120, 0}}, pinch); diff != "" {
		t.Fatalf("pinch values mismatch (-want +got):\n%s", diff)
	}
}

// TestPoller_DrivesController verifies polled events recognize a drag end to end.
func TestPoller_DrivesController(t *testing.T) {
	target := newTarget()
	var kinds []string
	h := func(s gesture.State) any {
		if s.First {
			kinds = append(kinds, s.Kind.String()+":start")
		}
		if s.Last {
			kinds = append(kinds, s.Kind.String()+":end")
		}
		return nil
	}
	cfg := gesture.DefaultConfig()
	cfg.Target = target
	ctrl := gesture.New(cfg, gesture.Handlers{OnDrag: h}, immediate{})
	ctrl.Bind()

	p := NewPoller()
	p.Next(Snapshot{Size: window, Cursor: gesture.Vec2{10, 10}}, 0)
	for i, s := range []Snapshot{
		{Size: window, Cursor: gesture.Vec2{10, 10}, Buttons: ButtonLeft},
		{Size: window, Cursor: gesture.Vec2{30, 10}, Buttons: ButtonLeft},
		{Size: window, Cursor: gesture.Vec2{30, 10}},
	} {
		for _, e := range p.Next(s, time.Duration(i+1)*time.Millisecond) {
			target.emit(e)
		}
	}
	if diff := cmp.Diff([]string{"drag:start", "drag:end"}, kinds); diff != "" {
		t.Fatalf("handler calls mismatch (-want +got):\n%s", diff)
	}
}

type target struct {
	listeners map[string][]gesture.Listener
}

func newTarget() *target {
	return &target{listeners: make(map[string][]gesture.Listener)}
}

func (t *target) AddListener(name string, fn gesture.Listener, _ gesture.ListenerOptions) func() {
	t.listeners[name] = append(t.listeners[name], fn)
	return func() {}
}

func (t *target) emit(e *gesture.Event) {
	for _, fn := range t.listeners[e.Type] {
		fn(e)
	}
}

// immediate runs frame callbacks inline and never fires timers.
type immediate struct{}

func (immediate) AfterFunc(time.Duration, func()) func() bool { return func() bool { return false } }
func (immediate) NextFrame(fn func())                            { fn() }
