package control

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/frudas24/deskgesture/internal/calib"
	"github.com/frudas24/deskgesture/internal/config"
	"github.com/frudas24/deskgesture/internal/gesture"
	"github.com/frudas24/deskgesture/internal/session"
	"github.com/frudas24/deskgesture/internal/testutil"
)

// padContext returns an enabled context over a 300x400 area at (100,200).
func padContext(mode string) Context {
	return Context{
		InputEnabled: true,
		Mode:         mode,
		Area:         calib.Rect{X: 100, Y: 200, W: 300, H: 400},
		Settings:     config.DefaultGestures(),
	}
}

// phase builds a state for kind at values with the given lifecycle flags.
func phase(kind gesture.Kind, values gesture.Vec2, first, last bool) gesture.State {
	var s gesture.State
	s.Kind = kind
	s.Values = values
	s.First = first
	s.Last = last
	s.Active = !last
	return s
}

// TestTranslate_AbsoluteDragHoldsButton verifies absolute drags press, throttle moves and release.
func TestTranslate_AbsoluteDragHoldsButton(t *testing.T) {
	tr := NewTranslator()
	now := time.Unix(0, 0)
	tr.SetNowFunc(func() time.Time { return now })
	ctx := padContext(session.ModeAbsolute)

	got := tr.Translate(phase(gesture.KindDrag, gesture.Vec2{0, 0}, true, false), ctx)
	want := []Action{{Type: ActMove, X: 100, Y: 200}, {Type: ActLeftDown}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("start mismatch (-want +got):\n%s", diff)
	}
	if !tr.Pressed() {
		t.Fatalf("expected pressed")
	}

	now = now.Add(5 * time.Millisecond)
	if got := tr.Translate(phase(gesture.KindDrag, gesture.Vec2{0.5, 0.5}, false, false), ctx); len(got) != 0 {
		t.Fatalf("expected throttled move, got %#v", got)
	}

	now = now.Add(20 * time.Millisecond)
	got = tr.Translate(phase(gesture.KindDrag, gesture.Vec2{0.5, 0.5}, false, false), ctx)
	if diff := cmp.Diff([]Action{{Type: ActMove, X: 250, Y: 400}}, got); diff != "" {
		t.Fatalf("move mismatch (-want +got):\n%s", diff)
	}

	now = now.Add(20 * time.Millisecond)
	if got := tr.Translate(phase(gesture.KindDrag, gesture.Vec2{0.501, 0.5}, false, false), ctx); len(got) != 0 {
		t.Fatalf("expected tiny move dropped, got %#v", got)
	}

	got = tr.Translate(phase(gesture.KindDrag, gesture.Vec2{0.5, 0.5}, false, true), ctx)
	want = []Action{{Type: ActMove, X: 250, Y: 400}, {Type: ActLeftUp}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("end mismatch (-want +got):\n%s", diff)
	}
	if tr.Pressed() {
		t.Fatalf("expected released")
	}
}

// TestTranslate_InputDisabledReleases verifies the kill switch lets go of a held button once.
func TestTranslate_InputDisabledReleases(t *testing.T) {
	tr := NewTranslator()
	ctx := padContext(session.ModeAbsolute)
	tr.Translate(phase(gesture.KindDnd, gesture.Vec2{0.2, 0.2}, true, false), ctx)

	ctx.InputEnabled = false
	got := tr.Translate(phase(gesture.KindDnd, gesture.Vec2{0.3, 0.3}, false, false), ctx)
	if diff := cmp.Diff([]Action{{Type: ActLeftUp}}, got); diff != "" {
		t.Fatalf("release mismatch (-want +got):\n%s", diff)
	}
	if got := tr.Translate(phase(gesture.KindDnd, gesture.Vec2{0.3, 0.3}, false, true), ctx); len(got) != 0 {
		t.Fatalf("expected nothing while disabled, got %#v", got)
	}
}

// TestTranslate_RelativeMoveKeepsRemainder verifies subpixel motion accumulates.
func TestTranslate_RelativeMoveKeepsRemainder(t *testing.T) {
	tr := NewTranslator()
	ctx := padContext(session.ModeRelative)
	ctx.Area = calib.Rect{W: 4, H: 4}

	s := phase(gesture.KindMove, gesture.Vec2{}, false, false)
	s.Delta = gesture.Vec2{0.375, -0.375}
	first := tr.Translate(s, ctx)
	second := tr.Translate(s, ctx)

	if diff := cmp.Diff([]Action{{Type: ActMoveRel, X: 1, Y: -1}}, first); diff != "" {
		t.Fatalf("first mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Action{{Type: ActMoveRel, X: 2, Y: -2}}, second); diff != "" {
		t.Fatalf("second mismatch (-want +got):\n%s", diff)
	}
}

// TestTranslate_RelativeMoveCaged verifies cursor reader moves are caged into the area.
func TestTranslate_RelativeMoveCaged(t *testing.T) {
	inj := &testutil.FakeInjector{Cursor: [2]int{1, 2}, HasCursor: true}
	tr := NewTranslator()
	tr.SetCursorReader(inj)
	ctx := padContext(session.ModeRelative)

	s := phase(gesture.KindMove, gesture.Vec2{}, false, false)
	s.Delta = gesture.Vec2{10, 0}
	got := tr.Translate(s, ctx)
	want := []Action{{Type: ActMove, X: 250, Y: 400}, {Type: ActMove, X: 399, Y: 400}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("caged move mismatch (-want +got):\n%s", diff)
	}
}

// TestTranslate_MoveSkippedWhileDragging verifies pressed pointers only drive drag.
func TestTranslate_MoveSkippedWhileDragging(t *testing.T) {
	tr := NewTranslator()
	s := phase(gesture.KindMove, gesture.Vec2{0.5, 0.5}, false, false)
	s.Delta = gesture.Vec2{0.1, 0.1}
	s.Dragging = true
	if got := tr.Translate(s, padContext(session.ModeRelative)); len(got) != 0 {
		t.Fatalf("expected no actions, got %#v", got)
	}
}

// TestTranslate_WheelUnits verifies browser wheel pixels become wheel notches.
func TestTranslate_WheelUnits(t *testing.T) {
	cases := []struct {
		name   string
		invert bool
		values gesture.Vec2
		want   []Action
	}{
		{"down", false, gesture.Vec2{0, 100}, []Action{{Type: ActWheel, Y: -120}}},
		{"inverted", true, gesture.Vec2{0, 100}, []Action{{Type: ActWheel, Y: 120}}},
		{"right", false, gesture.Vec2{50, 0}, []Action{{Type: ActHWheel, X: 60}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := NewTranslator()
			ctx := padContext(session.ModeRelative)
			ctx.Settings.InvertScroll = tc.invert
			s := phase(gesture.KindWheel, gesture.Vec2{}, false, false)
			s.Event = &gesture.Event{Type: "wheel", Values: tc.values}
			if diff := cmp.Diff(tc.want, tr.Translate(s, ctx)); diff != "" {
				t.Fatalf("actions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestTranslate_WheelEndIsSilent verifies the debounced wheel end emits nothing.
func TestTranslate_WheelEndIsSilent(t *testing.T) {
	tr := NewTranslator()
	s := phase(gesture.KindWheel, gesture.Vec2{0, 300}, false, true)
	s.Event = &gesture.Event{Type: "wheel", Values: gesture.Vec2{0, 100}}
	if got := tr.Translate(s, padContext(session.ModeRelative)); len(got) != 0 {
		t.Fatalf("expected no actions, got %#v", got)
	}
}

// TestTranslate_PinchZooms verifies distance changes become zoom steps.
func TestTranslate_PinchZooms(t *testing.T) {
	tr := NewTranslator()
	ctx := padContext(session.ModeRelative)
	tr.Translate(phase(gesture.KindPinch, gesture.Vec2{100, 0}, true, false), ctx)

	s := phase(gesture.KindPinch, gesture.Vec2{130, 0}, false, false)
	s.Delta = gesture.Vec2{30, 0}
	if diff := cmp.Diff([]Action{{Type: ActZoom, Y: 60}}, tr.Translate(s, ctx)); diff != "" {
		t.Fatalf("zoom mismatch (-want +got):\n%s", diff)
	}
}

// TestTranslate_TwoFingerTapRightClicks verifies a short still touch pinch right clicks.
func TestTranslate_TwoFingerTapRightClicks(t *testing.T) {
	tr := NewTranslator()
	ctx := padContext(session.ModeRelative)
	tr.Translate(phase(gesture.KindPinch, gesture.Vec2{100, 0}, true, false), ctx)

	s := phase(gesture.KindPinch, gesture.Vec2{103, 0}, false, true)
	s.Initial = gesture.Vec2{100, 0}
	s.Event = &gesture.Event{Type: "touchend", Time: 120 * time.Millisecond}
	if diff := cmp.Diff([]Action{{Type: ActRightClick}}, tr.Translate(s, ctx)); diff != "" {
		t.Fatalf("tap mismatch (-want +got):\n%s", diff)
	}

	s.Event = &gesture.Event{Type: "touchend", Time: time.Second}
	if got := tr.Translate(s, ctx); len(got) != 0 {
		t.Fatalf("expected slow release ignored, got %#v", got)
	}
}

// TestTranslator_TapClicksThroughController verifies a relative tap clicks via the gesture engine.
func TestTranslator_TapClicksThroughController(t *testing.T) {
	sched := testutil.NewManualScheduler()
	inj := &testutil.FakeInjector{}
	tr := NewTranslator()
	ctx := padContext(session.ModeRelative)
	handler := func(s gesture.State) any {
		if err := Apply(inj, tr.Translate(s, ctx)); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		return nil
	}
	ctrl := gesture.New(gesture.DefaultConfig(), gesture.Handlers{OnDrag: handler}, sched)
	b := ctrl.Bind()

	b.Dispatch(&gesture.Event{Type: "pointerdown", Values: gesture.Vec2{0.5, 0.5}, Buttons: 1, PointerID: 1, Time: sched.Now()})
	sched.Advance(50 * time.Millisecond)
	b.Dispatch(&gesture.Event{Type: "pointerup", Values: gesture.Vec2{0.5, 0.5}, PointerID: 1, Time: sched.Now()})

	if diff := cmp.Diff([]string{"Click"}, inj.Names()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

// TestApply_StopsOnError verifies Apply reports the failing action.
func TestApply_StopsOnError(t *testing.T) {
	err := Apply(&failingInjector{}, []Action{{Type: ActClick}, {Type: ActLeftUp}})
	if err == nil {
		t.Fatalf("expected error")
	}
}

// failingInjector fails every click.
type failingInjector struct {
	testutil.FakeInjector
}

// Click returns an error.
func (*failingInjector) Click() error {
	return errors.New("click failed")
}
