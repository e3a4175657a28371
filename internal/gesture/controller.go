package gesture

import (
	"log"
	"sort"
	"sync/atomic"
)

var debugLogging atomic.Bool

// SetDebugLogging toggles verbose gesture logs.
func SetDebugLogging(enabled bool) {
	debugLogging.Store(enabled)
}

// binding is one event listener declared by a recognizer.
type binding struct {
	name string
	fn   Listener
}

type windowListener struct {
	name   string
	remove func()
}

type timer struct {
	stop func() bool
}

// Binding is the result of Controller.Bind.
type Binding struct {
	// Listeners maps event names to merged listeners. Nil when a fixed target is configured.
	Listeners map[string]Listener
	// Teardown detaches everything. Always non-nil.
	Teardown func()
}

// Dispatch delivers e to the merged listener for its type, if any.
func (b Binding) Dispatch(e *Event) {
	if fn := b.Listeners[e.Type]; fn != nil {
		fn(e)
	}
}

// Controller owns the gesture state and routes recognizer output to handlers.
// It is not safe for concurrent use; all calls and scheduler callbacks must run on one goroutine.
type Controller struct {
	cfg      Config
	handlers Handlers
	sched    Scheduler

	state *StateObject
	args  []any

	timeouts        map[StateKey]*timer
	windowListeners map[StateKey][]windowListener
	bindings        []binding
	detach          []func()

	recognizers map[string]recognizer
	// generation changes on Clean; frame callbacks from an older generation are dropped.
	generation uint64
}

// New returns a controller. sched must not be nil.
func New(cfg Config, handlers Handlers, sched Scheduler) *Controller {
	return &Controller{
		cfg:             cfg,
		handlers:        handlers,
		sched:           sched,
		state:           newStateObject(),
		timeouts:        make(map[StateKey]*timer),
		windowListeners: make(map[StateKey][]windowListener),
		recognizers:     make(map[string]recognizer),
	}
}

// State returns the current state snapshot.
func (c *Controller) State() *StateObject {
	return c.state
}

// Config returns the active configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// SetConfig replaces the configuration. Call Bind afterwards to apply target changes.
func (c *Controller) SetConfig(cfg Config) {
	c.cfg = cfg
}

// SetHandlers replaces the handler set. Call Bind afterwards to apply it.
func (c *Controller) SetHandlers(h Handlers) {
	c.handlers = h
}

// Bind builds the dispatch table for the requested kinds. args are copied into every gesture state.
func (c *Controller) Bind(args ...any) Binding {
	c.detachTarget()
	c.bindings = nil
	c.args = args

	kinds := c.handlers.Kinds()
	if len(kinds) == 0 {
		return Binding{Listeners: map[string]Listener{}, Teardown: func() {}}
	}
	for _, k := range kinds {
		for _, r := range c.recognizersFor(k) {
			c.bindings = append(c.bindings, r.bindings()...)
		}
	}

	merged := c.merge()
	if debugLogging.Load() {
		log.Printf("gesture: bound kinds=%v events=%d target=%t", kinds, len(merged), c.cfg.Target != nil)
	}
	if c.cfg.Target == nil {
		return Binding{Listeners: merged, Teardown: c.Clean}
	}
	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c.detach = append(c.detach, c.cfg.Target.AddListener(name, merged[name], c.cfg.Listener))
	}
	return Binding{Teardown: c.Clean}
}

// Clean detaches target listeners, stops every timer and removes every window listener.
// Running gestures are closed without calling handlers so a later Bind starts from idle.
func (c *Controller) Clean() {
	c.generation++
	c.detachTarget()
	for key, t := range c.timeouts {
		t.stop()
		delete(c.timeouts, key)
	}
	for key := range c.windowListeners {
		c.removeWindowListeners(key)
	}
	c.closeSlots()
}

// closeSlots ends every active slot silently and releases a held pointer capture.
func (c *Controller) closeSlots() {
	next := *c.state
	closed := false
	for _, key := range stateKeys {
		g := next.slot(key)
		if !g.Active {
			continue
		}
		if key == KeyDrag && g.source == sourcePointer && g.Target != nil && c.cfg.PointerCapture {
			g.Target.ReleasePointerCapture(g.PointerID)
		}
		endPatch(nil)(g)
		switch key {
		case KeyDrag:
			next.Dragging, next.Down = false, false
			next.Buttons, next.Touches = 0, 0
		case KeyMove:
			next.Moving = false
		case KeyScroll:
			next.Scrolling = false
		case KeyWheel:
			next.Wheeling = false
		case KeyPinch:
			next.Pinching, next.Down = false, false
			next.Touches = 0
		}
		closed = true
	}
	if closed {
		c.state = &next
	}
}

func (c *Controller) detachTarget() {
	for _, fn := range c.detach {
		fn()
	}
	c.detach = nil
}

// merge chains listeners sharing an event name in registration order.
func (c *Controller) merge() map[string]Listener {
	grouped := make(map[string][]Listener)
	for _, b := range c.bindings {
		grouped[b.name] = append(grouped[b.name], b.fn)
	}
	merged := make(map[string]Listener, len(grouped))
	for name, fns := range grouped {
		if len(fns) == 1 {
			merged[name] = fns[0]
			continue
		}
		chain := fns
		merged[name] = func(e *Event) {
			for _, fn := range chain {
				fn(e)
			}
		}
	}
	return merged
}

// recognizersFor returns the stable recognizer instances serving k.
func (c *Controller) recognizersFor(k Kind) []recognizer {
	switch k {
	case KindDrag:
		return []recognizer{c.recognizer("drag", func() recognizer { return newDrag(c) })}
	case KindDnd:
		return []recognizer{c.recognizer("dnd", func() recognizer { return newDnd(c) })}
	case KindMove:
		return []recognizer{c.recognizer("move", func() recognizer { return newMove(c) })}
	case KindHover:
		return []recognizer{c.recognizer("hover", func() recognizer { return newHover(c) })}
	case KindScroll:
		return []recognizer{c.recognizer("scroll", func() recognizer { return newScroll(c) })}
	case KindWheel:
		return []recognizer{c.recognizer("wheel", func() recognizer { return newWheel(c) })}
	default:
		if c.cfg.nativeTarget() {
			return []recognizer{c.recognizer("pinch-native", func() recognizer { return newNativePinch(c) })}
		}
		return []recognizer{
			c.recognizer("pinch", func() recognizer { return newPinch(c) }),
			c.recognizer("pinch-wheel", func() recognizer { return newWheelPinch(c) }),
		}
	}
}

func (c *Controller) recognizer(id string, build func() recognizer) recognizer {
	r, ok := c.recognizers[id]
	if !ok {
		r = build()
		c.recognizers[id] = r
	}
	return r
}

// updateState publishes a new state object with the patches applied and fires handlers when flag is set.
func (c *Controller) updateState(shared func(*Shared), gesture func(*GestureState), kind Kind, flag Flag) {
	next := *c.state
	if shared != nil {
		shared(&next.Shared)
	}
	if gesture != nil {
		gesture(next.slot(kind.StateKey()))
	}
	c.state = &next
	if flag != FlagNone {
		c.fireGestureHandler(kind, flag)
	}
}

// fireGestureHandler invokes the handlers of kind for flag.
func (c *Controller) fireGestureHandler(kind Kind, flag Flag) {
	start, main, end := c.handlers.forKind(kind)
	view := c.view(kind)

	if flag == FlagStart && start != nil {
		start(view)
	}
	if main != nil {
		if temp := main(view); temp != nil {
			next := *c.state
			next.slot(kind.StateKey()).Temp = temp
			c.state = &next
			view.Temp = temp
		}
	}
	if flag == FlagEnd && end != nil {
		end(view)
	}
}

// view builds the handler view of kind including legacy aliases.
func (c *Controller) view(kind Kind) State {
	v := State{
		Shared:       c.state.Shared,
		GestureState: c.state.Slot(kind.StateKey()),
		Kind:         kind,
	}
	if kind.angular() {
		v.DA, v.VdVa = v.Values, v.Velocities
	} else {
		v.XY, v.VxVy = v.Values, v.Velocities
	}
	return v
}

// setTimeout schedules fn under key, replacing any pending timer.
func (c *Controller) setTimeout(key StateKey, kind Kind, fn func()) {
	c.clearTimeout(key)
	t := &timer{}
	t.stop = c.sched.AfterFunc(c.cfg.delay(kind), func() {
		if c.timeouts[key] == t {
			delete(c.timeouts, key)
		}
		fn()
	})
	c.timeouts[key] = t
}

func (c *Controller) clearTimeout(key StateKey) {
	if t, ok := c.timeouts[key]; ok {
		t.stop()
		delete(c.timeouts, key)
	}
}

// addWindowListeners attaches listeners to the window scope under key, replacing earlier ones.
func (c *Controller) addWindowListeners(key StateKey, listeners []binding) {
	if c.cfg.Window == nil {
		return
	}
	c.removeWindowListeners(key)
	entries := make([]windowListener, 0, len(listeners))
	for _, l := range listeners {
		entries = append(entries, windowListener{
			name:   l.name,
			remove: c.cfg.Window.AddListener(l.name, l.fn, c.cfg.Listener),
		})
	}
	c.windowListeners[key] = entries
}

// removeWindowListeners detaches listeners registered under key.
func (c *Controller) removeWindowListeners(key StateKey) {
	for _, l := range c.windowListeners[key] {
		l.remove()
	}
	delete(c.windowListeners, key)
}
