package gesture

import "time"

// DefaultDelay is the debounce window used when no delay is configured.
const DefaultDelay = 150 * time.Millisecond

// Listener receives a normalized event.
type Listener func(*Event)

// ListenerOptions are passed through to targets when listeners are attached.
type ListenerOptions struct {
	Passive bool
	Capture bool
}

// Target is something listeners can be attached to.
type Target interface {
	// AddListener registers fn for the named event and returns its remover.
	AddListener(name string, fn Listener, opts ListenerOptions) (remove func())
}

// NativeGestureTarget is a Target that may emit gesturestart/gesturechange/gestureend.
type NativeGestureTarget interface {
	Target
	SupportsNativeGestures() bool
}

// CaptureTarget can redirect a pointer's events to itself.
type CaptureTarget interface {
	SetPointerCapture(pointerID int)
	ReleasePointerCapture(pointerID int)
}

// Scheduler delivers deferred callbacks on the controller's goroutine.
type Scheduler interface {
	// AfterFunc runs fn after d. stop prevents fn from running and reports whether it was pending.
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
	// NextFrame runs fn on the next paint-aligned tick.
	NextFrame(fn func())
}

// KindConfig configures one gesture kind.
type KindConfig struct {
	Enabled bool
	// Delay overrides Config.Delay when non-zero.
	Delay time.Duration
	// Transform overrides Config.Transform for this kind.
	Transform *Transform
}

// Config configures a Controller.
type Config struct {
	Enabled bool

	Drag   KindConfig
	Dnd    KindConfig
	Move   KindConfig
	Hover  KindConfig
	Scroll KindConfig
	Wheel  KindConfig
	Pinch  KindConfig

	Delay          time.Duration
	PointerCapture bool
	NativeGestures bool

	// Target, when set, receives the merged listeners directly on Bind.
	Target Target
	// Window is the global scope used for capture-less drags.
	Window    Target
	Transform *Transform
	Listener  ListenerOptions
}

// DefaultConfig enables every kind with pointer capture and the default delay.
func DefaultConfig() Config {
	on := KindConfig{Enabled: true}
	return Config{
		Enabled:        true,
		Drag:           on,
		Dnd:            on,
		Move:           on,
		Hover:          on,
		Scroll:         on,
		Wheel:          on,
		Pinch:          on,
		Delay:          DefaultDelay,
		PointerCapture: true,
		Listener:       ListenerOptions{Passive: true},
	}
}

// Kind returns the configuration of k.
func (c *Config) Kind(k Kind) KindConfig {
	switch k {
	case KindDrag:
		return c.Drag
	case KindDnd:
		return c.Dnd
	case KindMove:
		return c.Move
	case KindHover:
		return c.Hover
	case KindScroll:
		return c.Scroll
	case KindWheel:
		return c.Wheel
	default:
		return c.Pinch
	}
}

// SetKind replaces the configuration of k.
func (c *Config) SetKind(k Kind, kc KindConfig) {
	switch k {
	case KindDrag:
		c.Drag = kc
	case KindDnd:
		c.Dnd = kc
	case KindMove:
		c.Move = kc
	case KindHover:
		c.Hover = kc
	case KindScroll:
		c.Scroll = kc
	case KindWheel:
		c.Wheel = kc
	default:
		c.Pinch = kc
	}
}

func (c *Config) enabled(k Kind) bool {
	return c.Enabled && c.Kind(k).Enabled
}

func (c *Config) delay(k Kind) time.Duration {
	if d := c.Kind(k).Delay; d > 0 {
		return d
	}
	if c.Delay > 0 {
		return c.Delay
	}
	return DefaultDelay
}

// transform resolves the transform in event, kind, config order.
func (c *Config) transform(k Kind, e *Event) *Transform {
	if e != nil && e.Transform != nil {
		return e.Transform
	}
	if t := c.Kind(k).Transform; t != nil {
		return t
	}
	return c.Transform
}

// nativeTarget reports whether native gestures are requested and the fixed target emits them.
func (c *Config) nativeTarget() bool {
	if !c.NativeGestures || c.Target == nil {
		return false
	}
	nt, ok := c.Target.(NativeGestureTarget)
	return ok && nt.SupportsNativeGestures()
}
