// Package app wires HTTP, signaling, the gesture engine and input injection together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/frudas24/deskgesture/internal/calib"
	"github.com/frudas24/deskgesture/internal/config"
	"github.com/frudas24/deskgesture/internal/control"
	"github.com/frudas24/deskgesture/internal/feed"
	"github.com/frudas24/deskgesture/internal/gesture"
	"github.com/frudas24/deskgesture/internal/loop"
	"github.com/frudas24/deskgesture/internal/monitor"
	"github.com/frudas24/deskgesture/internal/session"
	"github.com/frudas24/deskgesture/internal/signaling"
	"github.com/frudas24/deskgesture/internal/surface"
	"github.com/frudas24/deskgesture/internal/webrtc"
	"github.com/frudas24/deskgesture/internal/wininput"
)

// App coordinates the HTTP API, websocket servers and the gesture engine.
// The engine, router and translator are only touched on the loop goroutine.
type App struct {
	mu           sync.Mutex
	cfg          config.Config
	session      *session.Session
	loop         *loop.Loop
	injector     wininput.Injector
	listMonitors control.MonitorProvider
	monitors     []monitor.Monitor
	defaults     config.Gestures

	host      *webrtc.Host
	signaling *signaling.Server
	control   *control.Server
	feed      *feed.Stream

	router     *surface.Router
	engine     *gesture.Controller
	binding    gesture.Binding
	translator *control.Translator
	lastErr    string
}

// New creates a new application with its dependencies wired.
func New(cfg config.Config, sess *session.Session, lp *loop.Loop, injector wininput.Injector, listMonitors control.MonitorProvider, policy signaling.ClientPolicy) (*App, error) {
	if sess == nil {
		return nil, errors.New("session is required")
	}
	if lp == nil {
		return nil, errors.New("loop is required")
	}
	if injector == nil {
		return nil, errors.New("injector is required")
	}
	if listMonitors == nil {
		return nil, errors.New("monitor provider is required")
	}

	app := &App{
		cfg:          cfg,
		session:      sess,
		loop:         lp,
		injector:     injector,
		listMonitors: listMonitors,
		defaults:     sess.Gestures(),
		feed:         feed.NewStream(time.Duration(cfg.FeedIntervalMs) * time.Millisecond),
		translator:   control.NewTranslator(),
	}
	if r, ok := injector.(wininput.CursorReader); ok {
		app.translator.SetCursorReader(r)
	}

	pad := surface.NewElement("pad", surface.FullPad)
	app.router = surface.NewRouter(pad, surface.NewElement("window", surface.FullPad))
	app.engine = gesture.New(app.engineConfig(sess.Gestures()), app.handlers(), lp)
	app.binding = app.engine.Bind()

	app.control = control.NewServer(sess, app.route, app.onChange, func(c calib.Calib) error {
		return calib.Save(cfg.CalibPath, c)
	})

	if cfg.WebRTCEnabled {
		host, err := webrtc.NewHost(cfg.ICEServers, app.handleRaw)
		if err != nil {
			return nil, fmt.Errorf("webrtc host: %w", err)
		}
		app.host = host
		app.signaling = signaling.NewServer(host, policy, sess.IsAuthenticated)
	}

	return app, nil
}

// Start loads monitors and calibration into the session.
func (a *App) Start() error {
	monitors, err := a.listMonitors()
	if err != nil {
		return fmt.Errorf("list monitors: %w", err)
	}
	a.mu.Lock()
	a.monitors = monitors
	a.mu.Unlock()

	c, err := calib.Load(a.cfg.CalibPath)
	if err != nil {
		return err
	}
	a.session.SetCalib(c)

	monitorIndex := a.cfg.MonitorIndex
	if c.MonitorIndex > 0 {
		monitorIndex = c.MonitorIndex
	}
	a.session.SetMonitor(monitorIndex)
	a.session.SetMode(a.cfg.Mode)
	return nil
}

// Stop detaches the engine, releases held buttons and closes the peer.
func (a *App) Stop(ctx context.Context) error {
	shutdown := func() {
		a.binding.Teardown()
		a.applyActions(a.translator.Release())
	}
	if err := a.loop.Do(ctx, shutdown); err != nil {
		if !errors.Is(err, loop.ErrStopped) {
			return err
		}
		// the loop is gone so nothing else touches the engine
		shutdown()
	}
	if a.host != nil {
		a.host.ClosePeer()
	}
	return nil
}

// ApplyGestures validates, applies and persists new gesture settings.
func (a *App) ApplyGestures(ctx context.Context, g config.Gestures) error {
	if err := g.Validate(); err != nil {
		return err
	}
	a.session.SetGestures(g)
	if err := a.loop.Do(ctx, func() {
		a.engine.SetConfig(a.engineConfig(g))
		a.binding = a.engine.Bind()
	}); err != nil {
		return err
	}
	if a.cfg.GesturesPath == "" {
		return nil
	}
	return config.SaveGestures(a.cfg.GesturesPath, g)
}

// ListMonitors returns the cached monitor list.
func (a *App) ListMonitors() ([]monitor.Monitor, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]monitor.Monitor, len(a.monitors))
	copy(out, a.monitors)
	return out, nil
}

// Signaling returns the signaling websocket handler, nil when WebRTC is disabled.
func (a *App) Signaling() *signaling.Server {
	return a.signaling
}

// Control returns the control websocket handler.
func (a *App) Control() *control.Server {
	return a.control
}

// Feed returns the gesture event stream.
func (a *App) Feed() *feed.Stream {
	return a.feed
}

// engineConfig binds gesture settings to the pad surface.
func (a *App) engineConfig(g config.Gestures) gesture.Config {
	cfg := g.Engine()
	pad := a.router.Pad()
	pad.SetNativeGestures(g.NativePinch)
	cfg.Target = pad
	cfg.Window = a.router.Window()
	return cfg
}

// handlers sends every handler call to the translator and the feed.
func (a *App) handlers() gesture.Handlers {
	h := a.onGesture
	return gesture.Handlers{
		OnDrag:   h,
		OnDnd:    h,
		OnMove:   h,
		OnHover:  h,
		OnScroll: h,
		OnWheel:  h,
		OnPinch:  h,
	}
}

// onGesture runs on the loop for every main handler call.
func (a *App) onGesture(s gesture.State) any {
	a.applyActions(a.translator.Translate(s, a.context()))
	if err := a.feed.Publish(feed.FrameFromState(s)); err != nil {
		log.Printf("feed: %v", err)
	}
	return nil
}

// context snapshots the session into a translation context.
func (a *App) context() control.Context {
	snap := a.session.Snapshot()
	monitors, _ := a.ListMonitors()
	area, err := control.ResolveArea(snap.Calib, snap.MonitorIndex, monitors)
	if err != nil {
		a.reportErr(err)
	}
	return control.Context{
		InputEnabled: snap.InputEnabled,
		Mode:         snap.Mode,
		Area:         area,
		Settings:     snap.Gestures,
	}
}

// applyActions injects actions and reports failures once per distinct error.
func (a *App) applyActions(actions []control.Action) {
	if len(actions) == 0 {
		return
	}
	if err := control.Apply(a.injector, actions); err != nil {
		a.reportErr(err)
	}
}

func (a *App) reportErr(err error) {
	if msg := err.Error(); msg != a.lastErr {
		a.lastErr = msg
		log.Printf("input: %v", err)
	}
}

// route posts a decoded pad event onto the loop.
func (a *App) route(ev *gesture.Event) {
	if !a.loop.Post(func() { a.router.Route(ev) }) {
		log.Printf("input dropped: loop stopped")
	}
}

// handleRaw feeds a data channel frame through the control protocol.
func (a *App) handleRaw(data []byte) {
	if err := a.control.HandleRaw(data); err != nil {
		log.Printf("webrtc input: %v", err)
	}
}

// onChange reacts to control messages that affect running gestures.
func (a *App) onChange(reason string) {
	switch reason {
	case "cancel":
		a.loop.Post(a.cancelAll)
	case "input":
		if !a.session.InputEnabled() {
			a.loop.Post(func() { a.applyActions(a.translator.Release()) })
		}
	case "disconnect":
		a.loop.Post(func() {
			a.router.Reset()
			a.cancelAll()
		})
	}
}

// cancelAll cancels every active gesture.
func (a *App) cancelAll() {
	st := a.engine.State()
	for _, key := range []gesture.StateKey{gesture.KeyDrag, gesture.KeyMove, gesture.KeyScroll, gesture.KeyWheel, gesture.KeyPinch} {
		if cancel := st.Slot(key).Cancel; cancel != nil {
			cancel()
		}
	}
	a.applyActions(a.translator.Release())
}
