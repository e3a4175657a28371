// Package main shows live gesture states for mouse input in a terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/frudas24/deskgesture/internal/config"
	"github.com/frudas24/deskgesture/internal/gesture"
	"github.com/frudas24/deskgesture/internal/loop"
	"github.com/frudas24/deskgesture/internal/surface"
)

func main() {
	gesturesPath := flag.String("gestures", "", "gesture settings YAML (defaults when empty)")
	frameMs := flag.Int("frame-ms", 16, "frame interval in milliseconds")
	flag.Parse()

	settings := config.DefaultGestures()
	if *gesturesPath != "" {
		g, err := config.LoadGestures(*gesturesPath)
		if err != nil {
			log.Fatalf("load gestures: %v", err)
		}
		settings = g
	}
	if err := run(settings, time.Duration(*frameMs)*time.Millisecond); err != nil {
		log.Fatalf("gestureterm: %v", err)
	}
}

// run owns the terminal until q, Escape or Ctrl+C.
func run(settings config.Gestures, frame time.Duration) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("new screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	lp := loop.New(frame)
	v := newView(screen)
	pad := surface.NewElement("pad", surface.FullPad)
	router := surface.NewRouter(pad, surface.NewElement("window", surface.FullPad))

	cfg := settings.Engine()
	cfg.Target = pad
	cfg.Window = router.Window()
	engine := gesture.New(cfg, gesture.Handlers{
		OnDrag:   v.record,
		OnMove:   v.record,
		OnHover:  v.record,
		OnScroll: v.record,
		OnWheel:  v.record,
		OnPinch:  v.record,
	}, lp)
	engine.Bind()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return lp.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return poll(screen, lp, router, engine, v)
	})
	return g.Wait()
}

// poll reads terminal events and hands them to the loop.
func poll(screen tcell.Screen, lp *loop.Loop, router *surface.Router, engine *gesture.Controller, v *view) error {
	start := time.Now()
	pad := &termPad{}
	pad.resize(screen.Size())
	lp.Post(v.draw)

	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			w, h := ev.Size()
			pad.resize(w, h)
			screen.Sync()
			lp.Post(v.draw)
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC, ev.Rune() == 'q':
				return nil
			case ev.Rune() == 'c':
				lp.Post(func() { cancelAll(engine) })
			}
		case *tcell.EventMouse:
			events := pad.events(ev, time.Since(start))
			lp.Post(func() {
				for _, e := range events {
					router.Route(e)
				}
				v.draw()
			})
		}
	}
}

// cancelAll cancels every running gesture.
func cancelAll(engine *gesture.Controller) {
	st := engine.State()
	for _, key := range []gesture.StateKey{gesture.KeyDrag, gesture.KeyMove, gesture.KeyScroll, gesture.KeyWheel, gesture.KeyPinch} {
		if cancel := st.Slot(key).Cancel; cancel != nil {
			cancel()
		}
	}
}
