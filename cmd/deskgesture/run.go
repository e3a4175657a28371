// Package main starts the DeskGesture server.
package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/frudas24/deskgesture/internal/app"
	"github.com/frudas24/deskgesture/internal/config"
	"github.com/frudas24/deskgesture/internal/gesture"
	"github.com/frudas24/deskgesture/internal/loop"
	"github.com/frudas24/deskgesture/internal/monitor"
	"github.com/frudas24/deskgesture/internal/session"
	"github.com/frudas24/deskgesture/internal/signaling"
	"github.com/frudas24/deskgesture/internal/webrtc"
	"github.com/frudas24/deskgesture/internal/wininput"
)

// fallbackMonitor stands in for the desktop when displays cannot be enumerated.
var fallbackMonitor = monitor.Monitor{Index: 1, W: 1920, H: 1080, Primary: true}

// run wires the application and blocks until shutdown.
func run(debug bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	webrtc.SetDebugLogging(debug)
	gesture.SetDebugLogging(debug)
	wininput.SetDryRunLogging(debug)
	if debug {
		log.Printf("debug: enabled")
	}
	logStartup(cfg)

	gestures, err := config.LoadGestures(cfg.GesturesPath)
	if err != nil {
		return err
	}
	sess := session.New(cfg.UIPassword)
	sess.SetGestures(gestures)

	injector, err := wininput.NewInjector()
	if err != nil {
		if injector == nil {
			return err
		}
		log.Printf("input injection: dry run (%v)", err)
	}

	lp := loop.New(time.Duration(cfg.FrameMs) * time.Millisecond)
	appInstance, err := app.New(cfg, sess, lp, injector, listMonitors, signaling.ClientReplace)
	if err != nil {
		return err
	}
	if err := appInstance.Start(); err != nil {
		return err
	}

	mux := http.NewServeMux()
	appInstance.RegisterRoutes(mux, "")
	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return lp.Run(ctx)
	})
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := appInstance.Stop(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// listMonitors enumerates displays, falling back to a single virtual monitor.
func listMonitors() ([]monitor.Monitor, error) {
	list, err := monitor.ListMonitors()
	if err != nil || len(list) == 0 {
		if err != nil {
			log.Printf("monitor enumeration: %v; using %dx%d", err, fallbackMonitor.W, fallbackMonitor.H)
		}
		return []monitor.Monitor{fallbackMonitor}, nil
	}
	return list, nil
}

// logFatal prints and exits for startup failures.
func logFatal(err error) {
	log.Printf("fatal: %v", err)
	os.Exit(1)
}

// logStartup prints startup checks and connection info.
func logStartup(cfg config.Config) {
	log.Printf("DeskGesture starting")
	logEnvStatus(cfg)
	log.Printf("pad mode: %s", cfg.Mode)
	if cfg.WebRTCEnabled {
		log.Printf("webrtc input: enabled (ice servers: %d)", len(cfg.ICEServers))
	} else {
		log.Printf("webrtc input: disabled")
	}
	logListenStatus(cfg.ListenAddr)
}

// logEnvStatus reports whether a .env file was found and required values are set.
func logEnvStatus(cfg config.Config) {
	envPath := filepath.Join(cfg.DataDir, ".env")
	if fileExists(envPath) {
		log.Printf("env check: ok (%s)", envPath)
	} else {
		log.Printf("env check: missing (%s)", envPath)
	}
	if strings.TrimSpace(os.Getenv("UI_PASSWORD")) == "" {
		log.Printf("env UI_PASSWORD: from .env")
	} else {
		log.Printf("env UI_PASSWORD: set")
	}
	if fileExists(cfg.GesturesPath) {
		log.Printf("gestures: %s", cfg.GesturesPath)
	} else {
		log.Printf("gestures: defaults (%s missing)", cfg.GesturesPath)
	}
}

// logListenStatus reports the listen address and a local URL helper.
func logListenStatus(addr string) {
	log.Printf("listen addr: %s", addr)
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	log.Printf("local url: http://%s", net.JoinHostPort(host, port))
}

// fileExists reports whether a path exists and is a file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
