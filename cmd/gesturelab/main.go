// Package main runs a desktop window for trying gestures without a phone.
package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/frudas24/deskgesture/internal/config"
	"github.com/frudas24/deskgesture/internal/gesture"
)

const (
	screenW = 800
	screenH = 600
)

func main() {
	gesturesPath := flag.String("gestures", "", "gesture settings YAML (defaults when empty)")
	debug := flag.Bool("debug", false, "log gesture binding")
	flag.Parse()
	gesture.SetDebugLogging(*debug)

	settings := config.DefaultGestures()
	if *gesturesPath != "" {
		g, err := config.LoadGestures(*gesturesPath)
		if err != nil {
			log.Fatalf("load gestures: %v", err)
		}
		settings = g
	}

	ebiten.SetWindowSize(screenW, screenH)
	ebiten.SetWindowTitle("DeskGesture lab")
	if err := ebiten.RunGame(newLab(settings)); err != nil {
		log.Fatalf("run: %v", err)
	}
}
