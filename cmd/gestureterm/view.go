package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/frudas24/deskgesture/internal/gesture"
)

var (
	styleTitle  = tcell.StyleDefault.Bold(true)
	styleActive = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleIdle   = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// view renders one status line per gesture kind. It is only used on the loop goroutine.
type view struct {
	screen tcell.Screen
	last   map[gesture.Kind]gesture.State
	calls  map[gesture.Kind]int
}

func newView(screen tcell.Screen) *view {
	return &view{
		screen: screen,
		last:   make(map[gesture.Kind]gesture.State),
		calls:  make(map[gesture.Kind]int),
	}
}

// record stores the latest state for its kind.
func (v *view) record(s gesture.State) any {
	v.last[s.Kind] = s
	v.calls[s.Kind]++
	return nil
}

// draw repaints the whole screen.
func (v *view) draw() {
	v.screen.Clear()
	v.put(0, 0, styleTitle, "deskgesture terminal pad   drag, hover or scroll with the mouse   c cancel   q quit")
	row := 2
	for _, k := range gesture.AllKinds() {
		s, ok := v.last[k]
		style := styleIdle
		line := fmt.Sprintf("%-6s idle", k)
		if ok {
			if s.Active {
				style = styleActive
			}
			line = statusLine(s, v.calls[k])
		}
		v.put(0, row, style, line)
		row++
	}
	v.screen.Show()
}

func (v *view) put(x, y int, style tcell.Style, text string) {
	for _, r := range text {
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// statusLine formats a state for display.
func statusLine(s gesture.State, calls int) string {
	phase := "change"
	switch {
	case s.Canceled:
		phase = "canceled"
	case s.First:
		phase = "start"
	case s.Last:
		phase = "end"
	}
	return fmt.Sprintf("%-6s %-8s #%-5d values=(%.3f, %.3f) delta=(%.3f, %.3f) v=%.4f",
		s.Kind, phase, calls, s.Values[0], s.Values[1], s.Delta[0], s.Delta[1], s.Velocity)
}
