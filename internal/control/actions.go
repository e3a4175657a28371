// Package control handles the pad protocol and maps gestures to desktop input.
package control

import (
	"fmt"

	"github.com/frudas24/deskgesture/internal/wininput"
)

// ActionType identifies the kind of input action to execute.
type ActionType string

const (
	// ActMove moves the mouse cursor to an absolute position.
	ActMove ActionType = "move"
	// ActMoveRel moves the mouse cursor by a delta.
	ActMoveRel ActionType = "move_rel"
	// ActLeftDown presses the left mouse button.
	ActLeftDown ActionType = "left_down"
	// ActLeftUp releases the left mouse button.
	ActLeftUp ActionType = "left_up"
	// ActClickAt performs a click at a position.
	ActClickAt ActionType = "click_at"
	// ActClick performs a click at the cursor.
	ActClick ActionType = "click"
	// ActRightClick performs a right click at the cursor.
	ActRightClick ActionType = "right_click"
	// ActWheel scrolls vertically by Y wheel units.
	ActWheel ActionType = "wheel"
	// ActHWheel scrolls horizontally by X wheel units.
	ActHWheel ActionType = "hwheel"
	// ActZoom zooms by Y wheel units.
	ActZoom ActionType = "zoom"
)

// Action describes a normalized input operation to apply.
type Action struct {
	Type ActionType
	X    int
	Y    int
}

// Apply executes actions in order and stops at the first failure.
func Apply(inj wininput.Injector, actions []Action) error {
	for _, action := range actions {
		if err := apply(inj, action); err != nil {
			return fmt.Errorf("%s: %w", action.Type, err)
		}
	}
	return nil
}

// apply executes a single action.
func apply(inj wininput.Injector, action Action) error {
	switch action.Type {
	case ActMove:
		return inj.MoveAbs(action.X, action.Y)
	case ActMoveRel:
		return inj.MoveRel(action.X, action.Y)
	case ActLeftDown:
		return inj.LeftDown()
	case ActLeftUp:
		return inj.LeftUp()
	case ActClickAt:
		return inj.ClickAt(action.X, action.Y)
	case ActClick:
		return inj.Click()
	case ActRightClick:
		return inj.RightClick()
	case ActWheel:
		return inj.Wheel(action.Y)
	case ActHWheel:
		return inj.HWheel(action.X)
	case ActZoom:
		return inj.Zoom(action.Y)
	default:
		return nil
	}
}
