package ebiteninput

import (
	"sort"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/frudas24/deskgesture/internal/gesture"
)

// Read samples the current ebiten input state. Call it from Game.Update.
func Read(width, height int, touchIDs []ebiten.TouchID) (Snapshot, []ebiten.TouchID) {
	mx, my := ebiten.CursorPosition()
	s := Snapshot{
		Size:   gesture.Vec2{float64(width), float64(height)},
		Cursor: gesture.Vec2{float64(mx), float64(my)},
		Mods:   readModifiers(),
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		s.Buttons |= ButtonLeft
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		s.Buttons |= ButtonRight
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle) {
		s.Buttons |= ButtonMiddle
	}

	touchIDs = ebiten.AppendTouchIDs(touchIDs[:0])
	for _, id := range touchIDs {
		tx, ty := ebiten.TouchPosition(id)
		s.Touches = append(s.Touches, Touch{ID: int(id), Pos: gesture.Vec2{float64(tx), float64(ty)}})
	}
	sort.Slice(s.Touches, func(i, j int) bool { return s.Touches[i].ID < s.Touches[j].ID })

	wx, wy := ebiten.Wheel()
	s.Wheel = gesture.Vec2{wx, wy}
	return s, touchIDs
}

// readModifiers returns the held keyboard modifiers.
func readModifiers() gesture.Modifiers {
	return gesture.Modifiers{
		Shift: anyPressed(ebiten.KeyShift, ebiten.KeyShiftLeft, ebiten.KeyShiftRight),
		Ctrl:  anyPressed(ebiten.KeyControl, ebiten.KeyControlLeft, ebiten.KeyControlRight),
		Alt:   anyPressed(ebiten.KeyAlt, ebiten.KeyAltLeft, ebiten.KeyAltRight),
		Meta:  anyPressed(ebiten.KeyMeta, ebiten.KeyMetaLeft, ebiten.KeyMetaRight),
	}
}

func anyPressed(keys ...ebiten.Key) bool {
	for _, k := range keys {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	return false
}
