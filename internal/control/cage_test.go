package control

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/frudas24/deskgesture/internal/calib"
)

// TestCageMove verifies caged moves stay inside the area and recenter stray cursors.
func TestCageMove(t *testing.T) {
	area := calib.Rect{X: 10, Y: 20, W: 30, H: 40}
	cases := []struct {
		name           string
		cx, cy, dx, dy int
		want           []Action
	}{
		{"inside", 15, 25, 3, -2, []Action{{Type: ActMove, X: 18, Y: 23}}},
		{"clamped to far edge", 35, 55, 50, 50, []Action{{Type: ActMove, X: 39, Y: 59}}},
		{"clamped to near edge", 12, 22, -50, -50, []Action{{Type: ActMove, X: 10, Y: 20}}},
		{"stray cursor recentered", 500, 500, 4, 0, []Action{{Type: ActMove, X: 25, Y: 40}, {Type: ActMove, X: 29, Y: 40}}},
	}
	for _, tc := range cases {
		got := cageMove(area, tc.cx, tc.cy, tc.dx, tc.dy)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("%s: actions mismatch (-want +got):\n%s", tc.name, diff)
		}
	}
}

// TestCageMove_FlippedArea verifies negative sizes are normalized first.
func TestCageMove_FlippedArea(t *testing.T) {
	got := cageMove(calib.Rect{X: 400, Y: 600, W: -300, H: -400}, 0, 0, 0, 0)
	want := []Action{{Type: ActMove, X: 250, Y: 400}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("actions mismatch (-want +got):\n%s", diff)
	}
}
