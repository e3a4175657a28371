package calib

import "testing"

// TestNormalizeRect_Positive verifies Normalize keeps positive sizes intact.
func TestNormalizeRect_Positive(t *testing.T) {
	in := Rect{X: 1, Y: 2, W: 3, H: 4}
	out := Normalize(in)
	if out != in {
		t.Fatalf("expected %+v, got %+v", in, out)
	}
}

// TestNormalizeRect_NegativeDims verifies Normalize flips negative sizes.
func TestNormalizeRect_NegativeDims(t *testing.T) {
	in := Rect{X: 10, Y: 20, W: -5, H: -6}
	out := Normalize(in)
	want := Rect{X: 5, Y: 14, W: 5, H: 6}
	if out != want {
		t.Fatalf("expected %+v, got %+v", want, out)
	}
}

// TestContains_EdgesAndOutside verifies edges are inside and outer points are not.
func TestContains_EdgesAndOutside(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 5, H: 4}
	if !Contains(r, 10, 20) || !Contains(r, 15, 24) {
		t.Fatalf("expected edges to be inside rect")
	}
	if Contains(r, 9, 20) || Contains(r, 16, 25) {
		t.Fatalf("expected point to be outside rect")
	}
}

// TestWithin_EmptyAreaUsesOuter verifies an empty area selects the whole monitor.
func TestWithin_EmptyAreaUsesOuter(t *testing.T) {
	outer := Rect{X: 1920, Y: 0, W: 1280, H: 1024}
	if got := Within(outer, Rect{}); got != outer {
		t.Fatalf("expected %+v, got %+v", outer, got)
	}
}

// TestWithin_OffsetsAndClips verifies the area is offset by the monitor origin and clipped.
func TestWithin_OffsetsAndClips(t *testing.T) {
	outer := Rect{X: 100, Y: 50, W: 400, H: 300}
	got := Within(outer, Rect{X: 300, Y: 200, W: 200, H: 200})
	want := Rect{X: 400, Y: 250, W: 100, H: 100}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

// TestWithin_DisjointFallsBack verifies an area outside the monitor falls back to the monitor.
func TestWithin_DisjointFallsBack(t *testing.T) {
	outer := Rect{X: 0, Y: 0, W: 100, H: 100}
	if got := Within(outer, Rect{X: 200, Y: 200, W: 10, H: 10}); got != outer {
		t.Fatalf("expected fallback to %+v, got %+v", outer, got)
	}
}
