package layout_test

import (
	"errors"
	"testing"

	"github.com/badu/synergy"
	"github.com/badu/synergy/layout"
)

func TestDuplicatePositionRejected(t *testing.T) {
	b := layout.NewBuilder(1920, 1080)
	b.AddClient("a", layout.Left)
	b.AddClient("b", layout.Left)
	_, err := b.Build()
	assertKind(t, err, layout.ErrEdgeOverlap)
}

func TestDuplicateNameRejected(t *testing.T) {
	b := layout.NewBuilder(1920, 1080)
	b.AddClient("a", layout.Left)
	b.AddClient("a", layout.Right)
	_, err := b.Build()
	assertKind(t, err, layout.ErrDuplicateName)
}

func TestEdgeCrossingExample(t *testing.T) {
	b := layout.NewBuilder(1920, 1080)
	b.AddClient("L", layout.Left)
	l, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := l.SetScreenGeometry("L", synergy.NewSize(1280, 800)); err != nil {
		t.Fatalf("set geometry: %v", err)
	}

	l.Move(0, 540) // position the cursor at (0, 540) from (0, 0)
	res := l.Move(-1, 0)

	if !res.Crossed || res.ActiveScreen != "L" {
		t.Fatalf("expected crossing onto L, got %#v", res)
	}
	if res.Pos.X != 1279 || res.Pos.Y != 400 {
		t.Fatalf("got pos %v, want (1279,400)", res.Pos)
	}
	if res.Seq != 1 {
		t.Fatalf("got seq %d, want 1", res.Seq)
	}
}

func TestClampWithNoNeighbour(t *testing.T) {
	b := layout.NewBuilder(1920, 1080)
	l, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	res := l.Move(-5, 0)
	if res.Crossed {
		t.Fatalf("expected no crossing, got %#v", res)
	}
	if !res.Clamped || res.Pos.X != 0 {
		t.Fatalf("expected clamp to x=0, got %#v", res)
	}
}

func TestCrossingBackToServer(t *testing.T) {
	b := layout.NewBuilder(1920, 1080)
	b.AddClient("L", layout.Left)
	l, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := l.SetScreenGeometry("L", synergy.NewSize(1280, 800)); err != nil {
		t.Fatalf("set geometry: %v", err)
	}
	l.Move(0, 540)
	l.Move(-1, 0) // now active = L, at (1279, 400)

	res := l.Move(1280, 0) // walk back across L's right edge
	if !res.Crossed || res.ActiveScreen != "" {
		t.Fatalf("expected crossing back to server, got %#v", res)
	}
}

func assertKind(t *testing.T, err error, kind layout.Kind) {
	t.Helper()
	var layoutErr *layout.Error
	if !errors.As(err, &layoutErr) {
		t.Fatalf("got %v, want *layout.Error", err)
	}
	if layoutErr.Kind != kind {
		t.Fatalf("got kind %v, want %v", layoutErr.Kind, kind)
	}
}
