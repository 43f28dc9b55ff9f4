// Package layout implements the server-side screen graph: it maps cursor
// movement to the currently active screen and computes edge crossings
// between heterogeneous screen resolutions.
//
// The server screen is the origin, and at most one client occupies each
// of the four cardinal edges. Richer grid layouts (arbitrary
// client-to-client adjacency) are out of scope - Build rejects any
// Position other than the four cardinal ones.
package layout

import (
	"fmt"

	"github.com/badu/synergy"
)

// Position is the edge of the server screen a client is attached to.
type Position = synergy.Edge

const (
	Left   = synergy.EdgeLeft
	Right  = synergy.EdgeRight
	Top    = synergy.EdgeTop
	Bottom = synergy.EdgeBottom
)

// screen tracks one participant's geometry. The server's geometry is
// fixed at Build time; a client's geometry is unknown (IsZero) until its
// Info message arrives at runtime.
type screen struct {
	name string
	pos  Position // EdgeNone for the server itself
	size synergy.Size
}

// Layout is the immutable screen graph plus the mutable active-screen
// cursor the router advances on every input sample. The active-screen
// pointer is owned exclusively by whichever caller drives Move; Layout
// itself does no internal locking, so callers must single-thread access
// to one Layout (see router.Server, which is the sole owner).
type Layout struct {
	server screen
	byEdge map[Position]*screen
	byName map[string]*screen

	active  string // "" means the server
	cursor  synergy.Position
	seq     uint32
}

// ActiveScreen reports the name of the currently active screen, or "" for
// the server.
func (l *Layout) ActiveScreen() string { return l.active }

// CursorPos reports the cursor's position local to the active screen.
func (l *Layout) CursorPos() synergy.Position { return l.cursor }

// ServerSize reports the server screen's geometry.
func (l *Layout) ServerSize() synergy.Size { return l.server.size }

// ScreenSize reports the geometry last recorded for name, or the zero Size
// if unknown (a client that has not yet sent its Info).
func (l *Layout) ScreenSize(name string) synergy.Size {
	if s, ok := l.byName[name]; ok {
		return s.size
	}
	return synergy.Size{}
}

// HasClient reports whether name is a client known to this layout.
func (l *Layout) HasClient(name string) bool {
	_, ok := l.byName[name]
	return ok
}

// SetScreenGeometry records a client's reported width/height, learned at
// runtime from its Info message (never known at Build time).
func (l *Layout) SetScreenGeometry(name string, size synergy.Size) error {
	s, ok := l.byName[name]
	if !ok {
		return &Error{Kind: ErrUnknownClient, Detail: fmt.Sprintf("unknown client %q", name)}
	}
	s.size = size
	return nil
}

// MoveResult describes the outcome of one Move call.
type MoveResult struct {
	// Pos is the cursor's new position, local to ActiveScreen after the
	// move (which may differ from the screen active before the call).
	Pos synergy.Position
	// PreviousActive is the screen that was active before this call ("" =
	// server). Equal to ActiveScreen when no crossing occurred.
	PreviousActive string
	// ActiveScreen is the screen active after this call ("" = server).
	ActiveScreen string
	// Crossed is true when ActiveScreen != PreviousActive.
	Crossed bool
	// Seq is the sequence number stamped on the CursorEnter the router
	// should emit; only meaningful when Crossed is true and ActiveScreen
	// is remote (non-empty).
	Seq uint32
	// Clamped is true when the cursor hit a screen edge with no neighbour
	// and was clamped rather than crossing.
	Clamped bool
}

// Move advances the cursor by (dx, dy) on the currently active screen,
// crossing onto a neighbour when the new position exits through an edge
// that has one, or clamping to the edge otherwise.
func (l *Layout) Move(dx, dy int) MoveResult {
	prev := l.active
	size := l.activeSize()

	newX := int(l.cursor.X) + dx
	newY := int(l.cursor.Y) + dy

	edge, parallel := exitEdge(newX, newY, size)
	if edge == synergy.EdgeNone {
		l.cursor = synergy.NewPosition(newX, newY)
		return MoveResult{Pos: l.cursor, PreviousActive: prev, ActiveScreen: l.active}
	}

	neighbourName, neighbourSize, ok := l.neighbourAcross(edge)
	if !ok {
		// No neighbour on that edge: clamp and stay put.
		clampedX, clampedY := newX, newY
		if edge == synergy.EdgeLeft {
			clampedX = 0
		} else if edge == synergy.EdgeRight {
			clampedX = int(size.Width) - 1
		}
		if edge == synergy.EdgeTop {
			clampedY = 0
		} else if edge == synergy.EdgeBottom {
			clampedY = int(size.Height) - 1
		}
		l.cursor = synergy.NewPosition(clampedX, clampedY)
		return MoveResult{Pos: l.cursor, PreviousActive: prev, ActiveScreen: l.active, Clamped: true}
	}

	entryEdge := edge.Opposite()
	destPos := mapAcrossEdge(entryEdge, parallel, size, neighbourSize)

	l.active = neighbourName
	l.cursor = destPos
	l.seq++

	return MoveResult{
		Pos:            l.cursor,
		PreviousActive: prev,
		ActiveScreen:   l.active,
		Crossed:        true,
		Seq:            l.seq,
	}
}

// activeSize returns the geometry of whichever screen is currently active.
func (l *Layout) activeSize() synergy.Size {
	if l.active == "" {
		return l.server.size
	}
	return l.byName[l.active].size
}

// exitEdge reports which edge (if any) the point (x, y) has exited
// through relative to size, and the coordinate along the axis parallel to
// that edge (the value that gets proportionally remapped on crossing).
func exitEdge(x, y int, size synergy.Size) (edge synergy.Edge, parallel int) {
	switch {
	case x < 0:
		return synergy.EdgeLeft, y
	case x >= int(size.Width):
		return synergy.EdgeRight, y
	case y < 0:
		return synergy.EdgeTop, x
	case y >= int(size.Height):
		return synergy.EdgeBottom, x
	default:
		return synergy.EdgeNone, 0
	}
}

// neighbourAcross reports the screen attached across edge from whichever
// screen is currently active. In the star topology only two cases exist:
// the server has a neighbour on each of its four edges; a client has
// exactly one neighbour, the server, reachable only through the edge
// opposite the one it was attached on.
func (l *Layout) neighbourAcross(edge synergy.Edge) (name string, size synergy.Size, ok bool) {
	if l.active == "" {
		s, ok := l.byEdge[edge]
		if !ok {
			return "", synergy.Size{}, false
		}
		return s.name, s.size, true
	}
	current := l.byName[l.active]
	if edge != current.pos.Opposite() {
		return "", synergy.Size{}, false
	}
	return "", l.server.size, true
}

// mapAcrossEdge computes the entry point on the destination screen: the
// axis perpendicular to entryEdge is fixed to the entry edge's coordinate
// (0 or dimension-1); the axis parallel to it is proportionally remapped
// from the source screen's corresponding dimension to the destination's.
func mapAcrossEdge(entryEdge synergy.Edge, parallel int, srcSize, destSize synergy.Size) synergy.Position {
	switch entryEdge {
	case synergy.EdgeLeft:
		y := roundProportion(parallel, int(srcSize.Height), int(destSize.Height))
		return synergy.NewPosition(0, y)
	case synergy.EdgeRight:
		y := roundProportion(parallel, int(srcSize.Height), int(destSize.Height))
		return synergy.NewPosition(int(destSize.Width)-1, y)
	case synergy.EdgeTop:
		x := roundProportion(parallel, int(srcSize.Width), int(destSize.Width))
		return synergy.NewPosition(x, 0)
	case synergy.EdgeBottom:
		x := roundProportion(parallel, int(srcSize.Width), int(destSize.Width))
		return synergy.NewPosition(x, int(destSize.Height)-1)
	default:
		return synergy.Position{}
	}
}

// roundProportion maps val from the range [0, srcLen) to [0, destLen),
// rounding to the nearest integer (half away from zero), using only
// integer arithmetic.
func roundProportion(val, srcLen, destLen int) int {
	if srcLen == 0 {
		return 0
	}
	num := val*destLen*2 + srcLen
	return synergy.Clamp(num/(2*srcLen), 0, synergy.Max(destLen-1, 0))
}
