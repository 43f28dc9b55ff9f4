package session

import (
	"github.com/badu/synergy"
	"github.com/badu/synergy/clipboard"
	"github.com/badu/synergy/wire"
)

// EventKind names an Event variant.
type EventKind string

const (
	EventCursorEnter      EventKind = "CursorEnter"
	EventCursorLeave      EventKind = "CursorLeave"
	EventMouseMove        EventKind = "MouseMove"
	EventMouseRelMove     EventKind = "MouseRelMove"
	EventMouseButton      EventKind = "MouseButton"
	EventMouseWheel       EventKind = "MouseWheel"
	EventKeyDown          EventKind = "KeyDown"
	EventKeyUp            EventKind = "KeyUp"
	EventKeyRepeat        EventKind = "KeyRepeat"
	EventGrabClipboard    EventKind = "GrabClipboard"
	EventClipboardChanged EventKind = "ClipboardChanged"
	EventScreenSaver      EventKind = "ScreenSaver"
	EventInfo             EventKind = "Info"
	EventDisconnected     EventKind = "Disconnected"
)

// ClientEvent is the application-facing union a Session surfaces once the
// handshake completes. It is deliberately distinct from wire.Message:
// handshake and heartbeat traffic is handled internally by the FSM and
// never reaches it, per spec.md §4.2's "Connected: receive any
// event-bearing message, surface as a ClientEvent."
type ClientEvent interface {
	Kind() EventKind
}

// Event is a type alias of ClientEvent: the same union, under the name the
// server-side FSM and the router use for it.
type Event = ClientEvent

type CursorEnter struct {
	Pos  synergy.Position
	Seq  uint32
	Mask uint16
}

func (CursorEnter) Kind() EventKind { return EventCursorEnter }

type CursorLeave struct{}

func (CursorLeave) Kind() EventKind { return EventCursorLeave }

type MouseMove struct{ X, Y int16 }

func (MouseMove) Kind() EventKind { return EventMouseMove }

type MouseRelMove struct{ DX, DY int16 }

func (MouseRelMove) Kind() EventKind { return EventMouseRelMove }

type MouseButton struct {
	Press  bool
	Button uint8
}

func (MouseButton) Kind() EventKind { return EventMouseButton }

type MouseWheel struct{ XDelta, YDelta int16 }

func (MouseWheel) Kind() EventKind { return EventMouseWheel }

type KeyDown struct {
	ID     uint16
	Mask   uint16
	Button uint8
}

func (KeyDown) Kind() EventKind { return EventKeyDown }

type KeyUp struct {
	ID     uint16
	Mask   uint16
	Button uint8
}

func (KeyUp) Kind() EventKind { return EventKeyUp }

type KeyRepeat struct {
	ID     uint16
	Mask   uint16
	Button uint8
	Count  uint16
}

func (KeyRepeat) Kind() EventKind { return EventKeyRepeat }

type GrabClipboard struct {
	ID  uint8
	Seq uint32
}

func (GrabClipboard) Kind() EventKind { return EventGrabClipboard }

// ClipboardChanged mirrors clipboard.Changed; the Session surfaces it once
// the Assembler completes a transfer.
type ClipboardChanged struct {
	ID     uint8
	Seq    uint32
	Format clipboard.Format
	Data   []byte
}

func (ClipboardChanged) Kind() EventKind { return EventClipboardChanged }

type ScreenSaverChanged struct{ Active bool }

func (ScreenSaverChanged) Kind() EventKind { return EventScreenSaver }

// Info is emitted server-side when a Connected client reports its screen
// geometry again; the Info answering the handshake's QueryInfo is consumed
// by NewServerSession and not emitted. It has no client-side counterpart.
type Info struct {
	Width, Height    uint16
	WarpZone         int16
	CursorX, CursorY int16
}

func (Info) Kind() EventKind { return EventInfo }

// Disconnected is always the last event a Session emits before its Events
// channel closes.
type Disconnected struct{ Reason error }

func (Disconnected) Kind() EventKind { return EventDisconnected }

// translate maps the subset of wire.Message variants that pass through to
// the application unchanged once a session is Connected. Handshake,
// heartbeat, and clipboard chunk messages are handled by the FSM directly
// and never reach here; ok is false for anything else (including Unknown).
func translate(msg wire.Message) (Event, bool) {
	switch m := msg.(type) {
	case wire.CursorEnter:
		return CursorEnter{Pos: m.Pos, Seq: m.Seq, Mask: m.Mask}, true
	case wire.CursorLeave:
		return CursorLeave{}, true
	case wire.MouseMove:
		return MouseMove{X: m.X, Y: m.Y}, true
	case wire.MouseRelMove:
		return MouseRelMove{DX: m.DX, DY: m.DY}, true
	case wire.MouseButton:
		return MouseButton{Press: m.Press, Button: m.Button}, true
	case wire.MouseWheel:
		return MouseWheel{XDelta: m.XDelta, YDelta: m.YDelta}, true
	case wire.KeyDown:
		return KeyDown{ID: m.ID, Mask: m.Mask, Button: m.Button}, true
	case wire.KeyUp:
		return KeyUp{ID: m.ID, Mask: m.Mask, Button: m.Button}, true
	case wire.KeyRepeat:
		return KeyRepeat{ID: m.ID, Mask: m.Mask, Button: m.Button, Count: m.Count}, true
	case wire.GrabClipboard:
		return GrabClipboard{ID: m.ID, Seq: m.Seq}, true
	case wire.ScreenSaver:
		return ScreenSaverChanged{Active: m.Active}, true
	default:
		return nil, false
	}
}
