package wire

import "github.com/badu/synergy"

// Kind names a Message variant. It exists purely for logging/diagnostics;
// the wire identity of a variant is its 4-byte Code (or, for Hello and
// HelloBack, the literal "Synergy" prefix handled specially in codec.go).
type Kind string

const (
	KindHello            Kind = "Hello"
	KindHelloBack        Kind = "HelloBack"
	KindQueryInfo        Kind = "QueryInfo"
	KindInfo             Kind = "Info"
	KindInfoAck          Kind = "InfoAck"
	KindSetDeviceOptions Kind = "SetDeviceOptions"
	KindResetOptions     Kind = "ResetOptions"
	KindKeepAlive        Kind = "KeepAlive"
	KindNoOp             Kind = "NoOp"
	KindCursorEnter      Kind = "CursorEnter"
	KindCursorLeave      Kind = "CursorLeave"
	KindMouseMove        Kind = "MouseMove"
	KindMouseRelMove     Kind = "MouseRelMove"
	KindMouseButton      Kind = "MouseButton"
	KindMouseWheel       Kind = "MouseWheel"
	KindKeyDown          Kind = "KeyDown"
	KindKeyUp            Kind = "KeyUp"
	KindKeyRepeat        Kind = "KeyRepeat"
	KindGrabClipboard    Kind = "GrabClipboard"
	KindSetClipboard     Kind = "SetClipboard"
	KindScreenSaver      Kind = "ScreenSaver"
	KindClose            Kind = "Close"
	KindError            Kind = "Error"
	KindUnknown          Kind = "Unknown"
)

// Message is the tagged union the codec encodes and decodes. Every variant
// below is a plain value type; per the data model, a Message is ephemeral
// and owned by whichever party constructs it.
type Message interface {
	Kind() Kind
}

// Hello is the server's greeting, S->C. Its wire form is the literal
// 7-byte string "Synergy" followed by two big-endian u16 version fields -
// it never carries one of the 4-byte command codes the rest of the table
// uses.
type Hello struct {
	Major uint16
	Minor uint16
}

func (Hello) Kind() Kind { return KindHello }

// HelloBack is the client's reply, C->S: the same "Synergy"+version
// preamble as Hello, with an appended u32_be-length-prefixed screen name.
type HelloBack struct {
	Major uint16
	Minor uint16
	Name  string
}

func (HelloBack) Kind() Kind { return KindHelloBack }

// QueryInfo asks the client to report its screen geometry. Empty payload.
type QueryInfo struct{}

func (QueryInfo) Kind() Kind { return KindQueryInfo }

// Info answers QueryInfo with the client's screen geometry and warp-zone
// width, plus its current cursor position.
type Info struct {
	X, Y           int16
	Width, Height  uint16
	WarpZone       int16
	CursorX        int16
	CursorY        int16
}

func (Info) Kind() Kind { return KindInfo }

// InfoAck acknowledges a received Info. Empty payload.
type InfoAck struct{}

func (InfoAck) Kind() Kind { return KindInfoAck }

// SetDeviceOptions carries a set of numeric per-key options. The decoder
// preserves insertion order so re-encoding is deterministic.
type SetDeviceOptions struct {
	Options *OptionMap
}

func (SetDeviceOptions) Kind() Kind { return KindSetDeviceOptions }

// ResetOptions asks the peer to restore default device options. Empty
// payload.
type ResetOptions struct{}

func (ResetOptions) Kind() Kind { return KindResetOptions }

// KeepAlive is the heartbeat message, sent and echoed by both sides. Empty
// payload.
type KeepAlive struct{}

func (KeepAlive) Kind() Kind { return KindKeepAlive }

// NoOp is filler with no semantic effect. Empty payload.
type NoOp struct{}

func (NoOp) Kind() Kind { return KindNoOp }

// CursorEnter activates a client screen: the cursor has crossed onto it at
// (X, Y) with the given modifier mask. Seq is the server's monotonically
// increasing sequence counter.
type CursorEnter struct {
	Pos  synergy.Position
	Seq  uint32
	Mask uint16
}

func (CursorEnter) Kind() Kind { return KindCursorEnter }

// CursorLeave deactivates a client screen. Empty payload.
type CursorLeave struct{}

func (CursorLeave) Kind() Kind { return KindCursorLeave }

// MouseMove is an absolute cursor warp, screen-local coordinates.
type MouseMove struct {
	X, Y int16
}

func (MouseMove) Kind() Kind { return KindMouseMove }

// MouseRelMove is a relative cursor motion delta.
type MouseRelMove struct {
	DX, DY int16
}

func (MouseRelMove) Kind() Kind { return KindMouseRelMove }

// MouseButton is a press or release of one mouse button.
type MouseButton struct {
	Press  bool
	Button uint8
}

func (MouseButton) Kind() Kind { return KindMouseButton }

// MouseWheel is a wheel motion event on one or both axes.
type MouseWheel struct {
	XDelta, YDelta int16
}

func (MouseWheel) Kind() Kind { return KindMouseWheel }

// KeyDown is a key press.
type KeyDown struct {
	ID     uint16
	Mask   uint16
	Button uint8
}

func (KeyDown) Kind() Kind { return KindKeyDown }

// KeyUp is a key release.
type KeyUp struct {
	ID     uint16
	Mask   uint16
	Button uint8
}

func (KeyUp) Kind() Kind { return KindKeyUp }

// KeyRepeat is an auto-repeat burst of a held key.
type KeyRepeat struct {
	ID     uint16
	Mask   uint16
	Button uint8
	Count  uint16
}

func (KeyRepeat) Kind() Kind { return KindKeyRepeat }

// GrabClipboard announces that a participant owns new clipboard content
// for the given clipboard id (0 = system clipboard, 1 = selection).
type GrabClipboard struct {
	ID  uint8
	Seq uint32
}

func (GrabClipboard) Kind() Kind { return KindGrabClipboard }

// SetClipboard carries one chunk of a clipboard transfer. Mark 0 starts a
// transfer (Data holds the ASCII-decimal format id and total size,
// "<formatID> <totalSize>"), mark 1 carries raw
// continuation bytes, mark 2 ends the transfer with empty Data. See the
// clipboard package for reassembly.
type SetClipboard struct {
	ID   uint8
	Seq  uint32
	Mark uint8
	Data []byte
}

func (SetClipboard) Kind() Kind { return KindSetClipboard }

// ScreenSaver reports the host screen saver's activation state.
type ScreenSaver struct {
	Active bool
}

func (ScreenSaver) Kind() Kind { return KindScreenSaver }

// Close tears down a connection: per spec.md §6 the wire carries a single
// CBYE code in both directions, so this one variant serves both a client
// giving up the connection and a server closing it. Which of those it
// means is a property of which side's session received it, not of the
// message itself - a ServerSession only ever receives a client-initiated
// Close, a ClientSession only ever receives a server-initiated one.
type Close struct{}

func (Close) Kind() Kind { return KindClose }

// ErrorCode names one of the three protocol-level error replies a server
// sends instead of completing the handshake.
type ErrorCode string

const (
	ErrorUnknownClient ErrorCode = "EUNK" // screen name not in the layout
	ErrorBusy          ErrorCode = "EBSY" // screen name already connected
	ErrorBadClient     ErrorCode = "EBAD" // malformed HelloBack
)

// Error is one of the S->C error replies.
type Error struct {
	Code ErrorCode
}

func (Error) Kind() Kind { return KindError }

// Unknown preserves an unrecognized 4-byte code and its raw payload
// (excluding the code itself) for forward compatibility. Re-encoding an
// Unknown reproduces the exact bytes it was decoded from.
type Unknown struct {
	Code    [4]byte
	Payload []byte
}

func (Unknown) Kind() Kind { return KindUnknown }

// OptionMap is an insertion-ordered map[uint32]uint32, used by
// SetDeviceOptions so re-encoding is deterministic (a plain Go map would
// randomize iteration order).
type OptionMap struct {
	keys   []uint32
	values map[uint32]uint32
}

// NewOptionMap returns an empty OptionMap.
func NewOptionMap() *OptionMap {
	return &OptionMap{values: make(map[uint32]uint32)}
}

// Set inserts or updates key, preserving first-insertion order.
func (m *OptionMap) Set(key, value uint32) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get reports the value for key and whether it was present.
func (m *OptionMap) Get(key uint32) (uint32, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len reports the number of entries.
func (m *OptionMap) Len() int {
	return len(m.keys)
}

// Range calls fn for every entry in insertion order.
func (m *OptionMap) Range(fn func(key, value uint32)) {
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}
