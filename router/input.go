package router

// InputKind names one InputEvent variant the host presents to SendInput.
type InputKind string

const (
	InputMove      InputKind = "Move"
	InputButton    InputKind = "Button"
	InputWheel     InputKind = "Wheel"
	InputKeyDown   InputKind = "KeyDown"
	InputKeyUp     InputKind = "KeyUp"
	InputKeyRepeat InputKind = "KeyRepeat"
	InputClipboard InputKind = "ClipboardChange"
)

// InputEvent is a host-produced sample handed to Server.SendInput: relative
// mouse motion, a button or wheel action, a key event, or a local clipboard
// change to broadcast to every connected client.
type InputEvent struct {
	Kind InputKind

	DX, DY int // Move

	Press  bool  // Button
	Button uint8 // Button, KeyDown/KeyUp/KeyRepeat (device button code)

	WheelX, WheelY int16 // Wheel

	KeyID    uint16 // KeyDown/KeyUp/KeyRepeat
	KeyMask  uint16
	KeyCount uint16 // KeyRepeat

	ClipboardID   uint8 // ClipboardChange
	ClipboardSeq  uint32
	ClipboardData []byte
}
