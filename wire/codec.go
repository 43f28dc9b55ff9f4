package wire

import (
	"bytes"

	"github.com/badu/synergy"
)

func toCode(s string) [4]byte {
	var c [4]byte
	copy(c[:], s)
	return c
}

var (
	codeCALV = toCode("CALV")
	codeCNOP = toCode("CNOP")
	codeCBYE = toCode("CBYE")
	codeCIAK = toCode("CIAK")
	codeCROP = toCode("CROP")
	codeCINN = toCode("CINN")
	codeCOUT = toCode("COUT")
	codeCCLP = toCode("CCLP")
	codeCSEC = toCode("CSEC")
	codeDMMV = toCode("DMMV")
	codeDMRM = toCode("DMRM")
	codeDMDN = toCode("DMDN")
	codeDMUP = toCode("DMUP")
	codeDMWM = toCode("DMWM")
	codeDKDN = toCode("DKDN")
	codeDKUP = toCode("DKUP")
	codeDKRP = toCode("DKRP")
	codeDCLP = toCode("DCLP")
	codeDSOP = toCode("DSOP")
	codeQINF = toCode("QINF")
	codeDINF = toCode("DINF")
	codeEUNK = toCode("EUNK")
	codeEBSY = toCode("EBSY")
	codeEBAD = toCode("EBAD")
)

// helloPreamble is the literal 7-byte string every Hello and HelloBack
// payload begins with, in place of a 4-byte command code.
const helloPreamble = "Synergy"

// Encode renders msg as one complete, length-prefixed wire frame. Encoding
// is total: every variant defined in this package has a deterministic wire
// form, including Unknown (which reproduces its original bytes exactly).
func Encode(msg Message) []byte {
	return frameOf(encodePayload(msg))
}

func encodePayload(msg Message) []byte {
	w := &writer{}
	switch m := msg.(type) {
	case Hello:
		w.code(helloPreamble)
		w.u16(m.Major)
		w.u16(m.Minor)
	case HelloBack:
		w.code(helloPreamble)
		w.u16(m.Major)
		w.u16(m.Minor)
		w.str(m.Name)
	case QueryInfo:
		w.code(string(codeQINF[:]))
	case Info:
		w.code(string(codeDINF[:]))
		w.i16(m.X)
		w.i16(m.Y)
		w.u16(m.Width)
		w.u16(m.Height)
		w.i16(m.WarpZone)
		w.i16(m.CursorX)
		w.i16(m.CursorY)
	case InfoAck:
		w.code(string(codeCIAK[:]))
	case SetDeviceOptions:
		w.code(string(codeDSOP[:]))
		opts := m.Options
		if opts == nil {
			opts = NewOptionMap()
		}
		w.u32(uint32(opts.Len()))
		opts.Range(func(k, v uint32) {
			w.u32(k)
			w.u32(v)
		})
	case ResetOptions:
		w.code(string(codeCROP[:]))
	case KeepAlive:
		w.code(string(codeCALV[:]))
	case NoOp:
		w.code(string(codeCNOP[:]))
	case CursorEnter:
		w.code(string(codeCINN[:]))
		w.i16(m.Pos.X)
		w.i16(m.Pos.Y)
		w.u32(m.Seq)
		w.u16(m.Mask)
	case CursorLeave:
		w.code(string(codeCOUT[:]))
	case MouseMove:
		w.code(string(codeDMMV[:]))
		w.i16(m.X)
		w.i16(m.Y)
	case MouseRelMove:
		w.code(string(codeDMRM[:]))
		w.i16(m.DX)
		w.i16(m.DY)
	case MouseButton:
		if m.Press {
			w.code(string(codeDMDN[:]))
		} else {
			w.code(string(codeDMUP[:]))
		}
		w.u8(m.Button)
	case MouseWheel:
		w.code(string(codeDMWM[:]))
		w.i16(m.XDelta)
		w.i16(m.YDelta)
	case KeyDown:
		w.code(string(codeDKDN[:]))
		w.u16(m.ID)
		w.u16(m.Mask)
		w.u8(m.Button)
	case KeyUp:
		w.code(string(codeDKUP[:]))
		w.u16(m.ID)
		w.u16(m.Mask)
		w.u8(m.Button)
	case KeyRepeat:
		w.code(string(codeDKRP[:]))
		w.u16(m.ID)
		w.u16(m.Mask)
		w.u8(m.Button)
		w.u16(m.Count)
	case GrabClipboard:
		w.code(string(codeCCLP[:]))
		w.u8(m.ID)
		w.u32(m.Seq)
	case SetClipboard:
		w.code(string(codeDCLP[:]))
		w.u8(m.ID)
		w.u32(m.Seq)
		w.u8(m.Mark)
		w.bytes(m.Data)
	case ScreenSaver:
		w.code(string(codeCSEC[:]))
		if m.Active {
			w.u8(1)
		} else {
			w.u8(0)
		}
	case Close:
		w.code(string(codeCBYE[:]))
	case Error:
		w.code(string(m.Code))
	case Unknown:
		w.bytes(m.Code[:])
		w.bytes(m.Payload)
	default:
		// Exhaustive by construction: every variant defined in message.go
		// has a case above. Reaching here means a new variant was added
		// without a matching encoder - fail loudly instead of emitting a
		// malformed frame.
		panic("wire: encodePayload: unhandled Message variant")
	}
	return w.buf
}

// Decode attempts to read one Message from the front of buf. It returns
// the message and the number of bytes consumed on success, (nil, 0,
// ErrNeedMore) if buf does not yet hold a complete frame, or (nil, 0, err)
// for any other ProtocolError. buf is never modified; callers that manage
// an accumulating read buffer should advance it by the returned count.
func Decode(buf []byte) (Message, int, error) {
	return DecodeMax(buf, DefaultMaxFrameSize)
}

// DecodeMax is Decode with an explicit frame-size bound.
func DecodeMax(buf []byte, maxFrameSize uint32) (Message, int, error) {
	payload, consumed, err := sliceFrame(buf, maxFrameSize)
	if err != nil {
		return nil, 0, err
	}
	msg, err := decodePayload(payload)
	if err != nil {
		return nil, 0, err
	}
	return msg, consumed, nil
}

func decodePayload(payload []byte) (Message, error) {
	if len(payload) >= len(helloPreamble) && bytes.Equal(payload[:len(helloPreamble)], []byte(helloPreamble)) {
		return decodeHello(payload)
	}
	if len(payload) < 4 {
		return nil, newProtocolError(ErrEncoding, "payload shorter than a command code")
	}
	var code [4]byte
	copy(code[:], payload[:4])
	body := payload[4:]

	if fn, ok := dispatch[code]; ok {
		return fn(body)
	}
	return Unknown{Code: code, Payload: append([]byte(nil), body...)}, nil
}

// decodeHello distinguishes Hello from HelloBack by payload length: Hello
// is always exactly preamble+major+minor (11 bytes); anything longer is a
// HelloBack with its trailing length-prefixed name.
func decodeHello(payload []byte) (Message, error) {
	r := newReader(payload[len(helloPreamble):])
	major, ok := r.u16()
	if !ok {
		return nil, newProtocolError(ErrEncoding, "truncated Hello major version")
	}
	minor, ok := r.u16()
	if !ok {
		return nil, newProtocolError(ErrEncoding, "truncated Hello minor version")
	}
	if r.remaining() == 0 {
		return Hello{Major: major, Minor: minor}, nil
	}
	name, ok := r.str()
	if !ok {
		return nil, newProtocolError(ErrEncoding, "truncated HelloBack name")
	}
	return HelloBack{Major: major, Minor: minor, Name: name}, nil
}

type decodeFunc func(body []byte) (Message, error)

var dispatch map[[4]byte]decodeFunc

func init() {
	dispatch = map[[4]byte]decodeFunc{
		codeCALV: func(body []byte) (Message, error) { return KeepAlive{}, nil },
		codeCNOP: func(body []byte) (Message, error) { return NoOp{}, nil },
		codeCBYE: func(body []byte) (Message, error) { return Close{}, nil },
		codeCIAK: func(body []byte) (Message, error) { return InfoAck{}, nil },
		codeCROP: func(body []byte) (Message, error) { return ResetOptions{}, nil },
		codeCOUT: func(body []byte) (Message, error) { return CursorLeave{}, nil },
		codeQINF: func(body []byte) (Message, error) { return QueryInfo{}, nil },
		codeEUNK: func(body []byte) (Message, error) { return Error{Code: ErrorUnknownClient}, nil },
		codeEBSY: func(body []byte) (Message, error) { return Error{Code: ErrorBusy}, nil },
		codeEBAD: func(body []byte) (Message, error) { return Error{Code: ErrorBadClient}, nil },
		codeCINN: decodeCursorEnter,
		codeDMMV: decodeMouseMove,
		codeDMRM: decodeMouseRelMove,
		codeDMDN: decodeMouseButton(true),
		codeDMUP: decodeMouseButton(false),
		codeDMWM: decodeMouseWheel,
		codeDKDN: decodeKeyDown,
		codeDKUP: decodeKeyUp,
		codeDKRP: decodeKeyRepeat,
		codeCCLP: decodeGrabClipboard,
		codeDCLP: decodeSetClipboard,
		codeDSOP: decodeSetDeviceOptions,
		codeDINF: decodeInfo,
		codeCSEC: decodeScreenSaver,
	}
}

func decodeCursorEnter(body []byte) (Message, error) {
	r := newReader(body)
	x, ok1 := r.i16()
	y, ok2 := r.i16()
	seq, ok3 := r.u32()
	mask, ok4 := r.u16()
	if !(ok1 && ok2 && ok3 && ok4) {
		return nil, newProtocolError(ErrEncoding, "truncated CursorEnter")
	}
	return CursorEnter{Pos: synergy.Position{X: x, Y: y}, Seq: seq, Mask: mask}, nil
}

func decodeMouseMove(body []byte) (Message, error) {
	r := newReader(body)
	x, ok1 := r.i16()
	y, ok2 := r.i16()
	if !(ok1 && ok2) {
		return nil, newProtocolError(ErrEncoding, "truncated MouseMove")
	}
	return MouseMove{X: x, Y: y}, nil
}

func decodeMouseRelMove(body []byte) (Message, error) {
	r := newReader(body)
	dx, ok1 := r.i16()
	dy, ok2 := r.i16()
	if !(ok1 && ok2) {
		return nil, newProtocolError(ErrEncoding, "truncated MouseRelMove")
	}
	return MouseRelMove{DX: dx, DY: dy}, nil
}

func decodeMouseButton(press bool) decodeFunc {
	return func(body []byte) (Message, error) {
		r := newReader(body)
		btn, ok := r.u8()
		if !ok {
			return nil, newProtocolError(ErrEncoding, "truncated MouseButton")
		}
		return MouseButton{Press: press, Button: btn}, nil
	}
}

func decodeMouseWheel(body []byte) (Message, error) {
	r := newReader(body)
	x, ok1 := r.i16()
	y, ok2 := r.i16()
	if !(ok1 && ok2) {
		return nil, newProtocolError(ErrEncoding, "truncated MouseWheel")
	}
	return MouseWheel{XDelta: x, YDelta: y}, nil
}

func decodeKeyDown(body []byte) (Message, error) {
	r := newReader(body)
	id, ok1 := r.u16()
	mask, ok2 := r.u16()
	btn, ok3 := r.u8()
	if !(ok1 && ok2 && ok3) {
		return nil, newProtocolError(ErrEncoding, "truncated KeyDown")
	}
	return KeyDown{ID: id, Mask: mask, Button: btn}, nil
}

func decodeKeyUp(body []byte) (Message, error) {
	r := newReader(body)
	id, ok1 := r.u16()
	mask, ok2 := r.u16()
	btn, ok3 := r.u8()
	if !(ok1 && ok2 && ok3) {
		return nil, newProtocolError(ErrEncoding, "truncated KeyUp")
	}
	return KeyUp{ID: id, Mask: mask, Button: btn}, nil
}

func decodeKeyRepeat(body []byte) (Message, error) {
	r := newReader(body)
	id, ok1 := r.u16()
	mask, ok2 := r.u16()
	btn, ok3 := r.u8()
	count, ok4 := r.u16()
	if !(ok1 && ok2 && ok3 && ok4) {
		return nil, newProtocolError(ErrEncoding, "truncated KeyRepeat")
	}
	return KeyRepeat{ID: id, Mask: mask, Button: btn, Count: count}, nil
}

func decodeGrabClipboard(body []byte) (Message, error) {
	r := newReader(body)
	id, ok1 := r.u8()
	seq, ok2 := r.u32()
	if !(ok1 && ok2) {
		return nil, newProtocolError(ErrEncoding, "truncated GrabClipboard")
	}
	return GrabClipboard{ID: id, Seq: seq}, nil
}

func decodeSetClipboard(body []byte) (Message, error) {
	r := newReader(body)
	id, ok1 := r.u8()
	seq, ok2 := r.u32()
	mark, ok3 := r.u8()
	if !(ok1 && ok2 && ok3) {
		return nil, newProtocolError(ErrEncoding, "truncated SetClipboard")
	}
	data := append([]byte(nil), r.rest()...)
	return SetClipboard{ID: id, Seq: seq, Mark: mark, Data: data}, nil
}

func decodeSetDeviceOptions(body []byte) (Message, error) {
	r := newReader(body)
	count, ok := r.u32()
	if !ok {
		return nil, newProtocolError(ErrEncoding, "truncated SetDeviceOptions count")
	}
	opts := NewOptionMap()
	for i := uint32(0); i < count; i++ {
		k, ok1 := r.u32()
		v, ok2 := r.u32()
		if !(ok1 && ok2) {
			return nil, newProtocolError(ErrEncoding, "truncated SetDeviceOptions entry")
		}
		opts.Set(k, v)
	}
	return SetDeviceOptions{Options: opts}, nil
}

func decodeInfo(body []byte) (Message, error) {
	r := newReader(body)
	x, ok1 := r.i16()
	y, ok2 := r.i16()
	w, ok3 := r.u16()
	h, ok4 := r.u16()
	warp, ok5 := r.i16()
	cx, ok6 := r.i16()
	cy, ok7 := r.i16()
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7) {
		return nil, newProtocolError(ErrEncoding, "truncated Info")
	}
	return Info{X: x, Y: y, Width: w, Height: h, WarpZone: warp, CursorX: cx, CursorY: cy}, nil
}

func decodeScreenSaver(body []byte) (Message, error) {
	r := newReader(body)
	active, ok := r.u8()
	if !ok {
		return nil, newProtocolError(ErrEncoding, "truncated ScreenSaver")
	}
	return ScreenSaver{Active: active != 0}, nil
}
