package wire

import (
	"encoding/binary"
	"unicode/utf8"
)

// writer accumulates a payload in the big-endian, fixed-width encoding the
// protocol mandates. It never fails: every well-formed Message encodes
// totally, per the codec contract.
type writer struct {
	buf []byte
}

func (w *writer) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *writer) i16(v int16)  { w.u16(uint16(v)) }
func (w *writer) u16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *writer) u32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *writer) bytes(v []byte) { w.buf = append(w.buf, v...) }
func (w *writer) str(s string) {
	w.u32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}
func (w *writer) code(c string) { w.buf = append(w.buf, c...) }

// reader walks a payload slice that has already been bounds-checked by the
// framing layer (its total length is known and fixed); a short or
// malformed field inside it is therefore always a genuine ProtocolError,
// never ErrNeedMore.
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader { return &reader{buf: buf} }

func (r *reader) remaining() int { return len(r.buf) - r.pos }

func (r *reader) u8() (uint8, bool) {
	if r.remaining() < 1 {
		return 0, false
	}
	v := r.buf[r.pos]
	r.pos++
	return v, true
}

func (r *reader) i16() (int16, bool) {
	v, ok := r.u16()
	return int16(v), ok
}

func (r *reader) u16() (uint16, bool) {
	if r.remaining() < 2 {
		return 0, false
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos : r.pos+2])
	r.pos += 2
	return v, true
}

func (r *reader) u32() (uint32, bool) {
	if r.remaining() < 4 {
		return 0, false
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, true
}

func (r *reader) take(n int) ([]byte, bool) {
	if n < 0 || r.remaining() < n {
		return nil, false
	}
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v, true
}

func (r *reader) rest() []byte {
	v := r.buf[r.pos:]
	r.pos = len(r.buf)
	return v
}

// str reads a u32_be-length-prefixed UTF-8 string, rejecting invalid
// encoding per the codec contract.
func (r *reader) str() (string, bool) {
	n, ok := r.u32()
	if !ok {
		return "", false
	}
	b, ok := r.take(int(n))
	if !ok {
		return "", false
	}
	if !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}
