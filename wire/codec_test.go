package wire_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/badu/synergy"
	"github.com/badu/synergy/wire"
)

func roundTrip(t *testing.T, msg wire.Message) wire.Message {
	t.Helper()
	frame := wire.Encode(msg)
	got, n, err := wire.Decode(frame)
	if err != nil {
		t.Fatalf("decode(encode(%#v)): %v", msg, err)
	}
	if n != len(frame) {
		t.Fatalf("decode consumed %d bytes, want %d", n, len(frame))
	}
	return got
}

func TestRoundTripKnownVariants(t *testing.T) {
	cases := []wire.Message{
		wire.Hello{Major: 1, Minor: 6},
		wire.HelloBack{Major: 1, Minor: 6, Name: "laptop"},
		wire.QueryInfo{},
		wire.Info{X: 0, Y: 0, Width: 1280, Height: 800, WarpZone: 0, CursorX: 640, CursorY: 400},
		wire.InfoAck{},
		wire.ResetOptions{},
		wire.KeepAlive{},
		wire.NoOp{},
		wire.CursorEnter{Pos: synergy.Position{X: 1279, Y: 400}, Seq: 1, Mask: 0},
		wire.CursorLeave{},
		wire.MouseMove{X: 10, Y: -5},
		wire.MouseRelMove{DX: -1, DY: 3},
		wire.MouseButton{Press: true, Button: 1},
		wire.MouseButton{Press: false, Button: 2},
		wire.MouseWheel{XDelta: 0, YDelta: 120},
		wire.KeyDown{ID: 65, Mask: 0, Button: 30},
		wire.KeyUp{ID: 65, Mask: 0, Button: 30},
		wire.KeyRepeat{ID: 65, Mask: 0, Button: 30, Count: 3},
		wire.GrabClipboard{ID: 0, Seq: 7},
		wire.ScreenSaver{Active: true},
		wire.Close{},
		wire.Error{Code: wire.ErrorBusy},
	}

	for _, m := range cases {
		got := roundTrip(t, m)
		if got != m {
			t.Errorf("round trip mismatch: got %#v, want %#v", got, m)
		}
	}
}

func TestRoundTripSetDeviceOptions(t *testing.T) {
	opts := wire.NewOptionMap()
	opts.Set(1, 100)
	opts.Set(2, 200)
	opts.Set(3, 300)
	msg := wire.SetDeviceOptions{Options: opts}

	got := roundTrip(t, msg)
	gotMsg, ok := got.(wire.SetDeviceOptions)
	if !ok {
		t.Fatalf("got %T, want SetDeviceOptions", got)
	}
	var gotKeys []uint32
	gotMsg.Options.Range(func(k, v uint32) {
		gotKeys = append(gotKeys, k)
		want, _ := opts.Get(k)
		if v != want {
			t.Errorf("option %d = %d, want %d", k, v, want)
		}
	})
	if len(gotKeys) != opts.Len() {
		t.Fatalf("got %d options, want %d", len(gotKeys), opts.Len())
	}
	// insertion order must survive the round trip for deterministic
	// re-encoding.
	if gotKeys[0] != 1 || gotKeys[1] != 2 || gotKeys[2] != 3 {
		t.Fatalf("option order not preserved: %v", gotKeys)
	}
}

func TestRoundTripSetClipboard(t *testing.T) {
	msg := wire.SetClipboard{ID: 0, Seq: 7, Mark: 1, Data: []byte("hello")}
	got := roundTrip(t, msg)
	gotMsg, ok := got.(wire.SetClipboard)
	if !ok {
		t.Fatalf("got %T, want SetClipboard", got)
	}
	if gotMsg.ID != msg.ID || gotMsg.Seq != msg.Seq || gotMsg.Mark != msg.Mark || !bytes.Equal(gotMsg.Data, msg.Data) {
		t.Fatalf("round trip mismatch: got %#v, want %#v", gotMsg, msg)
	}
}

func TestRoundTripUnknown(t *testing.T) {
	frame := append([]byte{0, 0, 0, 6}, []byte("ZZZZ")...)
	frame = append(frame, 0x01, 0x02)

	msg, n, err := wire.Decode(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n != len(frame) {
		t.Fatalf("consumed %d, want %d", n, len(frame))
	}
	unk, ok := msg.(wire.Unknown)
	if !ok {
		t.Fatalf("got %T, want Unknown", msg)
	}
	if string(unk.Code[:]) != "ZZZZ" || !bytes.Equal(unk.Payload, []byte{0x01, 0x02}) {
		t.Fatalf("unexpected Unknown: %#v", unk)
	}

	reEncoded := wire.Encode(unk)
	if !bytes.Equal(reEncoded, frame) {
		t.Fatalf("re-encoded Unknown = % x, want % x", reEncoded, frame)
	}
}

func TestFrameBounds(t *testing.T) {
	zero := []byte{0, 0, 0, 0}
	_, _, err := wire.Decode(zero)
	var protoErr *wire.ProtocolError
	if !errors.As(err, &protoErr) || protoErr.Kind != wire.ErrFrameSize {
		t.Fatalf("zero-length frame: got %v, want FrameSize", err)
	}

	tooBig := make([]byte, 4)
	tooBig[0] = 0xFF // declared length far exceeds DefaultMaxFrameSize
	_, _, err = wire.Decode(tooBig)
	if !errors.As(err, &protoErr) || protoErr.Kind != wire.ErrFrameSize {
		t.Fatalf("oversized frame: got %v, want FrameSize", err)
	}
}

func TestDecodeNeedsMore(t *testing.T) {
	full := wire.Encode(wire.KeepAlive{})
	_, _, err := wire.Decode(full[:len(full)-1])
	if !errors.Is(err, wire.ErrNeedMore) {
		t.Fatalf("got %v, want ErrNeedMore", err)
	}
}

func TestHandshakeScenario(t *testing.T) {
	// End-to-end scenario A, codec half: the literal bytes the server
	// sends for Hello{1,6}.
	want := []byte{0x00, 0x00, 0x00, 0x0b}
	want = append(want, "Synergy"...)
	want = append(want, 0x00, 0x01, 0x00, 0x06)

	got := wire.Encode(wire.Hello{Major: 1, Minor: 6})
	if !bytes.Equal(got, want) {
		t.Fatalf("Hello encoding = % x, want % x", got, want)
	}

	msg, n, err := wire.Decode(want)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n != len(want) {
		t.Fatalf("consumed %d, want %d", n, len(want))
	}
	hello, ok := msg.(wire.Hello)
	if !ok || hello.Major != 1 || hello.Minor != 6 {
		t.Fatalf("got %#v, want Hello{1,6}", msg)
	}
}
