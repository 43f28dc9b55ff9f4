package clipboard_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/badu/synergy/clipboard"
	"github.com/badu/synergy/wire"
)

func TestReassembleSuccess(t *testing.T) {
	a := clipboard.New()

	start := wire.SetClipboard{ID: 0, Seq: 1, Mark: 0, Data: []byte("0 5")}
	if changed, err := a.Handle(start); err != nil || changed != nil {
		t.Fatalf("start: changed=%v err=%v", changed, err)
	}

	for _, chunk := range []string{"he", "ll", "o"} {
		msg := wire.SetClipboard{ID: 0, Seq: 1, Mark: 1, Data: []byte(chunk)}
		if changed, err := a.Handle(msg); err != nil || changed != nil {
			t.Fatalf("chunk %q: changed=%v err=%v", chunk, changed, err)
		}
	}

	end := wire.SetClipboard{ID: 0, Seq: 1, Mark: 2}
	changed, err := a.Handle(end)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if changed == nil {
		t.Fatal("expected a Changed event")
	}
	if changed.Format != clipboard.FormatText || !bytes.Equal(changed.Data, []byte("hello")) {
		t.Fatalf("got %#v", changed)
	}
}

func TestReassembleTooLarge(t *testing.T) {
	a := clipboard.New()

	start := wire.SetClipboard{ID: 0, Seq: 2, Mark: 0, Data: []byte("0 3")}
	if _, err := a.Handle(start); err != nil {
		t.Fatalf("start: %v", err)
	}

	chunk := wire.SetClipboard{ID: 0, Seq: 2, Mark: 1, Data: []byte("abcd")}
	_, err := a.Handle(chunk)
	assertKind(t, err, wire.ErrClipboardTooLarge)
}

func TestOverlappingStartRejected(t *testing.T) {
	a := clipboard.New()
	start := wire.SetClipboard{ID: 0, Seq: 3, Mark: 0, Data: []byte("0 10")}
	if _, err := a.Handle(start); err != nil {
		t.Fatalf("first start: %v", err)
	}
	_, err := a.Handle(start)
	assertKind(t, err, wire.ErrClipboardOverlap)
}

func TestOrphanContinuationRejected(t *testing.T) {
	a := clipboard.New()
	chunk := wire.SetClipboard{ID: 0, Seq: 99, Mark: 1, Data: []byte("x")}
	_, err := a.Handle(chunk)
	assertKind(t, err, wire.ErrClipboardOrphan)
}

func TestBareProbeCancelledSilently(t *testing.T) {
	a := clipboard.New(clipboard.WithProbeWindow(20 * time.Millisecond))
	start := wire.SetClipboard{ID: 1, Seq: 1, Mark: 0, Data: []byte("0 5")}
	if _, err := a.Handle(start); err != nil {
		t.Fatalf("start: %v", err)
	}

	time.Sleep(60 * time.Millisecond)

	// The probe should have expired silently; a continuation now sees it
	// as an unknown (orphan) transfer rather than any special error.
	chunk := wire.SetClipboard{ID: 1, Seq: 1, Mark: 1, Data: []byte("hello")}
	_, err := a.Handle(chunk)
	assertKind(t, err, wire.ErrClipboardOrphan)
}

func TestChunkRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("x"), clipboard.ChunkSize*2+10)
	msgs := clipboard.Chunk(0, 5, clipboard.FormatHTML, data)

	a := clipboard.New()
	var changed *clipboard.Changed
	for _, m := range msgs {
		c, err := a.Handle(m)
		if err != nil {
			t.Fatalf("handle: %v", err)
		}
		if c != nil {
			changed = c
		}
	}
	if changed == nil {
		t.Fatal("expected completion")
	}
	if changed.Format != clipboard.FormatHTML || !bytes.Equal(changed.Data, data) {
		t.Fatalf("round trip mismatch: len(got)=%d len(want)=%d", len(changed.Data), len(data))
	}
}

func assertKind(t *testing.T, err error, kind wire.ProtocolKind) {
	t.Helper()
	var protoErr *wire.ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("got %v, want *wire.ProtocolError", err)
	}
	if protoErr.Kind != kind {
		t.Fatalf("got kind %v, want %v", protoErr.Kind, kind)
	}
}
