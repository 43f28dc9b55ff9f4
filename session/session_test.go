package session_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/badu/synergy"
	"github.com/badu/synergy/session"
	"github.com/badu/synergy/wire"
)

func acceptLaptop(name string) wire.ErrorCode {
	if name != "laptop" {
		return wire.ErrorUnknownClient
	}
	return ""
}

// handshake wires a ClientSession and ServerSession together over an
// in-memory net.Pipe and runs the handshake to completion, mirroring
// spec.md §8's scenario A end to end rather than scripting literal bytes.
func handshake(t *testing.T, opts ...session.Option) (*session.ClientSession, *session.ServerSession, context.CancelFunc) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)

	type result struct {
		ss  *session.ServerSession
		err error
	}
	serverResult := make(chan result, 1)
	go func() {
		ss, err := session.NewServerSession(ctx, serverConn, acceptLaptop)
		serverResult <- result{ss, err}
	}()

	cs, err := session.Dial(ctx, clientConn, "laptop", 1280, 800, opts...)
	if err != nil {
		cancel()
		t.Fatalf("dial: %v", err)
	}

	select {
	case r := <-serverResult:
		if r.err != nil {
			cancel()
			t.Fatalf("server session: %v", r.err)
		}
		return cs, r.ss, cancel
	case <-ctx.Done():
		cancel()
		t.Fatal("timed out waiting for server session")
		return nil, nil, cancel
	}
}

func TestEndToEndHandshake(t *testing.T) {
	cs, ss, cancel := handshake(t)
	defer cancel()
	defer cs.Close()
	defer ss.Close()

	if ss.Name() != "laptop" {
		t.Fatalf("got name %q, want laptop", ss.Name())
	}
	w, h := ss.Geometry()
	if w != 1280 || h != 800 {
		t.Fatalf("got geometry %dx%d, want 1280x800", w, h)
	}
}

func TestVersionGateRejected(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	go func() {
		serverConn.Write(wire.Encode(wire.Hello{Major: 1, Minor: 2}))
	}()

	_, err := session.Dial(ctx, clientConn, "laptop", 1280, 800)
	var protoErr *wire.ProtocolError
	if !errors.As(err, &protoErr) || protoErr.Kind != wire.ErrVersion {
		t.Fatalf("got %v, want ProtocolError{Kind: Version}", err)
	}
}

func TestHeartbeatTimeout(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	go func() {
		serverConn.Write(wire.Encode(wire.Hello{Major: 1, Minor: 6}))
		buf := make([]byte, 4096)
		serverConn.Read(buf) // consumes HelloBack; then goes silent
	}()

	cs, err := session.Dial(ctx, clientConn, "laptop", 1280, 800,
		session.WithKeepAlive(30*time.Millisecond), session.WithTimeout(100*time.Millisecond))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	start := time.Now()
	var last session.Event
	for ev := range cs.Events() {
		last = ev
	}
	elapsed := time.Since(start)

	d, ok := last.(session.Disconnected)
	if !ok {
		t.Fatalf("got %#v, want Disconnected", last)
	}
	var sessErr *session.Error
	if !errors.As(d.Reason, &sessErr) || sessErr.Kind != session.ErrTimeout {
		t.Fatalf("got reason %v, want Error{Kind: Timeout}", d.Reason)
	}
	if elapsed > 500*time.Millisecond {
		t.Fatalf("timeout took too long: %v", elapsed)
	}
}

func TestUnknownMessageTolerated(t *testing.T) {
	cs, ss, cancel := handshake(t)
	defer cancel()
	defer cs.Close()
	defer ss.Close()

	if err := ss.Send(wire.Unknown{Code: [4]byte{'Z', 'Z', 'Z', 'Z'}, Payload: []byte{0x01, 0x02}}); err != nil {
		t.Fatalf("send unknown: %v", err)
	}
	if err := ss.Send(wire.CursorEnter{Pos: synergy.NewPosition(10, 20), Seq: 1, Mask: 0}); err != nil {
		t.Fatalf("send cursor enter: %v", err)
	}

	ev := <-cs.Events()
	ce, ok := ev.(session.CursorEnter)
	if !ok {
		t.Fatalf("got %#v, want CursorEnter (unknown message should be silently dropped)", ev)
	}
	if ce.Pos.X != 10 || ce.Pos.Y != 20 {
		t.Fatalf("got %#v", ce)
	}
}

func TestVersionGateSentinelMatch(t *testing.T) {
	err := &wire.ProtocolError{Kind: wire.ErrVersion}
	if !errors.Is(err, &wire.ProtocolError{Kind: wire.ErrVersion}) {
		t.Fatal("ProtocolError.Is should match by Kind alone")
	}
}
