package router_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/badu/synergy/layout"
	"github.com/badu/synergy/router"
	"github.com/badu/synergy/session"
)

func buildOneClientLayout(t *testing.T) *layout.Layout {
	t.Helper()
	l, err := layout.NewBuilder(1920, 1080).AddClient("laptop", layout.Left).Build()
	if err != nil {
		t.Fatalf("build layout: %v", err)
	}
	return l
}

// connect wires a client through a router's Accept over an in-memory
// net.Pipe and waits for both sides to finish the handshake.
func connect(t *testing.T, ctx context.Context, r *router.Server, name string, w, h int) *session.ClientSession {
	t.Helper()
	clientConn, serverConn := net.Pipe()

	acceptErr := make(chan error, 1)
	go func() { acceptErr <- r.Accept(ctx, serverConn) }()

	cs, err := session.Dial(ctx, clientConn, name, w, h)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if err := <-acceptErr; err != nil {
		t.Fatalf("accept: %v", err)
	}
	return cs
}

func TestCursorHandoffScenarioB(t *testing.T) {
	l := buildOneClientLayout(t)
	r := router.NewServer(l)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cs := connect(t, ctx, r, "laptop", 1280, 800)
	defer cs.Close()

	r.SendInput(router.InputEvent{Kind: router.InputMove, DX: 0, DY: 540})
	r.SendInput(router.InputEvent{Kind: router.InputMove, DX: -1, DY: 0})

	select {
	case ev := <-cs.Events():
		ce, ok := ev.(session.CursorEnter)
		if !ok {
			t.Fatalf("got %#v, want CursorEnter", ev)
		}
		if ce.Pos.X != 1279 || ce.Pos.Y != 400 {
			t.Fatalf("got pos %v, want (1279,400)", ce.Pos)
		}
		if ce.Seq != 1 {
			t.Fatalf("got seq %d, want 1", ce.Seq)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for CursorEnter")
	}

	// Nothing else should follow immediately: a second recv within a short
	// window should time out.
	select {
	case ev := <-cs.Events():
		t.Fatalf("unexpected extra event %#v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestAcceptRejectsUnknownClient(t *testing.T) {
	l := buildOneClientLayout(t)
	r := router.NewServer(l)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	acceptErr := make(chan error, 1)
	go func() { acceptErr <- r.Accept(ctx, serverConn) }()

	cs, err := session.Dial(ctx, clientConn, "unknown-desk", 1024, 768)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer cs.Close()

	if err := <-acceptErr; err == nil {
		t.Fatal("expected Accept to report the rejection")
	}

	select {
	case ev := <-cs.Events():
		d, ok := ev.(session.Disconnected)
		if !ok {
			t.Fatalf("got %#v, want Disconnected", ev)
		}
		var sessErr *session.Error
		if !errors.As(d.Reason, &sessErr) || sessErr.Kind != session.ErrRemote {
			t.Fatalf("got reason %v, want a RemoteError", d.Reason)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the client's disconnect")
	}
}

func TestLocalPassthroughWhenServerActive(t *testing.T) {
	l := buildOneClientLayout(t)
	r := router.NewServer(l)

	r.SendInput(router.InputEvent{Kind: router.InputMove, DX: 5, DY: 5})

	select {
	case ev := <-r.Local():
		if ev.Kind != router.InputMove || ev.DX != 5 || ev.DY != 5 {
			t.Fatalf("got %#v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for local event")
	}
}
