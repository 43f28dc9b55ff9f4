package router

import (
	"context"
	"sync"

	"github.com/badu/synergy"
	"github.com/badu/synergy/clipboard"
	"github.com/badu/synergy/layout"
	"github.com/badu/synergy/session"
	"github.com/badu/synergy/wire"
	"github.com/badu/synergy/xlog"
)

// Server is the server-side event router: it dispatches host input to the
// currently active screen's connection, and aggregates events arriving
// from every connected client into one ServerEvent stream. The client
// registry (register/unregister a session by screen name) is a mutex-
// guarded map; the router itself is the Layout's single owner - the
// active-screen pointer is only ever advanced from here.
type Server struct {
	mu       sync.Mutex
	layout   *layout.Layout
	sessions map[string]*session.ServerSession

	cfg    *config
	events chan ServerEvent
	local  chan InputEvent
}

// NewServer returns a router bound to the given, already-built Layout.
func NewServer(l *layout.Layout, opts ...Option) *Server {
	cfg := newConfig()
	for _, o := range opts {
		o(cfg)
	}
	return &Server{
		layout:   l,
		sessions: make(map[string]*session.ServerSession),
		cfg:      cfg,
		events:   make(chan ServerEvent, cfg.queueSize),
		local:    make(chan InputEvent, cfg.queueSize),
	}
}

// TODO(SetLayout): once layout.Rebuild exists, hook a quiesce-and-swap here
// - drain in-flight routeMove/routeDirect calls under s.mu, then replace
// s.layout - instead of requiring a fresh Server for any layout change.

// Events returns the aggregated, arrival-ordered stream of per-client
// events: clipboard grabs/changes, screen-saver notices, geometry reports,
// and disconnects, each tagged with the client's screen name.
func (s *Server) Events() <-chan ServerEvent { return s.events }

// Local returns the stream of host input samples that SendInput found
// routed to the server's own screen - unhandled, since the OS already has
// them, but reported so the application can observe routing decisions.
func (s *Server) Local() <-chan InputEvent { return s.local }

// Accept drives one incoming connection's handshake to completion against
// this router's Layout and, on success, registers it and starts forwarding
// its events. It blocks until the handshake finishes (success or
// rejection); per-connection traffic afterwards runs on background
// goroutines, so Accept returns promptly relative to the connection's
// lifetime.
func (s *Server) Accept(ctx context.Context, conn session.Transport) error {
	ss, err := session.NewServerSession(ctx, conn, s.validate, s.cfg.sessionOptions...)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.sessions[ss.Name()] = ss
	if w, h := ss.Geometry(); w > 0 && h > 0 {
		s.layout.SetScreenGeometry(ss.Name(), synergy.NewSize(w, h))
	}
	s.mu.Unlock()

	go s.forward(ctx, ss)
	return nil
}

// validate is the session.Validator this router hands to every accepted
// connection: the name must be a known client in the Layout and not
// already connected.
func (s *Server) validate(name string) wire.ErrorCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.layout.HasClient(name) {
		return wire.ErrorUnknownClient
	}
	if _, busy := s.sessions[name]; busy {
		return wire.ErrorBusy
	}
	return ""
}

// forward drains one connection's session events into the router's
// aggregated stream, tagging each with its screen name - one merge
// goroutine per connection feeding a single channel, the fan-in mirror of
// mouse.eventDispatcher.Register's fan-out - and unregisters the
// connection once its Events channel closes.
func (s *Server) forward(ctx context.Context, ss *session.ServerSession) {
	defer func() {
		s.mu.Lock()
		if s.sessions[ss.Name()] == ss {
			delete(s.sessions, ss.Name())
		}
		s.mu.Unlock()
	}()

	for ev := range ss.Events() {
		if info, ok := ev.(session.Info); ok {
			s.mu.Lock()
			s.layout.SetScreenGeometry(ss.Name(), synergy.NewSize(int(info.Width), int(info.Height)))
			s.mu.Unlock()
		}
		select {
		case s.events <- ServerEvent{Client: ss.Name(), Event: ev}:
		case <-ctx.Done():
			return
		}
	}
}

// SendInput presents one host input sample to the router: it is encoded
// and queued on the active connection, or reported via Local if the active
// screen is the server's own.
func (s *Server) SendInput(ev InputEvent) {
	switch ev.Kind {
	case InputMove:
		s.routeMove(ev)
	case InputClipboard:
		s.broadcastClipboard(ev)
	default:
		s.routeDirect(ev)
	}
}

func (s *Server) sessionFor(name string) (*session.ServerSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.sessions[name]
	return ss, ok
}

func (s *Server) deliverLocal(ev InputEvent) {
	select {
	case s.local <- ev:
	default:
		xlog.Debugf("router: local event channel full, dropping %v", ev.Kind)
	}
}

// routeMove advances the Layout's cursor and, on a screen crossing, emits
// CursorLeave to the screen that just lost activation and CursorEnter
// (carrying the remapped entry coordinate) to the one that gained it -
// with no accompanying motion frame for the sample that triggered the
// crossing. Absent a crossing, the delta is relayed as a plain
// MouseRelMove, or reported via Local if the server itself is active.
func (s *Server) routeMove(ev InputEvent) {
	s.mu.Lock()
	prevActive := s.layout.ActiveScreen()
	res := s.layout.Move(ev.DX, ev.DY)
	s.mu.Unlock()

	if res.Crossed {
		if prevActive != "" {
			if prev, ok := s.sessionFor(prevActive); ok {
				if err := prev.Send(wire.CursorLeave{}); err != nil {
					xlog.Debugf("router: cursor leave to %q: %v", prevActive, err)
				}
			}
		}
		if res.ActiveScreen != "" {
			if next, ok := s.sessionFor(res.ActiveScreen); ok {
				if err := next.Send(wire.CursorEnter{Pos: res.Pos, Seq: res.Seq, Mask: 0}); err != nil {
					xlog.Debugf("router: cursor enter to %q: %v", res.ActiveScreen, err)
				}
			}
		}
		return
	}

	if res.ActiveScreen == "" {
		s.deliverLocal(ev)
		return
	}

	if target, ok := s.sessionFor(res.ActiveScreen); ok {
		if err := target.Send(wire.MouseRelMove{DX: clampDelta(ev.DX), DY: clampDelta(ev.DY)}); err != nil {
			xlog.Debugf("router: relmove to %q: %v", res.ActiveScreen, err)
		}
	}
}

// clampDelta restricts a relative motion delta to the range the wire
// format's i16 fields can carry.
func clampDelta(v int) int16 {
	switch {
	case v < -32768:
		return -32768
	case v > 32767:
		return 32767
	default:
		return int16(v)
	}
}

// routeDirect handles every InputEvent variant that is not relative motion
// or a clipboard broadcast: buttons, wheel, and key events, relayed
// verbatim to the active connection or reported via Local.
func (s *Server) routeDirect(ev InputEvent) {
	s.mu.Lock()
	active := s.layout.ActiveScreen()
	s.mu.Unlock()

	if active == "" {
		s.deliverLocal(ev)
		return
	}

	target, ok := s.sessionFor(active)
	if !ok {
		return
	}

	var msg wire.Message
	switch ev.Kind {
	case InputButton:
		msg = wire.MouseButton{Press: ev.Press, Button: ev.Button}
	case InputWheel:
		msg = wire.MouseWheel{XDelta: ev.WheelX, YDelta: ev.WheelY}
	case InputKeyDown:
		msg = wire.KeyDown{ID: ev.KeyID, Mask: ev.KeyMask, Button: ev.Button}
	case InputKeyUp:
		msg = wire.KeyUp{ID: ev.KeyID, Mask: ev.KeyMask, Button: ev.Button}
	case InputKeyRepeat:
		msg = wire.KeyRepeat{ID: ev.KeyID, Mask: ev.KeyMask, Button: ev.Button, Count: ev.KeyCount}
	default:
		return
	}
	if err := target.Send(msg); err != nil {
		xlog.Debugf("router: send to %q: %v", active, err)
	}
}

// broadcastClipboard fans a local clipboard change out to every connected
// client, chunking it the way clipboard.Chunk prepares any outbound
// transfer.
func (s *Server) broadcastClipboard(ev InputEvent) {
	s.mu.Lock()
	targets := make([]*session.ServerSession, 0, len(s.sessions))
	for _, ss := range s.sessions {
		targets = append(targets, ss)
	}
	s.mu.Unlock()

	for _, ss := range targets {
		for _, chunk := range clipboard.Chunk(ev.ClipboardID, ev.ClipboardSeq, clipboard.FormatText, ev.ClipboardData) {
			if err := ss.Send(chunk); err != nil {
				xlog.Debugf("router: clipboard to %q: %v", ss.Name(), err)
				break
			}
		}
	}
}
