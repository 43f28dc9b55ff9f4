package session

import (
	"context"

	"github.com/badu/synergy/clipboard"
	"github.com/badu/synergy/wire"
)

// ClientSession drives one client-side connection after Dial completes the
// handshake: AwaitingHello -> Connected, per spec.md §4.2.
type ClientSession struct {
	core   *core
	cfg    *config
	events chan Event
	clip   *clipboard.Assembler

	pendingAck bool
}

// Dial performs the client-side handshake synchronously - wait for Hello,
// gate its version, reply with HelloBack - and, on success, returns a
// ClientSession already running its Connected-state event loop. name is
// sent in HelloBack; w and h are what the session reports in Info when the
// server asks.
func Dial(ctx context.Context, conn Transport, name string, w, h int, opts ...Option) (*ClientSession, error) {
	cfg := newConfig()
	cfg.screenName = name
	cfg.width, cfg.height = w, h
	for _, o := range opts {
		o(cfg)
	}

	c := newCore(conn, cfg.queueSize, cfg.maxFrame)
	c.start()

	var hello wire.Hello
	select {
	case <-ctx.Done():
		c.close()
		return nil, ctx.Err()
	case err := <-c.readErr:
		c.close()
		return nil, err
	case msg := <-c.in:
		h, ok := msg.(wire.Hello)
		if !ok {
			c.close()
			return nil, &wire.ProtocolError{Kind: wire.ErrUnexpectedMsg, Detail: "expected Hello"}
		}
		hello = h
	}

	if hello.Major != DefaultProtocolMajor || hello.Minor < MinSupportedMinor {
		// No HelloBack is transmitted on a version mismatch, per spec.md §8.
		c.close()
		return nil, &wire.ProtocolError{Kind: wire.ErrVersion, Detail: "unsupported protocol version"}
	}

	if !c.send(wire.HelloBack{Major: DefaultProtocolMajor, Minor: DefaultProtocolMinor, Name: cfg.screenName}) {
		c.close()
		return nil, &Error{Kind: ErrBackpressure}
	}

	cs := &ClientSession{
		core:   c,
		cfg:    cfg,
		events: make(chan Event),
		clip:   clipboard.New(clipboard.WithProbeWindow(cfg.keepAlive)),
	}

	go runLoop(ctx, c, cfg, cs.events, cs.onMessage)

	return cs, nil
}

// Events returns the channel of application-facing events. It is closed
// once the session ends; the final value delivered is always a
// Disconnected.
func (s *ClientSession) Events() <-chan Event { return s.events }

// Close requests an orderly shutdown: a best-effort Close is flushed if the
// outbound queue has room, then the transport is closed. It does not block
// waiting for the FSM goroutine to observe it, per spec.md §4.2's "no
// blocking on shutdown".
func (s *ClientSession) Close() error {
	s.core.flush(wire.Close{}, nil)
	s.core.close()
	return nil
}

func (s *ClientSession) onMessage(msg wire.Message) (stop bool, reason error, closeMsg wire.Message) {
	switch m := msg.(type) {
	case wire.QueryInfo:
		s.core.send(wire.Info{
			X: 0, Y: 0,
			Width: uint16(s.cfg.width), Height: uint16(s.cfg.height),
			WarpZone: 0,
			CursorX:  int16(s.cfg.width / 2),
			CursorY:  int16(s.cfg.height / 2),
		})
		s.pendingAck = true
		return false, nil, nil

	case wire.KeepAlive:
		s.core.send(wire.KeepAlive{})
		return false, nil, nil

	case wire.InfoAck:
		s.pendingAck = false
		return false, nil, nil

	case wire.ResetOptions, wire.SetDeviceOptions, wire.NoOp:
		return false, nil, nil

	case wire.Close:
		return true, nil, nil

	case wire.SetClipboard:
		changed, err := s.clip.Handle(m)
		if err != nil {
			return true, err, wire.Close{}
		}
		if changed != nil {
			s.emit(ClipboardChanged{ID: changed.ID, Seq: changed.Seq, Format: changed.Format, Data: changed.Data})
		}
		return false, nil, nil

	case wire.Error:
		return true, &Error{Kind: ErrRemote, Code: m.Code}, nil

	default:
		if ev, ok := translate(msg); ok {
			s.emit(ev)
		}
		return false, nil, nil
	}
}

func (s *ClientSession) emit(ev Event) {
	select {
	case s.events <- ev:
	case <-s.core.died:
	}
}
