package session

import (
	"context"

	"github.com/badu/synergy/clipboard"
	"github.com/badu/synergy/wire"
)

// Validator looks up a screen name against the server's Layout. It returns
// "" if the name is known and not already connected, or one of
// wire.ErrorUnknownClient / wire.ErrorBusy / wire.ErrorBadClient otherwise.
// It is a callback rather than a direct Layout dependency so this package
// never imports layout - the router owns that lookup.
type Validator func(name string) wire.ErrorCode

// ServerSession drives one server-side connection: AwaitingHelloBack ->
// AwaitingInfo -> Connected, per spec.md §4.2.
type ServerSession struct {
	core   *core
	cfg    *config
	events chan Event
	clip   *clipboard.Assembler

	name          string
	width, height int
}

// NewServerSession performs the server-side handshake synchronously: it
// sends Hello, validates the peer's HelloBack name via validate, and on
// success exchanges QueryInfo/Info/InfoAck/ResetOptions/SetDeviceOptions
// before returning a ServerSession already running its Connected-state
// event loop. On rejection it sends the matching error code, closes the
// connection, and returns a non-nil error; the caller does not need to
// close anything itself in that case.
func NewServerSession(ctx context.Context, conn Transport, validate Validator, opts ...Option) (*ServerSession, error) {
	cfg := newConfig()
	for _, o := range opts {
		o(cfg)
	}

	c := newCore(conn, cfg.queueSize, cfg.maxFrame)
	c.start()

	if !c.send(wire.Hello{Major: DefaultProtocolMajor, Minor: DefaultProtocolMinor}) {
		c.close()
		return nil, &Error{Kind: ErrBackpressure}
	}

	var helloBack wire.HelloBack
	select {
	case <-ctx.Done():
		c.close()
		return nil, ctx.Err()
	case err := <-c.readErr:
		c.close()
		return nil, err
	case msg := <-c.in:
		hb, ok := msg.(wire.HelloBack)
		if !ok {
			c.flush(wire.Error{Code: wire.ErrorBadClient}, nil)
			c.close()
			return nil, &wire.ProtocolError{Kind: wire.ErrUnexpectedMsg, Detail: "expected HelloBack"}
		}
		helloBack = hb
	}

	if code := validate(helloBack.Name); code != "" {
		c.flush(wire.Error{Code: code}, nil)
		c.close()
		return nil, &Error{Kind: ErrRejected, Code: code}
	}

	if !c.send(wire.QueryInfo{}) {
		c.close()
		return nil, &Error{Kind: ErrBackpressure}
	}

	var info wire.Info
	select {
	case <-ctx.Done():
		c.close()
		return nil, ctx.Err()
	case err := <-c.readErr:
		c.close()
		return nil, err
	case msg := <-c.in:
		inf, ok := msg.(wire.Info)
		if !ok {
			c.close()
			return nil, &wire.ProtocolError{Kind: wire.ErrUnexpectedMsg, Detail: "expected Info"}
		}
		info = inf
	}

	c.send(wire.InfoAck{})
	c.send(wire.ResetOptions{})
	c.send(wire.SetDeviceOptions{Options: wire.NewOptionMap()})

	ss := &ServerSession{
		core:   c,
		cfg:    cfg,
		events: make(chan Event),
		clip:   clipboard.New(clipboard.WithProbeWindow(cfg.keepAlive)),
		name:   helloBack.Name,
		width:  int(info.Width),
		height: int(info.Height),
	}

	go runLoop(ctx, c, cfg, ss.events, ss.onMessage)

	return ss, nil
}

// Events returns the stream of events this connection produces for the
// router to consume: clipboard grabs/changes, screen-saver notifications,
// geometry updates, pass-through input (a client echoing its own activity
// is not part of the reference protocol, but forward-compatible peers may),
// and the terminal Disconnected.
func (s *ServerSession) Events() <-chan Event { return s.events }

// Name reports the screen name this connection authenticated as.
func (s *ServerSession) Name() string { return s.name }

// Geometry reports the screen size last reported by this connection.
func (s *ServerSession) Geometry() (width, height int) { return s.width, s.height }

// Send queues msg for delivery to this connection - CursorEnter/Leave,
// MouseMove/RelMove, key/button/wheel events, clipboard chunks. Exceeding
// the configured outbound queue closes the connection and returns
// SessionError{Backpressure}, per spec.md §4.5. Once the session has
// closed, Send returns ErrClosed.
func (s *ServerSession) Send(msg wire.Message) error {
	select {
	case <-s.core.died:
		return ErrClosed
	default:
	}
	if !s.core.send(msg) {
		s.core.close()
		return &Error{Kind: ErrBackpressure}
	}
	return nil
}

// Close requests an orderly shutdown: a best-effort Close is flushed if the
// outbound queue has room, then the transport is closed.
func (s *ServerSession) Close() error {
	s.core.flush(wire.Close{}, nil)
	s.core.close()
	return nil
}

func (s *ServerSession) onMessage(msg wire.Message) (stop bool, reason error, closeMsg wire.Message) {
	switch m := msg.(type) {
	case wire.KeepAlive:
		s.core.send(wire.KeepAlive{})
		return false, nil, nil

	case wire.NoOp:
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

	case wire.Info:
		s.width, s.height = int(m.Width), int(m.Height)
		s.emit(Info{Width: m.Width, Height: m.Height, WarpZone: m.WarpZone, CursorX: m.CursorX, CursorY: m.CursorY})
		return false, nil, nil

	default:
		if ev, ok := translate(msg); ok {
			s.emit(ev)
		}
		return false, nil, nil
	}
}

func (s *ServerSession) emit(ev Event) {
	select {
	case s.events <- ev:
	case <-s.core.died:
	}
}
