package session

import (
	"sync"
	"time"

	"github.com/badu/synergy/wire"
	"github.com/badu/synergy/xlog"
)

// core is the I/O plumbing both ClientSession and ServerSession embed: a
// reader goroutine decoding frames off an accumulating buffer, a writer
// goroutine draining a bounded outbound queue, and died/Once bookkeeping
// for idempotent, observable shutdown.
type core struct {
	transport Transport
	maxFrame  uint32

	out     chan wire.Message
	in      chan wire.Message
	readErr chan error

	startOnce sync.Once
	closeOnce sync.Once
	died      chan struct{}
	writeDone chan struct{}

	// mu guards closed and every send onto out: close() takes mu before
	// closing out, and send/flush take the same mu before writing to it,
	// so a send can never race a close of the channel it sends on - the
	// router's Send (on its own goroutine) and the FSM's own keepalive/
	// shutdown path (on runLoop's goroutine) both fail closed instead of
	// panicking with "send on closed channel".
	mu     sync.Mutex
	closed bool
}

func newCore(t Transport, queueSize int, maxFrame uint32) *core {
	return &core{
		transport: t,
		maxFrame:  maxFrame,
		out:       make(chan wire.Message, queueSize),
		in:        make(chan wire.Message),
		readErr:   make(chan error, 1),
		died:      make(chan struct{}),
		writeDone: make(chan struct{}),
	}
}

// closeFlushBudget bounds how long close waits for the writer to drain
// already-queued messages before closing the transport.
const closeFlushBudget = 100 * time.Millisecond

// start launches the reader and writer goroutines exactly once.
func (c *core) start() {
	c.startOnce.Do(func() {
		go c.readLoop()
		go c.writeLoop()
	})
}

func (c *core) readLoop() {
	buf := make([]byte, 0, 4096)
	tmp := make([]byte, 4096)
	for {
		n, err := c.transport.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
			for {
				msg, consumed, derr := wire.DecodeMax(buf, c.maxFrame)
				if derr == wire.ErrNeedMore {
					break
				}
				if derr != nil {
					select {
					case c.readErr <- derr:
					case <-c.died:
					}
					return
				}
				buf = buf[consumed:]
				select {
				case c.in <- msg:
				case <-c.died:
					return
				}
			}
		}
		if err != nil {
			select {
			case c.readErr <- err:
			case <-c.died:
			}
			return
		}
	}
}

func (c *core) writeLoop() {
	defer close(c.writeDone)
	for msg := range c.out {
		b := wire.Encode(msg)
		if _, err := c.transport.Write(b); err != nil {
			xlog.Debugf("session: write error: %v", err)
			return
		}
	}
}

// send enqueues msg for the writer goroutine. It reports false if the
// outbound queue is full (the caller treats that as
// SessionError{Backpressure}) or if the core has already been closed by
// any goroutine - send and close share mu, so this never races close()'s
// close(c.out).
func (c *core) send(msg wire.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.out <- msg:
		return true
	default:
		return false
	}
}

// flush attempts to enqueue msg even under backpressure, for a
// best-effort close handshake. It never blocks past the caller's own
// cancellation, and is a no-op once the core is already closed.
func (c *core) flush(msg wire.Message, cancel <-chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.out <- msg:
	case <-cancel:
	default:
	}
}

// close tears down the core exactly once: it marks the core closed (under
// mu, so no concurrent send/flush can be in flight when out is closed),
// wakes any goroutine blocked on died, closes the outbound queue (ending
// writeLoop once it has written what was already queued), waits up to
// closeFlushBudget for writeLoop to finish, and closes the transport
// (unblocking a pending Read in readLoop). Safe to call from any goroutine
// - the router's Send path and the FSM's own runLoop both call it.
func (c *core) close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.died)
		close(c.out)
		c.mu.Unlock()
		select {
		case <-c.writeDone:
		case <-time.After(closeFlushBudget):
		}
		c.transport.Close()
	})
}
