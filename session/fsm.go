package session

import (
	"context"
	"time"

	"github.com/badu/synergy/wire"
)

// runLoop drives the Connected-state event loop common to both sides:
// heartbeat emission every cfg.keepAlive, timeout detection after
// cfg.effectiveTimeout with no inbound traffic of any kind, and dispatch of
// inbound frames to onMessage. It returns once the session ends, for any
// reason, after closing events and the underlying core exactly once.
//
// onMessage reports whether the session should stop, the reason to surface
// on the final Disconnected event, and an optional best-effort message to
// flush before the transport closes.
func runLoop(ctx context.Context, c *core, cfg *config, events chan Event, onMessage func(wire.Message) (stop bool, reason error, closeMsg wire.Message)) {
	keepalive := time.NewTicker(cfg.keepAlive)
	defer keepalive.Stop()
	timeout := time.NewTimer(cfg.effectiveTimeout())
	defer timeout.Stop()

	finish := func(reason error, closeMsg wire.Message) {
		if closeMsg != nil {
			c.flush(closeMsg, ctx.Done())
		}
		select {
		case events <- Disconnected{Reason: reason}:
		case <-c.died:
		}
		close(events)
		c.close()
	}

	for {
		select {
		case <-ctx.Done():
			finish(ctx.Err(), nil)
			return

		case err := <-c.readErr:
			finish(err, nil)
			return

		case <-timeout.C:
			finish(&Error{Kind: ErrTimeout}, nil)
			return

		case <-keepalive.C:
			if !c.send(wire.KeepAlive{}) {
				finish(&Error{Kind: ErrBackpressure}, nil)
				return
			}

		case msg := <-c.in:
			if !timeout.Stop() {
				<-timeout.C
			}
			timeout.Reset(cfg.effectiveTimeout())

			stop, reason, closeMsg := onMessage(msg)
			if stop {
				finish(reason, closeMsg)
				return
			}
		}
	}
}
