// Package router implements the server-side event router: it dispatches
// host input to the currently active screen's connection via the Layout
// engine, and aggregates events arriving from every connected client into
// one ordered application-facing stream.
package router

import "github.com/badu/synergy/session"

// ServerEvent is one session.Event tagged with the screen name it arrived
// from, delivered on a single aggregated stream in arrival order.
type ServerEvent struct {
	Client string
	Event  session.Event
}
