package router

import "github.com/badu/synergy/session"

// DefaultInboundQueueSize bounds both the aggregated ServerEvent stream and
// the local-passthrough stream the application drains.
const DefaultInboundQueueSize = 1024

type config struct {
	queueSize      int
	sessionOptions []session.Option
}

func newConfig() *config {
	return &config{queueSize: DefaultInboundQueueSize}
}

// Option configures a Server.
type Option func(*config)

// WithInboundQueueSize overrides DefaultInboundQueueSize.
func WithInboundQueueSize(n int) Option {
	return func(c *config) { c.queueSize = n }
}

// WithSessionOptions forwards extra session.Option values (WithKeepAlive,
// WithTimeout, WithOutboundQueueSize, ...) to every ServerSession this
// router accepts.
func WithSessionOptions(opts ...session.Option) Option {
	return func(c *config) { c.sessionOptions = append(c.sessionOptions, opts...) }
}
