package session

import (
	"time"

	"github.com/badu/synergy/wire"
)

// Defaults mirror spec.md §4.2/§4.5: a 3s keepalive (timeout at 3x that), a
// 4096-message outbound queue, and the codec's own default frame cap.
const (
	DefaultKeepAlive         = 3 * time.Second
	DefaultOutboundQueueSize = 4096
	DefaultMaxFrameSize      = wire.DefaultMaxFrameSize
	DefaultProtocolMajor     = 1
	DefaultProtocolMinor     = 6
	MinSupportedMinor        = 3
)

type config struct {
	keepAlive  time.Duration
	timeout    time.Duration
	queueSize  int
	maxFrame   uint32
	screenName string
	width      int
	height     int
}

func newConfig() *config {
	return &config{
		keepAlive: DefaultKeepAlive,
		queueSize: DefaultOutboundQueueSize,
		maxFrame:  DefaultMaxFrameSize,
	}
}

// effectiveTimeout returns the configured timeout, or 3x the keepalive
// interval if the caller never set one explicitly.
func (c *config) effectiveTimeout() time.Duration {
	if c.timeout > 0 {
		return c.timeout
	}
	return 3 * c.keepAlive
}

// Option configures a ClientSession or ServerSession the way mouse.Option
// and core.Option configure the teacher's dispatcher types.
type Option func(*config)

// WithKeepAlive overrides the T_keepalive interval.
func WithKeepAlive(d time.Duration) Option {
	return func(c *config) { c.keepAlive = d }
}

// WithTimeout overrides T_timeout. When unset, T_timeout defaults to 3x the
// configured keepalive.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithOutboundQueueSize overrides the bounded outbound queue depth that
// triggers SessionError.Backpressure when exceeded.
func WithOutboundQueueSize(n int) Option {
	return func(c *config) { c.queueSize = n }
}

// WithMaxFrameSize overrides the codec's frame-size cap for this session.
func WithMaxFrameSize(n uint32) Option {
	return func(c *config) { c.maxFrame = n }
}

// WithScreenName overrides the screen name passed to Dial, sent in
// HelloBack.
func WithScreenName(name string) Option {
	return func(c *config) { c.screenName = name }
}

// WithGeometry sets the client's screen geometry, reported in Info.
func WithGeometry(w, h int) Option {
	return func(c *config) { c.width, c.height = w, h }
}
