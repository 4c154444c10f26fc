package kickchat

import (
	"log/slog"
	"time"

	"github.com/Guliveer/kick-watcher-go/internal/pusher"
	"github.com/Guliveer/kick-watcher-go/pkg/kickapi"
)

// Clock schedules the viewer poller's waits.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Dialer opens the realtime socket. The default dials a websocket.
type Dialer = pusher.Dialer

// Conn is an open realtime socket as returned by a Dialer.
type Conn = pusher.Conn

// Option configures a Connection.
type Option func(*Connection)

// WithResolver sets the metadata resolver. The default is a kickapi.Client.
func WithResolver(r kickapi.Resolver) Option {
	return func(c *Connection) { c.resolver = r }
}

// WithDialer sets the realtime transport dialer.
func WithDialer(d Dialer) Option {
	return func(c *Connection) { c.dialer = d }
}

// WithLogger sets the logger for connection diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(c *Connection) {
		if log != nil {
			c.log = log
		}
	}
}

// WithEndpoint overrides the Pusher websocket URL.
func WithEndpoint(url string) Option {
	return func(c *Connection) {
		if url != "" {
			c.endpoint = url
		}
	}
}

// WithViewerPollInterval sets the delay between viewer-count polls.
func WithViewerPollInterval(d time.Duration) Option {
	return func(c *Connection) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithClock replaces the clock used by the viewer poller.
func WithClock(clock Clock) Option {
	return func(c *Connection) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithUserAgent sets the user agent sent by the default resolver and the
// default dialer. An empty string keeps the default.
func WithUserAgent(ua string) Option {
	return func(c *Connection) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}
