// Package constants defines the Kick API endpoints, Pusher application
// identifiers, user-agent strings, and default timeout/interval values used
// throughout the watcher.
package constants

import (
	"fmt"
	"time"
)

// KickURL is the base Kick web URL. The REST API lives under /api.
const KickURL = "https://kick.com"

const (
	// PusherKey is the public Pusher application key used by the Kick web client.
	PusherKey = "32cbd69e4b950bf97679"
	// PusherCluster is the Pusher cluster hosting Kick's realtime channels.
	PusherCluster = "us2"
	// PusherProtocol is the Pusher wire protocol revision.
	PusherProtocol = 7
	// PusherClientVersion is the pusher-js version reported on connect.
	PusherClientVersion = "8.4.0-rc2"
)

// PusherURL builds the websocket endpoint for the given application key and cluster.
func PusherURL(key, cluster string) string {
	return fmt.Sprintf("wss://ws-%s.pusher.com/app/%s?protocol=%d&client=js&version=%s&flash=false",
		cluster, key, PusherProtocol, PusherClientVersion)
}

// DefaultPusherURL is the fixed realtime endpoint for Kick chat.
var DefaultPusherURL = PusherURL(PusherKey, PusherCluster)

const (
	// ChatroomChannelFormat is the Pusher channel carrying chat events for a chatroom ID.
	ChatroomChannelFormat = "chatrooms.%d.v2"
	// ChannelChannelFormat is the Pusher channel carrying channel-level events for a channel ID.
	ChannelChannelFormat = "channel.%d"
)

// DefaultUserAgent is the user-agent string used for API requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// DefaultRegion is the region used for featured livestream lookups.
const DefaultRegion = "en"

const (
	// DefaultHTTPTimeout is the default timeout for Kick API requests.
	DefaultHTTPTimeout = 15 * time.Second
	// DefaultMaxRetries is the default number of retries for API requests.
	DefaultMaxRetries = 3
	// DefaultViewerPollInterval is the delay between viewer-count polls,
	// measured from the end of one poll to the start of the next.
	DefaultViewerPollInterval = 60 * time.Second
	// DefaultReconnectMinBackoff is the first delay before a CLI reconnect attempt.
	DefaultReconnectMinBackoff = time.Second
	// DefaultReconnectMaxBackoff caps the CLI reconnect delay.
	DefaultReconnectMaxBackoff = 60 * time.Second
	// DefaultGracefulShutdownTimeout is the timeout for graceful HTTP server shutdown.
	DefaultGracefulShutdownTimeout = 5 * time.Second
	// MaxFrameSize is the read limit for a single Pusher frame.
	MaxFrameSize = 1 << 20
)
