// Package kickchat connects to the realtime chat of a Kick channel and
// republishes what arrives as typed events on an events.Bus.
//
// A Connection resolves the channel through a kickapi.Resolver, opens a
// Pusher websocket, subscribes to the chatroom and channel feeds and then
// handles frames one at a time on a single goroutine: decode, route,
// publish. Listeners run on that goroutine, so a slow listener delays the
// frames behind it.
//
// Errors before Connect returns are returned to the caller. After that they
// are only published as events.KindError. The connection never reconnects
// on its own.
package kickchat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Guliveer/kick-watcher-go/internal/constants"
	"github.com/Guliveer/kick-watcher-go/internal/pusher"
	"github.com/Guliveer/kick-watcher-go/pkg/events"
	"github.com/Guliveer/kick-watcher-go/pkg/kickapi"
)

// State is the lifecycle state of a Connection.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Connection is a chat session for one channel. It is safe for concurrent
// use; Connect may be called again after the previous session ended.
type Connection struct {
	channel string

	resolver     kickapi.Resolver
	dialer       Dialer
	endpoint     string
	userAgent    string
	clock        Clock
	pollInterval time.Duration
	log          *slog.Logger
	bus          *events.Bus
	poller       *viewerPoller

	mu      sync.Mutex
	state   State
	sess    *session
	roomID  int64
	attempt uint64
}

// session is one transport instance and its read loop.
type session struct {
	conn    Conn
	ctx     context.Context
	cancel  context.CancelFunc
	closing atomic.Bool
	done    chan struct{}

	writeMu sync.Mutex
}

func (s *session) write(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(s.ctx, v)
}

// close marks the session as closed by us and closes the socket.
func (s *session) close() {
	if s.closing.Swap(true) {
		return
	}
	s.cancel()
	_ = s.conn.Close()
}

// New creates a Connection for channel. Nothing is fetched or dialed until
// Connect is called.
func New(channel string, opts ...Option) *Connection {
	c := &Connection{
		channel:      channel,
		endpoint:     constants.DefaultPusherURL,
		userAgent:    constants.DefaultUserAgent,
		clock:        realClock{},
		pollInterval: constants.DefaultViewerPollInterval,
		log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.log = c.log.With("channel", channel)
	if c.resolver == nil {
		c.resolver = kickapi.NewClient(
			kickapi.WithUserAgent(c.userAgent),
			kickapi.WithLogger(c.log),
		)
	}
	if c.dialer == nil {
		header := http.Header{}
		header.Set("User-Agent", c.userAgent)
		header.Set("Origin", constants.KickURL)
		c.dialer = pusher.WebsocketDialer{Header: header}
	}

	c.bus = events.NewBus(c.log)
	c.poller = newViewerPoller(c)
	return c
}

// On registers a typed listener on the connection's bus.
func On[P any](c *Connection, topic events.Topic[P], fn func(P)) events.ListenerID {
	return events.Subscribe(c.bus, topic, fn)
}

// Off removes a listener registered with On or through Bus.
func (c *Connection) Off(id events.ListenerID) bool {
	return c.bus.Unsubscribe(id)
}

// Bus returns the bus events are published on.
func (c *Connection) Bus() *events.Bus { return c.bus }

// Channel returns the channel name the connection was created for.
func (c *Connection) Channel() string { return c.channel }

// State returns the current lifecycle state.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RoomID returns the chatroom ID of the last successful Connect.
func (c *Connection) RoomID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID
}

// Connect resolves the channel, opens the socket and subscribes to the
// chatroom and channel feeds. It returns the chatroom ID.
//
// events.KindConnected is published before Connect returns, so listeners
// registered afterwards do not see it. If any viewer-count listener is
// registered at that point the viewer poller is started.
//
// ctx bounds resolution, dial and subscription only. The session lives
// until Disconnect is called or the socket closes.
func (c *Connection) Connect(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return "", ErrAlreadyConnected
	}
	c.state = StateConnecting
	c.attempt++
	attempt := c.attempt
	c.mu.Unlock()

	roomID, err := c.connect(ctx, attempt)
	if err != nil {
		c.mu.Lock()
		if c.attempt == attempt {
			c.state = StateDisconnected
		}
		c.mu.Unlock()
		return "", err
	}
	return strconv.FormatInt(roomID, 10), nil
}

func (c *Connection) connect(ctx context.Context, attempt uint64) (int64, error) {
	c.log.Info("Connecting to live stream")

	live, err := c.resolver.LiveStreamDetails(ctx, c.channel)
	if err != nil {
		return 0, &ResolutionError{Channel: c.channel, Step: StepLiveStream, Err: err}
	}
	if !live.IsLive() {
		return 0, &OfflineError{Channel: c.channel}
	}
	c.log.Debug("Resolved live stream", "livestream_id", live.Data.ID)

	room, err := c.resolver.ChatRoom(ctx, c.channel)
	if err != nil {
		return 0, &ResolutionError{Channel: c.channel, Step: StepChatRoom, Err: err}
	}
	c.log.Debug("Resolved chatroom", "chatroom_id", room.ID)

	ch, err := c.resolver.Channel(ctx, c.channel)
	if err != nil {
		return 0, &ResolutionError{Channel: c.channel, Step: StepChannel, Err: err}
	}
	c.log.Debug("Resolved channel", "channel_id", ch.ID)

	conn, err := c.dialer.Dial(ctx, c.endpoint)
	if err != nil {
		terr := &TransportError{Op: "dial", Err: err}
		c.publishError(terr)
		return 0, terr
	}

	sctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &session{conn: conn, ctx: sctx, cancel: cancel, done: make(chan struct{})}

	channels := []string{
		fmt.Sprintf(constants.ChatroomChannelFormat, room.ID),
		fmt.Sprintf(constants.ChannelChannelFormat, ch.ID),
	}
	for _, name := range channels {
		if err := conn.WriteJSON(ctx, pusher.Subscribe(name)); err != nil {
			s.close()
			terr := &TransportError{Op: "subscribe", Err: err}
			c.publishError(terr)
			return 0, terr
		}
	}

	c.mu.Lock()
	if c.attempt != attempt {
		c.mu.Unlock()
		s.close()
		return 0, &TransportError{Op: "subscribe", Err: ErrConnectAborted}
	}
	c.state = StateConnected
	c.sess = s
	c.roomID = room.ID
	c.mu.Unlock()

	c.log.Info("Connected to chat", "chatroom_id", room.ID, "channel_id", ch.ID)
	events.Publish(c.bus, events.TopicConnected, events.Connected{RoomID: room.ID})

	// A connected listener may already have called Disconnect or started a
	// new attempt; the poller belongs only to the current session.
	c.mu.Lock()
	if c.sess == s && c.attempt == attempt && c.bus.ListenerCount(events.KindViewerCount) > 0 {
		c.poller.start()
	}
	c.mu.Unlock()

	// The read loop still runs for a superseded session so its close is
	// reported as disconnected.
	go c.readLoop(s)

	return room.ID, nil
}

// Disconnect closes the socket and stops the viewer poller. It does not
// wait for the close handshake. Calling it again, or without a session,
// does nothing beyond stopping the poller. events.KindDisconnected is
// published once by the read loop when it observes the close.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	s := c.sess
	c.sess = nil
	c.state = StateDisconnected
	c.attempt++
	c.mu.Unlock()

	if s != nil {
		c.log.Info("Disconnecting")
		s.close()
	}
	c.poller.stop()
}

// Done returns a channel closed when the current session's read loop has
// exited. It returns nil when there is no session.
func (c *Connection) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return nil
	}
	return c.sess.done
}

func (c *Connection) readLoop(s *session) {
	defer close(s.done)

	for {
		raw, err := s.conn.Read(s.ctx)
		if err != nil {
			c.endSession(s, err)
			return
		}
		c.handleFrame(s, raw)
	}
}

// endSession clears the session if it is still current and publishes the
// terminal events for it.
func (c *Connection) endSession(s *session, err error) {
	abnormal := !s.closing.Load() && !errors.Is(err, pusher.ErrClosed)
	s.close()

	c.mu.Lock()
	current := c.sess == s
	if current {
		c.sess = nil
		c.state = StateDisconnected
	}
	c.mu.Unlock()
	if current {
		c.poller.stop()
	}

	if abnormal {
		c.log.Error("Chat connection lost", "error", err)
		c.publishError(&TransportError{Op: "read", Err: err})
	} else {
		c.log.Info("Chat connection closed")
	}
	events.Publish(c.bus, events.TopicDisconnected, struct{}{})
}

func (c *Connection) publishError(err error) {
	events.Publish(c.bus, events.TopicError, err)
}
