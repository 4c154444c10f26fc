package pusher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/Guliveer/kick-watcher-go/internal/constants"
)

// ErrClosed is returned by Conn.Read once the socket has been closed
// normally by either side.
var ErrClosed = errors.New("pusher: connection closed")

// Conn is an open realtime socket.
type Conn interface {
	// Read blocks until the next frame arrives.
	Read(ctx context.Context) ([]byte, error)
	// WriteJSON sends v as a single text frame.
	WriteJSON(ctx context.Context, v any) error
	// Close starts closing the socket. It does not wait for the remote
	// close handshake and is safe to call more than once.
	Close() error
}

// Dialer opens realtime sockets.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WebsocketDialer dials Pusher over a websocket.
type WebsocketDialer struct {
	// Header is sent with the upgrade request.
	Header http.Header
	// ReadLimit caps the size of one frame. Zero means constants.MaxFrameSize.
	ReadLimit int64
}

// Dial opens a websocket to url.
func (d WebsocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	c, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPHeader: d.Header,
	})
	if err != nil {
		return nil, fmt.Errorf("dialing Pusher server: %w", err)
	}

	limit := d.ReadLimit
	if limit <= 0 {
		limit = constants.MaxFrameSize
	}
	c.SetReadLimit(limit)

	return &wsConn{conn: c}, nil
}

type wsConn struct {
	conn      *websocket.Conn
	closeOnce sync.Once
}

func (w *wsConn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := w.conn.Read(ctx)
	if err != nil {
		switch websocket.CloseStatus(err) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			return nil, ErrClosed
		}
		return nil, err
	}
	return data, nil
}

func (w *wsConn) WriteJSON(ctx context.Context, v any) error {
	return wsjson.Write(ctx, w.conn, v)
}

func (w *wsConn) Close() error {
	w.closeOnce.Do(func() {
		go w.conn.Close(websocket.StatusNormalClosure, "closing")
	})
	return nil
}
