package watcher

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Guliveer/kick-watcher-go/internal/config"
	"github.com/Guliveer/kick-watcher-go/internal/logger"
	"github.com/Guliveer/kick-watcher-go/internal/pusher"
	"github.com/Guliveer/kick-watcher-go/pkg/kickapi"
	"github.com/Guliveer/kick-watcher-go/pkg/kickchat"
)

type stubResolver struct {
	mu      sync.Mutex
	calls   int
	offline int
	err     error
}

func (r *stubResolver) LiveStreamDetails(context.Context, string) (*kickapi.LiveStreamResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if r.calls <= r.offline {
		return &kickapi.LiveStreamResponse{}, nil
	}
	return &kickapi.LiveStreamResponse{Data: &kickapi.LiveStream{ID: 5}}, nil
}

func (r *stubResolver) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *stubResolver) ChatRoom(context.Context, string) (*kickapi.ChatRoom, error) {
	return &kickapi.ChatRoom{ID: 668}, nil
}

func (r *stubResolver) Channel(context.Context, string) (*kickapi.Channel, error) {
	return &kickapi.Channel{ID: 676}, nil
}

func (r *stubResolver) CurrentViewers(context.Context, string) ([]kickapi.CurrentViewers, error) {
	return nil, nil
}

// stubConn blocks reads until it is closed or told to fail.
type stubConn struct {
	fail      chan error
	closed    chan struct{}
	closeOnce sync.Once
}

func newStubConn() *stubConn {
	return &stubConn{fail: make(chan error, 1), closed: make(chan struct{})}
}

func (c *stubConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case err := <-c.fail:
		return nil, err
	case <-c.closed:
		return nil, pusher.ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *stubConn) WriteJSON(context.Context, any) error { return nil }

func (c *stubConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

type stubDialer struct {
	mu    sync.Mutex
	conns []*stubConn
}

func (d *stubDialer) Dial(context.Context, string) (pusher.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c := newStubConn()
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *stubDialer) Conns() []*stubConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*stubConn(nil), d.conns...)
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	cfg := logger.DefaultConfig()
	cfg.Output = io.Discard
	log, err := logger.Setup(cfg)
	require.NoError(t, err)
	return log
}

func fastReconnect(enabled bool) config.ReconnectConfig {
	return config.ReconnectConfig{
		Enabled:    &enabled,
		MinBackoff: time.Millisecond,
		MaxBackoff: 4 * time.Millisecond,
	}
}

func TestSupervisor_WaitsForStreamThenReconnects(t *testing.T) {
	t.Parallel()

	res := &stubResolver{offline: 2}
	dialer := &stubDialer{}
	conn := kickchat.New("xqc", kickchat.WithResolver(res), kickchat.WithDialer(dialer))
	sup := NewSupervisor(conn, fastReconnect(true), testLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- sup.Run(ctx) }()

	require.Eventually(t, func() bool { return len(dialer.Conns()) == 1 }, time.Second, time.Millisecond)
	require.GreaterOrEqual(t, res.Calls(), 3)

	dialer.Conns()[0].fail <- errors.New("connection reset")

	require.Eventually(t, func() bool { return len(dialer.Conns()) == 2 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return sup.Sessions() == 2 }, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-errCh)
	require.Eventually(t, func() bool {
		select {
		case <-dialer.Conns()[1].closed:
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)
	require.Equal(t, kickchat.StateDisconnected, conn.State())
}

func TestSupervisor_NoReconnectReturnsConnectError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	res := &stubResolver{err: boom}
	conn := kickchat.New("xqc", kickchat.WithResolver(res), kickchat.WithDialer(&stubDialer{}))
	sup := NewSupervisor(conn, fastReconnect(false), testLogger(t))

	err := sup.Run(context.Background())

	var rerr *kickchat.ResolutionError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, kickchat.StepLiveStream, rerr.Step)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, res.Calls())
}

func TestSupervisor_NoReconnectEndsWithSession(t *testing.T) {
	t.Parallel()

	dialer := &stubDialer{}
	conn := kickchat.New("xqc", kickchat.WithResolver(&stubResolver{}), kickchat.WithDialer(dialer))
	sup := NewSupervisor(conn, fastReconnect(false), testLogger(t))

	errCh := make(chan error, 1)
	go func() { errCh <- sup.Run(context.Background()) }()

	require.Eventually(t, func() bool { return len(dialer.Conns()) == 1 }, time.Second, time.Millisecond)
	require.NoError(t, dialer.Conns()[0].Close())

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("supervisor did not return after the session ended")
	}
	require.Equal(t, 1, sup.Sessions())
}

func TestSupervisor_CancelWhileOffline(t *testing.T) {
	t.Parallel()

	res := &stubResolver{offline: 1 << 30}
	conn := kickchat.New("xqc", kickchat.WithResolver(res), kickchat.WithDialer(&stubDialer{}))
	sup := NewSupervisor(conn, config.ReconnectConfig{MinBackoff: time.Hour}, testLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- sup.Run(ctx) }()

	require.Eventually(t, func() bool { return res.Calls() == 1 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-errCh)
	require.Zero(t, sup.Sessions())
}

func TestNextBackoff(t *testing.T) {
	t.Parallel()

	b := time.Second
	var got []time.Duration
	for i := 0; i < 8; i++ {
		b = nextBackoff(b, 60*time.Second)
		got = append(got, b)
	}
	require.Equal(t, []time.Duration{
		2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second,
		32 * time.Second, 60 * time.Second, 60 * time.Second, 60 * time.Second,
	}, got)
}

func TestNewSupervisor_Defaults(t *testing.T) {
	t.Parallel()

	sup := NewSupervisor(kickchat.New("xqc"), config.ReconnectConfig{}, testLogger(t))
	require.True(t, sup.reconnect)
	require.Equal(t, time.Second, sup.minBackoff)
	require.Equal(t, 60*time.Second, sup.maxBackoff)
}
