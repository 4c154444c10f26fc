package kickchat

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Guliveer/kick-watcher-go/internal/pusher"
	"github.com/Guliveer/kick-watcher-go/pkg/events"
	"github.com/Guliveer/kick-watcher-go/pkg/kickapi"
)

const (
	testChannel    = "xqc"
	testChatroomID = 668
	testChannelID  = 676
	testStreamID   = 5
)

type fakeResolver struct {
	mu        sync.Mutex
	liveCalls int

	liveFn      func(call int) (*kickapi.LiveStreamResponse, error)
	chatRoomErr error
	channelErr  error
	viewersFn   func(id string) ([]kickapi.CurrentViewers, error)

	// viewersCtxFn takes precedence over viewersFn and sees the call's context.
	viewersCtxFn func(ctx context.Context, id string) ([]kickapi.CurrentViewers, error)
}

func liveResponse() *kickapi.LiveStreamResponse {
	return &kickapi.LiveStreamResponse{Data: &kickapi.LiveStream{ID: testStreamID}}
}

func (f *fakeResolver) LiveStreamDetails(context.Context, string) (*kickapi.LiveStreamResponse, error) {
	f.mu.Lock()
	f.liveCalls++
	call := f.liveCalls
	fn := f.liveFn
	f.mu.Unlock()

	if fn == nil {
		return liveResponse(), nil
	}
	return fn(call)
}

func (f *fakeResolver) LiveCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.liveCalls
}

func (f *fakeResolver) ChatRoom(context.Context, string) (*kickapi.ChatRoom, error) {
	if f.chatRoomErr != nil {
		return nil, f.chatRoomErr
	}
	return &kickapi.ChatRoom{ID: testChatroomID}, nil
}

func (f *fakeResolver) Channel(context.Context, string) (*kickapi.Channel, error) {
	if f.channelErr != nil {
		return nil, f.channelErr
	}
	return &kickapi.Channel{ID: testChannelID, Slug: testChannel}, nil
}

func (f *fakeResolver) CurrentViewers(ctx context.Context, id string) ([]kickapi.CurrentViewers, error) {
	if f.viewersCtxFn != nil {
		return f.viewersCtxFn(ctx, id)
	}
	if f.viewersFn != nil {
		return f.viewersFn(id)
	}
	return []kickapi.CurrentViewers{{LivestreamID: testStreamID, Viewers: 100}}, nil
}

type fakeConn struct {
	frames    chan []byte
	readErr   chan error
	closed    chan struct{}
	closeOnce sync.Once

	mu       sync.Mutex
	written  []string
	writeErr error
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		frames:  make(chan []byte, 32),
		readErr: make(chan error, 1),
		closed:  make(chan struct{}),
	}
}

func (f *fakeConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case <-f.closed:
		return nil, pusher.ErrClosed
	default:
	}

	select {
	case b := <-f.frames:
		return b, nil
	case err := <-f.readErr:
		return nil, err
	case <-f.closed:
		return nil, pusher.ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeConn) WriteJSON(_ context.Context, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writeErr != nil {
		return f.writeErr
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.written = append(f.written, string(b))
	return nil
}

func (f *fakeConn) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) Written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.written...)
}

func (f *fakeConn) IsClosed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

type fakeDialer struct {
	conn  *fakeConn
	err   error
	calls atomic.Int32
	url   atomic.Value
}

func (d *fakeDialer) Dial(_ context.Context, url string) (Conn, error) {
	d.calls.Add(1)
	d.url.Store(url)
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

type clockWaiter struct {
	at time.Time
	ch chan time.Time
}

// fakeClock fires After channels only when advanced.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []clockWaiter
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(0, 0)}
}

func (f *fakeClock) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan time.Time, 1)
	f.waiters = append(f.waiters, clockWaiter{at: f.now.Add(d), ch: ch})
	return ch
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = f.now.Add(d)
	pending := f.waiters[:0]
	for _, w := range f.waiters {
		if w.at.After(f.now) {
			pending = append(pending, w)
			continue
		}
		w.ch <- f.now
	}
	f.waiters = pending
}

func (f *fakeClock) Waiters() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.waiters)
}

// recorder collects every event published on a bus.
type recorder struct {
	mu  sync.Mutex
	evs []events.Event
}

func record(c *Connection) *recorder {
	r := &recorder{}
	c.Bus().SubscribeAll(func(ev events.Event) {
		r.mu.Lock()
		r.evs = append(r.evs, ev)
		r.mu.Unlock()
	})
	return r
}

func (r *recorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.evs...)
}

func (r *recorder) Count(kind events.Kind) int {
	n := 0
	for _, ev := range r.Events() {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func (r *recorder) Of(kind events.Kind) []events.Event {
	var out []events.Event
	for _, ev := range r.Events() {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// frame builds an inbound frame whose data is a JSON-encoded string, the way
// Pusher delivers application events.
func frame(event, data string) []byte {
	b, err := json.Marshal(map[string]string{"event": event, "data": data})
	if err != nil {
		panic(err)
	}
	return b
}

func appEvent(eventType string) string {
	return `App\Events\` + eventType
}
