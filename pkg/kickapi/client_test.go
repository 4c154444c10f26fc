package kickapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return NewClient(
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithRetries(2, time.Millisecond),
	)
}

func TestClient_LiveStreamDetails(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/channels/xqc/livestream", func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		_, _ = w.Write([]byte(`{"data":{"id":123,"slug":"xqc-stream","session_title":"hi","viewers":10}}`))
	})
	mux.HandleFunc("GET /api/v2/channels/sleepy/livestream", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":null}`))
	})

	c := newTestClient(t, mux)
	ctx := context.Background()

	resp, err := c.LiveStreamDetails(ctx, "xqc")
	require.NoError(t, err)
	require.True(t, resp.IsLive())
	require.Equal(t, int64(123), resp.Data.ID)

	resp, err = c.LiveStreamDetails(ctx, "sleepy")
	require.NoError(t, err)
	require.False(t, resp.IsLive())
}

func TestClient_ChatRoomChannelAndViewers(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/channels/xqc/chatroom", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":668,"slow_mode":{"enabled":true,"message_interval":5}}`))
	})
	mux.HandleFunc("GET /api/v2/channels/xqc", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":676,"slug":"xqc","followers_count":5,"user":{"username":"xQc"}}`))
	})
	mux.HandleFunc("GET /current-viewers", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "123", r.URL.Query().Get("ids[]"))
		_, _ = w.Write([]byte(`[{"livestream_id":123,"viewers":4567}]`))
	})

	c := newTestClient(t, mux)
	ctx := context.Background()

	room, err := c.ChatRoom(ctx, "xqc")
	require.NoError(t, err)
	require.Equal(t, int64(668), room.ID)
	require.True(t, room.SlowMode.Enabled)

	ch, err := c.Channel(ctx, "xqc")
	require.NoError(t, err)
	require.Equal(t, int64(676), ch.ID)
	require.Equal(t, "xQc", ch.User.Username)

	viewers, err := c.CurrentViewers(ctx, "123")
	require.NoError(t, err)
	require.Equal(t, []CurrentViewers{{LivestreamID: 123, Viewers: 4567}}, viewers)
}

func TestClient_RetriesOnForbidden(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{"id":1}`))
	}))

	room, err := c.ChatRoom(context.Background(), "x")
	require.NoError(t, err)
	require.Equal(t, int64(1), room.ID)
	require.Equal(t, int32(3), calls.Load())
}

func TestClient_NotFoundIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))

	_, err := c.Channel(context.Background(), "ghost")
	require.Error(t, err)
	require.True(t, IsNotFound(err))
	require.Equal(t, int32(1), calls.Load())

	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestClient_ExhaustedRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := c.Categories(context.Background())
	require.Error(t, err)
	require.Equal(t, int32(3), calls.Load())
}

func TestClient_DirectoryEndpoints(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/categories/top", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"name":"Just Chatting","slug":"just-chatting","viewers":900,"banner":{"src":"b"},"category":{"id":2,"name":"IRL","slug":"irl","icon":"i"}}]`))
	})
	mux.HandleFunc("GET /api/v1/subcategories", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "2", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(`{"current_page":2,"data":[{"id":3,"name":"Slots","viewers":5}],"total":40}`))
	})
	mux.HandleFunc("GET /stream/featured-livestreams/en", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":9,"slug":"s","viewer_count":77}],"per_page":14}`))
	})
	mux.HandleFunc("GET /api/internal/v1/channels/xqc/chatroom/settings", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":{"code":200},"data":{"settings":{"slow_mode":true}}}`))
	})
	mux.HandleFunc("GET /api/v2/channels/xqc/leaderboards", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"gifts":[{"user_id":1,"username":"a","quantity":50}],"gifts_enabled":true}`))
	})

	c := newTestClient(t, mux)
	ctx := context.Background()

	top, err := c.TopCategories(ctx)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, "b", top[0].Banner.Src)
	require.Equal(t, "irl", top[0].Category.Slug)

	subs, err := c.Subcategories(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 2, subs.CurrentPage)
	require.Equal(t, "Slots", subs.Data[0].Name)

	featured, err := c.FeaturedLivestreams(ctx, "")
	require.NoError(t, err)
	require.Equal(t, 77, featured.Data[0].ViewerCount)

	settings, err := c.ChatRoomSettings(ctx, "xqc")
	require.NoError(t, err)
	require.Equal(t, true, settings.Data.Settings["slow_mode"])

	lb, err := c.Leaderboards(ctx, "xqc")
	require.NoError(t, err)
	require.True(t, lb.GiftsEnabled)
	require.Equal(t, 50, lb.Gifts[0].Quantity)
}

func TestCircuitBreaker(t *testing.T) {
	t.Parallel()

	cb := &circuitBreaker{}
	for i := 0; i < 9; i++ {
		cb.recordFailure()
	}
	require.False(t, cb.shouldSkip())

	cb.recordFailure()
	require.True(t, cb.shouldSkip())

	cb.recordSuccess()
	require.False(t, cb.shouldSkip())
}
