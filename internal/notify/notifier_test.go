package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Guliveer/kick-watcher-go/internal/config"
	"github.com/Guliveer/kick-watcher-go/internal/logger"
	"github.com/Guliveer/kick-watcher-go/pkg/events"
)

type capture struct {
	mu   sync.Mutex
	reqs []*http.Request
	body [][]byte
}

func (c *capture) server(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.reqs = append(c.reqs, r)
		c.body = append(c.body, b)
		c.mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (c *capture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.reqs)
}

func testLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg := logger.DefaultConfig()
	cfg.Colored = false
	cfg.Output = &buf
	log, err := logger.Setup(cfg)
	require.NoError(t, err)
	return log, &buf
}

func TestDispatcher_FiltersByKind(t *testing.T) {
	t.Parallel()

	var discord, hook capture
	discordSrv := discord.server(t, http.StatusNoContent)
	hookSrv := hook.server(t, http.StatusOK)

	log, _ := testLogger(t)
	d := NewDispatcher(config.NotificationsConfig{
		Discord: &config.DiscordConfig{Enabled: true, WebhookURL: discordSrv.URL, Events: []string{"userBanned"}},
		Webhook: &config.WebhookConfig{Enabled: true, Endpoint: hookSrv.URL, Events: []string{"userbanned", "chatMessage"}},
	}, "xqc", log)

	require.True(t, d.HasNotifiers())
	require.True(t, d.Wants(events.KindChatMessage))
	require.False(t, d.Wants(events.KindViewerCount))

	ctx := context.Background()
	d.Dispatch(ctx, events.KindUserBanned, "troll was banned")
	d.Dispatch(ctx, events.KindChatMessage, "alice: hi")
	d.Dispatch(ctx, events.KindViewerCount, "100 viewers")
	d.Wait()

	require.Equal(t, 1, discord.count())
	require.Equal(t, 2, hook.count())

	var msg discordMessage
	require.NoError(t, json.Unmarshal(discord.body[0], &msg))
	require.Equal(t, "Kick Watcher", msg.Username)
	require.Len(t, msg.Embeds, 1)

	embed := msg.Embeds[0]
	require.Equal(t, "xqc", embed.Title)
	require.Equal(t, "https://kick.com/xqc", embed.URL)
	require.Equal(t, "troll was banned", embed.Description)
	require.Equal(t, kickGreen, embed.Color)
	require.Equal(t, []discordField{
		{Name: "Channel", Value: "xqc", Inline: true},
		{Name: "Event", Value: "userBanned", Inline: true},
	}, embed.Fields)

	ts, err := time.Parse(time.RFC3339, embed.Timestamp)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestChannelURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://kick.com/xqc", channelURL("xqc"))
	require.Equal(t, "https://kick.com/a%2Fb", channelURL("a/b"))
	require.Empty(t, channelURL(""))
}

func TestDispatcher_DefaultFilterIsStreamLifecycle(t *testing.T) {
	t.Parallel()

	var hook capture
	srv := hook.server(t, http.StatusOK)

	log, _ := testLogger(t)
	d := NewDispatcher(config.NotificationsConfig{
		Webhook: &config.WebhookConfig{Enabled: true, Endpoint: srv.URL},
	}, "xqc", log)

	d.Dispatch(context.Background(), events.KindChatMessage, "ignored")
	d.Dispatch(context.Background(), events.KindStreamerIsLive, "live")
	d.Dispatch(context.Background(), events.KindStreamEnd, "ended")
	d.Wait()

	require.Equal(t, 2, hook.count())
}

func TestDispatcher_LogsFailures(t *testing.T) {
	t.Parallel()

	var hook capture
	srv := hook.server(t, http.StatusInternalServerError)

	log, buf := testLogger(t)
	d := NewDispatcher(config.NotificationsConfig{
		Webhook: &config.WebhookConfig{Enabled: true, Endpoint: srv.URL, Events: []string{"error"}},
	}, "xqc", log)

	log.SetNotifyFunc(d.NotifyFunc())
	log.Event(context.Background(), events.KindError, "socket died")
	d.Wait()

	require.Equal(t, 1, hook.count())
	require.Contains(t, buf.String(), "Notification send failed")
	require.Contains(t, buf.String(), "webhook: unexpected status 500")
}

func TestDispatcher_DisabledProviders(t *testing.T) {
	t.Parallel()

	log, _ := testLogger(t)
	d := NewDispatcher(config.NotificationsConfig{
		Discord: &config.DiscordConfig{Enabled: false, WebhookURL: "http://unused"},
	}, "xqc", log)

	require.False(t, d.HasNotifiers())
	require.False(t, d.Wants(events.KindStreamerIsLive))
}

func TestWebhook_GetAndPost(t *testing.T) {
	t.Parallel()

	var hook capture
	srv := hook.server(t, http.StatusOK)

	get := &Webhook{url: srv.URL + "/notify?token=abc", method: "get", httpClient: srv.Client()}
	require.NoError(t, get.Send(context.Background(), events.KindStreamEnd, "xqc", "stream ended"))

	post := &Webhook{url: srv.URL, method: http.MethodPost, httpClient: srv.Client()}
	require.NoError(t, post.Send(context.Background(), events.KindStreamerIsLive, "xqc", "live now"))

	bad := &Webhook{url: srv.URL, method: http.MethodPut, httpClient: srv.Client()}
	require.ErrorContains(t, bad.Send(context.Background(), events.KindStreamEnd, "t", "m"), "unsupported method")

	require.Equal(t, 2, hook.count())

	q := hook.reqs[0].URL.Query()
	require.Equal(t, http.MethodGet, hook.reqs[0].Method)
	require.Equal(t, "abc", q.Get("token"))
	require.Equal(t, "streamEnd", q.Get("event"))
	require.Equal(t, "stream ended", q.Get("message"))

	var payload webhookPayload
	require.NoError(t, json.Unmarshal(hook.body[1], &payload))
	require.Equal(t, "streamerIsLive", payload.Event)
	require.Equal(t, "live now", payload.Message)
	require.False(t, payload.SentAt.IsZero())
}
