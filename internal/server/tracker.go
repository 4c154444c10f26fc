package server

import (
	"sync"
	"time"

	"github.com/Guliveer/kick-watcher-go/pkg/events"
)

const (
	maxViewerSamples = 240
	maxChatLines     = 50
)

// ViewerSample is one viewer-count observation.
type ViewerSample struct {
	LivestreamID int64     `json:"livestream_id"`
	Viewers      int       `json:"viewers"`
	At           time.Time `json:"at"`
}

// ChatLine is a chat message kept for the dashboard.
type ChatLine struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Color    string    `json:"color,omitempty"`
	Content  string    `json:"content"`
	At       time.Time `json:"at"`
}

// Status is a snapshot of what the tracker has observed.
type Status struct {
	Channel     string        `json:"channel"`
	Connected   bool          `json:"connected"`
	Live        *bool         `json:"live,omitempty"`
	RoomID      int64         `json:"room_id,omitempty"`
	Sessions    int           `json:"sessions"`
	ConnectedAt *time.Time    `json:"connected_at,omitempty"`
	Uptime      string        `json:"uptime"`
	Viewers     *ViewerSample `json:"viewers,omitempty"`
	LastError   string        `json:"last_error,omitempty"`
	LastErrorAt *time.Time    `json:"last_error_at,omitempty"`
}

// Tracker records session state from published events. It is safe for
// concurrent use.
type Tracker struct {
	channel string
	started time.Time

	mu          sync.RWMutex
	connected   bool
	live        *bool
	roomID      int64
	sessions    int
	connectedAt time.Time
	viewers     []ViewerSample
	chat        []ChatLine
	counts      map[events.Kind]int
	lastError   string
	lastErrorAt time.Time
}

// NewTracker creates a Tracker for channel.
func NewTracker(channel string) *Tracker {
	return &Tracker{
		channel: channel,
		started: time.Now(),
		counts:  make(map[events.Kind]int),
	}
}

// Attach subscribes the tracker to every event on bus.
func (t *Tracker) Attach(bus *events.Bus) events.ListenerID {
	return bus.SubscribeAll(t.Observe)
}

// Observe records one event.
func (t *Tracker) Observe(ev events.Event) {
	at := ev.Time
	if at.IsZero() {
		at = time.Now()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.counts[ev.Kind]++

	switch p := ev.Payload.(type) {
	case events.Connected:
		t.connected = true
		t.roomID = p.RoomID
		t.sessions++
		t.connectedAt = at

	case events.ViewerCount:
		t.viewers = appendCapped(t.viewers, ViewerSample{
			LivestreamID: p.LivestreamID,
			Viewers:      p.Viewers,
			At:           at,
		}, maxViewerSamples)

	case *events.ChatMessage:
		t.chat = appendCapped(t.chat, ChatLine{
			ID:       p.ID,
			Username: p.Sender.Username,
			Color:    p.Sender.Identity.Color,
			Content:  p.Content,
			At:       at,
		}, maxChatLines)

	case *events.StreamerIsLive:
		t.setLive(true)

	case events.StreamEnd:
		t.setLive(false)

	case error:
		t.lastError = p.Error()
		t.lastErrorAt = at
	}

	if ev.Kind == events.KindDisconnected {
		t.connected = false
	}
}

func (t *Tracker) setLive(live bool) {
	t.live = &live
}

// Status returns a snapshot of the current state.
func (t *Tracker) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st := Status{
		Channel:   t.channel,
		Connected: t.connected,
		RoomID:    t.roomID,
		Sessions:  t.sessions,
		Uptime:    time.Since(t.started).Round(time.Second).String(),
		LastError: t.lastError,
	}
	if t.live != nil {
		live := *t.live
		st.Live = &live
	}
	if !t.connectedAt.IsZero() {
		at := t.connectedAt
		st.ConnectedAt = &at
	}
	if n := len(t.viewers); n > 0 {
		last := t.viewers[n-1]
		st.Viewers = &last
	}
	if !t.lastErrorAt.IsZero() {
		at := t.lastErrorAt
		st.LastErrorAt = &at
	}
	return st
}

// Viewers returns the recorded viewer-count history, oldest first.
func (t *Tracker) Viewers() []ViewerSample {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]ViewerSample{}, t.viewers...)
}

// Chat returns the most recent chat lines, oldest first.
func (t *Tracker) Chat() []ChatLine {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]ChatLine{}, t.chat...)
}

// Counts returns the number of events seen per kind.
func (t *Tracker) Counts() map[events.Kind]int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[events.Kind]int, len(t.counts))
	for k, v := range t.counts {
		out[k] = v
	}
	return out
}

func appendCapped[T any](s []T, v T, limit int) []T {
	s = append(s, v)
	if len(s) > limit {
		s = append(s[:0], s[len(s)-limit:]...)
	}
	return s
}
