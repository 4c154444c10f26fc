package events

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
)

// Event is one published domain event as seen by untyped listeners.
type Event struct {
	Kind    Kind
	Payload any
	Time    time.Time
}

// Handler receives events from a Bus.
type Handler func(Event)

// ListenerID identifies a registered listener.
type ListenerID string

type listener struct {
	id ListenerID
	fn Handler
}

// Bus is a synchronous publish/subscribe hub. Publish calls every matching
// listener on the publishing goroutine and returns when all of them have
// returned. It is safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	byKind map[Kind][]listener
	all    []listener
	log    *slog.Logger
}

// NewBus creates an empty Bus. A nil logger discards listener panics reports.
func NewBus(log *slog.Logger) *Bus {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bus{
		byKind: make(map[Kind][]listener),
		log:    log,
	}
}

// Subscribe registers fn for a single kind.
func (b *Bus) Subscribe(kind Kind, fn Handler) ListenerID {
	l := listener{id: ListenerID(xid.New().String()), fn: fn}

	b.mu.Lock()
	b.byKind[kind] = append(b.byKind[kind], l)
	b.mu.Unlock()

	return l.id
}

// SubscribeAll registers fn for every kind. Wildcard listeners are not
// counted by ListenerCount.
func (b *Bus) SubscribeAll(fn Handler) ListenerID {
	l := listener{id: ListenerID(xid.New().String()), fn: fn}

	b.mu.Lock()
	b.all = append(b.all, l)
	b.mu.Unlock()

	return l.id
}

// Unsubscribe removes a listener. It reports whether the ID was registered.
func (b *Bus) Unsubscribe(id ListenerID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for kind, ls := range b.byKind {
		for i, l := range ls {
			if l.id == id {
				b.byKind[kind] = append(ls[:i:i], ls[i+1:]...)
				return true
			}
		}
	}

	for i, l := range b.all {
		if l.id == id {
			b.all = append(b.all[:i:i], b.all[i+1:]...)
			return true
		}
	}
	return false
}

// ListenerCount returns the number of listeners registered for kind.
func (b *Bus) ListenerCount(kind Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byKind[kind])
}

// Publish delivers payload to the kind's listeners, then to wildcard
// listeners. A panicking listener is logged and skipped.
func (b *Bus) Publish(kind Kind, payload any) {
	b.mu.RLock()
	targets := make([]listener, 0, len(b.byKind[kind])+len(b.all))
	targets = append(targets, b.byKind[kind]...)
	targets = append(targets, b.all...)
	b.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	ev := Event{Kind: kind, Payload: payload, Time: time.Now()}
	for _, l := range targets {
		b.call(l, ev)
	}
}

func (b *Bus) call(l listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("Event listener panicked",
				"event", ev.Kind.String(), "listener", string(l.id), "panic", fmt.Sprint(r))
		}
	}()
	l.fn(ev)
}
