// Package notify forwards selected chat and stream events to external
// services (Discord, generic webhooks) based on per-provider event filters.
package notify

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/Guliveer/kick-watcher-go/internal/config"
	"github.com/Guliveer/kick-watcher-go/internal/logger"
	"github.com/Guliveer/kick-watcher-go/pkg/events"
)

// defaultHTTPTimeout is the timeout for notification HTTP requests.
const defaultHTTPTimeout = 5 * time.Second

// Notifier is the interface that all notification providers must implement.
type Notifier interface {
	Send(ctx context.Context, kind events.Kind, title, message string) error
	Name() string
	IsEnabled() bool
	ShouldNotify(kind events.Kind) bool
}

// Dispatcher manages multiple notifiers and dispatches notifications to all
// enabled notifiers that match the event kind.
type Dispatcher struct {
	notifiers []Notifier
	log       *logger.Logger
	title     string
	wg        sync.WaitGroup
}

// NewDispatcher creates a Dispatcher from the notification configuration.
// title is used as the notification title, typically the channel name.
func NewDispatcher(cfg config.NotificationsConfig, title string, log *logger.Logger) *Dispatcher {
	d := &Dispatcher{log: log, title: title}

	httpClient := &http.Client{
		Timeout: defaultHTTPTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     30 * time.Second,
		},
	}

	if cfg.Discord != nil && cfg.Discord.Enabled {
		d.notifiers = append(d.notifiers, &Discord{
			baseNotifier: baseNotifier{name: "Discord", enabled: true, kinds: parseKinds(cfg.Discord.Events)},
			webhookURL:   cfg.Discord.WebhookURL,
			httpClient:   httpClient,
		})
	}

	if cfg.Webhook != nil && cfg.Webhook.Enabled {
		method := cfg.Webhook.Method
		if method == "" {
			method = http.MethodPost
		}
		d.notifiers = append(d.notifiers, &Webhook{
			baseNotifier: baseNotifier{name: "Webhook", enabled: true, kinds: parseKinds(cfg.Webhook.Events)},
			url:          cfg.Webhook.Endpoint,
			method:       method,
			httpClient:   httpClient,
		})
	}

	return d
}

// Dispatch sends a notification to all enabled notifiers that match kind.
// Sends are non-blocking; each notifier runs in its own goroutine.
func (d *Dispatcher) Dispatch(ctx context.Context, kind events.Kind, message string) {
	for _, n := range d.notifiers {
		if !n.IsEnabled() || !n.ShouldNotify(kind) {
			continue
		}
		d.wg.Add(1)
		go func(notifier Notifier) {
			defer d.wg.Done()

			sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultHTTPTimeout)
			defer cancel()
			if err := notifier.Send(sendCtx, kind, d.title, message); err != nil {
				d.log.Warn("Notification send failed",
					"provider", notifier.Name(),
					"event", string(kind),
					"error", err,
				)
			}
		}(n)
	}
}

// Wait blocks until all in-flight sends have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// NotifyFunc returns a logger.NotifyFunc that dispatches notifications via this Dispatcher.
func (d *Dispatcher) NotifyFunc() logger.NotifyFunc {
	return func(ctx context.Context, message string, kind events.Kind) {
		d.Dispatch(ctx, kind, message)
	}
}

// HasNotifiers reports whether any notifiers are configured.
func (d *Dispatcher) HasNotifiers() bool {
	return len(d.notifiers) > 0
}

// Wants reports whether any notifier would fire for kind.
func (d *Dispatcher) Wants(kind events.Kind) bool {
	return slices.ContainsFunc(d.notifiers, func(n Notifier) bool {
		return n.IsEnabled() && n.ShouldNotify(kind)
	})
}

// parseKinds converts event names to kinds, skipping unknown names.
func parseKinds(names []string) []events.Kind {
	kinds := make([]events.Kind, 0, len(names))
	for _, name := range names {
		if k := events.ParseKind(name); k != "" {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func containsKind(kinds []events.Kind, kind events.Kind) bool {
	return slices.Contains(kinds, kind)
}
