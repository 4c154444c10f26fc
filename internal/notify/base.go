package notify

import "github.com/Guliveer/kick-watcher-go/pkg/events"

// baseNotifier provides shared boilerplate for all notification providers.
// Embed it in concrete notifier structs.
type baseNotifier struct {
	name    string
	enabled bool
	kinds   []events.Kind
}

// Name returns the human-readable name of the notifier.
func (b *baseNotifier) Name() string { return b.name }

// IsEnabled reports whether this notifier is active.
func (b *baseNotifier) IsEnabled() bool { return b.enabled }

// ShouldNotify reports whether this notifier should fire for the given kind.
// An empty filter matches the stream lifecycle kinds only.
func (b *baseNotifier) ShouldNotify(kind events.Kind) bool {
	if len(b.kinds) == 0 {
		return kind == events.KindStreamerIsLive || kind == events.KindStreamEnd
	}
	return containsKind(b.kinds, kind)
}
