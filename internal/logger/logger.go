// Package logger provides structured logging with colored console output,
// optional file output, and per-channel prefixing using log/slog.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Guliveer/kick-watcher-go/pkg/events"
)

var eventEmoji = map[events.Kind]string{
	events.KindChatMessage:                       "💬",
	events.KindMessageDeleted:                    "🗑️",
	events.KindPinnedMessageCreated:              "📌",
	events.KindPinnedMessageDeleted:              "📌",
	events.KindPollUpdate:                        "📊",
	events.KindPollDelete:                        "📊",
	events.KindUserBanned:                        "🔨",
	events.KindUserUnbanned:                      "🕊️",
	events.KindSubscription:                      "⭐",
	events.KindGiftedSubscriptions:               "🎁",
	events.KindLuckyUsersWhoGotGiftSubscriptions: "🍀",
	events.KindGiftsLeaderboardUpdated:           "🏆",
	events.KindChatMoveToSupportedChannel:        "➡️",
	events.KindStreamHost:                        "📣",
	events.KindChatroomClear:                     "🧹",
	events.KindStreamEnd:                         "⚫",
	events.KindStreamerIsLive:                    "🟢",
	events.KindViewerCount:                       "👀",
	events.KindConnected:                         "🔌",
	events.KindDisconnected:                      "🔌",
	events.KindError:                             "⚠️",
}

// ANSI color codes for terminal output.
const (
	colorReset     = "\033[0m"
	colorRed       = "\033[31m"
	colorGreen     = "\033[32m"
	colorYellow    = "\033[33m"
	colorLightBlue = "\033[94m"
	colorMagenta   = "\033[35m"
	colorCyan      = "\033[36m"
	colorGray      = "\033[90m"
)

// coloredAttrKeys maps slog attribute keys to ANSI color codes for value highlighting.
var coloredAttrKeys = map[string]string{
	"channel":  colorMagenta,
	"user":     colorMagenta,
	"category": colorLightBlue,
	"viewers":  colorCyan,
}

// NotifyFunc is a callback invoked for every logged domain event.
// Implementations should be non-blocking.
type NotifyFunc func(ctx context.Context, message string, kind events.Kind)

// Config holds logger configuration options.
type Config struct {
	Level     slog.Level
	FileLevel slog.Level
	Colored   bool
	LogDir    string
	// Prefix is printed in brackets before every console message.
	Prefix   string
	NotifyFn NotifyFunc
	// Output is the console writer. Defaults to os.Stdout.
	Output io.Writer
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		FileLevel: slog.LevelDebug,
		Colored:   true,
	}
}

// Logger wraps slog.Logger with channel-scoped context and notification dispatch.
type Logger struct {
	*slog.Logger
	cfg      Config
	notifyFn atomic.Value // stores NotifyFunc
}

// Setup creates a new Logger based on the provided configuration.
// It sets up console and optional file handlers.
func Setup(cfg Config) (*Logger, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	handlers := []slog.Handler{newColorHandler(out, cfg.Level, cfg.Colored, cfg.Prefix)}

	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory %s: %w", cfg.LogDir, err)
		}

		filename := "kickwatch.log"
		if cfg.Prefix != "" {
			filename = cfg.Prefix + ".log"
		}

		logFile, err := os.OpenFile(
			filepath.Join(cfg.LogDir, filename),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND,
			0o644,
		)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}

		handlers = append(handlers, slog.NewTextHandler(logFile, &slog.HandlerOptions{
			Level: cfg.FileLevel,
		}))
	}

	var handler slog.Handler
	if len(handlers) == 1 {
		handler = handlers[0]
	} else {
		handler = &multiHandler{handlers: handlers}
	}

	l := &Logger{
		Logger: slog.New(handler),
		cfg:    cfg,
	}

	if cfg.NotifyFn != nil {
		l.notifyFn.Store(cfg.NotifyFn)
	}

	return l, nil
}

// WithPrefix returns a new Logger whose console lines carry prefix.
// The notification callback is carried over.
func (l *Logger) WithPrefix(prefix string) *Logger {
	cfg := l.cfg
	cfg.Prefix = prefix
	if fn, ok := l.notifyFn.Load().(NotifyFunc); ok {
		cfg.NotifyFn = fn
	}
	nl, err := Setup(cfg)
	if err != nil {
		return l
	}
	return nl
}

// Event logs a domain event at INFO level and dispatches a notification if
// configured. If the kind has a mapped emoji, it is prepended to the message.
func (l *Logger) Event(ctx context.Context, kind events.Kind, msg string, args ...any) {
	if emoji, ok := eventEmoji[kind]; ok {
		msg = emoji + " " + msg
	}
	l.Logger.Info(msg, append(args, "event", string(kind))...)

	if fn, ok := l.notifyFn.Load().(NotifyFunc); ok && fn != nil {
		formatted := msg
		if len(args) > 0 {
			formatted = fmt.Sprintf("%s %v", msg, args)
		}
		fn(ctx, formatted, kind)
	}
}

// SetNotifyFunc sets the notification callback function. Thread-safe.
func (l *Logger) SetNotifyFunc(fn NotifyFunc) {
	l.notifyFn.Store(fn)
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type colorHandler struct {
	mu      *sync.Mutex
	writer  io.Writer
	level   slog.Level
	colored bool
	prefix  string
	attrs   []slog.Attr
}

func newColorHandler(w io.Writer, level slog.Level, colored bool, prefix string) *colorHandler {
	return &colorHandler{
		mu:      &sync.Mutex{},
		writer:  w,
		level:   level,
		colored: colored,
		prefix:  prefix,
	}
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder

	timeStr := record.Time.Format("02/01/06 15:04:05")
	prefix := ""
	if h.prefix != "" {
		prefix = "[" + h.prefix + "] "
	}

	if h.colored {
		fmt.Fprintf(&b, "%s%s - %s%s%s - %s%s",
			colorGray, timeStr,
			levelColor(record.Level), record.Level.String(), colorReset,
			prefix, record.Message,
		)
	} else {
		fmt.Fprintf(&b, "%s - %s - %s%s", timeStr, record.Level.String(), prefix, record.Message)
	}

	for _, a := range h.attrs {
		h.writeAttr(&b, a)
	}
	record.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&b, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, b.String())
	return err
}

func (h *colorHandler) writeAttr(b *strings.Builder, a slog.Attr) {
	if h.colored {
		if color, ok := coloredAttrKeys[a.Key]; ok {
			fmt.Fprintf(b, " %s=%s%v%s", a.Key, color, a.Value, colorReset)
			return
		}
	}
	fmt.Fprintf(b, " %s=%v", a.Key, a.Value)
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append(copyAttrs(h.attrs), attrs...)
	return &nh
}

func (h *colorHandler) WithGroup(string) slog.Handler {
	nh := *h
	nh.attrs = copyAttrs(h.attrs)
	return &nh
}

func copyAttrs(attrs []slog.Attr) []slog.Attr {
	if len(attrs) == 0 {
		return nil
	}
	cp := make([]slog.Attr, len(attrs))
	copy(cp, attrs)
	return cp
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level >= slog.LevelInfo:
		return colorGreen
	default:
		return colorCyan
	}
}

type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: hs}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: hs}
}
