package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/Guliveer/kick-watcher-go/pkg/events"
)

var (
	faint     = lipgloss.NewStyle().Faint(true)
	badgeText = lipgloss.NewStyle().Foreground(lipgloss.Color("#53FC18")).Bold(true)
)

// chatPrinter writes chat lines to the terminal. Usernames take the
// sender's identity colour when colours are enabled.
type chatPrinter struct {
	mu      sync.Mutex
	out     io.Writer
	colored bool
}

func (p *chatPrinter) print(at time.Time, m *events.ChatMessage) {
	line := p.format(at, m)

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, line)
}

func (p *chatPrinter) format(at time.Time, m *events.ChatMessage) string {
	var b strings.Builder

	stamp := "[" + at.Format("15:04:05") + "]"
	if p.colored {
		stamp = faint.Render(stamp)
	}
	b.WriteString(stamp)
	b.WriteByte(' ')

	for _, badge := range m.Sender.Identity.Badges {
		label := "[" + badgeLabel(badge) + "]"
		if p.colored {
			label = badgeText.Render(label)
		}
		b.WriteString(label)
		b.WriteByte(' ')
	}

	name := m.Sender.Username
	if p.colored && m.Sender.Identity.Color != "" {
		name = lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.Sender.Identity.Color)).
			Bold(true).
			Render(name)
	}
	b.WriteString(name)
	b.WriteString(": ")

	if m.IsReply() {
		reply := "@" + m.Metadata.OriginalSender.Username + " "
		if p.colored {
			reply = faint.Render(reply)
		}
		b.WriteString(reply)
	}
	b.WriteString(m.Content)

	return b.String()
}

func badgeLabel(b events.Badge) string {
	if b.Text != "" {
		return b.Text
	}
	return b.Type
}

// describe turns a non-chat event into a log message and attributes.
// It reports false for kinds that are not logged.
func describe(ev events.Event) (string, []any, bool) {
	switch p := ev.Payload.(type) {
	case *events.MessageDeleted:
		return "Message deleted", []any{"message_id", p.Message.ID, "ai_moderated", p.AIModerated}, true
	case *events.PinnedMessageCreated:
		return "Message pinned", []any{"user", p.Message.Sender.Username, "content", p.Message.Content}, true
	case *events.PollUpdate:
		return "Poll updated", []any{"title", p.Poll.Title, "options", pollSummary(p.Poll)}, true
	case *events.UserBanned:
		args := []any{"user", p.User.Username, "by", p.BannedBy.Username}
		if p.Permanent {
			return "User banned", args, true
		}
		return "User timed out", append(args, "duration", fmt.Sprintf("%dm", p.Duration)), true
	case *events.UserUnbanned:
		return "User unbanned", []any{"user", p.User.Username, "by", p.UnbannedBy.Username}, true
	case *events.Subscription:
		return fmt.Sprintf("%s subscribed", p.Username), []any{"months", p.Months}, true
	case *events.GiftedSubscriptions:
		return fmt.Sprintf("%s gifted %s", p.GifterUsername, plural(len(p.GiftedUsernames), "sub")),
			[]any{"gifter_total", p.GifterTotal}, true
	case *events.LuckyUsersWhoGotGiftSubscriptions:
		return "Gift recipients drawn", []any{"gifter", p.GifterUsername, "users", strings.Join(p.Usernames, ",")}, true
	case *events.GiftsLeaderboardUpdated:
		return "Gift leaderboard updated", []any{"gifter", p.GifterUsername, "quantity", p.GiftedQuantity}, true
	case *events.ChatMoveToSupportedChannel:
		return "Chat moved to hosted channel", []any{"to", p.Hosted.Slug, "viewers", humanize.Comma(int64(p.Hosted.ViewersCount))}, true
	case *events.StreamHost:
		return fmt.Sprintf("%s is hosting", p.HostUsername), []any{"viewers", humanize.Comma(int64(p.NumberViewers))}, true
	case *events.ChatroomClear:
		return "Chat cleared", nil, true
	case *events.StreamerIsLive:
		return "Stream started", []any{"title", p.Livestream.SessionTitle}, true
	case events.StreamEnd:
		return "Stream ended", []any{"user", p.Username}, true
	case events.ViewerCount:
		return "Viewer count", []any{"viewers", humanize.Comma(int64(p.Viewers))}, true
	case events.Connected:
		return "Connected to chat", []any{"room_id", p.RoomID}, true
	case error:
		return "Chat error", []any{"error", p.Error()}, true
	}

	switch ev.Kind {
	case events.KindPinnedMessageDeleted:
		return "Pinned message removed", nil, true
	case events.KindPollDelete:
		return "Poll removed", nil, true
	case events.KindDisconnected:
		return "Disconnected from chat", nil, true
	}
	return "", nil, false
}

func pollSummary(p events.Poll) string {
	parts := make([]string, 0, len(p.Options))
	for _, o := range p.Options {
		parts = append(parts, fmt.Sprintf("%s=%d", o.Label, o.Votes))
	}
	return strings.Join(parts, ",")
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return humanize.Comma(int64(n)) + " " + word + "s"
}
