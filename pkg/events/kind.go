// Package events defines the closed set of domain events published by a Kick
// chat connection, their payload shapes, and a synchronous typed event bus.
package events

import "strings"

// Kind identifies one domain event variant.
type Kind string

// Domain event kinds. The set is closed: the router never publishes anything
// outside this list.
const (
	KindChatMessage                       Kind = "chatMessage"
	KindMessageDeleted                    Kind = "messageDeleted"
	KindPinnedMessageCreated              Kind = "pinnedMessageCreated"
	KindPinnedMessageDeleted              Kind = "pinnedMessageDeleted"
	KindPollUpdate                        Kind = "pollUpdate"
	KindPollDelete                        Kind = "pollDelete"
	KindUserBanned                        Kind = "userBanned"
	KindUserUnbanned                      Kind = "userUnbanned"
	KindSubscription                      Kind = "subscription"
	KindGiftedSubscriptions               Kind = "giftedSubscriptions"
	KindLuckyUsersWhoGotGiftSubscriptions Kind = "luckyUsersWhoGotGiftSubscriptions"
	KindGiftsLeaderboardUpdated           Kind = "giftsLeaderboardUpdated"
	KindChatMoveToSupportedChannel        Kind = "chatMoveToSupportedChannel"
	KindStreamHost                        Kind = "streamHost"
	KindChatroomClear                     Kind = "chatroomClear"
	KindStreamEnd                         Kind = "streamEnd"
	KindStreamerIsLive                    Kind = "streamerIsLive"
	KindViewerCount                       Kind = "viewerCount"
	KindConnected                         Kind = "connected"
	KindDisconnected                      Kind = "disconnected"
	KindError                             Kind = "error"
)

var allKinds = []Kind{
	KindChatMessage,
	KindMessageDeleted,
	KindPinnedMessageCreated,
	KindPinnedMessageDeleted,
	KindPollUpdate,
	KindPollDelete,
	KindUserBanned,
	KindUserUnbanned,
	KindSubscription,
	KindGiftedSubscriptions,
	KindLuckyUsersWhoGotGiftSubscriptions,
	KindGiftsLeaderboardUpdated,
	KindChatMoveToSupportedChannel,
	KindStreamHost,
	KindChatroomClear,
	KindStreamEnd,
	KindStreamerIsLive,
	KindViewerCount,
	KindConnected,
	KindDisconnected,
	KindError,
}

// Kinds returns every domain event kind.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// String returns the kind name.
func (k Kind) String() string { return string(k) }

// IsLifecycle reports whether the kind describes connection state rather than
// channel activity.
func (k Kind) IsLifecycle() bool {
	switch k {
	case KindConnected, KindDisconnected, KindError:
		return true
	default:
		return false
	}
}

// ParseKind converts a case-insensitive kind name to a Kind.
// Returns "" if the name is not recognized.
func ParseKind(name string) Kind {
	for _, k := range allKinds {
		if strings.EqualFold(string(k), strings.TrimSpace(name)) {
			return k
		}
	}
	return ""
}
