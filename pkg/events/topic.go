package events

// Topic binds a Kind to its payload type so listeners receive a typed value.
type Topic[P any] struct {
	kind Kind
}

// Kind returns the kind the topic is bound to.
func (t Topic[P]) Kind() Kind { return t.kind }

// Typed topics, one per Kind.
var (
	TopicChatMessage                       = Topic[*ChatMessage]{KindChatMessage}
	TopicMessageDeleted                    = Topic[*MessageDeleted]{KindMessageDeleted}
	TopicPinnedMessageCreated              = Topic[*PinnedMessageCreated]{KindPinnedMessageCreated}
	TopicPinnedMessageDeleted              = Topic[struct{}]{KindPinnedMessageDeleted}
	TopicPollUpdate                        = Topic[*PollUpdate]{KindPollUpdate}
	TopicPollDelete                        = Topic[struct{}]{KindPollDelete}
	TopicUserBanned                        = Topic[*UserBanned]{KindUserBanned}
	TopicUserUnbanned                      = Topic[*UserUnbanned]{KindUserUnbanned}
	TopicSubscription                      = Topic[*Subscription]{KindSubscription}
	TopicGiftedSubscriptions               = Topic[*GiftedSubscriptions]{KindGiftedSubscriptions}
	TopicLuckyUsersWhoGotGiftSubscriptions = Topic[*LuckyUsersWhoGotGiftSubscriptions]{KindLuckyUsersWhoGotGiftSubscriptions}
	TopicGiftsLeaderboardUpdated           = Topic[*GiftsLeaderboardUpdated]{KindGiftsLeaderboardUpdated}
	TopicChatMoveToSupportedChannel        = Topic[*ChatMoveToSupportedChannel]{KindChatMoveToSupportedChannel}
	TopicStreamHost                        = Topic[*StreamHost]{KindStreamHost}
	TopicChatroomClear                     = Topic[*ChatroomClear]{KindChatroomClear}
	TopicStreamEnd                         = Topic[StreamEnd]{KindStreamEnd}
	TopicStreamerIsLive                    = Topic[*StreamerIsLive]{KindStreamerIsLive}
	TopicViewerCount                       = Topic[ViewerCount]{KindViewerCount}
	TopicConnected                         = Topic[Connected]{KindConnected}
	TopicDisconnected                      = Topic[struct{}]{KindDisconnected}
	TopicError                             = Topic[error]{KindError}
)

// Subscribe registers a typed listener for topic on b.
func Subscribe[P any](b *Bus, topic Topic[P], fn func(P)) ListenerID {
	return b.Subscribe(topic.kind, func(ev Event) {
		if p, ok := ev.Payload.(P); ok {
			fn(p)
		}
	})
}

// Publish publishes a typed payload on b.
func Publish[P any](b *Bus, topic Topic[P], payload P) {
	b.Publish(topic.kind, payload)
}
