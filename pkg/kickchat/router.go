package kickchat

import (
	"github.com/Guliveer/kick-watcher-go/internal/pusher"
	"github.com/Guliveer/kick-watcher-go/pkg/events"
)

// routes maps upstream event types to domain kinds. Matching is exact.
var routes = map[string]events.Kind{
	"ChatMessageEvent":                       events.KindChatMessage,
	"MessageDeletedEvent":                    events.KindMessageDeleted,
	"PinnedMessageCreatedEvent":              events.KindPinnedMessageCreated,
	"PinnedMessageDeletedEvent":              events.KindPinnedMessageDeleted,
	"PollUpdateEvent":                        events.KindPollUpdate,
	"PollDeleteEvent":                        events.KindPollDelete,
	"UserBannedEvent":                        events.KindUserBanned,
	"UserUnbannedEvent":                      events.KindUserUnbanned,
	"SubscriptionEvent":                      events.KindSubscription,
	"GiftedSubscriptionsEvent":               events.KindGiftedSubscriptions,
	"LuckyUsersWhoGotGiftSubscriptionsEvent": events.KindLuckyUsersWhoGotGiftSubscriptions,
	"GiftsLeaderboardUpdated":                events.KindGiftsLeaderboardUpdated,
	"ChatMoveToSupportedChannelEvent":        events.KindChatMoveToSupportedChannel,
	"StreamHostEvent":                        events.KindStreamHost,
	"ChatroomClearEvent":                     events.KindChatroomClear,
	"StopStreamBroadcast":                    events.KindStreamEnd,
	"StreamerIsLive":                         events.KindStreamerIsLive,
}

// RouteKind returns the domain kind for an upstream event type.
func RouteKind(eventType string) (events.Kind, bool) {
	kind, ok := routes[eventType]
	return kind, ok
}

// handleFrame decodes, routes and publishes one inbound frame.
func (c *Connection) handleFrame(s *session, raw []byte) {
	env, err := pusher.Decode(raw)
	if err != nil {
		c.publishError(err)
		return
	}

	if !env.HasType() {
		c.handleProtocol(s, env)
		return
	}

	c.route(env)
}

// handleProtocol answers Pusher protocol frames. Everything else without a
// namespaced event name is ignored.
func (c *Connection) handleProtocol(s *session, env pusher.Envelope) {
	switch env.Event {
	case pusher.EventPing:
		if err := s.write(pusher.Pong()); err != nil {
			c.publishError(&TransportError{Op: "write", Err: err})
		}

	case pusher.EventError:
		serr := pusher.ParseServerError(env.Data)
		c.log.Warn("Pusher reported an error", "code", serr.Code, "message", serr.Message)
		c.publishError(&TransportError{Op: "server", Err: serr})

	case pusher.EventConnectionEstablished, pusher.EventSubscriptionSucceeded, pusher.EventPong:
		c.log.Debug("Pusher protocol event", "event", env.Event, "channel", env.Channel)

	default:
		c.log.Debug("Ignoring event without type", "event", env.Event)
	}
}

func (c *Connection) route(env pusher.Envelope) {
	kind, ok := routes[env.Type]
	if !ok {
		c.log.Debug("Ignoring unknown event", "type", env.Type, "channel", env.Channel)
		return
	}

	if kind == events.KindStreamEnd {
		events.Publish(c.bus, events.TopicStreamEnd, events.StreamEnd{Username: c.channel})
		return
	}

	payload, err := events.DecodePayload(kind, env.Data)
	if err != nil {
		c.publishError(&DecodeError{Event: env.Event, Err: err})
		return
	}

	c.bus.Publish(kind, payload)
}
