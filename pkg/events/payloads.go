package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Record holds the raw JSON an upstream payload was decoded from. It is
// embedded in every wire payload so consumers can read fields the typed
// struct does not model.
type Record struct {
	raw json.RawMessage
}

// Raw returns the payload exactly as received.
func (r *Record) Raw() json.RawMessage { return r.raw }

func (r *Record) setRaw(data json.RawMessage) {
	r.raw = append(json.RawMessage(nil), data...)
}

type wirePayload interface {
	setRaw(json.RawMessage)
}

// UserRef is the short user record used by moderation events.
type UserRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Slug     string `json:"slug"`
}

// Badge is a chat badge shown next to a username.
type Badge struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Count  int    `json:"count,omitempty"`
	Active bool   `json:"active,omitempty"`
}

// Identity is the visual identity of a chat sender.
type Identity struct {
	Color  string  `json:"color"`
	Badges []Badge `json:"badges"`
}

// Sender is the author of a chat message.
type Sender struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Slug     string   `json:"slug"`
	Identity Identity `json:"identity"`
}

// ReplyMetadata is attached to a message that replies to another one.
type ReplyMetadata struct {
	OriginalSender struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	} `json:"original_sender"`
	OriginalMessage struct {
		ID      string `json:"id"`
		Content string `json:"content"`
	} `json:"original_message"`
}

// Message is the body shared by chat and pinned messages.
type Message struct {
	ID         string         `json:"id"`
	ChatroomID int64          `json:"chatroom_id"`
	Content    string         `json:"content"`
	Type       string         `json:"type"`
	CreatedAt  string         `json:"created_at"`
	Sender     Sender         `json:"sender"`
	Metadata   *ReplyMetadata `json:"metadata,omitempty"`
}

// IsReply reports whether the message answers another message.
func (m *Message) IsReply() bool {
	return m.Type == "reply" && m.Metadata != nil
}

// ChatMessage is published for every chat line.
type ChatMessage struct {
	Record
	Message
}

// MessageDeleted is published when a moderator or the AI filter removes a message.
type MessageDeleted struct {
	Record
	ID      string `json:"id"`
	Message struct {
		ID string `json:"id"`
	} `json:"message"`
	AIModerated bool `json:"aiModerated"`
}

// PinnedMessageCreated is published when a message is pinned.
type PinnedMessageCreated struct {
	Record
	Message  Message     `json:"message"`
	Duration json.Number `json:"duration"`
	PinnedBy Sender      `json:"pinnedBy"`
}

// PollOption is one answer of a poll.
type PollOption struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
	Votes int    `json:"votes"`
}

// Poll is the state of a chat poll.
type Poll struct {
	Title                 string       `json:"title"`
	Options               []PollOption `json:"options"`
	Duration              int          `json:"duration"`
	Remaining             int          `json:"remaining"`
	ResultDisplayDuration int          `json:"result_display_duration"`
	HasVoted              bool         `json:"has_voted"`
	VotedOptionID         *int64       `json:"voted_option_id"`
}

// PollUpdate is published whenever the poll state changes.
type PollUpdate struct {
	Record
	Poll Poll `json:"poll"`
}

// UserBanned is published when a user is banned or timed out.
type UserBanned struct {
	Record
	ID        string  `json:"id"`
	User      UserRef `json:"user"`
	BannedBy  UserRef `json:"banned_by"`
	Permanent bool    `json:"permanent"`
	Duration  int     `json:"duration"`
	ExpiresAt string  `json:"expires_at"`
}

// UserUnbanned is published when a ban is lifted.
type UserUnbanned struct {
	Record
	ID         string  `json:"id"`
	User       UserRef `json:"user"`
	UnbannedBy UserRef `json:"unbanned_by"`
	Permanent  bool    `json:"permanent"`
}

// Subscription is published for a new or renewed subscription.
type Subscription struct {
	Record
	ChatroomID int64  `json:"chatroom_id"`
	Username   string `json:"username"`
	Months     int    `json:"months"`
}

// GiftedSubscriptions is published when someone gifts subscriptions.
type GiftedSubscriptions struct {
	Record
	ChatroomID      int64    `json:"chatroom_id"`
	GiftedUsernames []string `json:"gifted_usernames"`
	GifterUsername  string   `json:"gifter_username"`
	GifterTotal     int      `json:"gifter_total"`
}

// ChatroomInfo is the chatroom record embedded in channel payloads.
type ChatroomInfo struct {
	ID                   int64  `json:"id"`
	ChatableType         string `json:"chatable_type"`
	ChannelID            int64  `json:"channel_id"`
	CreatedAt            string `json:"created_at"`
	UpdatedAt            string `json:"updated_at"`
	ChatModeOld          string `json:"chat_mode_old"`
	ChatMode             string `json:"chat_mode"`
	SlowMode             bool   `json:"slow_mode"`
	ChatableID           int64  `json:"chatable_id"`
	FollowersMode        bool   `json:"followers_mode"`
	SubscribersMode      bool   `json:"subscribers_mode"`
	EmotesMode           bool   `json:"emotes_mode"`
	MessageInterval      int    `json:"message_interval"`
	FollowingMinDuration int    `json:"following_min_duration"`
}

// ChannelInfo is the channel record embedded in gift and host payloads.
type ChannelInfo struct {
	ID                  int64         `json:"id"`
	UserID              int64         `json:"user_id"`
	Slug                string        `json:"slug"`
	IsBanned            bool          `json:"is_banned"`
	PlaybackURL         string        `json:"playback_url"`
	VodEnabled          bool          `json:"vod_enabled"`
	SubscriptionEnabled bool          `json:"subscription_enabled"`
	CanHost             bool          `json:"can_host"`
	Chatroom            *ChatroomInfo `json:"chatroom,omitempty"`
}

// LeaderboardEntry is one gifter on a leaderboard.
type LeaderboardEntry struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Quantity int    `json:"quantity"`
}

// GiftsLeaderboardUpdated is published after gifts change the leaderboards.
type GiftsLeaderboardUpdated struct {
	Record
	Channel            ChannelInfo        `json:"channel"`
	Leaderboard        []LeaderboardEntry `json:"leaderboard"`
	WeeklyLeaderboard  []LeaderboardEntry `json:"weekly_leaderboard"`
	MonthlyLeaderboard []LeaderboardEntry `json:"monthly_leaderboard"`
	GifterID           int64              `json:"gifter_id"`
	GiftedQuantity     int                `json:"gifted_quantity"`
	GifterUsername     string             `json:"gifter_username"`
}

// LuckyUsersWhoGotGiftSubscriptions lists the recipients of a gift batch.
type LuckyUsersWhoGotGiftSubscriptions struct {
	Record
	Channel        ChannelInfo `json:"channel"`
	Usernames      []string    `json:"usernames"`
	GifterUsername string      `json:"gifter_username"`
}

// Livestream is a livestream record embedded in channel payloads.
type Livestream struct {
	ID           int64  `json:"id"`
	Slug         string `json:"slug"`
	ChannelID    int64  `json:"channel_id"`
	CreatedAt    string `json:"created_at"`
	SessionTitle string `json:"session_title"`
	IsLive       bool   `json:"is_live"`
	StartTime    string `json:"start_time"`
	Duration     int    `json:"duration"`
	Language     string `json:"language"`
	IsMature     bool   `json:"is_mature"`
	ViewerCount  int    `json:"viewer_count"`
}

// ChannelUser is the public profile of a channel owner.
type ChannelUser struct {
	ID              int64  `json:"id"`
	Username        string `json:"username"`
	AgreedToTerms   bool   `json:"agreed_to_terms"`
	EmailVerifiedAt string `json:"email_verified_at"`
	Bio             string `json:"bio"`
	Country         string `json:"country"`
	State           string `json:"state"`
	City            string `json:"city"`
	Instagram       string `json:"instagram"`
	Twitter         string `json:"twitter"`
	YouTube         string `json:"youtube"`
	Discord         string `json:"discord"`
	TikTok          string `json:"tiktok"`
	Facebook        string `json:"facebook"`
}

// HostedChannel is the channel a chat was moved to.
type HostedChannel struct {
	ID               int64  `json:"id"`
	Username         string `json:"username"`
	Slug             string `json:"slug"`
	ViewersCount     int    `json:"viewers_count"`
	IsLive           bool   `json:"is_live"`
	ProfilePic       string `json:"profile_pic"`
	Category         string `json:"category"`
	PreviewThumbnail struct {
		Srcset string `json:"srcset"`
		Src    string `json:"src"`
	} `json:"preview_thumbnail"`
}

// ChatMoveToSupportedChannel is published when the chat is moved to a hosted channel.
type ChatMoveToSupportedChannel struct {
	Record
	Channel struct {
		ChannelInfo
		CurrentLivestream *Livestream  `json:"current_livestream"`
		User              *ChannelUser `json:"user"`
	} `json:"channel"`
	Slug   string        `json:"slug"`
	Hosted HostedChannel `json:"hosted"`
}

// StreamHost is published when another channel hosts this one.
type StreamHost struct {
	Record
	ChatroomID      int64  `json:"chatroom_id"`
	OptionalMessage string `json:"optional_message"`
	NumberViewers   int    `json:"number_viewers"`
	HostUsername    string `json:"host_username"`
}

// ChatroomClear is published when a moderator clears the chat.
type ChatroomClear struct {
	Record
	ID string `json:"id"`
}

// StreamerIsLive is published when the broadcast starts.
type StreamerIsLive struct {
	Record
	Livestream struct {
		ID           int64           `json:"id"`
		ChannelID    int64           `json:"channel_id"`
		SessionTitle string          `json:"session_title"`
		Source       json.RawMessage `json:"source"`
		CreatedAt    string          `json:"created_at"`
	} `json:"livestream"`
}

// StreamEnd is published when the broadcast stops. Username is the channel
// the connection was opened for; the upstream payload is not consulted.
type StreamEnd struct {
	Username string `json:"username"`
}

// ViewerCount is published by the viewer poller.
type ViewerCount struct {
	LivestreamID int64 `json:"livestream_id"`
	Viewers      int   `json:"viewers"`
}

// Connected is published once the subscription handshake has been sent.
type Connected struct {
	RoomID int64 `json:"roomID"`
}

var wireDecoders = map[Kind]func() wirePayload{
	KindChatMessage:                       func() wirePayload { return new(ChatMessage) },
	KindMessageDeleted:                    func() wirePayload { return new(MessageDeleted) },
	KindPinnedMessageCreated:              func() wirePayload { return new(PinnedMessageCreated) },
	KindPollUpdate:                        func() wirePayload { return new(PollUpdate) },
	KindUserBanned:                        func() wirePayload { return new(UserBanned) },
	KindUserUnbanned:                      func() wirePayload { return new(UserUnbanned) },
	KindSubscription:                      func() wirePayload { return new(Subscription) },
	KindGiftedSubscriptions:               func() wirePayload { return new(GiftedSubscriptions) },
	KindLuckyUsersWhoGotGiftSubscriptions: func() wirePayload { return new(LuckyUsersWhoGotGiftSubscriptions) },
	KindGiftsLeaderboardUpdated:           func() wirePayload { return new(GiftsLeaderboardUpdated) },
	KindChatMoveToSupportedChannel:        func() wirePayload { return new(ChatMoveToSupportedChannel) },
	KindStreamHost:                        func() wirePayload { return new(StreamHost) },
	KindChatroomClear:                     func() wirePayload { return new(ChatroomClear) },
	KindStreamerIsLive:                    func() wirePayload { return new(StreamerIsLive) },
}

// IsVoid reports whether the kind is published without a payload.
func IsVoid(kind Kind) bool {
	switch kind {
	case KindPinnedMessageDeleted, KindPollDelete, KindDisconnected:
		return true
	default:
		return false
	}
}

// ErrInvalidPayload is returned by DecodePayload for data that is not JSON.
var ErrInvalidPayload = errors.New("payload is not valid JSON")

// DecodePayload decodes upstream JSON into the payload type bound to kind.
// Void kinds yield struct{}{} without looking at data. Kinds that never
// arrive over the wire return an error, and so does data that is not JSON.
// Valid JSON that does not match the payload shape still decodes: fields
// that fit are filled, the rest stay zero, and Raw keeps the original.
func DecodePayload(kind Kind, data json.RawMessage) (any, error) {
	if IsVoid(kind) {
		return struct{}{}, nil
	}

	newPayload, ok := wireDecoders[kind]
	if !ok {
		return nil, fmt.Errorf("kind %q has no wire payload", kind)
	}

	p := newPayload()
	if len(data) == 0 {
		return p, nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("decoding %s payload: %w", kind, ErrInvalidPayload)
	}
	if err := json.Unmarshal(data, p); err != nil {
		p = decodeFields(newPayload(), data)
	}
	p.setRaw(data)
	return p, nil
}

// decodeFields fills p one top-level field at a time, skipping fields that
// fail. Non-object data leaves p zero.
func decodeFields(p wirePayload, data json.RawMessage) wirePayload {
	var fields map[string]json.RawMessage
	if json.Unmarshal(data, &fields) != nil {
		return p
	}
	for name, value := range fields {
		one, err := json.Marshal(map[string]json.RawMessage{name: value})
		if err != nil {
			continue
		}
		_ = json.Unmarshal(one, p)
	}
	return p
}
