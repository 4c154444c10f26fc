package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodePayload_ChatMessage(t *testing.T) {
	t.Parallel()

	data := json.RawMessage(`{
		"id": "9c0f0b6e-1",
		"chatroom_id": 668,
		"content": "hello",
		"type": "reply",
		"created_at": "2024-05-01T10:00:00+00:00",
		"sender": {"id": 7, "username": "Alice", "slug": "alice",
			"identity": {"color": "#FF0000", "badges": [{"type": "moderator", "text": "Moderator"}]}},
		"metadata": {"original_sender": {"id": 8, "username": "bob"},
			"original_message": {"id": "m1", "content": "hi"}},
		"unmodeled": true
	}`)

	p, err := DecodePayload(KindChatMessage, data)
	require.NoError(t, err)

	msg, ok := p.(*ChatMessage)
	require.True(t, ok)
	require.Equal(t, "hello", msg.Content)
	require.Equal(t, int64(668), msg.ChatroomID)
	require.Equal(t, "Alice", msg.Sender.Username)
	require.Equal(t, "#FF0000", msg.Sender.Identity.Color)
	require.True(t, msg.IsReply())
	require.Equal(t, "bob", msg.Metadata.OriginalSender.Username)
	require.JSONEq(t, string(data), string(msg.Raw()))
}

func TestDecodePayload_VoidKinds(t *testing.T) {
	t.Parallel()

	for _, kind := range []Kind{KindPinnedMessageDeleted, KindPollDelete} {
		p, err := DecodePayload(kind, json.RawMessage(`{"ignored":1}`))
		require.NoError(t, err)
		require.Equal(t, struct{}{}, p)
	}
}

func TestDecodePayload_Errors(t *testing.T) {
	t.Parallel()

	_, err := DecodePayload(KindViewerCount, json.RawMessage(`{}`))
	require.Error(t, err)

	_, err = DecodePayload(KindSubscription, json.RawMessage(`{"months":`))
	require.ErrorIs(t, err, ErrInvalidPayload)
}

func TestDecodePayload_ShapeMismatchKeepsRaw(t *testing.T) {
	t.Parallel()

	p, err := DecodePayload(KindChatMessage, json.RawMessage(`{"id":123,"content":"hi"}`))
	require.NoError(t, err)
	msg := p.(*ChatMessage)
	require.Empty(t, msg.ID)
	require.Equal(t, "hi", msg.Content)
	require.JSONEq(t, `{"id":123,"content":"hi"}`, string(msg.Raw()))

	p, err = DecodePayload(KindUserBanned, json.RawMessage(`{"duration":"10","user":{"username":"troll"}}`))
	require.NoError(t, err)
	banned := p.(*UserBanned)
	require.Zero(t, banned.Duration)
	require.Equal(t, "troll", banned.User.Username)

	p, err = DecodePayload(KindSubscription, json.RawMessage(`{"months":"many","username":"alice"}`))
	require.NoError(t, err)
	require.Equal(t, "alice", p.(*Subscription).Username)
	require.Zero(t, p.(*Subscription).Months)

	p, err = DecodePayload(KindChatroomClear, json.RawMessage(`[1,2]`))
	require.NoError(t, err)
	require.Empty(t, p.(*ChatroomClear).ID)
	require.JSONEq(t, `[1,2]`, string(p.(*ChatroomClear).Raw()))

	// A field failing with a non-type error does not take the others down.
	p, err = DecodePayload(KindPinnedMessageCreated, json.RawMessage(`{"message":{"id":"a"},"duration":"soon"}`))
	require.NoError(t, err)
	pinned := p.(*PinnedMessageCreated)
	require.Equal(t, "a", pinned.Message.ID)
	require.Empty(t, pinned.Duration)
}

func TestDecodePayload_PinnedDurationAcceptsNumberOrString(t *testing.T) {
	t.Parallel()

	p, err := DecodePayload(KindPinnedMessageCreated, json.RawMessage(`{"message":{"id":"a"},"duration":"120"}`))
	require.NoError(t, err)
	require.Equal(t, json.Number("120"), p.(*PinnedMessageCreated).Duration)

	p, err = DecodePayload(KindPinnedMessageCreated, json.RawMessage(`{"message":{"id":"a"},"duration":60}`))
	require.NoError(t, err)
	require.Equal(t, json.Number("60"), p.(*PinnedMessageCreated).Duration)
}
