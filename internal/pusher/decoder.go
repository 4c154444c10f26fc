package pusher

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// namespaceSeparator splits upstream event names such as
// `App\Events\ChatMessageEvent`. It is a literal backslash in the string.
const namespaceSeparator = `\`

// Envelope is one decoded inbound frame.
type Envelope struct {
	// Event is the full event name as received.
	Event string
	// Type is the last namespace segment of Event, or "" when the name has no
	// namespace path (protocol events such as pusher:ping).
	Type string
	// Channel is the Pusher channel the frame was published on, if any.
	Channel string
	// Data is the payload as JSON. String-encoded payloads are unwrapped.
	Data json.RawMessage
}

// HasType reports whether the envelope carries a routable event type.
func (e Envelope) HasType() bool { return e.Type != "" }

// DecodeError reports a malformed inbound frame.
type DecodeError struct {
	Event string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Event == "" {
		return fmt.Sprintf("decoding frame: %v", e.Err)
	}
	return fmt.Sprintf("decoding %s frame: %v", e.Event, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

var errInvalidData = errors.New("data is not valid JSON")

type frame struct {
	Event   string          `json:"event"`
	Channel string          `json:"channel,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Decode parses a raw frame. The payload is unwrapped when it is a
// JSON-encoded string; any parse failure is returned as *DecodeError.
func Decode(raw []byte) (Envelope, error) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return Envelope{}, &DecodeError{Err: err}
	}

	data, err := unwrapData(f.Data)
	if err != nil {
		return Envelope{}, &DecodeError{Event: f.Event, Err: err}
	}

	return Envelope{
		Event:   f.Event,
		Type:    EventType(f.Event),
		Channel: f.Channel,
		Data:    data,
	}, nil
}

// EventType extracts the concrete event type from a namespaced event name:
// the segment after the last backslash. Names without a namespace path, or
// with an empty last segment, yield "".
func EventType(event string) string {
	idx := strings.LastIndex(event, namespaceSeparator)
	if idx < 0 {
		return ""
	}
	return event[idx+len(namespaceSeparator):]
}

func unwrapData(data json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] != '"' {
		return trimmed, nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil, err
	}
	inner := []byte(strings.TrimSpace(s))
	if !json.Valid(inner) {
		return nil, fmt.Errorf("%w: %.64q", errInvalidData, s)
	}
	return inner, nil
}
