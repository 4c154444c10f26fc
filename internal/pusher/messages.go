// Package pusher implements the subset of the Pusher Channels websocket
// protocol used by Kick chat: subscribing to channels, answering server
// pings, and decoding inbound frames into event envelopes.
package pusher

import (
	"encoding/json"
	"fmt"
)

// Pusher protocol event names sent to/from the server.
const (
	// EventSubscribe subscribes the socket to a channel.
	EventSubscribe = "pusher:subscribe"
	// EventPing is sent by the server to check liveness.
	EventPing = "pusher:ping"
	// EventPong answers a ping.
	EventPong = "pusher:pong"
	// EventConnectionEstablished is the first frame after the socket opens.
	EventConnectionEstablished = "pusher:connection_established"
	// EventSubscriptionSucceeded acknowledges a subscribe request.
	EventSubscriptionSucceeded = "pusher_internal:subscription_succeeded"
	// EventError reports a protocol-level error from the server.
	EventError = "pusher:error"
)

// Request is a frame sent from the client to the Pusher server.
type Request struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// SubscribeData is the payload of a subscribe request.
type SubscribeData struct {
	Auth    string `json:"auth,omitempty"`
	Channel string `json:"channel"`
}

// Subscribe builds a subscribe request for a public channel.
func Subscribe(channel string) Request {
	return Request{
		Event: EventSubscribe,
		Data:  SubscribeData{Channel: channel},
	}
}

// Pong builds the answer to a server ping.
func Pong() Request {
	return Request{Event: EventPong, Data: struct{}{}}
}

// ErrorData is the payload of a pusher:error frame.
type ErrorData struct {
	Message string `json:"message"`
	Code    *int   `json:"code"`
}

// ServerError is a pusher:error frame surfaced as a Go error.
type ServerError struct {
	Code    int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("pusher error %d: %s", e.Code, e.Message)
}

// ParseServerError converts the data of a pusher:error frame.
func ParseServerError(data json.RawMessage) *ServerError {
	var ed ErrorData
	if err := json.Unmarshal(data, &ed); err != nil {
		return &ServerError{Message: string(data)}
	}
	se := &ServerError{Message: ed.Message}
	if ed.Code != nil {
		se.Code = *ed.Code
	}
	return se
}
