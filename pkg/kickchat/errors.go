package kickchat

import (
	"errors"
	"fmt"

	"github.com/Guliveer/kick-watcher-go/internal/pusher"
)

// ErrAlreadyConnected is returned by Connect while a session is open or
// being opened.
var ErrAlreadyConnected = errors.New("kickchat: already connected")

// ErrConnectAborted is wrapped in the TransportError returned when
// Disconnect is called while Connect is still in progress.
var ErrConnectAborted = errors.New("kickchat: connect aborted by disconnect")

// OfflineError is returned by Connect when the channel has no active stream.
type OfflineError struct {
	Channel string
}

func (e *OfflineError) Error() string {
	return fmt.Sprintf("%s is offline", e.Channel)
}

// Resolution steps reported by ResolutionError.
const (
	StepLiveStream = "livestream"
	StepChatRoom   = "chatroom"
	StepChannel    = "channel"
	StepViewers    = "viewers"
)

// ResolutionError reports a failed metadata lookup.
type ResolutionError struct {
	Channel string
	Step    string
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving %s of %s: %v", e.Step, e.Channel, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// TransportError reports a realtime socket failure.
type TransportError struct {
	// Op is one of "dial", "subscribe", "read", "write" or "server".
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a malformed inbound frame or payload.
type DecodeError = pusher.DecodeError
