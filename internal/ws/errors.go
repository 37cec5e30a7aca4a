package ws

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyConnected  = errors.New("connection already has an identity")
	ErrUnknownConnection = errors.New("connection is not registered")
	ErrConnClosed        = errors.New("connection closed")
	ErrSendBufferFull    = errors.New("send buffer full")
	ErrHubStopped        = errors.New("hub stopped")
)

// RelayError reports a failure to relay an inbound event. It is sent back to
// the origin connection and never closes it.
type RelayError struct {
	Event string
	Err   error
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay %s: %v", e.Event, e.Err)
}

func (e *RelayError) Unwrap() error {
	return e.Err
}

// ClientMessage is the text the origin sees in its error event.
func (e *RelayError) ClientMessage() string {
	switch e.Event {
	case EventSendMessage:
		return "Failed to send message"
	case EventSendReaction:
		return "Failed to send reaction"
	case EventSendMessageReaction:
		return "Failed to send message reaction"
	case EventJoinRoom:
		return "Failed to join room"
	case EventLeaveRoom:
		return "Failed to leave room"
	default:
		return "Failed to process event"
	}
}

type UnknownEventError struct {
	Event string
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("unknown event %q", e.Event)
}
