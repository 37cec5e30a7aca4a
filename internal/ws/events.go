package ws

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"roomloop/internal/auth"
)

// Inbound event names.
const (
	EventJoinRoom            = "joinRoom"
	EventLeaveRoom           = "leaveRoom"
	EventSendMessage         = "sendMessage"
	EventSendReaction        = "sendReaction"
	EventSendMessageReaction = "sendMessageReaction"
)

// Outbound event names.
const (
	EventNewMessage         = "newMessage"
	EventNewReaction        = "newReaction"
	EventNewMessageReaction = "newMessageReaction"
	EventNewNotification    = "newNotification"
	EventInvitationUpdated  = "invitationUpdated"
	EventError              = "error"
)

// Frame is the wire envelope for both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Event is one item handled by the hub loop.
type Event interface {
	Name() string
}

type JoinRoom struct {
	RoomID string `json:"roomId" validate:"required"`
}

type LeaveRoom struct {
	RoomID string `json:"roomId" validate:"required"`
}

type SendMessage struct {
	RoomID  string          `json:"roomId" validate:"required"`
	Message json.RawMessage `json:"message"`
}

type SendReaction struct {
	RoomID   string          `json:"roomId" validate:"required"`
	Reaction json.RawMessage `json:"reaction"`
}

type SendMessageReaction struct {
	RoomID    string          `json:"roomId" validate:"required"`
	MessageID json.RawMessage `json:"messageId" validate:"json_value"`
	Reaction  json.RawMessage `json:"reaction" validate:"json_value"`
	Removed   bool            `json:"removed"`
	Updated   bool            `json:"updated"`
}

func (JoinRoom) Name() string            { return EventJoinRoom }
func (LeaveRoom) Name() string           { return EventLeaveRoom }
func (SendMessage) Name() string         { return EventSendMessage }
func (SendReaction) Name() string        { return EventSendReaction }
func (SendMessageReaction) Name() string { return EventSendMessageReaction }

type connectEvent struct {
	identity auth.Identity
	info     ConnInfo
}

type disconnectEvent struct {
	reason string
}

type transportError struct {
	err error
}

type notifyEvent struct {
	userID string
	event  string
	frame  []byte
}

// rejectedEvent carries an inbound frame that failed to decode.
type rejectedEvent struct {
	event string
	err   error
}

// statsEvent asks the loop for a registry snapshot.
type statsEvent struct {
	reply chan Stats
}

func (connectEvent) Name() string    { return "connect" }
func (statsEvent) Name() string      { return "stats" }
func (disconnectEvent) Name() string { return "disconnect" }
func (transportError) Name() string  { return "transportError" }
func (n notifyEvent) Name() string   { return n.event }
func (r rejectedEvent) Name() string { return r.event }

// User is the sender attached to every relayed event.
type User = auth.Identity

type NewMessage struct {
	Message json.RawMessage `json:"message"`
	User    User            `json:"user"`
}

type NewReaction struct {
	Reaction json.RawMessage `json:"reaction"`
	User     User            `json:"user"`
}

type NewMessageReaction struct {
	MessageID json.RawMessage `json:"messageId"`
	Reaction  json.RawMessage `json:"reaction"`
	User      User            `json:"user"`
	Removed   bool            `json:"removed"`
	Updated   bool            `json:"updated"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("json_value", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.Slice {
			return false
		}
		raw := bytes.TrimSpace(field.Bytes())
		return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
	})
	return v
}

// DecodeFrame turns a raw client frame into a typed inbound event.
func DecodeFrame(raw []byte) (Event, error) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	var ev Event
	switch frame.Event {
	case EventJoinRoom:
		ev = decodeInto[JoinRoom](frame.Data)
	case EventLeaveRoom:
		ev = decodeInto[LeaveRoom](frame.Data)
	case EventSendMessage:
		ev = decodeInto[SendMessage](frame.Data)
	case EventSendReaction:
		ev = decodeInto[SendReaction](frame.Data)
	case EventSendMessageReaction:
		ev = decodeInto[SendMessageReaction](frame.Data)
	default:
		return nil, &UnknownEventError{Event: frame.Event}
	}

	if d, ok := ev.(decodeFailure); ok {
		return nil, &RelayError{Event: frame.Event, Err: d.err}
	}
	if err := validate.Struct(ev); err != nil {
		return nil, &RelayError{Event: frame.Event, Err: err}
	}
	return ev, nil
}

type decodeFailure struct {
	err error
}

func (decodeFailure) Name() string { return "" }

func decodeInto[T Event](data json.RawMessage) Event {
	var payload T
	if len(data) == 0 {
		return payload
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return decodeFailure{err: err}
	}
	return payload
}

// EncodeFrame marshals an outbound event into a wire frame.
func EncodeFrame(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: data})
}

// reactionFlags reads the optional removed/updated markers carried inside a reaction object.
func reactionFlags(reaction json.RawMessage) (removed, updated bool) {
	var flags struct {
		Removed bool `json:"removed"`
		Updated bool `json:"updated"`
	}
	if err := json.Unmarshal(reaction, &flags); err != nil {
		return false, false
	}
	return flags.Removed, flags.Updated
}
