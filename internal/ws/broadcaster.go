package ws

import "errors"

type delivery struct {
	to    Conn
	event string
	frame []byte
}

// broadcast addresses frame to every member of roomID except origin.
// An empty channel yields no deliveries.
func broadcast(reg *Registry, roomID, event string, frame []byte, origin Conn) []delivery {
	members := reg.Members(roomID)
	out := make([]delivery, 0, len(members))
	for _, conn := range members {
		if conn == origin {
			continue
		}
		out = append(out, delivery{to: conn, event: event, frame: frame})
	}
	return out
}

// apply handles one event against the registry and returns the frames to send.
// A non-nil error is for logging only; any client-facing report is already
// among the deliveries.
func apply(reg *Registry, conn Conn, ev Event) ([]delivery, error) {
	switch e := ev.(type) {
	case connectEvent:
		return nil, reg.Connect(conn, e.identity, e.info)
	case disconnectEvent:
		reg.Disconnect(conn)
		return nil, nil
	case notifyEvent:
		return broadcast(reg, e.userID, e.event, e.frame, nil), nil
	case statsEvent:
		e.reply <- reg.Stats()
		return nil, nil
	}

	sender, ok := reg.Identity(conn)
	if !ok {
		return nil, ErrUnknownConnection
	}

	switch e := ev.(type) {
	case JoinRoom:
		return nil, reg.Join(conn, e.RoomID)
	case LeaveRoom:
		reg.Leave(conn, e.RoomID)
		return nil, nil
	case SendMessage:
		return relay(reg, conn, e.RoomID, e.Name(), EventNewMessage, NewMessage{
			Message: e.Message,
			User:    sender,
		})
	case SendReaction:
		return relay(reg, conn, e.RoomID, e.Name(), EventNewReaction, NewReaction{
			Reaction: e.Reaction,
			User:     sender,
		})
	case SendMessageReaction:
		removed, updated := reactionFlags(e.Reaction)
		return relay(reg, conn, e.RoomID, e.Name(), EventNewMessageReaction, NewMessageReaction{
			MessageID: e.MessageID,
			Reaction:  e.Reaction,
			User:      sender,
			Removed:   removed || e.Removed,
			Updated:   updated || e.Updated,
		})
	case rejectedEvent:
		var relayErr *RelayError
		if !errors.As(e.err, &relayErr) {
			relayErr = &RelayError{Event: e.event, Err: e.err}
		}
		return reportError(conn, relayErr), relayErr
	case transportError:
		return nil, e.err
	default:
		return nil, &UnknownEventError{Event: ev.Name()}
	}
}

func relay(reg *Registry, origin Conn, roomID, inbound, outbound string, payload any) ([]delivery, error) {
	frame, err := EncodeFrame(outbound, payload)
	if err != nil {
		relayErr := &RelayError{Event: inbound, Err: err}
		return reportError(origin, relayErr), relayErr
	}
	return broadcast(reg, roomID, outbound, frame, origin), nil
}

func reportError(origin Conn, relayErr *RelayError) []delivery {
	frame, err := EncodeFrame(EventError, ErrorMessage{Message: relayErr.ClientMessage()})
	if err != nil {
		return nil
	}
	return []delivery{{to: origin, event: EventError, frame: frame}}
}
