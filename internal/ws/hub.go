package ws

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"roomloop/internal/auth"
	"roomloop/internal/observability"
)

type envelope struct {
	conn  Conn
	event Event
}

// Hub serializes every registry mutation and fan-out through a single loop.
type Hub struct {
	registry *Registry
	inbox    chan envelope
	done     chan struct{}
	stopOnce sync.Once
	log      *slog.Logger
}

// NewHub creates a hub whose inbox holds up to inboxSize pending events.
func NewHub(inboxSize int, log *slog.Logger) *Hub {
	return &Hub{
		registry: NewRegistry(),
		inbox:    make(chan envelope, inboxSize),
		done:     make(chan struct{}),
		log:      log,
	}
}

// Run processes events until ctx is cancelled, then closes every remaining connection.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-h.inbox:
			h.handle(env)
		}
	}
}

// Done is closed once the hub has stopped accepting events.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Connect registers an authenticated connection.
func (h *Hub) Connect(conn Conn, identity auth.Identity, info ConnInfo) error {
	return h.submit(context.Background(), conn, connectEvent{identity: identity, info: info})
}

// Dispatch queues an inbound client event from conn.
func (h *Hub) Dispatch(conn Conn, ev Event) error {
	return h.submit(context.Background(), conn, ev)
}

// Reject reports an undecodable frame from conn back to it.
func (h *Hub) Reject(conn Conn, event string, err error) error {
	return h.submit(context.Background(), conn, rejectedEvent{event: event, err: err})
}

// TransportError records a transport failure observed on conn.
func (h *Hub) TransportError(conn Conn, err error) error {
	return h.submit(context.Background(), conn, transportError{err: err})
}

// Disconnect removes conn from every channel. Callers invoke it once per closed connection.
func (h *Hub) Disconnect(conn Conn, reason string) error {
	return h.submit(context.Background(), conn, disconnectEvent{reason: reason})
}

// NotifyUser pushes a server-originated event to every connection of userID.
func (h *Hub) NotifyUser(ctx context.Context, userID, event string, payload any) error {
	frame, err := EncodeFrame(event, payload)
	if err != nil {
		return err
	}
	return h.submit(ctx, nil, notifyEvent{userID: userID, event: event, frame: frame})
}

// Stats returns a snapshot taken inside the hub loop.
func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	if err := h.submit(ctx, nil, statsEvent{reply: reply}); err != nil {
		return Stats{}, err
	}
	select {
	case s := <-reply:
		return s, nil
	case <-h.done:
		return Stats{}, ErrHubStopped
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
}

func (h *Hub) submit(ctx context.Context, conn Conn, ev Event) error {
	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}
	select {
	case h.inbox <- envelope{conn: conn, event: ev}:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) handle(env envelope) {
	if _, ok := env.event.(statsEvent); !ok {
		observability.IncWSEvent(env.event.Name())
	}

	deliveries, err := apply(h.registry, env.conn, env.event)
	h.logEvent(env, err)
	h.deliver(deliveries)

	observability.SetWSActive(h.registry.Len(), h.registry.ChannelCount())
}

func (h *Hub) deliver(deliveries []delivery) {
	for _, d := range deliveries {
		if err := d.to.Send(d.frame); err != nil {
			observability.IncRelayFailure(d.event)
			h.log.Warn("relay delivery failed", "event", d.event, "conn_id", d.to.ID(), "error", err)
			if errors.Is(err, ErrSendBufferFull) {
				d.to.Close()
			}
			continue
		}
		observability.IncRelayDelivery(d.event)
	}
}

func (h *Hub) logEvent(env envelope, err error) {
	connID := ""
	if env.conn != nil {
		connID = env.conn.ID()
	}

	switch ev := env.event.(type) {
	case connectEvent:
		if err != nil {
			h.log.Warn("socket connect rejected", "conn_id", connID, "error", err)
			return
		}
		h.log.Debug("socket connected", "conn", ev.info)
	case disconnectEvent:
		h.log.Debug("socket disconnected", "conn_id", connID, "reason", ev.reason)
	case transportError:
		h.log.Error("socket error", "conn_id", connID, "error", ev.err)
	case JoinRoom:
		h.log.Debug("joined room", "conn_id", connID, "room_id", ev.RoomID, "error", err)
	case LeaveRoom:
		h.log.Debug("left room", "conn_id", connID, "room_id", ev.RoomID)
	default:
		if err != nil {
			h.log.Warn("relay failed", "conn_id", connID, "event", env.event.Name(), "error", err)
		}
	}
}

func (h *Hub) shutdown() {
	h.stopOnce.Do(func() {
		for _, conn := range h.registry.Connections() {
			conn.Close()
			h.registry.Disconnect(conn)
		}
		observability.SetWSActive(0, 0)
		close(h.done)
	})
}
