package ws

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"roomloop/internal/auth"
	"roomloop/internal/observability"
)

// ConnInfo is the handshake metadata recorded for a socket.
type ConnInfo struct {
	ConnID      string
	Identity    auth.Identity
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

func newConnInfo(c *gin.Context, identity auth.Identity, traceID string) ConnInfo {
	meta := observability.ClientMetaFromRequest(c)
	return ConnInfo{
		ConnID:      uuid.NewString(),
		Identity:    identity,
		DeviceID:    meta.DeviceID,
		IP:          meta.IP,
		RequestID:   meta.RequestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
}

// LogValue lets a ConnInfo be logged as a single group attribute.
func (i ConnInfo) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("conn_id", i.ConnID),
		slog.String("user_id", i.Identity.ID),
		slog.String("username", i.Identity.Username),
		slog.String("ip", i.IP),
	)
}

// socketEvent describes a lifecycle transition of the socket for the event bus.
func (i ConnInfo) socketEvent(event, reason string) observability.SocketEvent {
	return observability.SocketEvent{
		Event:      event,
		ConnID:     i.ConnID,
		UserID:     i.Identity.ID,
		DeviceID:   i.DeviceID,
		IP:         i.IP,
		DurationMS: time.Since(i.ConnectedAt).Milliseconds(),
		Reason:     reason,
	}
}
