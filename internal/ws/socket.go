package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"roomloop/internal/auth"
	"roomloop/internal/observability"
)

// SocketHandler authenticates socket handshakes and pumps frames between
// the websocket and the hub.
type SocketHandler struct {
	hub        *Hub
	verifier   *auth.Verifier
	upgrader   websocket.Upgrader
	sendBuffer int
	log        *slog.Logger
}

// NewSocketHandler constructs a SocketHandler. Requests without an Origin
// header are accepted; browser origins must be listed in allowedOrigins.
func NewSocketHandler(hub *Hub, verifier *auth.Verifier, allowedOrigins []string, sendBuffer int, log *slog.Logger) *SocketHandler {
	return &SocketHandler{
		hub:        hub,
		verifier:   verifier,
		sendBuffer: sendBuffer,
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || lo.Contains(allowedOrigins, origin)
			},
		},
	}
}

// Handle verifies the token, upgrades the connection and registers it.
func (h *SocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("roomloop/ws").Start(c.Request.Context(), "ws.handshake", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.Query("token")
	if token == "" {
		token = auth.TokenFromHeader(c.GetHeader("Authorization"))
	}

	identity, err := h.verifier.Verify(token)
	if err != nil {
		reason := "invalid_token"
		if errors.Is(err, auth.ErrMissingToken) {
			reason = "missing_token"
		}
		observability.IncHandshakeReject(reason)
		span.SetStatus(codes.Error, reason)
		h.log.Warn("socket authentication error", "reason", reason, "error", err, "ip", observability.ClientMetaFromRequest(c).IP)
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	span.SetAttributes(attribute.String("user.id", identity.ID))

	wsConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("socket upgrade failed", "error", err)
		return
	}

	info := newConnInfo(c, identity, span.SpanContext().TraceID().String())
	conn := newSocketConn(info.ConnID, wsConn, h.sendBuffer)

	if err := h.hub.Connect(conn, identity, info); err != nil {
		conn.Close()
		return
	}
	h.publish(ctx, "ws_connect", info, "")

	go conn.writePump()
	go h.readPump(conn, info)
}

// readPump decodes frames in arrival order and hands them to the hub. It is
// the only caller of Disconnect for conn.
func (h *SocketHandler) readPump(conn *socketConn, info ConnInfo) {
	reason := "client namespace disconnect"
	defer func() {
		_ = h.hub.Disconnect(conn, reason)
		conn.Close()
		h.publish(context.Background(), "ws_disconnect", info, reason)
	}()

	conn.ws.SetReadLimit(maxMessageSize)
	_ = conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	conn.ws.SetPongHandler(func(string) error {
		return conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ws.ReadMessage()
		if err != nil {
			reason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !isLocalClose(conn) {
				_ = h.hub.TransportError(conn, err)
				h.publish(context.Background(), "ws_error", info, reason)
			}
			return
		}

		ev, err := DecodeFrame(raw)
		if err != nil {
			var relayErr *RelayError
			name := ""
			if errors.As(err, &relayErr) {
				name = relayErr.Event
			}
			if h.hub.Reject(conn, name, err) != nil {
				return
			}
			continue
		}
		if h.hub.Dispatch(conn, ev) != nil {
			return
		}
	}
}

func isLocalClose(conn *socketConn) bool {
	select {
	case <-conn.closed:
		return true
	default:
		return false
	}
}

func (h *SocketHandler) publish(ctx context.Context, event string, info ConnInfo, reason string) {
	envelope := observability.NewSocketEnvelope(info.socketEvent(event, reason), info.RequestID, info.TraceID)
	if err := observability.PublishEvent(ctx, observability.SocketRoutingKey, envelope); err != nil {
		h.log.Warn("socket event publish failed", "event", event, "conn", info, "error", err)
	}
}
