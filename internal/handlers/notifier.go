package handlers

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"roomloop/internal/models"
	"roomloop/internal/ws"
)

// Notifier pushes a server-originated event to every open connection of a user.
type Notifier interface {
	NotifyUser(ctx context.Context, userID, event string, payload any) error
}

// pushNotification delivers n over the socket. A failed push is logged; the
// notification is already stored and the client fetches it on next load.
func pushNotification(ctx context.Context, notifier Notifier, log *slog.Logger, n models.Notification) {
	push(ctx, notifier, log, n.UserID, ws.EventNewNotification, gin.H{"notification": n})
}

func push(ctx context.Context, notifier Notifier, log *slog.Logger, userID, event string, payload any) {
	if notifier == nil {
		return
	}
	if err := notifier.NotifyUser(ctx, userID, event, payload); err != nil {
		log.Warn("socket push failed", "event", event, "user_id", userID, "error", err)
	}
}
