package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"roomloop/internal/models"
	"roomloop/internal/repositories"
)

const notificationLimit = 50

type NotificationHandler struct {
	notifications repositories.NotificationRepository
}

func NewNotificationHandler(notifications repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, _ := currentUser(c)
	list, err := h.notifications.ListNotifications(c.Request.Context(), userID, notificationLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}
	unread := lo.CountBy(list, func(n models.Notification) bool { return !n.Read })
	c.JSON(http.StatusOK, gin.H{"notifications": list, "unread": unread})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, _ := currentUser(c)
	if err := h.notifications.MarkRead(c.Request.Context(), c.Param("notification_id"), userID); err != nil {
		respondRepoError(c, err, "could not update notification")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, _ := currentUser(c)
	updated, err := h.notifications.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
