package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"roomloop/internal/models"
	"roomloop/internal/repositories"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
	maxMessageLength    = 2000
)

// MessageHandler serves room message history and posting. Fan-out to other
// participants happens over the socket once the client has the stored message.
type MessageHandler struct {
	rooms    repositories.RoomRepository
	messages repositories.MessageRepository
	now      func() time.Time
}

func NewMessageHandler(rooms repositories.RoomRepository, messages repositories.MessageRepository) *MessageHandler {
	return &MessageHandler{rooms: rooms, messages: messages, now: time.Now}
}

func (h *MessageHandler) ListMessages(c *gin.Context) {
	roomID := c.Param("room_id")
	if !requireParticipant(c, h.rooms, roomID) {
		return
	}

	msgs, err := h.messages.ListMessages(c.Request.Context(), roomID, historyLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *MessageHandler) PostMessage(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" || utf8.RuneCountInString(text) > maxMessageLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message must be between 1 and 2000 characters"})
		return
	}

	ctx := c.Request.Context()
	roomID := c.Param("room_id")
	userID, _ := currentUser(c)

	room, err := h.rooms.GetRoom(ctx, roomID)
	if err != nil {
		respondRepoError(c, err, "failed to load room")
		return
	}
	if room.Status(h.now()) == models.RoomStatusClosed {
		c.JSON(http.StatusConflict, gin.H{"error": "room has ended"})
		return
	}
	if !requireParticipant(c, h.rooms, roomID) {
		return
	}

	msg, err := h.messages.CreateMessage(ctx, roomID, userID, text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send message"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// requireParticipant writes a 403 and returns false unless the caller has joined roomID.
func requireParticipant(c *gin.Context, rooms repositories.RoomRepository, roomID string) bool {
	userID, _ := currentUser(c)
	member, err := rooms.IsParticipant(c.Request.Context(), roomID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return false
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a room participant"})
		return false
	}
	return true
}

func historyLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return defaultHistoryLimit
	}
	return min(limit, maxHistoryLimit)
}
