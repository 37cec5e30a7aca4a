package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roomloop/internal/repositories"
	"roomloop/internal/telemetry"
)

type emojiRequest struct {
	Emoji string `json:"emoji" binding:"required,max=32"`
}

// ReactionHandler records room emoji bursts and toggles message reactions.
type ReactionHandler struct {
	rooms     repositories.RoomRepository
	messages  repositories.MessageRepository
	reactions repositories.ReactionRepository
	audit     *telemetry.AuditEmitter
}

func NewReactionHandler(rooms repositories.RoomRepository, messages repositories.MessageRepository, reactions repositories.ReactionRepository, audit *telemetry.AuditEmitter) *ReactionHandler {
	return &ReactionHandler{rooms: rooms, messages: messages, reactions: reactions, audit: audit}
}

func (h *ReactionHandler) CreateRoomReaction(c *gin.Context) {
	var req emojiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	roomID := c.Param("room_id")
	if !requireParticipant(c, h.rooms, roomID) {
		return
	}

	userID, _ := currentUser(c)
	reaction, err := h.reactions.CreateRoomReaction(c.Request.Context(), roomID, userID, req.Emoji)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send reaction"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reaction": reaction})
}

func (h *ReactionHandler) ListRoomReactions(c *gin.Context) {
	roomID := c.Param("room_id")
	if !requireParticipant(c, h.rooms, roomID) {
		return
	}

	reactions, err := h.reactions.ListRoomReactions(c.Request.Context(), roomID, historyLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reactions": reactions})
}

// ToggleMessageReaction adds, replaces or removes the caller's reaction on a message.
func (h *ReactionHandler) ToggleMessageReaction(c *gin.Context) {
	var req emojiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	msg, err := h.messages.GetMessage(ctx, c.Param("message_id"))
	if err != nil {
		respondRepoError(c, err, "failed to load message")
		return
	}
	if !requireParticipant(c, h.rooms, msg.RoomID) {
		return
	}

	userID, _ := currentUser(c)
	change, err := h.reactions.ToggleMessageReaction(ctx, msg.ID, userID, req.Emoji)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update reaction"})
		return
	}
	c.JSON(http.StatusOK, change)
}
