package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"roomloop/internal/models"
	"roomloop/internal/repositories"
	"roomloop/internal/telemetry"
	"roomloop/internal/ws"
)

// InvitationHandler invites users to rooms and settles their answers.
type InvitationHandler struct {
	rooms         repositories.RoomRepository
	users         repositories.UserRepository
	invitations   repositories.InvitationRepository
	notifications repositories.NotificationRepository
	notifier      Notifier
	audit         *telemetry.AuditEmitter
	log           *slog.Logger
	now           func() time.Time
}

func NewInvitationHandler(
	rooms repositories.RoomRepository,
	users repositories.UserRepository,
	invitations repositories.InvitationRepository,
	notifications repositories.NotificationRepository,
	notifier Notifier,
	audit *telemetry.AuditEmitter,
	log *slog.Logger,
) *InvitationHandler {
	return &InvitationHandler{
		rooms:         rooms,
		users:         users,
		invitations:   invitations,
		notifications: notifications,
		notifier:      notifier,
		audit:         audit,
		log:           log,
		now:           time.Now,
	}
}

// CreateInvitation stores an invitation and notifies the invitee.
// Only the host or an existing participant may invite.
func (h *InvitationHandler) CreateInvitation(c *gin.Context) {
	var req struct {
		RoomID          string `json:"room_id" binding:"required"`
		InviteeUsername string `json:"invitee_username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	userID, username := currentUser(c)

	room, err := h.rooms.GetRoom(ctx, req.RoomID)
	if err != nil {
		respondRepoError(c, err, "failed to load room")
		return
	}
	if room.Status(h.now()) == models.RoomStatusClosed {
		c.JSON(http.StatusConflict, gin.H{"error": "room has ended"})
		return
	}
	if room.HostID != userID {
		member, err := h.rooms.IsParticipant(ctx, room.ID, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
			return
		}
		if !member {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a room participant"})
			return
		}
	}

	invitee, err := h.users.GetUserByUsername(ctx, req.InviteeUsername)
	if err != nil {
		respondRepoError(c, err, "failed to load user")
		return
	}
	if invitee.ID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot invite yourself"})
		return
	}
	already, err := h.rooms.IsParticipant(ctx, room.ID, invitee.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if already {
		c.JSON(http.StatusConflict, gin.H{"error": "user already in room"})
		return
	}

	inv, err := h.invitations.CreateInvitation(ctx, room.ID, userID, invitee.ID)
	if err != nil {
		respondRepoError(c, err, "could not create invitation")
		return
	}

	n, err := h.notifications.CreateNotification(ctx, models.Notification{
		UserID:       invitee.ID,
		Type:         models.NotificationInvitation,
		Text:         fmt.Sprintf("%s invited you to %q", username, room.Title),
		RoomID:       lo.ToPtr(room.ID),
		InvitationID: lo.ToPtr(inv.ID),
	})
	if err != nil {
		h.log.Error("store invitation notification", "invitation_id", inv.ID, "error", err)
	} else {
		pushNotification(ctx, h.notifier, h.log, n)
	}

	emitAudit(c, h.audit, telemetry.ActionInvitationCreated, inv.ID)
	c.JSON(http.StatusCreated, gin.H{"invitation": inv})
}

// ListInvitations returns the caller's pending invitations.
func (h *InvitationHandler) ListInvitations(c *gin.Context) {
	userID, _ := currentUser(c)
	invitations, err := h.invitations.ListPendingForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load invitations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitations": invitations})
}

// RespondInvitation accepts or declines an invitation addressed to the caller.
func (h *InvitationHandler) RespondInvitation(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required,oneof=accepted declined"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	userID, username := currentUser(c)

	inv, err := h.invitations.GetInvitation(ctx, c.Param("invitation_id"))
	if err != nil {
		respondRepoError(c, err, "failed to load invitation")
		return
	}
	if inv.InviteeID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "invitation is not addressed to you"})
		return
	}
	if inv.Status != models.InvitationPending {
		c.JSON(http.StatusConflict, gin.H{"error": "invitation already answered"})
		return
	}

	inv, err = h.invitations.RespondInvitation(ctx, inv.ID, req.Status)
	if errors.Is(err, repositories.ErrInvitationNotFound) {
		c.JSON(http.StatusConflict, gin.H{"error": "invitation already answered"})
		return
	}
	if err != nil {
		respondRepoError(c, err, "could not update invitation")
		return
	}

	kind := lo.Ternary(req.Status == models.InvitationAccepted, models.NotificationInvitationAccepted, models.NotificationInvitationDeclined)
	n, err := h.notifications.CreateNotification(ctx, models.Notification{
		UserID:       inv.InviterID,
		Type:         kind,
		Text:         fmt.Sprintf("%s %s your invitation to %q", username, req.Status, inv.RoomTitle),
		RoomID:       lo.ToPtr(inv.RoomID),
		InvitationID: lo.ToPtr(inv.ID),
	})
	if err != nil {
		h.log.Error("store invitation response notification", "invitation_id", inv.ID, "error", err)
	} else {
		pushNotification(ctx, h.notifier, h.log, n)
	}
	push(ctx, h.notifier, h.log, inv.InviterID, ws.EventInvitationUpdated, gin.H{"invitation": inv})

	emitAudit(c, h.audit, lo.Ternary(req.Status == models.InvitationAccepted, telemetry.ActionInvitationAccepted, telemetry.ActionInvitationDeclined), inv.ID)
	c.JSON(http.StatusOK, gin.H{"invitation": inv})
}
