package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"roomloop/internal/models"
	"roomloop/internal/repositories"
	"roomloop/internal/telemetry"
)

// RoomHandler manages room lifecycle and membership.
type RoomHandler struct {
	rooms       repositories.RoomRepository
	invitations repositories.InvitationRepository
	audit       *telemetry.AuditEmitter
	now         func() time.Time
}

func NewRoomHandler(rooms repositories.RoomRepository, invitations repositories.InvitationRepository, audit *telemetry.AuditEmitter) *RoomHandler {
	return &RoomHandler{rooms: rooms, invitations: invitations, audit: audit, now: time.Now}
}

type roomResponse struct {
	models.Room
	Status       string               `json:"status"`
	Participants []models.Participant `json:"participants,omitempty"`
}

func (h *RoomHandler) view(room models.Room) roomResponse {
	return roomResponse{Room: room, Status: room.Status(h.now())}
}

func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req struct {
		Title           string    `json:"title" binding:"required,max=100"`
		Description     string    `json:"description" binding:"max=500"`
		RoomType        string    `json:"room_type" binding:"omitempty,oneof=public private"`
		StartTime       time.Time `json:"start_time" binding:"required"`
		EndTime         time.Time `json:"end_time" binding:"required"`
		MaxParticipants int       `json:"max_participants" binding:"min=0,max=1000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	if !req.EndTime.After(req.StartTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be after start_time"})
		return
	}
	if !req.EndTime.After(h.now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room would already be closed"})
		return
	}

	userID, _ := currentUser(c)
	room, err := h.rooms.CreateRoom(c.Request.Context(), models.Room{
		Title:           title,
		Description:     strings.TrimSpace(req.Description),
		RoomType:        lo.Ternary(req.RoomType == "", models.RoomTypePublic, req.RoomType),
		HostID:          userID,
		StartTime:       req.StartTime.UTC(),
		EndTime:         req.EndTime.UTC(),
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create room"})
		return
	}

	emitAudit(c, h.audit, telemetry.ActionRoomCreated, room.ID)
	c.JSON(http.StatusCreated, gin.H{"room": h.view(room)})
}

// ListRooms returns public rooms and the caller's private rooms.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	userID, _ := currentUser(c)
	rooms, err := h.rooms.ListRoomsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rooms"})
		return
	}

	views := lo.Map(rooms, func(r models.Room, _ int) roomResponse { return h.view(r) })
	if status := c.Query("status"); status != "" {
		views = lo.Filter(views, func(v roomResponse, _ int) bool { return v.Status == status })
	}
	c.JSON(http.StatusOK, gin.H{"rooms": views})
}

func (h *RoomHandler) GetRoom(c *gin.Context) {
	ctx := c.Request.Context()
	roomID := c.Param("room_id")
	userID, _ := currentUser(c)

	room, err := h.rooms.GetRoom(ctx, roomID)
	if err != nil {
		respondRepoError(c, err, "failed to load room")
		return
	}

	participants, err := h.rooms.ListParticipants(ctx, roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load participants"})
		return
	}
	member := lo.ContainsBy(participants, func(p models.Participant) bool { return p.UserID == userID })
	if room.IsPrivate() && !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "room is private"})
		return
	}

	view := h.view(room)
	view.Participants = participants
	c.JSON(http.StatusOK, gin.H{"room": view})
}

func (h *RoomHandler) JoinRoom(c *gin.Context) {
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

	member, err := h.rooms.IsParticipant(ctx, roomID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if member {
		c.JSON(http.StatusOK, gin.H{"room": h.view(room)})
		return
	}

	if room.IsPrivate() && room.HostID != userID {
		invited, err := h.invitations.HasAccepted(ctx, roomID, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify invitation"})
			return
		}
		if !invited {
			c.JSON(http.StatusForbidden, gin.H{"error": "room is private"})
			return
		}
	}

	if err := h.rooms.AddParticipant(ctx, roomID, userID); err != nil {
		respondRepoError(c, err, "could not join room")
		return
	}

	emitAudit(c, h.audit, telemetry.ActionRoomJoined, roomID)
	c.JSON(http.StatusOK, gin.H{"room": h.view(room)})
}

func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	ctx := c.Request.Context()
	roomID := c.Param("room_id")
	userID, _ := currentUser(c)

	room, err := h.rooms.GetRoom(ctx, roomID)
	if err != nil {
		respondRepoError(c, err, "failed to load room")
		return
	}
	if room.HostID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "host cannot leave the room"})
		return
	}

	if err := h.rooms.RemoveParticipant(ctx, roomID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not leave room"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "left"})
}

// DeleteRoom is restricted to the host.
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	ctx := c.Request.Context()
	roomID := c.Param("room_id")
	userID, _ := currentUser(c)

	room, err := h.rooms.GetRoom(ctx, roomID)
	if err != nil {
		respondRepoError(c, err, "failed to load room")
		return
	}
	if room.HostID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the host can delete the room"})
		return
	}

	if err := h.rooms.DeleteRoom(ctx, roomID); err != nil {
		respondRepoError(c, err, "could not delete room")
		return
	}

	emitAudit(c, h.audit, telemetry.ActionRoomDeleted, roomID)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
