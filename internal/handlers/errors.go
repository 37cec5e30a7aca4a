package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"roomloop/internal/repositories"
)

// respondRepoError maps repository sentinels to client errors and anything
// else to a 500 carrying fallback.
func respondRepoError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, repositories.ErrUserNotFound),
		errors.Is(err, repositories.ErrRoomNotFound),
		errors.Is(err, repositories.ErrInvitationNotFound),
		errors.Is(err, repositories.ErrMessageNotFound),
		errors.Is(err, repositories.ErrNotificationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repositories.ErrDuplicateUser),
		errors.Is(err, repositories.ErrDuplicateInvitation),
		errors.Is(err, repositories.ErrRoomClosed),
		errors.Is(err, repositories.ErrRoomFull):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
