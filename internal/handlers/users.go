package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"roomloop/internal/models"
	"roomloop/internal/repositories"
)

const userSearchLimit = 20

// UserHandler serves user lookup.
type UserHandler struct {
	users repositories.UserRepository
}

func NewUserHandler(users repositories.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// Search finds users by username prefix, excluding the caller.
func (h *UserHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusOK, gin.H{"users": []models.PublicUser{}})
		return
	}

	userID, _ := currentUser(c)
	users, err := h.users.SearchUsers(c.Request.Context(), query, userSearchLimit+1)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search users"})
		return
	}
	users = lo.Filter(users, func(u models.PublicUser, _ int) bool { return u.ID != userID })
	if len(users) > userSearchLimit {
		users = users[:userSearchLimit]
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondRepoError(c, err, "failed to load user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}
