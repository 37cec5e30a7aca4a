package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"roomloop/internal/auth"
	"roomloop/internal/middleware"
	"roomloop/internal/models"
	"roomloop/internal/repositories"
	"roomloop/internal/telemetry"
)

// AuthHandler registers accounts and issues tokens.
type AuthHandler struct {
	users    repositories.UserRepository
	verifier *auth.Verifier
	audit    *telemetry.AuditEmitter
}

func NewAuthHandler(users repositories.UserRepository, verifier *auth.Verifier, audit *telemetry.AuditEmitter) *AuthHandler {
	return &AuthHandler{users: users, verifier: verifier, audit: audit}
}

type authResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,min=3,max=30,alphanum"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6,max=128"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register user"})
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), strings.TrimSpace(req.Username), req.Email, hash)
	if err != nil {
		respondRepoError(c, err, "could not register user")
		return
	}

	token, err := h.verifier.Issue(auth.Identity{ID: user.ID, Username: user.Username})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	c.Set(middleware.UserIDKey, user.ID)
	emitAudit(c, h.audit, telemetry.ActionUserRegistered, user.ID)
	c.JSON(http.StatusCreated, authResponse{Token: token, User: user.Public()})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetUserByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, repositories.ErrUserNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	ok, err := auth.ComparePassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.verifier.Issue(auth.Identity{ID: user.ID, Username: user.Username})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	c.Set(middleware.UserIDKey, user.ID)
	emitAudit(c, h.audit, telemetry.ActionUserLoggedIn, user.ID)
	c.JSON(http.StatusOK, authResponse{Token: token, User: user.Public()})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, _ := currentUser(c)
	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondRepoError(c, err, "failed to load user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": gin.H{
		"_id":        user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"created_at": user.CreatedAt,
	}})
}
