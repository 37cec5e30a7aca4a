package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness. It never touches the database.
type HealthHandler struct {
	environment string
	version     string
	now         func() time.Time
}

func NewHealthHandler(environment, version string) *HealthHandler {
	return &HealthHandler{environment: environment, version: version, now: time.Now}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "OK",
		"timestamp":   h.now().UTC().Format(time.RFC3339),
		"environment": h.environment,
		"version":     h.version,
	})
}

func (h *HealthHandler) Banner(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "RoomLoop API", "version": h.version})
}
