package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"roomloop/internal/telemetry"
	"roomloop/internal/ws"
)

// SocketStats reports the live connection registry.
type SocketStats interface {
	Stats(ctx context.Context) (ws.Stats, error)
}

// RegisterDebugRoutes wires debug-only endpoints. Callers mount them behind
// the auth middleware.
func RegisterDebugRoutes(router gin.IRouter, emitter *telemetry.AuditEmitter, sockets SocketStats, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		emitAudit(c, emitter, telemetry.ActionAuditTest, "")
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/debug/sockets", func(c *gin.Context) {
		if sockets == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "socket hub not configured"})
			return
		}
		stats, err := sockets.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		// channel keys include user ids, so only sizes leave the process
		c.JSON(http.StatusOK, gin.H{
			"connections": stats.Connections,
			"channels":    len(stats.Channels),
			"memberships": lo.Sum(lo.Values(stats.Channels)),
		})
	})
}
