package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"roomloop/internal/middleware"
	"roomloop/internal/observability"
	"roomloop/internal/telemetry"
)

func requestIDFromContext(c *gin.Context) string {
	requestID := observability.ClientMetaFromRequest(c).RequestID
	if requestID == "" {
		requestID = uuid.NewString()
		c.Set(observability.RequestIDKey, requestID)
	}
	return requestID
}

// userIDFromContext returns the id set by the auth middleware or by the auth
// handlers after a successful login. Client headers are never trusted.
func userIDFromContext(c *gin.Context) *string {
	if id := c.GetString(middleware.UserIDKey); id != "" {
		return &id
	}
	return nil
}

func currentUser(c *gin.Context) (id, username string) {
	return c.GetString(middleware.UserIDKey), c.GetString(middleware.UsernameKey)
}

func emitAudit(c *gin.Context, emitter *telemetry.AuditEmitter, action telemetry.Action, subjectID string) {
	emitter.Emit(c.Request.Context(), telemetry.Record{
		Action:    action,
		SubjectID: subjectID,
		RequestID: requestIDFromContext(c),
		UserID:    userIDFromContext(c),
	})
}
