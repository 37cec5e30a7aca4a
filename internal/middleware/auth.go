package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roomloop/internal/auth"
)

const (
	UserIDKey   = "userID"
	UsernameKey = "username"
)

// AuthMiddleware validates the bearer token and stores the caller's identity in the context.
func AuthMiddleware(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := verifier.Verify(auth.TokenFromHeader(c.GetHeader("Authorization")))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(UserIDKey, identity.ID)
		c.Set(UsernameKey, identity.Username)
		c.Next()
	}
}
