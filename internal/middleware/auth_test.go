package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomloop/internal/auth"
)

func setupRouter(verifier *auth.Verifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(verifier), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.GetString(UserIDKey), "username": c.GetString(UsernameKey)})
	})
	return r
}

func TestAuthMiddlewareAcceptsBearerToken(t *testing.T) {
	verifier := auth.NewVerifier("secret", time.Hour)
	token, err := verifier.Issue(auth.Identity{ID: "u1", Username: "alice"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	setupRouter(verifier).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "u1", body["id"])
	assert.Equal(t, "alice", body["username"])
}

func TestAuthMiddlewareRejects(t *testing.T) {
	verifier := auth.NewVerifier("secret", time.Hour)
	other, err := auth.NewVerifier("other", time.Hour).Issue(auth.Identity{ID: "u1", Username: "alice"})
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"missing", "", "Authentication error: Token not provided"},
		{"wrong scheme", "Basic abc", "Authentication error: Token not provided"},
		{"garbage", "Bearer not-a-jwt", "Authentication error: Invalid token"},
		{"wrong secret", "Bearer " + other, "Authentication error: Invalid token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			setupRouter(verifier).ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"`+tc.want+`"}`, rec.Body.String())
		})
	}
}
