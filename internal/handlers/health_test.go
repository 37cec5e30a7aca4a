package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomloop/internal/auth"
)

func TestHealth(t *testing.T) {
	handler := NewHealthHandler("test", "1.2.3")
	handler.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	router := setupRouter(func(r *gin.Engine) { r.GET("/api/health", handler.Health) })

	rec := doRequest(router, http.MethodGet, "/api/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK","timestamp":"2026-01-02T03:04:05Z","environment":"test","version":"1.2.3"}`, rec.Body.String())
}

func TestNewRouterWiring(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(RouterConfig{
		ServiceName:    "roomloop-test",
		Environment:    "test",
		Version:        "1.0.0",
		AllowedOrigins: []string{"http://localhost:3000"},
		Verifier:       auth.NewVerifier("secret", time.Hour),
		Log:            discardLogger(),
	})

	rec := doRequest(router, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = doRequest(router, http.MethodGet, "/api/unknown", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"API endpoint not found"}`, rec.Body.String())

	rec = doRequest(router, http.MethodGet, "/api/rooms", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Authentication error: Token not provided"}`, rec.Body.String())

	rec = doRequest(router, http.MethodGet, "/api/debug/audit-test", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRouterDebugRoutesRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	verifier := auth.NewVerifier("secret", time.Hour)
	router := NewRouter(RouterConfig{
		ServiceName: "roomloop-test",
		Environment: "test",
		Version:     "1.0.0",
		DebugRoutes: true,
		Verifier:    verifier,
		Log:         discardLogger(),
	})

	for _, path := range []string{"/api/debug/sockets", "/api/debug/audit-test"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-User-ID", otherUserID)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	token, err := verifier.Issue(auth.Identity{ID: testUserID, Username: testUsername})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/debug/sockets", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
