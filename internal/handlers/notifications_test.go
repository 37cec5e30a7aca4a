package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"roomloop/internal/mocks"
	"roomloop/internal/models"
	"roomloop/internal/repositories"
)

func setupNotificationRouter(notifications *mocks.NotificationRepositoryMock) *gin.Engine {
	handler := NewNotificationHandler(notifications)
	return setupRouter(func(r *gin.Engine) {
		r.GET("/notifications", handler.ListNotifications)
		r.PUT("/notifications/read-all", handler.MarkAllRead)
		r.PUT("/notifications/:notification_id/read", handler.MarkRead)
	})
}

func TestListNotificationsCountsUnread(t *testing.T) {
	notifications := new(mocks.NotificationRepositoryMock)
	router := setupNotificationRouter(notifications)

	notifications.On("ListNotifications", mock.Anything, testUserID, notificationLimit).Return([]models.Notification{
		{ID: "n1", Read: false},
		{ID: "n2", Read: true},
		{ID: "n3", Read: false},
	}, nil).Once()

	rec := doRequest(router, http.MethodGet, "/notifications", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, float64(2), resp["unread"])
	assert.Len(t, resp["notifications"], 3)
}

func TestMarkNotificationRead(t *testing.T) {
	notifications := new(mocks.NotificationRepositoryMock)
	router := setupNotificationRouter(notifications)

	notifications.On("MarkRead", mock.Anything, "n1", testUserID).Return(nil).Once()
	notifications.On("MarkRead", mock.Anything, "n9", testUserID).Return(repositories.ErrNotificationNotFound).Once()

	rec := doRequest(router, http.MethodPut, "/notifications/n1/read", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodPut, "/notifications/n9/read", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	notifications.AssertExpectations(t)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	notifications := new(mocks.NotificationRepositoryMock)
	router := setupNotificationRouter(notifications)

	notifications.On("MarkAllRead", mock.Anything, testUserID).Return(4, nil).Once()

	rec := doRequest(router, http.MethodPut, "/notifications/read-all", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"updated":4}`, rec.Body.String())
}
