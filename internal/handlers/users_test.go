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

func setupUserRouter(handler *UserHandler) *gin.Engine {
	return setupRouter(func(r *gin.Engine) {
		r.GET("/users/search", handler.Search)
		r.GET("/users/:user_id", handler.GetUser)
	})
}

func TestSearchUsersExcludesCaller(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupUserRouter(NewUserHandler(users))

	users.On("SearchUsers", mock.Anything, "al", userSearchLimit+1).Return([]models.PublicUser{
		{ID: testUserID, Username: testUsername},
		{ID: otherUserID, Username: "alfred"},
	}, nil).Once()

	rec := doRequest(router, http.MethodGet, "/users/search?q=al", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"users":[{"_id":"`+otherUserID+`","username":"alfred"}]}`, rec.Body.String())
	users.AssertExpectations(t)
}

func TestSearchUsersBlankQuery(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupUserRouter(NewUserHandler(users))

	rec := doRequest(router, http.MethodGet, "/users/search?q=%20", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"users":[]}`, rec.Body.String())
	users.AssertNotCalled(t, "SearchUsers", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetUserNotFound(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupUserRouter(NewUserHandler(users))

	users.On("GetUser", mock.Anything, "missing").Return(nil, repositories.ErrUserNotFound).Once()

	rec := doRequest(router, http.MethodGet, "/users/missing", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"user not found"}`, rec.Body.String())
	users.AssertExpectations(t)
}
