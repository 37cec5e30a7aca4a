package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"roomloop/internal/mocks"
	"roomloop/internal/models"
	"roomloop/internal/repositories"
	"roomloop/internal/ws"
)

const testInvitationID = "44444444-4444-4444-8444-444444444444"

type invitationFixture struct {
	rooms         *mocks.RoomRepositoryMock
	users         *mocks.UserRepositoryMock
	invitations   *mocks.InvitationRepositoryMock
	notifications *mocks.NotificationRepositoryMock
	notifier      *mocks.NotifierMock
	router        *gin.Engine
}

func newInvitationFixture() *invitationFixture {
	f := &invitationFixture{
		rooms:         new(mocks.RoomRepositoryMock),
		users:         new(mocks.UserRepositoryMock),
		invitations:   new(mocks.InvitationRepositoryMock),
		notifications: new(mocks.NotificationRepositoryMock),
		notifier:      new(mocks.NotifierMock),
	}
	handler := NewInvitationHandler(f.rooms, f.users, f.invitations, f.notifications, f.notifier, nil, discardLogger())
	handler.now = func() time.Time { return roomClock }
	f.router = setupRouter(func(r *gin.Engine) {
		r.POST("/invitations", handler.CreateInvitation)
		r.GET("/invitations", handler.ListInvitations)
		r.PUT("/invitations/:invitation_id", handler.RespondInvitation)
	})
	return f
}

func TestCreateInvitationNotifiesInvitee(t *testing.T) {
	f := newInvitationFixture()
	room := liveRoom()
	room.HostID = testUserID
	invitation := models.Invitation{ID: testInvitationID, RoomID: testRoomID, InviterID: testUserID, InviteeID: otherUserID, Status: models.InvitationPending}
	stored := models.Notification{ID: "n1", UserID: otherUserID, Type: models.NotificationInvitation}

	f.rooms.On("GetRoom", mock.Anything, testRoomID).Return(room, nil).Once()
	f.users.On("GetUserByUsername", mock.Anything, "bob").Return(models.User{ID: otherUserID, Username: "bob"}, nil).Once()
	f.rooms.On("IsParticipant", mock.Anything, testRoomID, otherUserID).Return(false, nil).Once()
	f.invitations.On("CreateInvitation", mock.Anything, testRoomID, testUserID, otherUserID).Return(invitation, nil).Once()
	f.notifications.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
		return n.UserID == otherUserID && n.Type == models.NotificationInvitation &&
			*n.InvitationID == testInvitationID && n.Text == `alice invited you to "Friday standup"`
	})).Return(stored, nil).Once()
	f.notifier.On("NotifyUser", mock.Anything, otherUserID, ws.EventNewNotification, gin.H{"notification": stored}).Return(nil).Once()

	rec := doRequest(f.router, http.MethodPost, "/invitations", `{"room_id":"`+testRoomID+`","invitee_username":"bob"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	f.rooms.AssertExpectations(t)
	f.users.AssertExpectations(t)
	f.invitations.AssertExpectations(t)
	f.notifications.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestCreateInvitationPushFailureStillSucceeds(t *testing.T) {
	f := newInvitationFixture()
	room := liveRoom()
	room.HostID = testUserID

	f.rooms.On("GetRoom", mock.Anything, testRoomID).Return(room, nil).Once()
	f.users.On("GetUserByUsername", mock.Anything, "bob").Return(models.User{ID: otherUserID, Username: "bob"}, nil).Once()
	f.rooms.On("IsParticipant", mock.Anything, testRoomID, otherUserID).Return(false, nil).Once()
	f.invitations.On("CreateInvitation", mock.Anything, testRoomID, testUserID, otherUserID).Return(models.Invitation{ID: testInvitationID}, nil).Once()
	f.notifications.On("CreateNotification", mock.Anything, mock.Anything).Return(models.Notification{UserID: otherUserID}, nil).Once()
	f.notifier.On("NotifyUser", mock.Anything, otherUserID, ws.EventNewNotification, mock.Anything).Return(ws.ErrHubStopped).Once()

	rec := doRequest(f.router, http.MethodPost, "/invitations", `{"room_id":"`+testRoomID+`","invitee_username":"bob"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	f.notifier.AssertExpectations(t)
}

func TestCreateInvitationRequiresParticipant(t *testing.T) {
	f := newInvitationFixture()

	f.rooms.On("GetRoom", mock.Anything, testRoomID).Return(liveRoom(), nil).Once()
	f.rooms.On("IsParticipant", mock.Anything, testRoomID, testUserID).Return(false, nil).Once()

	rec := doRequest(f.router, http.MethodPost, "/invitations", `{"room_id":"`+testRoomID+`","invitee_username":"bob"}`)

	require.Equal(t, http.StatusForbidden, rec.Code)
	f.invitations.AssertNotCalled(t, "CreateInvitation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateInvitationDuplicate(t *testing.T) {
	f := newInvitationFixture()
	room := liveRoom()
	room.HostID = testUserID

	f.rooms.On("GetRoom", mock.Anything, testRoomID).Return(room, nil).Once()
	f.users.On("GetUserByUsername", mock.Anything, "bob").Return(models.User{ID: otherUserID, Username: "bob"}, nil).Once()
	f.rooms.On("IsParticipant", mock.Anything, testRoomID, otherUserID).Return(false, nil).Once()
	f.invitations.On("CreateInvitation", mock.Anything, testRoomID, testUserID, otherUserID).Return(nil, repositories.ErrDuplicateInvitation).Once()

	rec := doRequest(f.router, http.MethodPost, "/invitations", `{"room_id":"`+testRoomID+`","invitee_username":"bob"}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	f.notifier.AssertNotCalled(t, "NotifyUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRespondInvitationAcceptedNotifiesInviter(t *testing.T) {
	f := newInvitationFixture()
	pending := models.Invitation{ID: testInvitationID, RoomID: testRoomID, RoomTitle: "Friday standup", InviterID: otherUserID, InviteeID: testUserID, Status: models.InvitationPending}
	accepted := pending
	accepted.Status = models.InvitationAccepted
	stored := models.Notification{ID: "n2", UserID: otherUserID, Type: models.NotificationInvitationAccepted}

	f.invitations.On("GetInvitation", mock.Anything, testInvitationID).Return(pending, nil).Once()
	f.invitations.On("RespondInvitation", mock.Anything, testInvitationID, models.InvitationAccepted).Return(accepted, nil).Once()
	f.notifications.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
		return n.UserID == otherUserID && n.Type == models.NotificationInvitationAccepted
	})).Return(stored, nil).Once()
	f.notifier.On("NotifyUser", mock.Anything, otherUserID, ws.EventNewNotification, gin.H{"notification": stored}).Return(nil).Once()
	f.notifier.On("NotifyUser", mock.Anything, otherUserID, ws.EventInvitationUpdated, gin.H{"invitation": accepted}).Return(nil).Once()

	rec := doRequest(f.router, http.MethodPut, "/invitations/"+testInvitationID, `{"status":"accepted"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	inv := decodeBody(t, rec)["invitation"].(map[string]any)
	assert.Equal(t, models.InvitationAccepted, inv["status"])
	f.invitations.AssertExpectations(t)
	f.notifications.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestRespondInvitationAcceptIntoUnavailableRoom(t *testing.T) {
	cases := []struct {
		name    string
		repoErr error
		want    string
	}{
		{"full room", repositories.ErrRoomFull, `{"error":"room is full"}`},
		{"closed room", repositories.ErrRoomClosed, `{"error":"room has ended"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newInvitationFixture()
			pending := models.Invitation{ID: testInvitationID, RoomID: testRoomID, InviterID: otherUserID, InviteeID: testUserID, Status: models.InvitationPending}
			f.invitations.On("GetInvitation", mock.Anything, testInvitationID).Return(pending, nil).Once()
			f.invitations.On("RespondInvitation", mock.Anything, testInvitationID, models.InvitationAccepted).Return(nil, tc.repoErr).Once()

			rec := doRequest(f.router, http.MethodPut, "/invitations/"+testInvitationID, `{"status":"accepted"}`)

			require.Equal(t, http.StatusConflict, rec.Code)
			assert.JSONEq(t, tc.want, rec.Body.String())
			f.invitations.AssertExpectations(t)
			f.notifications.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything)
			f.notifier.AssertNotCalled(t, "NotifyUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRespondInvitationRejects(t *testing.T) {
	cases := []struct {
		name       string
		invitation models.Invitation
		body       string
		wantCode   int
	}{
		{"not addressed to caller", models.Invitation{ID: testInvitationID, InviteeID: otherUserID, Status: models.InvitationPending}, `{"status":"accepted"}`, http.StatusForbidden},
		{"already answered", models.Invitation{ID: testInvitationID, InviteeID: testUserID, Status: models.InvitationDeclined}, `{"status":"accepted"}`, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newInvitationFixture()
			f.invitations.On("GetInvitation", mock.Anything, testInvitationID).Return(tc.invitation, nil).Once()

			rec := doRequest(f.router, http.MethodPut, "/invitations/"+testInvitationID, tc.body)

			require.Equal(t, tc.wantCode, rec.Code)
			f.invitations.AssertNotCalled(t, "RespondInvitation", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("bad status", func(t *testing.T) {
		f := newInvitationFixture()
		rec := doRequest(f.router, http.MethodPut, "/invitations/"+testInvitationID, `{"status":"maybe"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
