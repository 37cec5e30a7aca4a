package repositories

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrDuplicateUser        = errors.New("username or email already taken")
	ErrRoomNotFound         = errors.New("room not found")
	ErrRoomClosed           = errors.New("room has ended")
	ErrRoomFull             = errors.New("room is full")
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrDuplicateInvitation  = errors.New("invitation already pending")
	ErrMessageNotFound      = errors.New("message not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// validID reports whether id can be a primary key. Malformed ids would
// otherwise surface as a Postgres cast error instead of a not-found.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
