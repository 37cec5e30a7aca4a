package models

import "time"

const (
	NotificationInvitation         = "invitation"
	NotificationInvitationAccepted = "invitation_accepted"
	NotificationInvitationDeclined = "invitation_declined"
)

// Notification is a message addressed to a single user.
type Notification struct {
	ID           string    `db:"id" json:"_id"`
	UserID       string    `db:"user_id" json:"user_id"`
	Type         string    `db:"type" json:"type"`
	Text         string    `db:"text" json:"text"`
	RoomID       *string   `db:"room_id" json:"room_id,omitempty"`
	InvitationID *string   `db:"invitation_id" json:"invitation_id,omitempty"`
	Read         bool      `db:"read" json:"read"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
