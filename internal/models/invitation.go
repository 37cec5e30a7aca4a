package models

import "time"

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
)

// Invitation asks a user to join a room.
type Invitation struct {
	ID          string     `db:"id" json:"_id"`
	RoomID      string     `db:"room_id" json:"room_id"`
	RoomTitle   string     `db:"room_title" json:"room_title,omitempty"`
	InviterID   string     `db:"inviter_id" json:"inviter_id"`
	InviterName string     `db:"inviter_name" json:"inviter_name,omitempty"`
	InviteeID   string     `db:"invitee_id" json:"invitee_id"`
	Status      string     `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	RespondedAt *time.Time `db:"responded_at" json:"responded_at,omitempty"`
}
