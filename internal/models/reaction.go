package models

import "time"

// MessageReaction is one user's emoji on a message.
type MessageReaction struct {
	MessageID string    `db:"message_id" json:"message_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Emoji     string    `db:"emoji" json:"emoji"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ReactionChange describes what a toggle did to a message reaction.
type ReactionChange struct {
	Reaction MessageReaction `json:"reaction"`
	Removed  bool            `json:"removed"`
	Updated  bool            `json:"updated"`
}

// RoomReaction is an emoji burst sent to the whole room.
type RoomReaction struct {
	ID        string    `db:"id" json:"_id"`
	RoomID    string    `db:"room_id" json:"room_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Emoji     string    `db:"emoji" json:"emoji"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
