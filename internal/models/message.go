package models

import "time"

// Message is a chat message posted to a room.
type Message struct {
	ID             string    `db:"id" json:"_id"`
	RoomID         string    `db:"room_id" json:"room_id"`
	SenderID       string    `db:"sender_id" json:"sender_id"`
	SenderUsername string    `db:"sender_username" json:"sender_username,omitempty"`
	Text           string    `db:"text" json:"text"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
