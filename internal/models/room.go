package models

import "time"

const (
	RoomTypePublic  = "public"
	RoomTypePrivate = "private"

	RoomStatusScheduled = "scheduled"
	RoomStatusLive      = "live"
	RoomStatusClosed    = "closed"
)

// Room is a scheduled micro-meetup.
type Room struct {
	ID              string    `db:"id" json:"_id"`
	Title           string    `db:"title" json:"title"`
	Description     string    `db:"description" json:"description"`
	RoomType        string    `db:"room_type" json:"room_type"`
	HostID          string    `db:"host_id" json:"host_id"`
	StartTime       time.Time `db:"start_time" json:"start_time"`
	EndTime         time.Time `db:"end_time" json:"end_time"`
	MaxParticipants int       `db:"max_participants" json:"max_participants"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Status derives the lifecycle phase of the room at now.
func (r Room) Status(now time.Time) string {
	switch {
	case now.Before(r.StartTime):
		return RoomStatusScheduled
	case now.Before(r.EndTime):
		return RoomStatusLive
	default:
		return RoomStatusClosed
	}
}

func (r Room) IsPrivate() bool {
	return r.RoomType == RoomTypePrivate
}

// Participant records a user's membership of a room.
type Participant struct {
	RoomID   string    `db:"room_id" json:"room_id"`
	UserID   string    `db:"user_id" json:"user_id"`
	Username string    `db:"username" json:"username"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}
