package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"roomloop/internal/models"
)

// RoomRepository abstracts room and participant persistence.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room models.Room) (models.Room, error)
	GetRoom(ctx context.Context, roomID string) (models.Room, error)
	ListRoomsForUser(ctx context.Context, userID string) ([]models.Room, error)
	DeleteRoom(ctx context.Context, roomID string) error
	AddParticipant(ctx context.Context, roomID, userID string) error
	RemoveParticipant(ctx context.Context, roomID, userID string) error
	IsParticipant(ctx context.Context, roomID, userID string) (bool, error)
	ListParticipants(ctx context.Context, roomID string) ([]models.Participant, error)
}

// RoomRepo is a sqlx implementation of RoomRepository.
type RoomRepo struct {
	db *sqlx.DB
}

func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

const roomColumns = `id, title, description, room_type, host_id, start_time, end_time, max_participants, created_at`

// CreateRoom stores the room and registers its host as the first participant.
func (r *RoomRepo) CreateRoom(ctx context.Context, room models.Room) (models.Room, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Room{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var created models.Room
	if err = tx.GetContext(ctx, &created, `INSERT INTO rooms (id, title, description, room_type, host_id, start_time, end_time, max_participants)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING `+roomColumns,
		uuid.NewString(), room.Title, room.Description, room.RoomType, room.HostID, room.StartTime, room.EndTime, room.MaxParticipants); err != nil {
		return models.Room{}, err
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO room_participants (room_id, user_id) VALUES ($1, $2)`, created.ID, created.HostID); err != nil {
		return models.Room{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Room{}, err
	}
	return created, nil
}

func (r *RoomRepo) GetRoom(ctx context.Context, roomID string) (models.Room, error) {
	if !validID(roomID) {
		return models.Room{}, ErrRoomNotFound
	}
	var room models.Room
	err := r.db.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM rooms WHERE id=$1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, err
}

// ListRoomsForUser returns public rooms plus the private rooms the user takes part in.
func (r *RoomRepo) ListRoomsForUser(ctx context.Context, userID string) ([]models.Room, error) {
	rooms := []models.Room{}
	err := r.db.SelectContext(ctx, &rooms, `SELECT `+roomColumns+` FROM rooms r
        WHERE r.room_type = 'public'
        OR EXISTS(SELECT 1 FROM room_participants p WHERE p.room_id = r.id AND p.user_id = $1)
        ORDER BY r.start_time ASC`, userID)
	return rooms, err
}

func (r *RoomRepo) DeleteRoom(ctx context.Context, roomID string) error {
	if !validID(roomID) {
		return ErrRoomNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id=$1`, roomID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// AddParticipant is idempotent. It fails with ErrRoomClosed or ErrRoomFull
// when the room can no longer take the user.
func (r *RoomRepo) AddParticipant(ctx context.Context, roomID, userID string) error {
	if !validID(roomID) {
		return ErrRoomNotFound
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = admitParticipant(ctx, tx, roomID, userID, time.Now()); err != nil {
		return err
	}
	return tx.Commit()
}

// admitParticipant inserts the membership while holding the room row lock,
// so concurrent joins and invitation accepts see each other's inserts
// before counting.
func admitParticipant(ctx context.Context, tx *sqlx.Tx, roomID, userID string, now time.Time) error {
	var room models.Room
	err := tx.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM rooms WHERE id=$1 FOR UPDATE`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRoomNotFound
	}
	if err != nil {
		return err
	}

	var member bool
	if err := tx.GetContext(ctx, &member, `SELECT EXISTS(SELECT 1 FROM room_participants WHERE room_id=$1 AND user_id=$2)`, roomID, userID); err != nil {
		return err
	}
	if member {
		return nil
	}
	if room.Status(now) == models.RoomStatusClosed {
		return ErrRoomClosed
	}
	if room.MaxParticipants > 0 {
		var count int
		if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM room_participants WHERE room_id=$1`, roomID); err != nil {
			return err
		}
		if count >= room.MaxParticipants {
			return ErrRoomFull
		}
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO room_participants (room_id, user_id) VALUES ($1, $2)
        ON CONFLICT (room_id, user_id) DO NOTHING`, roomID, userID)
	return err
}

func (r *RoomRepo) RemoveParticipant(ctx context.Context, roomID, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM room_participants WHERE room_id=$1 AND user_id=$2`, roomID, userID)
	return err
}

func (r *RoomRepo) IsParticipant(ctx context.Context, roomID, userID string) (bool, error) {
	if !validID(roomID) {
		return false, nil
	}
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM room_participants WHERE room_id=$1 AND user_id=$2)`, roomID, userID)
	return exists, err
}

// ListParticipants returns members in join order.
func (r *RoomRepo) ListParticipants(ctx context.Context, roomID string) ([]models.Participant, error) {
	participants := []models.Participant{}
	err := r.db.SelectContext(ctx, &participants, `SELECT p.room_id, p.user_id, u.username, p.joined_at
        FROM room_participants p INNER JOIN users u ON u.id = p.user_id
        WHERE p.room_id=$1 ORDER BY p.joined_at ASC`, roomID)
	return participants, err
}
