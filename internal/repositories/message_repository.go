package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"roomloop/internal/models"
)

// MessageRepository defines interactions for room messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, roomID, senderID, text string) (models.Message, error)
	ListMessages(ctx context.Context, roomID string, limit int) ([]models.Message, error)
	GetMessage(ctx context.Context, messageID string) (models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageSelect = `SELECT m.id, m.room_id, m.sender_id, u.username AS sender_username, m.text, m.created_at
        FROM messages m INNER JOIN users u ON u.id = m.sender_id`

func (r *MessageRepo) CreateMessage(ctx context.Context, roomID, senderID, text string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `WITH inserted AS (
            INSERT INTO messages (id, room_id, sender_id, text) VALUES ($1, $2, $3, $4)
            RETURNING id, room_id, sender_id, text, created_at
        )
        SELECT i.id, i.room_id, i.sender_id, u.username AS sender_username, i.text, i.created_at
        FROM inserted i INNER JOIN users u ON u.id = i.sender_id`,
		uuid.NewString(), roomID, senderID, text)
	return msg, err
}

// ListMessages returns the latest limit messages, oldest first.
func (r *MessageRepo) ListMessages(ctx context.Context, roomID string, limit int) ([]models.Message, error) {
	msgs := []models.Message{}
	err := r.db.SelectContext(ctx, &msgs, `SELECT * FROM (`+messageSelect+` WHERE m.room_id=$1 ORDER BY m.created_at DESC LIMIT $2) latest
        ORDER BY created_at ASC`, roomID, limit)
	return msgs, err
}

func (r *MessageRepo) GetMessage(ctx context.Context, messageID string) (models.Message, error) {
	if !validID(messageID) {
		return models.Message{}, ErrMessageNotFound
	}
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, messageSelect+` WHERE m.id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}
