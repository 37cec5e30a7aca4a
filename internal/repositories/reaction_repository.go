package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"roomloop/internal/models"
)

// ReactionRepository stores room emoji bursts and per-message reactions.
type ReactionRepository interface {
	CreateRoomReaction(ctx context.Context, roomID, userID, emoji string) (models.RoomReaction, error)
	ListRoomReactions(ctx context.Context, roomID string, limit int) ([]models.RoomReaction, error)
	ToggleMessageReaction(ctx context.Context, messageID, userID, emoji string) (models.ReactionChange, error)
}

// ReactionRepo is a sqlx implementation of ReactionRepository.
type ReactionRepo struct {
	db *sqlx.DB
}

func NewReactionRepo(db *sqlx.DB) *ReactionRepo {
	return &ReactionRepo{db: db}
}

func (r *ReactionRepo) CreateRoomReaction(ctx context.Context, roomID, userID, emoji string) (models.RoomReaction, error) {
	var reaction models.RoomReaction
	err := r.db.GetContext(ctx, &reaction, `INSERT INTO room_reactions (id, room_id, user_id, emoji) VALUES ($1, $2, $3, $4)
        RETURNING id, room_id, user_id, emoji, created_at`, uuid.NewString(), roomID, userID, emoji)
	return reaction, err
}

func (r *ReactionRepo) ListRoomReactions(ctx context.Context, roomID string, limit int) ([]models.RoomReaction, error) {
	reactions := []models.RoomReaction{}
	err := r.db.SelectContext(ctx, &reactions, `SELECT id, room_id, user_id, emoji, created_at FROM room_reactions
        WHERE room_id=$1 ORDER BY created_at DESC LIMIT $2`, roomID, limit)
	return reactions, err
}

// ToggleMessageReaction applies the one-reaction-per-user rule: the same
// emoji removes the reaction, a different emoji replaces it, none adds it.
func (r *ReactionRepo) ToggleMessageReaction(ctx context.Context, messageID, userID, emoji string) (models.ReactionChange, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.ReactionChange{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var existing models.MessageReaction
	err = tx.GetContext(ctx, &existing, `SELECT message_id, user_id, emoji, created_at, updated_at FROM message_reactions
        WHERE message_id=$1 AND user_id=$2 FOR UPDATE`, messageID, userID)
	found := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return models.ReactionChange{}, err
	}

	var change models.ReactionChange
	switch {
	case found && existing.Emoji == emoji:
		if _, err = tx.ExecContext(ctx, `DELETE FROM message_reactions WHERE message_id=$1 AND user_id=$2`, messageID, userID); err != nil {
			return models.ReactionChange{}, err
		}
		change = models.ReactionChange{Reaction: existing, Removed: true}
	case found:
		if err = tx.GetContext(ctx, &change.Reaction, `UPDATE message_reactions SET emoji=$3, updated_at=NOW()
            WHERE message_id=$1 AND user_id=$2 RETURNING message_id, user_id, emoji, created_at, updated_at`, messageID, userID, emoji); err != nil {
			return models.ReactionChange{}, err
		}
		change.Updated = true
	default:
		if err = tx.GetContext(ctx, &change.Reaction, `INSERT INTO message_reactions (message_id, user_id, emoji) VALUES ($1, $2, $3)
            RETURNING message_id, user_id, emoji, created_at, updated_at`, messageID, userID, emoji); err != nil {
			return models.ReactionChange{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return models.ReactionChange{}, err
	}
	return change, nil
}
