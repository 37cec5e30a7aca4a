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

// InvitationRepository abstracts room invitations.
type InvitationRepository interface {
	CreateInvitation(ctx context.Context, roomID, inviterID, inviteeID string) (models.Invitation, error)
	GetInvitation(ctx context.Context, invitationID string) (models.Invitation, error)
	ListPendingForUser(ctx context.Context, userID string) ([]models.Invitation, error)
	RespondInvitation(ctx context.Context, invitationID, status string) (models.Invitation, error)
	HasAccepted(ctx context.Context, roomID, userID string) (bool, error)
}

// InvitationRepo is a sqlx implementation of InvitationRepository.
type InvitationRepo struct {
	db *sqlx.DB
}

func NewInvitationRepo(db *sqlx.DB) *InvitationRepo {
	return &InvitationRepo{db: db}
}

const invitationSelect = `SELECT i.id, i.room_id, r.title AS room_title, i.inviter_id, u.username AS inviter_name,
        i.invitee_id, i.status, i.created_at, i.responded_at
        FROM invitations i
        INNER JOIN rooms r ON r.id = i.room_id
        INNER JOIN users u ON u.id = i.inviter_id`

func (r *InvitationRepo) CreateInvitation(ctx context.Context, roomID, inviterID, inviteeID string) (models.Invitation, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `INSERT INTO invitations (id, room_id, inviter_id, invitee_id) VALUES ($1, $2, $3, $4)`,
		id, roomID, inviterID, inviteeID)
	if isUniqueViolation(err) {
		return models.Invitation{}, ErrDuplicateInvitation
	}
	if err != nil {
		return models.Invitation{}, err
	}
	return r.GetInvitation(ctx, id)
}

func (r *InvitationRepo) GetInvitation(ctx context.Context, invitationID string) (models.Invitation, error) {
	if !validID(invitationID) {
		return models.Invitation{}, ErrInvitationNotFound
	}
	var inv models.Invitation
	err := r.db.GetContext(ctx, &inv, invitationSelect+` WHERE i.id=$1`, invitationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Invitation{}, ErrInvitationNotFound
	}
	return inv, err
}

func (r *InvitationRepo) ListPendingForUser(ctx context.Context, userID string) ([]models.Invitation, error) {
	invitations := []models.Invitation{}
	err := r.db.SelectContext(ctx, &invitations, invitationSelect+` WHERE i.invitee_id=$1 AND i.status='pending' ORDER BY i.created_at DESC`, userID)
	return invitations, err
}

// RespondInvitation settles a pending invitation. Accepting also makes the
// invitee a participant of the room, in the same transaction.
func (r *InvitationRepo) RespondInvitation(ctx context.Context, invitationID, status string) (models.Invitation, error) {
	if !validID(invitationID) {
		return models.Invitation{}, ErrInvitationNotFound
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Invitation{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var row struct {
		RoomID    string `db:"room_id"`
		InviteeID string `db:"invitee_id"`
	}
	err = tx.GetContext(ctx, &row, `UPDATE invitations SET status=$2, responded_at=NOW()
        WHERE id=$1 AND status='pending' RETURNING room_id, invitee_id`, invitationID, status)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Invitation{}, ErrInvitationNotFound
	}
	if err != nil {
		return models.Invitation{}, err
	}
	if status == models.InvitationAccepted {
		if err = admitParticipant(ctx, tx, row.RoomID, row.InviteeID, time.Now()); err != nil {
			return models.Invitation{}, err
		}
	}
	if err = tx.Commit(); err != nil {
		return models.Invitation{}, err
	}
	return r.GetInvitation(ctx, invitationID)
}

func (r *InvitationRepo) HasAccepted(ctx context.Context, roomID, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM invitations WHERE room_id=$1 AND invitee_id=$2 AND status='accepted')`, roomID, userID)
	return exists, err
}
