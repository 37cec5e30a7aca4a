package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"roomloop/internal/models"
)

// UserRepository abstracts account persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (models.User, error)
	GetUser(ctx context.Context, userID string) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]models.PublicUser, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, username, email, password_hash, created_at`

// CreateUser stores a new account. Email is stored lower-cased.
func (r *UserRepo) CreateUser(ctx context.Context, username, email, passwordHash string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `INSERT INTO users (id, username, email, password_hash) VALUES ($1, $2, $3, $4) RETURNING `+userColumns,
		uuid.NewString(), username, strings.ToLower(email), passwordHash)
	if isUniqueViolation(err) {
		return models.User{}, ErrDuplicateUser
	}
	return user, err
}

func (r *UserRepo) GetUser(ctx context.Context, userID string) (models.User, error) {
	if !validID(userID) {
		return models.User{}, ErrUserNotFound
	}
	return r.getBy(ctx, `id=$1`, userID)
}

func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return r.getBy(ctx, `username=$1`, username)
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return r.getBy(ctx, `email=$1`, strings.ToLower(email))
}

func (r *UserRepo) getBy(ctx context.Context, where string, arg any) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// SearchUsers matches usernames by case-insensitive prefix.
func (r *UserRepo) SearchUsers(ctx context.Context, query string, limit int) ([]models.PublicUser, error) {
	users := []models.PublicUser{}
	pattern := escapeLike(query) + "%"
	err := r.db.SelectContext(ctx, &users, `SELECT id, username FROM users WHERE username ILIKE $1 ORDER BY username ASC LIMIT $2`, pattern, limit)
	return users, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
