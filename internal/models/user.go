package models

import "time"

// User is a registered account.
type User struct {
	ID           string    `db:"id" json:"_id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// PublicUser is the view of a user shown to other users.
type PublicUser struct {
	ID       string `db:"id" json:"_id"`
	Username string `db:"username" json:"username"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}
