package models

import (
	"database/sql"
	"time"
)

// User is the database-layer row for the users table.
type User struct {
	UserID       string `db:"user_id"`
	Username     string `db:"username"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`

	// Password reset fields: non-null only during an active reset flow.
	ResetPasswordToken   sql.NullString `db:"reset_password_token"`
	ResetPasswordExpires sql.NullTime   `db:"reset_password_expires"`

	CreatedAt     time.Time `db:"created_at"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}
