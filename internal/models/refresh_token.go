package models

import "time"

// RefreshToken is the database-layer row for the refresh_tokens table.
type RefreshToken struct {
	ID        int64     `db:"id"`
	TokenHash string    `db:"token_hash"`
	UserID    string    `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}
