package domain

import "time"

// RefreshToken is one persisted session credential. A user may hold many
// (one per device); logout revokes all of them at once.
// Only the SHA-256 digest of the token ever reaches the store.
type RefreshToken struct {
	ID        int64     `json:"id"`
	TokenHash string    `json:"-"`
	UserID    string    `json:"userID"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}
