package domain

import "time"

// User represents an account holder in the domain.
// PasswordHash is an Argon2id digest; the plaintext is never stored.
// ResetPasswordToken and ResetPasswordExpires are set only while a password
// reset is in flight: both nil or both non-nil.
type User struct {
	UserID               string     `json:"userID"` // Primary Key (UUID)
	Username             string     `json:"username"`
	Email                string     `json:"email"`
	PasswordHash         string     `json:"-"`
	ResetPasswordToken   *string    `json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"createdAt"`
	LastUpdatedAt        time.Time  `json:"lastUpdatedAt"`
}
