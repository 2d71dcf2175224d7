package dto

import "time"

// RegisterRequest carries the registration payload.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest carries the login payload. Identifier may be a username or an
// email address; the legacy Username field is still accepted.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Password   string `json:"password" binding:"required"`
}

// RefreshTokenRequest optionally carries the refresh token in the body; the
// handlers also accept it from the refreshToken cookie.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ForgotPasswordRequest carries the email for a reset challenge.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest carries the replacement password; the token travels in
// the URL path.
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

// TokenPair is the result of a successful login or refresh. RefreshToken is
// empty on refresh (the existing refresh token is reused, not rotated).
type TokenPair struct {
	Token            string    `json:"token"`
	RefreshToken     string    `json:"refreshToken,omitempty"`
	AccessExpiresAt  time.Time `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshTokenResponse represents the response for a successful token refresh.
type RefreshTokenResponse struct {
	Token string `json:"token"`
}

// MessageResponse is a generic message body.
type MessageResponse struct {
	Message string `json:"message"`
}
