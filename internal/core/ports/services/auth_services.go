package services

import (
	"context"

	"github.com/mstephano/authgate/internal/core/domain"
	"github.com/mstephano/authgate/internal/dto"
)

// AuthSvcFacade is the orchestrator behind the user-facing auth operations.
// Each method is a request-scoped transaction; domain failures surface as
// apperrors sentinels and are mapped to HTTP statuses by the handlers.
type AuthSvcFacade interface {
	// Register creates a new user with a hashed password. Fails with
	// apperrors.ErrDuplicate when the username or email is taken.
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error)

	// Login verifies credentials (identifier may be username or email) and
	// issues an access/refresh token pair, persisting the refresh token.
	Login(ctx context.Context, identifier, password string) (*dto.TokenPair, error)

	// Refresh mints a new access token for a valid, still-stored refresh
	// token. The refresh token itself is not rotated.
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenPair, error)

	// Logout revokes every refresh token for the user owning the supplied
	// token. A missing or unverifiable token counts as already logged out.
	Logout(ctx context.Context, refreshToken string) error

	// ForgotPassword creates, persists and mails a reset challenge for the
	// account registered under email.
	ForgotPassword(ctx context.Context, email string) error

	// ResetPassword consumes a reset challenge and replaces the password.
	// The challenge is single use: the stored fields are cleared on success.
	ResetPassword(ctx context.Context, token, newPassword string) error
}
