package repositories

import (
	"context"
	"time"

	"github.com/mstephano/authgate/internal/core/domain"
)

// UserReader defines read operations for user data.
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByUsername retrieves a user by their unique username.
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindUserByEmail retrieves a user by their unique email address.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindUserByResetToken retrieves the user holding the given reset token.
	// Expiry is not checked here; that is the caller's responsibility.
	FindUserByResetToken(ctx context.Context, token string) (*domain.User, error)
}

// UserWriter defines write operations for user data.
type UserWriter interface {
	// SaveUser persists a new user. Returns apperrors.ErrDuplicate when the
	// username or email is already taken; the database uniqueness constraint
	// is the source of truth for that check.
	SaveUser(ctx context.Context, user domain.User) error

	// SetResetToken attaches a password reset token and its absolute expiry
	// to the user row.
	SetResetToken(ctx context.Context, userID string, token string, expiresAt time.Time) error

	// UpdatePassword replaces the user's password hash and clears any reset
	// token fields in the same statement.
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
}

// UserRepositoryFacade combines all user-related repository interfaces.
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
