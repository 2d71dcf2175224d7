package repositories

import (
	"context"

	"github.com/mstephano/authgate/internal/core/domain"
)

// RefreshTokenReader defines read operations for persisted refresh tokens.
type RefreshTokenReader interface {
	// FindRefreshTokenByHash retrieves a stored refresh token by the SHA-256
	// digest of the presented token string.
	FindRefreshTokenByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
}

// RefreshTokenWriter defines write operations for persisted refresh tokens.
type RefreshTokenWriter interface {
	// SaveRefreshToken persists a newly issued refresh token.
	SaveRefreshToken(ctx context.Context, token domain.RefreshToken) error

	// DeleteRefreshTokensForUser removes every refresh token for the user in
	// a single bulk delete, revoking all of their sessions. Returns the
	// number of rows removed.
	DeleteRefreshTokensForUser(ctx context.Context, userID string) (int64, error)
}

// RefreshTokenRepositoryFacade combines the refresh token repository interfaces.
type RefreshTokenRepositoryFacade interface {
	RefreshTokenReader
	RefreshTokenWriter
}
