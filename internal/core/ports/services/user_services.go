package services

import (
	"context"

	"github.com/mstephano/authgate/internal/core/domain"
)

// UserSvcFacade exposes user lookups to the protected API surface.
type UserSvcFacade interface {
	// GetUserByID retrieves a user by ID. Fails with apperrors.ErrNotFound.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}
