package services

import (
	"context"
	"time"
)

// TokenSvcFacade defines the interface for token issuance and verification.
type TokenSvcFacade interface {
	// GenerateAccessToken creates a short-lived signed JWT for the user.
	GenerateAccessToken(ctx context.Context, userID string) (string, time.Time, error)

	// GenerateRefreshToken creates a longer-lived signed JWT for the user.
	// The caller is responsible for persisting it to the session store.
	GenerateRefreshToken(ctx context.Context, userID string) (string, time.Time, error)

	// VerifyToken checks signature and expiry and returns the embedded user
	// ID. It is pure: it never consults the session store. Fails with
	// apperrors.ErrTokenExpired or apperrors.ErrTokenInvalid.
	VerifyToken(ctx context.Context, tokenString string) (string, error)
}
