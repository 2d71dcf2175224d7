package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mstephano/authgate/internal/apperrors"
	portssvc "github.com/mstephano/authgate/internal/core/ports/services"
	"github.com/mstephano/authgate/internal/platform/config"
	"github.com/mstephano/authgate/internal/utils"
)

// tokenService implements TokenSvcFacade. Both access and refresh tokens are
// HS256 JWTs signed with the process-wide secret; they differ only in expiry.
// Verification is stateless — checking the session store for refresh tokens
// is the orchestrator's responsibility.
type tokenService struct {
	cfg *config.Config
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{cfg: cfg}
}

// GenerateAccessToken creates a new short-lived JWT access token for the user.
func (s *tokenService) GenerateAccessToken(ctx context.Context, userID string) (string, time.Time, error) {
	expiryTime := time.Now().Add(s.cfg.JWTExpiryDuration)
	token, err := utils.GenerateJWT(userID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiryTime, nil
}

// GenerateRefreshToken creates a new long-lived JWT refresh token for the user.
func (s *tokenService) GenerateRefreshToken(ctx context.Context, userID string) (string, time.Time, error) {
	expiryTime := time.Now().Add(s.cfg.RefreshTokenExpiryDuration)
	token, err := utils.GenerateJWT(userID, s.cfg.JWTSecret, s.cfg.RefreshTokenExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiryTime, nil
}

// VerifyToken validates signature and expiry and returns the embedded user ID.
func (s *tokenService) VerifyToken(ctx context.Context, tokenString string) (string, error) {
	claims, err := utils.ParseAndValidateJWT(tokenString, s.cfg.JWTSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperrors.ErrTokenExpired
		}
		return "", apperrors.ErrTokenInvalid
	}
	if claims.Subject == "" {
		return "", apperrors.ErrTokenInvalid
	}
	return claims.Subject, nil
}
