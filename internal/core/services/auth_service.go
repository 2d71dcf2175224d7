package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mstephano/authgate/internal/apperrors"
	"github.com/mstephano/authgate/internal/core/domain"
	portsrepo "github.com/mstephano/authgate/internal/core/ports/repositories"
	portssvc "github.com/mstephano/authgate/internal/core/ports/services"
	"github.com/mstephano/authgate/internal/dto"
	"github.com/mstephano/authgate/internal/utils"
)

// authService implements AuthSvcFacade by composing the credential store, the
// session token store, password hashing, token issuance and the reset service.
type authService struct {
	userRepo    portsrepo.UserRepositoryFacade
	refreshRepo portsrepo.RefreshTokenRepositoryFacade
	tokenSvc    portssvc.TokenSvcFacade
	resetSvc    portssvc.PasswordResetSvcFacade
}

// NewAuthService creates a new instance of authService.
func NewAuthService(
	userRepo portsrepo.UserRepositoryFacade,
	refreshRepo portsrepo.RefreshTokenRepositoryFacade,
	tokenSvc portssvc.TokenSvcFacade,
	resetSvc portssvc.PasswordResetSvcFacade,
) portssvc.AuthSvcFacade {
	return &authService{
		userRepo:    userRepo,
		refreshRepo: refreshRepo,
		tokenSvc:    tokenSvc,
		resetSvc:    resetSvc,
	}
}

// Register creates a new user with a hashed password. The up-front lookups
// are an optimization for friendlier errors; the database uniqueness
// constraint is what actually serializes concurrent registrations.
func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	if len(req.Password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters: %w", apperrors.ErrValidation)
	}

	if _, err := s.userRepo.FindUserByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("username %q: %w", req.Username, apperrors.ErrDuplicate)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username availability: %w", err)
	}

	if _, err := s.userRepo.FindUserByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email %q: %w", req.Email, apperrors.ErrDuplicate)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email availability: %w", err)
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := domain.User{
		UserID:        uuid.NewString(),
		Username:      req.Username,
		Email:         req.Email,
		PasswordHash:  passwordHash,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login resolves the identifier as username first, then email, verifies the
// password and issues a token pair. The refresh token is persisted (hashed)
// so it can be revoked later.
func (s *authService) Login(ctx context.Context, identifier, password string) (*dto.TokenPair, error) {
	user, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	ok, err := utils.CheckPasswordHash(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password for user %s: %w", user.UserID, err)
	}
	if !ok {
		return nil, fmt.Errorf("invalid password: %w", apperrors.ErrUnauthorized)
	}

	accessToken, accessExpiry, err := s.tokenSvc.GenerateAccessToken(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, refreshExpiry, err := s.tokenSvc.GenerateRefreshToken(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	err = s.refreshRepo.SaveRefreshToken(ctx, domain.RefreshToken{
		TokenHash: utils.HashRefreshToken(refreshToken),
		UserID:    user.UserID,
		ExpiresAt: refreshExpiry,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return &dto.TokenPair{
		Token:            accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExpiry,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}

// Refresh mints a new access token for a refresh token that is still present
// in the store and passes signature/expiry verification. The refresh token is
// not rotated.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenPair, error) {
	if refreshToken == "" {
		return nil, apperrors.ErrTokenMissing
	}

	stored, err := s.refreshRepo.FindRefreshTokenByHash(ctx, utils.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Revoked or never issued.
			return nil, fmt.Errorf("refresh token not found in store: %w", apperrors.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	userID, err := s.tokenSvc.VerifyToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if userID != stored.UserID {
		return nil, fmt.Errorf("refresh token subject mismatch: %w", apperrors.ErrTokenInvalid)
	}

	accessToken, accessExpiry, err := s.tokenSvc.GenerateAccessToken(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &dto.TokenPair{
		Token:           accessToken,
		AccessExpiresAt: accessExpiry,
	}, nil
}

// Logout revokes every refresh token belonging to the user owning the
// supplied token. A missing or unverifiable token is treated as an already
// logged-out session and is not an error.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	userID, err := s.tokenSvc.VerifyToken(ctx, refreshToken)
	if err != nil {
		// Expired or tampered token: nothing left to revoke by signature.
		return nil
	}
	if _, err := s.refreshRepo.DeleteRefreshTokensForUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens for user %s: %w", userID, err)
	}
	return nil
}

// ForgotPassword creates a reset challenge, persists it on the user row and
// mails the one-time URL. Delivery failures propagate: an unsent token leaves
// the account resettable-but-uncommunicated and operators need to see that.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("no account for email: %w", apperrors.ErrNotFound)
		}
		return fmt.Errorf("failed to look up user by email: %w", err)
	}

	token, expiresAt, err := s.resetSvc.CreateResetChallenge(ctx)
	if err != nil {
		return err
	}
	if err := s.userRepo.SetResetToken(ctx, user.UserID, token, expiresAt); err != nil {
		return fmt.Errorf("failed to persist reset token: %w", err)
	}
	return s.resetSvc.Deliver(ctx, user, token)
}

// ResetPassword consumes a reset challenge and replaces the password hash.
// UpdatePassword clears the stored token fields in the same statement, so a
// challenge can never be replayed.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("password must be at least 6 characters: %w", apperrors.ErrValidation)
	}

	user, err := s.userRepo.FindUserByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrResetTokenInvalid
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	if !s.resetSvc.Consume(user.ResetPasswordToken, user.ResetPasswordExpires, token, time.Now()) {
		return apperrors.ErrResetTokenInvalid
	}

	passwordHash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.UserID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *authService) findByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user by username: %w", err)
	}

	user, err = s.userRepo.FindUserByEmail(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}
	return nil, apperrors.ErrNotFound
}
