package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/mstephano/authgate/internal/core/domain"
	portssvc "github.com/mstephano/authgate/internal/core/ports/services"
	"github.com/mstephano/authgate/internal/platform/config"
	"github.com/mstephano/authgate/internal/utils"
)

// resetTokenBytes matches the original 20-byte challenge (40 hex chars).
const resetTokenBytes = 20

// passwordResetService implements PasswordResetSvcFacade. The service itself
// is stateless; the orchestrator persists the challenge on the user row and
// clears it after a successful consumption.
type passwordResetService struct {
	cfg    *config.Config
	mailer portssvc.MailSender
}

// NewPasswordResetService creates a new instance of passwordResetService.
func NewPasswordResetService(cfg *config.Config, mailer portssvc.MailSender) portssvc.PasswordResetSvcFacade {
	return &passwordResetService{cfg: cfg, mailer: mailer}
}

// CreateResetChallenge generates a random opaque token and its absolute expiry.
// The token is random bytes, not a signed JWT; possession of the mailbox is
// the only thing it proves.
func (s *passwordResetService) CreateResetChallenge(ctx context.Context) (string, time.Time, error) {
	token, err := utils.GenerateSecureRandomString(resetTokenBytes)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate reset token: %w", err)
	}
	return token, time.Now().Add(s.cfg.ResetTokenExpiryDuration), nil
}

// Deliver mails the one-time reset URL to the user's registered address.
func (s *passwordResetService) Deliver(ctx context.Context, user *domain.User, token string) error {
	body := fmt.Sprintf(
		"You are receiving this because you (or someone else) have requested the reset of the password for your account.\n\n"+
			"Please click on the following link, or paste this into your browser to complete the process:\n\n"+
			"%s/reset-password/%s\n\n"+
			"If you did not request this, please ignore this email and your password will remain unchanged.\n",
		s.cfg.AppBaseURL, token,
	)
	if err := s.mailer.Send(ctx, user.Email, "Password Reset", body); err != nil {
		return fmt.Errorf("failed to deliver password reset mail: %w", err)
	}
	return nil
}

// Consume reports whether suppliedToken matches the stored challenge and the
// challenge is unexpired at now. The comparison is constant time.
func (s *passwordResetService) Consume(storedToken *string, storedExpiry *time.Time, suppliedToken string, now time.Time) bool {
	if storedToken == nil || storedExpiry == nil || suppliedToken == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(*storedToken), []byte(suppliedToken)) != 1 {
		return false
	}
	return now.Before(*storedExpiry)
}
