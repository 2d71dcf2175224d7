package services

import (
	"context"
	"time"

	"github.com/mstephano/authgate/internal/core/domain"
)

// PasswordResetSvcFacade creates, delivers and validates reset challenges.
// It never persists anything itself; the orchestrator writes the token to the
// credential store and clears it after a successful consumption.
type PasswordResetSvcFacade interface {
	// CreateResetChallenge generates a cryptographically random opaque token
	// and its absolute expiry.
	CreateResetChallenge(ctx context.Context) (token string, expiresAt time.Time, err error)

	// Deliver mails the one-time reset URL to the user. A transport failure
	// propagates to the caller; an unsent token must not be silently dropped.
	Deliver(ctx context.Context, user *domain.User, token string) error

	// Consume reports whether the supplied token matches the stored one and
	// is unexpired at now. Pure; clearing the stored fields is the caller's job.
	Consume(storedToken *string, storedExpiry *time.Time, suppliedToken string, now time.Time) bool
}

// MailSender is the outbound email transport consumed by the reset service.
type MailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}
