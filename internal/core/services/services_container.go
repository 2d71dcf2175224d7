package services

import (
	portsrepo "github.com/mstephano/authgate/internal/core/ports/repositories"
	portssvc "github.com/mstephano/authgate/internal/core/ports/services"
	"github.com/mstephano/authgate/internal/platform/config"
)

// NewServiceContainer wires the service layer from configuration, the
// repository provider and the outbound mail transport.
func NewServiceContainer(cfg *config.Config, repos *portsrepo.RepositoryProvider, mailer portssvc.MailSender) *portssvc.ServiceContainer {
	tokenSvc := NewTokenService(cfg)
	resetSvc := NewPasswordResetService(cfg, mailer)

	return &portssvc.ServiceContainer{
		Auth:  NewAuthService(repos.User, repos.RefreshToken, tokenSvc, resetSvc),
		Token: tokenSvc,
		User:  NewUserService(repos.User),
	}
}
