package services

import (
	"context"

	"github.com/mstephano/authgate/internal/core/domain"
	portsrepo "github.com/mstephano/authgate/internal/core/ports/repositories"
	portssvc "github.com/mstephano/authgate/internal/core/ports/services"
)

type userService struct {
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates a new instance of userService.
func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}
