package dto

import (
	"time"

	"github.com/mstephano/authgate/internal/core/domain"
)

// UserResponse is the outward-facing view of a user. It never carries the
// password hash or reset token fields.
type UserResponse struct {
	UserID    string    `json:"userID"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToUserResponse converts a domain.User to a UserResponse DTO.
func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		UserID:    user.UserID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
